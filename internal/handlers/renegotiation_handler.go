package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/credisul/credisul-api/internal/services"
	"github.com/gin-gonic/gin"
)

type RenegotiationHandler struct {
	renegotiationService *services.RenegotiationService
}

func NewRenegotiationHandler(renegotiationService *services.RenegotiationService) *RenegotiationHandler {
	return &RenegotiationHandler{renegotiationService: renegotiationService}
}

type RenegotiationRequest struct {
	Option          string   `json:"option" binding:"required"`
	ExtensionWeeks  int      `json:"extension_weeks"`
	DiscountPercent *float64 `json:"discount_percent"`
	DiscountFixed   *float64 `json:"discount_fixed"`
	NewInterestRate float64  `json:"new_interest_rate"`
	NewTermWeeks    int      `json:"new_term_weeks"`
	StartDate       string   `json:"start_date"`
}

func (r *RenegotiationRequest) toParams() (*services.RenegotiationParams, error) {
	params := &services.RenegotiationParams{
		Option:          r.Option,
		ExtensionWeeks:  r.ExtensionWeeks,
		DiscountPercent: r.DiscountPercent,
		DiscountFixed:   r.DiscountFixed,
		NewInterestRate: r.NewInterestRate,
		NewTermWeeks:    r.NewTermWeeks,
	}
	if r.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", r.StartDate)
		if err != nil {
			return nil, err
		}
		params.StartDate = startDate
	}
	return params, nil
}

// @Summary Propose Renegotiation
// @Description Previews new terms for a loan in arrears without persisting anything
// @Tags Renegotiation
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Param request body RenegotiationRequest true "Requested terms"
// @Success 200 {object} services.RenegotiationProposal
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/renegotiation/propose [post]
func (h *RenegotiationHandler) Propose(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req RenegotiationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params, err := req.toParams()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data de início inválida, use YYYY-MM-DD"})
		return
	}

	proposal, err := h.renegotiationService.Propose(c.Request.Context(), uint(id), params, time.Now())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// @Summary Confirm Renegotiation
// @Description Archives the open schedule and creates a new one atomically
// @Tags Renegotiation
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Param request body RenegotiationRequest true "Requested terms"
// @Success 200 {object} models.LoanResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/renegotiation/confirm [post]
func (h *RenegotiationHandler) Confirm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req RenegotiationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params, err := req.toParams()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data de início inválida, use YYYY-MM-DD"})
		return
	}

	loan, err := h.renegotiationService.Confirm(c.Request.Context(), uint(id), params, time.Now())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan.ToResponse(time.Now()))
}

type RefinanceRequest struct {
	NewAmount float64 `json:"new_amount" binding:"required"`
	TermWeeks int     `json:"term_weeks" binding:"required"`
}

// @Summary Refinance Loan
// @Description Closes the loan as renegotiated and opens a replacement for a larger amount
// @Tags Renegotiation
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Param request body RefinanceRequest true "Refinance terms"
// @Success 201 {object} models.LoanResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/refinance [post]
func (h *RenegotiationHandler) Refinance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req RefinanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan, err := h.renegotiationService.Refinance(c.Request.Context(), uint(id), req.NewAmount, req.TermWeeks, time.Now())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, loan.ToResponse(time.Now()))
}
