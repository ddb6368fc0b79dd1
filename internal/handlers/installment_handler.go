package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/credisul/credisul-api/internal/repository"
	"github.com/credisul/credisul-api/internal/services"
	"github.com/gin-gonic/gin"
)

type InstallmentHandler struct {
	installmentService *services.InstallmentService
	noteService        *services.NoteService
}

func NewInstallmentHandler(installmentService *services.InstallmentService, noteService *services.NoteService) *InstallmentHandler {
	return &InstallmentHandler{
		installmentService: installmentService,
		noteService:        noteService,
	}
}

// @Summary List Installments
// @Description Get a paginated list of installments
// @Tags Installments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param loan_id query int false "Filter by loan"
// @Param customer_id query int false "Filter by customer"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installments [get]
func (h *InstallmentHandler) Index(c *gin.Context) {
	query := &repository.InstallmentQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Status = c.Query("status")
	query.Filters["due_from"] = c.Query("due_from")
	query.Filters["due_to"] = c.Query("due_to")

	if loanID, err := strconv.ParseUint(c.Query("loan_id"), 10, 32); err == nil {
		query.LoanID = uint(loanID)
	}
	if customerID, err := strconv.ParseUint(c.Query("customer_id"), 10, 32); err == nil {
		query.CustomerID = uint(customerID)
	}

	installments, total, err := h.installmentService.List(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	today := refDate(c)
	var responses []interface{}
	for i := range installments {
		responses = append(responses, installments[i].ToResponse(today))
	}

	c.JSON(http.StatusOK, gin.H{
		"installments": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Installment
// @Description Get an installment with its derived status
// @Tags Installments
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Param as_of query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} models.InstallmentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /installments/{installment_id} [get]
func (h *InstallmentHandler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("installment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	installment, err := h.installmentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, installment.ToResponse(refDate(c)))
}

// @Summary Installment Notes
// @Description Audit trail of an installment
// @Tags Installments
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installments/{installment_id}/notes [get]
func (h *InstallmentHandler) Notes(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("installment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	notes, err := h.noteService.ForInstallment(c.Request.Context(), uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

type RegisterPaymentRequest struct {
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
}

func (r *RegisterPaymentRequest) paymentDate() (time.Time, error) {
	if r.PaymentDate == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", r.PaymentDate)
}

// @Summary Register Payment
// @Description Settles the full outstanding amount of an installment
// @Tags Installments
// @Accept json
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Param request body RegisterPaymentRequest false "Payment data"
// @Success 200 {object} models.InstallmentResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /installments/{installment_id}/pay [post]
func (h *InstallmentHandler) RegisterPayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("installment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req RegisterPaymentRequest
	_ = c.ShouldBindJSON(&req)
	paymentDate, err := req.paymentDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data de pagamento inválida, use YYYY-MM-DD"})
		return
	}

	installment, err := h.installmentService.RegisterPayment(c.Request.Context(), uint(id), paymentDate)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, installment.ToResponse(time.Now()))
}

// @Summary Register Partial Payment
// @Description Applies a partial amount to an installment
// @Tags Installments
// @Accept json
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Param request body RegisterPaymentRequest true "Payment data"
// @Success 200 {object} models.InstallmentResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /installments/{installment_id}/pay_partial [post]
func (h *InstallmentHandler) RegisterPartialPayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("installment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	paymentDate, err := req.paymentDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data de pagamento inválida, use YYYY-MM-DD"})
		return
	}

	installment, err := h.installmentService.RegisterPartialPayment(c.Request.Context(), uint(id), req.Amount, paymentDate)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, installment.ToResponse(time.Now()))
}
