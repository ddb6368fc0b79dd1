package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"github.com/credisul/credisul-api/internal/services"
	"github.com/gin-gonic/gin"
)

type LoanHandler struct {
	loanService   *services.LoanService
	exportService *services.ExportService
	noteService   *services.NoteService
}

func NewLoanHandler(loanService *services.LoanService, exportService *services.ExportService, noteService *services.NoteService) *LoanHandler {
	return &LoanHandler{
		loanService:   loanService,
		exportService: exportService,
		noteService:   noteService,
	}
}

// @Summary List Loans
// @Description Get a paginated list of loans
// @Tags Loans
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param customer_id query int false "Filter by customer"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans [get]
func (h *LoanHandler) Index(c *gin.Context) {
	query := &repository.LoanQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Status = c.Query("status")
	query.Search = c.Query("search_term")
	query.Filters["status_in"] = c.Query("status_in")

	if customerID, err := strconv.ParseUint(c.Query("customer_id"), 10, 32); err == nil {
		query.CustomerID = uint(customerID)
	}

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	loans, total, err := h.loanService.List(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	today := refDate(c)
	var responses []interface{}
	for i := range loans {
		resp := loans[i].ToResponse(today)
		resp.Schedule = nil
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, gin.H{
		"loans": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Loan
// @Description Get a loan with its installment schedule and derived aggregates
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Param as_of query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} models.LoanResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id} [get]
func (h *LoanHandler) Show(c *gin.Context) {
	param := c.Param("loan_id")
	id, err := strconv.ParseUint(param, 10, 32)
	if err != nil {
		// Non-numeric param is treated as a contract GUID
		loan, err := h.loanService.FindByGUID(c.Request.Context(), param)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		id = uint64(loan.ID)
	}

	loan, err := h.loanService.FindByIDWithSchedule(c.Request.Context(), uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan.ToResponse(refDate(c)))
}

// @Summary Customer Loans
// @Description All loans of a customer, newest first
// @Tags Loans
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Param as_of query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{customer_id}/loans [get]
func (h *LoanHandler) ByCustomer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("customer_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	loans, err := h.loanService.FindByCustomer(c.Request.Context(), uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	today := refDate(c)
	var responses []interface{}
	for i := range loans {
		resp := loans[i].ToResponse(today)
		resp.Schedule = nil
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, gin.H{"loans": responses})
}

type CreateLoanRequest struct {
	CustomerID         uint    `json:"customer_id" binding:"required"`
	ProductID          *uint   `json:"product_id"`
	RequestedAmount    float64 `json:"requested_amount" binding:"required"`
	ReleasedAmount     float64 `json:"released_amount"`
	InterestRate       float64 `json:"interest_rate"`
	InterestPeriodDays int     `json:"interest_period_days"`
	TermWeeks          int     `json:"term_weeks"`
	StartDate          string  `json:"start_date"`
}

// @Summary Create Loan
// @Description Registers a new draft loan
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body CreateLoanRequest true "Loan data"
// @Success 201 {object} models.LoanResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /loans [post]
func (h *LoanHandler) Create(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan := models.Loan{
		CustomerID:         req.CustomerID,
		ProductID:          req.ProductID,
		RequestedAmount:    req.RequestedAmount,
		ReleasedAmount:     req.ReleasedAmount,
		InterestRate:       req.InterestRate,
		InterestPeriodDays: req.InterestPeriodDays,
		TermWeeks:          req.TermWeeks,
	}
	if req.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "data de início inválida, use YYYY-MM-DD"})
			return
		}
		loan.StartDate = startDate
	}

	if err := h.loanService.Create(c.Request.Context(), &loan); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, loan.ToResponse(time.Now()))
}

// @Summary Generate Installments
// @Description Builds the weekly installment schedule, replacing any open installments
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} models.LoanResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/generate_installments [post]
func (h *LoanHandler) GenerateInstallments(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	loan, err := h.loanService.GenerateInstallments(c.Request.Context(), uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan.ToResponse(time.Now()))
}

// @Summary Loan Summary
// @Description Derived schedule aggregates: balance, counts and days overdue
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Param as_of query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} models.ScheduleStats
// @Security BearerAuth
// @Router /loans/{loan_id}/summary [get]
func (h *LoanHandler) Summary(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	stats, err := h.loanService.Summary(c.Request.Context(), uint(id), refDate(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// @Summary Mark Loan Defaulted
// @Description Flags a loan as defaulted; manual decision only
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} models.LoanResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/mark_defaulted [post]
func (h *LoanHandler) MarkDefaulted(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	loan, err := h.loanService.MarkDefaulted(c.Request.Context(), uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan.ToResponse(time.Now()))
}

// @Summary Loan Notes
// @Description Audit trail of a loan
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans/{loan_id}/notes [get]
func (h *LoanHandler) Notes(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	notes, err := h.noteService.ForLoan(c.Request.Context(), uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// @Summary Export Schedule
// @Description Downloads the installment schedule as CSV, XLSX or PDF
// @Tags Loans
// @Produce octet-stream
// @Param loan_id path int true "Loan ID"
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /loans/{loan_id}/export [get]
func (h *LoanHandler) Export(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	today := refDate(c)
	var (
		data        []byte
		filename    string
		contentType string
	)

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		data, filename, err = h.exportService.ExportScheduleXLSX(c.Request.Context(), uint(id), today)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, filename, err = h.exportService.ExportStatementPDF(c.Request.Context(), uint(id), today)
		contentType = "application/pdf"
	default:
		data, filename, err = h.exportService.ExportScheduleCSV(c.Request.Context(), uint(id), today)
		contentType = "text/csv"
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
