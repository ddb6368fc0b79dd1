package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/credisul/credisul-api/internal/repository"
	"github.com/credisul/credisul-api/internal/services"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoicingService *services.InvoicingService
}

func NewInvoiceHandler(invoicingService *services.InvoicingService) *InvoiceHandler {
	return &InvoiceHandler{invoicingService: invoicingService}
}

// @Summary List Invoices
// @Description Get a paginated list of invoices
// @Tags Invoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param customer_id query int false "Filter by customer"
// @Param state query string false "Filter by state"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) Index(c *gin.Context) {
	query := &repository.InvoiceQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.State = c.Query("state")
	query.PaymentState = c.Query("payment_state")
	query.Search = c.Query("search_term")

	if customerID, err := strconv.ParseUint(c.Query("customer_id"), 10, 32); err == nil {
		query.CustomerID = uint(customerID)
	}

	invoices, total, err := h.invoicingService.List(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	var responses []interface{}
	for i := range invoices {
		responses = append(responses, invoices[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"invoices": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Invoice
// @Description Get an invoice with its lines and covered installments
// @Tags Invoices
// @Produce json
// @Param invoice_id path int true "Invoice ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{invoice_id} [get]
func (h *InvoiceHandler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("invoice_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	invoice, err := h.invoicingService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	installments, err := h.invoicingService.InstallmentsForInvoice(c.Request.Context(), invoice.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	today := refDate(c)
	var covered []interface{}
	for i := range installments {
		covered = append(covered, installments[i].ToResponse(today))
	}

	c.JSON(http.StatusOK, gin.H{
		"invoice":      invoice.ToResponse(),
		"installments": covered,
	})
}

// @Summary Invoice Installment
// @Description Raises an invoice for a single installment
// @Tags Invoices
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Success 201 {object} models.InvoiceResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /installments/{installment_id}/invoice [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("installment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	invoice, err := h.invoicingService.CreateInvoice(c.Request.Context(), uint(id), time.Now())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invoice.ToResponse())
}

type BatchInvoiceRequest struct {
	InstallmentIDs []uint `json:"installment_ids" binding:"required"`
}

// @Summary Batch Invoice
// @Description Raises one invoice covering several installments of the same customer
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body BatchInvoiceRequest true "Installments to invoice"
// @Success 201 {object} models.InvoiceResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/batch [post]
func (h *InvoiceHandler) CreateBatch(c *gin.Context) {
	var req BatchInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.invoicingService.CreateBatchInvoice(c.Request.Context(), req.InstallmentIDs, time.Now())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invoice.ToResponse())
}

type InvoicePaymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// @Summary Register Invoice Payment
// @Description Records a payment against an invoice; the reconciliation sweep pushes it onto installments
// @Tags Invoices
// @Accept json
// @Produce json
// @Param invoice_id path int true "Invoice ID"
// @Param request body InvoicePaymentRequest true "Payment data"
// @Success 200 {object} models.InvoiceResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{invoice_id}/pay [post]
func (h *InvoiceHandler) RegisterPayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("invoice_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req InvoicePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.invoicingService.RegisterInvoicePayment(c.Request.Context(), uint(id), req.Amount)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice.ToResponse())
}

// @Summary Cancel Invoice
// @Description Voids an invoice and releases its installments; rejected when payments exist
// @Tags Invoices
// @Produce json
// @Param invoice_id path int true "Invoice ID"
// @Success 200 {object} models.InvoiceResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{invoice_id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("invoice_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	invoice, err := h.invoicingService.CancelInvoice(c.Request.Context(), uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice.ToResponse())
}
