package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/credisul/credisul-api/internal/services"
	"github.com/gin-gonic/gin"
)

// Handlers holds all handler instances
type Handlers struct {
	Health        *HealthHandler
	Auth          *AuthHandler
	Customer      *CustomerHandler
	Product       *ProductHandler
	Loan          *LoanHandler
	Installment   *InstallmentHandler
	Renegotiation *RenegotiationHandler
	Invoice       *InvoiceHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:        NewHealthHandler(),
		Auth:          NewAuthHandler(svcs.Auth),
		Customer:      NewCustomerHandler(svcs.Customer),
		Product:       NewProductHandler(svcs.Product),
		Loan:          NewLoanHandler(svcs.Loan, svcs.Export, svcs.Note),
		Installment:   NewInstallmentHandler(svcs.Installment, svcs.Note),
		Renegotiation: NewRenegotiationHandler(svcs.Renegotiation),
		Invoice:       NewInvoiceHandler(svcs.Invoicing),
	}
}

// handleServiceError maps service errors onto HTTP status codes: validation
// failures are 422, business rule rejections 400, missing records 404.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidationError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case services.IsUserError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// refDate resolves the reference date for status derivation. Operators can
// pass as_of=YYYY-MM-DD to inspect a schedule at another date; mutations
// always use the current date.
func refDate(c *gin.Context) time.Time {
	if asOf := c.Query("as_of"); asOf != "" {
		if t, err := time.Parse("2006-01-02", asOf); err == nil {
			return t
		}
	}
	return time.Now()
}
