package models

import "time"

// Invoice represents a customer invoice raised against one or more
// installments. Payments registered on the invoice are swept back onto the
// linked installments by the reconciliation job.
type Invoice struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Reference    string     `gorm:"uniqueIndex;size:36" json:"reference"`
	CustomerID   uint       `gorm:"not null;index" json:"customer_id"`
	State        string     `gorm:"default:draft;not null;index" json:"state"`
	PaymentState string     `gorm:"default:not_paid;not null;index" json:"payment_state"`
	DueDate      time.Time  `gorm:"type:date;not null" json:"due_date"`
	AmountTotal  float64    `gorm:"type:decimal(15,2);not null" json:"amount_total"`
	AmountPaid   float64    `gorm:"type:decimal(15,2);default:0" json:"amount_paid"`
	// AmountReconciled tracks how much of AmountPaid has been swept onto
	// installments, so repeated sweeps never double-apply.
	AmountReconciled float64    `gorm:"type:decimal(15,2);default:0" json:"amount_reconciled"`
	ReconciledAt     *time.Time `json:"reconciled_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Associations
	Customer Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Lines    []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

// TableName specifies the table name for Invoice
func (Invoice) TableName() string {
	return "invoices"
}

// Invoice state constants
const (
	InvoiceStateDraft     = "draft"
	InvoiceStatePosted    = "posted"
	InvoiceStateCancelled = "cancelled"
)

// Invoice payment state constants
const (
	InvoicePaymentStateNotPaid   = "not_paid"
	InvoicePaymentStateInPayment = "in_payment"
	InvoicePaymentStatePaid      = "paid"
)

// IsPaid reports whether any payment has been registered on the invoice.
// Paid or partially paid invoices cannot be cancelled.
func (inv *Invoice) IsPaid() bool {
	return inv.PaymentState == InvoicePaymentStatePaid ||
		inv.PaymentState == InvoicePaymentStateInPayment ||
		inv.AmountPaid > 0
}

// MayCancel returns true if the invoice can still be cancelled
func (inv *Invoice) MayCancel() bool {
	return inv.State != InvoiceStateCancelled && !inv.IsPaid()
}

// InvoiceLine is a single billing line on an invoice. Batch invoices over the
// aggregation threshold carry one consolidated line instead of one per
// installment.
type InvoiceLine struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	InvoiceID   uint      `gorm:"not null;index" json:"invoice_id"`
	Description string    `gorm:"not null" json:"description"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for InvoiceLine
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// Subtotal returns quantity times unit price
func (l *InvoiceLine) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// InvoiceLineResponse is the JSON response format for invoice lines
type InvoiceLineResponse struct {
	ID          uint    `json:"id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// InvoiceResponse is the JSON response format for invoices
type InvoiceResponse struct {
	ID           uint                  `json:"id"`
	Reference    string                `json:"reference"`
	CustomerID   uint                  `json:"customer_id"`
	CustomerName string                `json:"customer_name,omitempty"`
	State        string                `json:"state"`
	PaymentState string                `json:"payment_state"`
	DueDate      time.Time             `json:"due_date"`
	AmountTotal  float64               `json:"amount_total"`
	AmountPaid   float64               `json:"amount_paid"`
	ReconciledAt *time.Time            `json:"reconciled_at,omitempty"`
	Lines        []InvoiceLineResponse `json:"lines,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// ToResponse converts Invoice to InvoiceResponse
func (inv *Invoice) ToResponse() InvoiceResponse {
	resp := InvoiceResponse{
		ID:           inv.ID,
		Reference:    inv.Reference,
		CustomerID:   inv.CustomerID,
		State:        inv.State,
		PaymentState: inv.PaymentState,
		DueDate:      inv.DueDate,
		AmountTotal:  inv.AmountTotal,
		AmountPaid:   inv.AmountPaid,
		ReconciledAt: inv.ReconciledAt,
		CreatedAt:    inv.CreatedAt,
	}

	if inv.Customer.ID != 0 {
		resp.CustomerName = inv.Customer.Name
	}

	for _, line := range inv.Lines {
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			ID:          line.ID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal(),
		})
	}

	return resp
}
