package models

import (
	"fmt"
	"time"
)

// Installment represents one scheduled repayment of a loan
type Installment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	LoanID      uint       `gorm:"not null;index" json:"loan_id"`
	CustomerID  uint       `gorm:"not null;index" json:"customer_id"`
	Number      int        `gorm:"not null" json:"number"`
	DueDate     time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	Amount      float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	AmountPaid  float64    `gorm:"type:decimal(15,2);default:0" json:"amount_paid"`
	PaymentDate *time.Time `gorm:"type:date" json:"payment_date"`
	Status      string     `gorm:"default:pending;not null;index" json:"status"`
	InvoiceID   *uint      `gorm:"index" json:"invoice_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Associations
	Loan     Loan     `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
	Customer Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Invoice  *Invoice `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}

// TableName specifies the table name for Installment
func (Installment) TableName() string {
	return "installments"
}

// Installment status constants
const (
	InstallmentStatusPending      = "pending"
	InstallmentStatusPaid         = "paid"
	InstallmentStatusLate         = "late"
	InstallmentStatusPartial      = "partial"
	InstallmentStatusRenegotiated = "renegotiated"
)

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StatusFor derives the installment status from its monetary state against the
// given reference date. `renegotiated` is sticky: once imposed it is never
// derived away.
func (i *Installment) StatusFor(today time.Time) string {
	if i.Status == InstallmentStatusRenegotiated {
		return InstallmentStatusRenegotiated
	}
	switch {
	case i.AmountPaid >= i.Amount:
		return InstallmentStatusPaid
	case i.AmountPaid > 0:
		return InstallmentStatusPartial
	case dateOnly(i.DueDate).Before(dateOnly(today)):
		return InstallmentStatusLate
	default:
		return InstallmentStatusPending
	}
}

// Recompute refreshes the persisted status field. Must be called after every
// mutation of Amount, AmountPaid or DueDate; the stored value is derived, not
// authoritative.
func (i *Installment) Recompute(today time.Time) {
	i.Status = i.StatusFor(today)
}

// DaysLate returns how many days past due the installment is. Only late and
// partially paid installments accrue days; everything else reports zero.
func (i *Installment) DaysLate(today time.Time) int {
	status := i.StatusFor(today)
	if status != InstallmentStatusLate && status != InstallmentStatusPartial {
		return 0
	}
	days := int(dateOnly(today).Sub(dateOnly(i.DueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Remaining returns the outstanding amount on the installment
func (i *Installment) Remaining() float64 {
	return i.Amount - i.AmountPaid
}

// CanInvoice returns true if an individual invoice can be generated
func (i *Installment) CanInvoice(today time.Time) bool {
	switch i.StatusFor(today) {
	case InstallmentStatusPending, InstallmentStatusLate, InstallmentStatusPartial:
		return i.InvoiceID == nil
	default:
		return false
	}
}

// DisplayName returns the human-readable installment reference
func (i *Installment) DisplayName() string {
	if i.Loan.GUID != "" {
		return fmt.Sprintf("%s - Parcela %d", i.Loan.GUID, i.Number)
	}
	return fmt.Sprintf("Parcela %d", i.Number)
}

// InstallmentResponse is the JSON response format for installments
type InstallmentResponse struct {
	ID          uint       `json:"id"`
	LoanID      uint       `json:"loan_id"`
	CustomerID  uint       `json:"customer_id"`
	Number      int        `json:"number"`
	DueDate     time.Time  `json:"due_date"`
	Amount      float64    `json:"amount"`
	AmountPaid  float64    `json:"amount_paid"`
	Remaining   float64    `json:"remaining"`
	PaymentDate *time.Time `json:"payment_date"`
	Status      string     `json:"status"`
	DaysLate    int        `json:"days_late"`
	CanInvoice  bool       `json:"can_invoice"`
	InvoiceID   *uint      `json:"invoice_id,omitempty"`
}

// ToResponse converts Installment to InstallmentResponse, deriving the
// read-only views against the given reference date.
func (i *Installment) ToResponse(today time.Time) InstallmentResponse {
	return InstallmentResponse{
		ID:          i.ID,
		LoanID:      i.LoanID,
		CustomerID:  i.CustomerID,
		Number:      i.Number,
		DueDate:     i.DueDate,
		Amount:      i.Amount,
		AmountPaid:  i.AmountPaid,
		Remaining:   i.Remaining(),
		PaymentDate: i.PaymentDate,
		Status:      i.StatusFor(today),
		DaysLate:    i.DaysLate(today),
		CanInvoice:  i.CanInvoice(today),
		InvoiceID:   i.InvoiceID,
	}
}
