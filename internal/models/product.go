package models

import "time"

// LoanProduct configures the financial terms offered for a loan line.
// Invoicing requires every installment's loan to reference one.
type LoanProduct struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"not null" json:"name"`
	IsLoanProduct      bool      `gorm:"default:true" json:"is_loan_product"`
	InterestRate       float64   `gorm:"default:10" json:"interest_rate"`
	InterestPeriodDays int       `gorm:"default:7" json:"interest_period_days"`
	DefaultTermWeeks   int       `gorm:"default:4" json:"default_term_weeks"`
	Active             bool      `gorm:"default:true" json:"active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName specifies the table name for LoanProduct
func (LoanProduct) TableName() string {
	return "loan_products"
}

// ApplyDefaults fills unset loan terms from the product configuration
func (p *LoanProduct) ApplyDefaults(loan *Loan) {
	if loan.InterestRate == 0 {
		loan.InterestRate = p.InterestRate
	}
	if loan.InterestPeriodDays == 0 {
		loan.InterestPeriodDays = p.InterestPeriodDays
	}
	if loan.TermWeeks == 0 {
		loan.TermWeeks = p.DefaultTermWeeks
	}
}
