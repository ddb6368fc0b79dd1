package models

import "time"

// Note is an audit trail entry attached to a loan or an installment. Notes
// record schedule generation, renegotiations, invoicing and payments.
type Note struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	LoanID        *uint     `gorm:"index" json:"loan_id"`
	InstallmentID *uint     `gorm:"index" json:"installment_id"`
	Body          string    `gorm:"not null" json:"body"`
	Author        string    `gorm:"default:system" json:"author"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Note
func (Note) TableName() string {
	return "notes"
}
