package models

import (
	"math"
	"time"
)

// Loan represents a consumer loan order repaid in weekly installments
type Loan struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	GUID               string     `gorm:"uniqueIndex;size:36" json:"guid"`
	CustomerID         uint       `gorm:"not null;index" json:"customer_id"`
	ProductID          *uint      `gorm:"index" json:"product_id"`
	RequestedAmount    float64    `gorm:"type:decimal(15,2)" json:"requested_amount"`
	ReleasedAmount     float64    `gorm:"type:decimal(15,2)" json:"released_amount"`
	InterestRate       float64    `gorm:"default:10" json:"interest_rate"`
	InterestPeriodDays int        `gorm:"default:7" json:"interest_period_days"`
	TermWeeks          int        `gorm:"default:4" json:"term_weeks"`
	StartDate          time.Time  `gorm:"type:date;not null" json:"start_date"`
	Status             string     `gorm:"default:draft;not null;index" json:"status"`
	Currency           string     `gorm:"default:BRL;not null" json:"currency"`
	IsRenegotiation    bool       `gorm:"default:false" json:"is_renegotiation"`
	OriginLoanID       *uint      `gorm:"index" json:"origin_loan_id"`
	ClosedAt           *time.Time `json:"closed_at"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Associations
	Customer     Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Product      *LoanProduct  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Installments []Installment `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"installments,omitempty"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}

// Loan status constants
const (
	LoanStatusDraft        = "draft"
	LoanStatusActive       = "active"
	LoanStatusLate         = "late"
	LoanStatusPaid         = "paid"
	LoanStatusDefaulted    = "defaulted"
	LoanStatusRenegotiated = "renegotiated"
)

// TotalAmount returns the total payable: released amount compounded over the
// term, one compounding step per interest period. Zero unless both the released
// amount and the term are positive.
func (l *Loan) TotalAmount() float64 {
	if l.ReleasedAmount <= 0 || l.TermWeeks <= 0 {
		return 0
	}
	period := l.InterestPeriodDays
	if period <= 0 {
		period = 7
	}
	totalDays := float64(l.TermWeeks * 7)
	periods := totalDays / float64(period)
	return l.ReleasedAmount * math.Pow(1+l.InterestRate/100, periods)
}

// InstallmentAmount returns the even per-week split of the total payable.
func (l *Loan) InstallmentAmount() float64 {
	if l.TermWeeks <= 0 {
		return 0
	}
	return l.TotalAmount() / float64(l.TermWeeks)
}

// MayActivate returns true if installments can be generated for the loan
func (l *Loan) MayActivate() bool {
	return l.Status == LoanStatusDraft || l.Status == LoanStatusActive
}

// MayMarkLate returns true if the loan can be flagged as late
func (l *Loan) MayMarkLate() bool {
	return l.Status == LoanStatusActive
}

// MaySettle returns true if the loan can be marked fully paid
func (l *Loan) MaySettle() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusLate
}

// MayDefault returns true if the loan can be marked defaulted
func (l *Loan) MayDefault() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusLate
}

// MayRenegotiate returns true if the loan's schedule can be renegotiated
func (l *Loan) MayRenegotiate() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusLate
}

// LoanResponse is the JSON response format for loans
type LoanResponse struct {
	ID                 uint                  `json:"id"`
	GUID               string                `json:"guid"`
	CustomerID         uint                  `json:"customer_id"`
	CustomerName       string                `json:"customer_name,omitempty"`
	RequestedAmount    float64               `json:"requested_amount"`
	ReleasedAmount     float64               `json:"released_amount"`
	InterestRate       float64               `json:"interest_rate"`
	InterestPeriodDays int                   `json:"interest_period_days"`
	TermWeeks          int                   `json:"term_weeks"`
	StartDate          time.Time             `json:"start_date"`
	Status             string                `json:"status"`
	Currency           string                `json:"currency"`
	IsRenegotiation    bool                  `json:"is_renegotiation"`
	OriginLoanID       *uint                 `json:"origin_loan_id,omitempty"`
	TotalAmount        float64               `json:"total_amount"`
	InstallmentAmount  float64               `json:"installment_amount"`
	Balance            float64               `json:"balance"`
	OverdueCount       int                   `json:"overdue_count"`
	PendingCount       int                   `json:"pending_count"`
	DaysOverdue        int                   `json:"days_overdue"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	Schedule           []InstallmentResponse `json:"schedule,omitempty"`
}

// ToResponse converts Loan to LoanResponse. Aggregates are derived from the
// loaded installments against the given reference date.
func (l *Loan) ToResponse(today time.Time) LoanResponse {
	stats := ComputeScheduleStats(l.Installments, today)

	resp := LoanResponse{
		ID:                 l.ID,
		GUID:               l.GUID,
		CustomerID:         l.CustomerID,
		RequestedAmount:    l.RequestedAmount,
		ReleasedAmount:     l.ReleasedAmount,
		InterestRate:       l.InterestRate,
		InterestPeriodDays: l.InterestPeriodDays,
		TermWeeks:          l.TermWeeks,
		StartDate:          l.StartDate,
		Status:             l.Status,
		Currency:           l.Currency,
		IsRenegotiation:    l.IsRenegotiation,
		OriginLoanID:       l.OriginLoanID,
		TotalAmount:        l.TotalAmount(),
		InstallmentAmount:  l.InstallmentAmount(),
		Balance:            stats.Balance,
		OverdueCount:       stats.OverdueCount,
		PendingCount:       stats.PendingCount,
		DaysOverdue:        stats.DaysOverdue,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}

	if l.Customer.ID != 0 {
		resp.CustomerName = l.Customer.Name
	}

	for _, inst := range l.Installments {
		resp.Schedule = append(resp.Schedule, inst.ToResponse(today))
	}

	return resp
}
