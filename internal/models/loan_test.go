package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoanTotalAmount(t *testing.T) {
	// Weekly compounding: 1000 at 10% per week over 4 weeks
	loan := Loan{ReleasedAmount: 1000, InterestRate: 10, InterestPeriodDays: 7, TermWeeks: 4}
	assert.InDelta(t, 1464.10, loan.TotalAmount(), 0.01)
	assert.InDelta(t, 366.025, loan.InstallmentAmount(), 0.001)
}

func TestLoanTotalAmountBiweeklyPeriod(t *testing.T) {
	// 14-day period over 4 weeks means 2 compounding steps
	loan := Loan{ReleasedAmount: 1000, InterestRate: 10, InterestPeriodDays: 14, TermWeeks: 4}
	assert.InDelta(t, 1210.0, loan.TotalAmount(), 0.01)
}

func TestLoanTotalAmountZeroPeriodFallsBackToWeekly(t *testing.T) {
	loan := Loan{ReleasedAmount: 1000, InterestRate: 10, InterestPeriodDays: 0, TermWeeks: 4}
	assert.InDelta(t, 1464.10, loan.TotalAmount(), 0.01)
}

func TestLoanTotalAmountDegenerateCases(t *testing.T) {
	assert.Zero(t, (&Loan{ReleasedAmount: 0, InterestRate: 10, TermWeeks: 4}).TotalAmount())
	assert.Zero(t, (&Loan{ReleasedAmount: -100, InterestRate: 10, TermWeeks: 4}).TotalAmount())
	assert.Zero(t, (&Loan{ReleasedAmount: 1000, InterestRate: 10, TermWeeks: 0}).TotalAmount())
	assert.Zero(t, (&Loan{ReleasedAmount: 1000, TermWeeks: 0}).InstallmentAmount())
}

func TestLoanZeroInterest(t *testing.T) {
	loan := Loan{ReleasedAmount: 1000, InterestRate: 0, InterestPeriodDays: 7, TermWeeks: 4}
	assert.InDelta(t, 1000.0, loan.TotalAmount(), 0.001)
	assert.InDelta(t, 250.0, loan.InstallmentAmount(), 0.001)
}

func TestLoanStateGuards(t *testing.T) {
	assert.True(t, (&Loan{Status: LoanStatusDraft}).MayActivate())
	assert.True(t, (&Loan{Status: LoanStatusActive}).MayActivate())
	assert.False(t, (&Loan{Status: LoanStatusPaid}).MayActivate())

	assert.True(t, (&Loan{Status: LoanStatusActive}).MayMarkLate())
	assert.False(t, (&Loan{Status: LoanStatusLate}).MayMarkLate())

	assert.True(t, (&Loan{Status: LoanStatusActive}).MaySettle())
	assert.True(t, (&Loan{Status: LoanStatusLate}).MaySettle())
	assert.False(t, (&Loan{Status: LoanStatusDraft}).MaySettle())

	assert.True(t, (&Loan{Status: LoanStatusLate}).MayRenegotiate())
	assert.False(t, (&Loan{Status: LoanStatusRenegotiated}).MayRenegotiate())
	assert.False(t, (&Loan{Status: LoanStatusDefaulted}).MayDefault())
}
