package services

import (
	"testing"
	"time"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextBusinessDay(t *testing.T) {
	// 2026-03-14 is a Saturday, 2026-03-15 a Sunday
	assert.Equal(t, date(2026, 3, 16), NextBusinessDay(date(2026, 3, 14)))
	assert.Equal(t, date(2026, 3, 16), NextBusinessDay(date(2026, 3, 15)))
	assert.Equal(t, date(2026, 3, 16), NextBusinessDay(date(2026, 3, 16)))
	assert.Equal(t, date(2026, 3, 20), NextBusinessDay(date(2026, 3, 20)))
}

func TestGenerateWeeklySchedule(t *testing.T) {
	svc := NewScheduleService()
	loan := &models.Loan{
		ID:                 1,
		CustomerID:         2,
		ReleasedAmount:     1000,
		InterestRate:       10,
		InterestPeriodDays: 7,
		TermWeeks:          4,
		StartDate:          date(2026, 3, 10), // Tuesday
	}

	installments, err := svc.Generate(loan)
	assert.NoError(t, err)
	assert.Len(t, installments, 4)

	expectedDates := []time.Time{
		date(2026, 3, 17),
		date(2026, 3, 24),
		date(2026, 3, 31),
		date(2026, 4, 7),
	}
	for i, inst := range installments {
		assert.Equal(t, i+1, inst.Number)
		assert.Equal(t, uint(1), inst.LoanID)
		assert.Equal(t, uint(2), inst.CustomerID)
		assert.Equal(t, expectedDates[i], inst.DueDate)
		assert.Equal(t, models.InstallmentStatusPending, inst.Status)
		assert.InDelta(t, loan.InstallmentAmount(), inst.Amount, 0.001)
	}
}

func TestGenerateSkipsWeekends(t *testing.T) {
	svc := NewScheduleService()
	loan := &models.Loan{
		ReleasedAmount: 1000,
		InterestRate:   10,
		TermWeeks:      3,
		StartDate:      date(2026, 3, 7), // Saturday; start+7d is also a Saturday
	}

	installments, err := svc.Generate(loan)
	assert.NoError(t, err)

	// First due date pushed from Saturday 03-14 to Monday 03-16, and the
	// following weeks inherit the adjusted anchor
	assert.Equal(t, date(2026, 3, 16), installments[0].DueDate)
	assert.Equal(t, date(2026, 3, 23), installments[1].DueDate)
	assert.Equal(t, date(2026, 3, 30), installments[2].DueDate)

	for _, inst := range installments {
		weekday := inst.DueDate.Weekday()
		assert.NotEqual(t, time.Saturday, weekday)
		assert.NotEqual(t, time.Sunday, weekday)
	}
}

func TestGenerateDueDatesStrictlyIncrease(t *testing.T) {
	svc := NewScheduleService()
	loan := &models.Loan{
		ReleasedAmount: 5000,
		InterestRate:   10,
		TermWeeks:      12,
		StartDate:      date(2026, 3, 6), // Friday
	}

	installments, err := svc.Generate(loan)
	assert.NoError(t, err)
	assert.Len(t, installments, 12)

	for i := 1; i < len(installments); i++ {
		assert.True(t, installments[i].DueDate.After(installments[i-1].DueDate),
			"installment %d not after %d", i+1, i)
	}
}

func TestGenerateValidations(t *testing.T) {
	svc := NewScheduleService()

	_, err := svc.Generate(&models.Loan{ReleasedAmount: 1000, TermWeeks: 0, StartDate: date(2026, 3, 10)})
	assert.True(t, IsValidationError(err))

	_, err = svc.Generate(&models.Loan{ReleasedAmount: 0, TermWeeks: 4, StartDate: date(2026, 3, 10)})
	assert.True(t, IsValidationError(err))

	_, err = svc.Generate(&models.Loan{ReleasedAmount: 1000, TermWeeks: 4})
	assert.True(t, IsValidationError(err))
}

func TestGenerateFromBalance(t *testing.T) {
	svc := NewScheduleService()
	loan := &models.Loan{ID: 9, CustomerID: 3}

	installments, err := svc.GenerateFromBalance(loan, 800, 5, date(2026, 3, 10))
	assert.NoError(t, err)
	assert.Len(t, installments, 5)
	assert.Equal(t, date(2026, 3, 17), installments[0].DueDate)

	for _, inst := range installments {
		assert.InDelta(t, 160.0, inst.Amount, 0.001)
		assert.Equal(t, uint(9), inst.LoanID)
	}

	_, err = svc.GenerateFromBalance(loan, 0, 5, date(2026, 3, 10))
	assert.True(t, IsValidationError(err))

	_, err = svc.GenerateFromBalance(loan, 800, 0, date(2026, 3, 10))
	assert.True(t, IsValidationError(err))
}
