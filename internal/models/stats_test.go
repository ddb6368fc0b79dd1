package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildSchedule() []Installment {
	// Reference date in the tests is 2026-03-16
	return []Installment{
		{Number: 1, Amount: 100, AmountPaid: 100, DueDate: date(2026, 2, 23), Status: InstallmentStatusPaid},
		{Number: 2, Amount: 100, AmountPaid: 0, DueDate: date(2026, 3, 2), Status: InstallmentStatusPending},  // late
		{Number: 3, Amount: 100, AmountPaid: 40, DueDate: date(2026, 3, 9), Status: InstallmentStatusPending}, // partial, overdue
		{Number: 4, Amount: 100, AmountPaid: 0, DueDate: date(2026, 3, 23), Status: InstallmentStatusPending}, // pending
		{Number: 5, Amount: 100, AmountPaid: 0, DueDate: date(2026, 3, 30), Status: InstallmentStatusRenegotiated},
	}
}

func TestComputeScheduleStats(t *testing.T) {
	today := date(2026, 3, 16)
	stats := ComputeScheduleStats(buildSchedule(), today)

	// Renegotiated installment is excluded from every aggregate
	assert.InDelta(t, 260.0, stats.Balance, 0.001)
	assert.Equal(t, 3, stats.PendingCount)
	assert.Equal(t, 2, stats.OverdueCount)
	assert.Equal(t, 1, stats.PaidCount)

	// Days overdue comes from the oldest overdue installment (due 2026-03-02)
	assert.Equal(t, 14, stats.DaysOverdue)
}

func TestComputeScheduleStatsNothingOverdue(t *testing.T) {
	today := date(2026, 2, 25)
	installments := []Installment{
		{Number: 1, Amount: 100, AmountPaid: 100, DueDate: date(2026, 2, 23), Status: InstallmentStatusPending},
		{Number: 2, Amount: 100, DueDate: date(2026, 3, 2), Status: InstallmentStatusPending},
	}

	stats := ComputeScheduleStats(installments, today)
	assert.InDelta(t, 100.0, stats.Balance, 0.001)
	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 0, stats.OverdueCount)
	assert.Equal(t, 0, stats.DaysOverdue)
}

func TestComputeScheduleStatsEmpty(t *testing.T) {
	stats := ComputeScheduleStats(nil, date(2026, 3, 16))
	assert.Zero(t, stats.Balance)
	assert.Zero(t, stats.PendingCount)
	assert.Zero(t, stats.OverdueCount)
	assert.Zero(t, stats.PaidCount)
	assert.Zero(t, stats.DaysOverdue)
}

func TestBalanceReflectsPartialPayments(t *testing.T) {
	today := date(2026, 3, 16)
	installments := buildSchedule()

	before := ComputeScheduleStats(installments, today)
	installments[3].AmountPaid = 25
	after := ComputeScheduleStats(installments, today)

	assert.InDelta(t, before.Balance-25, after.Balance, 0.001)
}
