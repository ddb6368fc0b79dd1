package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInstallmentStatusFor(t *testing.T) {
	today := date(2026, 3, 16)

	tests := []struct {
		name        string
		amount      float64
		amountPaid  float64
		dueDate     time.Time
		stored      string
		want        string
	}{
		{"unpaid before due date", 100, 0, date(2026, 3, 20), InstallmentStatusPending, InstallmentStatusPending},
		{"unpaid on due date", 100, 0, today, InstallmentStatusPending, InstallmentStatusPending},
		{"unpaid past due date", 100, 0, date(2026, 3, 10), InstallmentStatusPending, InstallmentStatusLate},
		{"partially paid past due", 100, 40, date(2026, 3, 10), InstallmentStatusPending, InstallmentStatusPartial},
		{"partially paid before due", 100, 40, date(2026, 3, 20), InstallmentStatusPending, InstallmentStatusPartial},
		{"fully paid", 100, 100, date(2026, 3, 10), InstallmentStatusPending, InstallmentStatusPaid},
		{"overpaid", 100, 120, date(2026, 3, 10), InstallmentStatusPending, InstallmentStatusPaid},
		{"renegotiated is sticky even when paid", 100, 100, date(2026, 3, 10), InstallmentStatusRenegotiated, InstallmentStatusRenegotiated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := Installment{
				Amount:     tt.amount,
				AmountPaid: tt.amountPaid,
				DueDate:    tt.dueDate,
				Status:     tt.stored,
			}
			assert.Equal(t, tt.want, inst.StatusFor(today))
		})
	}
}

func TestInstallmentStatusIgnoresTimeOfDay(t *testing.T) {
	// Due today at 23:59 against a reference of today at 00:01 is not late
	due := time.Date(2026, 3, 16, 23, 59, 0, 0, time.UTC)
	today := time.Date(2026, 3, 16, 0, 1, 0, 0, time.UTC)

	inst := Installment{Amount: 100, DueDate: due, Status: InstallmentStatusPending}
	assert.Equal(t, InstallmentStatusPending, inst.StatusFor(today))
}

func TestInstallmentDaysLate(t *testing.T) {
	today := date(2026, 3, 16)

	late := Installment{Amount: 100, DueDate: date(2026, 3, 11), Status: InstallmentStatusPending}
	assert.Equal(t, 5, late.DaysLate(today))

	partial := Installment{Amount: 100, AmountPaid: 30, DueDate: date(2026, 3, 11), Status: InstallmentStatusPending}
	assert.Equal(t, 5, partial.DaysLate(today))

	// Not yet due: no days accrue even for partial
	pendingPartial := Installment{Amount: 100, AmountPaid: 30, DueDate: date(2026, 3, 20), Status: InstallmentStatusPending}
	assert.Equal(t, 0, pendingPartial.DaysLate(today))

	paid := Installment{Amount: 100, AmountPaid: 100, DueDate: date(2026, 3, 11), Status: InstallmentStatusPending}
	assert.Equal(t, 0, paid.DaysLate(today))

	pending := Installment{Amount: 100, DueDate: date(2026, 3, 20), Status: InstallmentStatusPending}
	assert.Equal(t, 0, pending.DaysLate(today))
}

func TestInstallmentRecompute(t *testing.T) {
	today := date(2026, 3, 16)

	inst := Installment{Amount: 100, DueDate: date(2026, 3, 10), Status: InstallmentStatusPending}
	inst.Recompute(today)
	assert.Equal(t, InstallmentStatusLate, inst.Status)

	inst.AmountPaid = 100
	inst.Recompute(today)
	assert.Equal(t, InstallmentStatusPaid, inst.Status)
}

func TestInstallmentCanInvoice(t *testing.T) {
	today := date(2026, 3, 16)
	invoiceID := uint(7)

	tests := []struct {
		name string
		inst Installment
		want bool
	}{
		{"pending", Installment{Amount: 100, DueDate: date(2026, 3, 20), Status: InstallmentStatusPending}, true},
		{"late", Installment{Amount: 100, DueDate: date(2026, 3, 10), Status: InstallmentStatusPending}, true},
		{"partial", Installment{Amount: 100, AmountPaid: 50, DueDate: date(2026, 3, 10), Status: InstallmentStatusPending}, true},
		{"paid", Installment{Amount: 100, AmountPaid: 100, DueDate: date(2026, 3, 10), Status: InstallmentStatusPending}, false},
		{"renegotiated", Installment{Amount: 100, DueDate: date(2026, 3, 10), Status: InstallmentStatusRenegotiated}, false},
		{"already invoiced", Installment{Amount: 100, DueDate: date(2026, 3, 20), Status: InstallmentStatusPending, InvoiceID: &invoiceID}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.inst.CanInvoice(today))
		})
	}
}

func TestInstallmentRemaining(t *testing.T) {
	inst := Installment{Amount: 100, AmountPaid: 37.5}
	assert.InDelta(t, 62.5, inst.Remaining(), 0.001)
}
