package models

import "time"

// ScheduleStats aggregates the state of a loan's installment schedule.
// All fields are derived together in one pass so balance, counts and days
// overdue are always consistent with each other.
type ScheduleStats struct {
	Balance      float64 `json:"balance"`
	PendingCount int     `json:"pending_count"`
	OverdueCount int     `json:"overdue_count"`
	PaidCount    int     `json:"paid_count"`
	DaysOverdue  int     `json:"days_overdue"`
}

// ComputeScheduleStats derives schedule aggregates against the given reference
// date. Renegotiated installments are archived: they are skipped for balance
// and counts but still present in the slice for audit history.
//
// Balance is the sum of (amount - amount paid) over non-renegotiated
// installments; days overdue comes from the oldest (minimum due date) overdue
// installment, 0 when nothing is overdue.
func ComputeScheduleStats(installments []Installment, today time.Time) ScheduleStats {
	var stats ScheduleStats
	var oldestOverdue *Installment

	for idx := range installments {
		inst := &installments[idx]
		status := inst.StatusFor(today)
		if status == InstallmentStatusRenegotiated {
			continue
		}

		stats.Balance += inst.Amount - inst.AmountPaid

		switch status {
		case InstallmentStatusPaid:
			stats.PaidCount++
		case InstallmentStatusPending:
			stats.PendingCount++
		case InstallmentStatusLate, InstallmentStatusPartial:
			stats.PendingCount++
			stats.OverdueCount++
			if oldestOverdue == nil || inst.DueDate.Before(oldestOverdue.DueDate) {
				oldestOverdue = inst
			}
		}
	}

	if oldestOverdue != nil {
		stats.DaysOverdue = oldestOverdue.DaysLate(today)
	}

	return stats
}
