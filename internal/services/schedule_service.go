package services

import (
	"time"

	"github.com/credisul/credisul-api/internal/models"
)

// ScheduleService builds weekly installment schedules
type ScheduleService struct{}

// NewScheduleService creates a new schedule service
func NewScheduleService() *ScheduleService {
	return &ScheduleService{}
}

// NextBusinessDay advances a date past the weekend. Saturday moves 2 days,
// Sunday moves 1; weekdays pass through unchanged.
func NextBusinessDay(date time.Time) time.Time {
	switch date.Weekday() {
	case time.Saturday:
		return date.AddDate(0, 0, 2)
	case time.Sunday:
		return date.AddDate(0, 0, 1)
	default:
		return date
	}
}

// Generate builds the weekly schedule for a loan. The first due date is one
// week after the start date, pushed to Monday when it lands on a weekend; each
// following due date is one week after the previous (adjusted) date, pushed
// again when needed. Amounts are an even split of the total payable.
func (s *ScheduleService) Generate(loan *models.Loan) ([]models.Installment, error) {
	if loan.TermWeeks <= 0 {
		return nil, NewValidationError("prazo em semanas deve ser maior que zero")
	}
	if loan.ReleasedAmount <= 0 {
		return nil, NewValidationError("valor liberado deve ser maior que zero")
	}
	if loan.StartDate.IsZero() {
		return nil, NewValidationError("data de início é obrigatória")
	}

	amount := loan.InstallmentAmount()
	installments := make([]models.Installment, 0, loan.TermWeeks)

	dueDate := NextBusinessDay(loan.StartDate.AddDate(0, 0, 7))
	for i := 0; i < loan.TermWeeks; i++ {
		if i > 0 {
			dueDate = NextBusinessDay(dueDate.AddDate(0, 0, 7))
		}
		installments = append(installments, models.Installment{
			LoanID:     loan.ID,
			CustomerID: loan.CustomerID,
			Number:     i + 1,
			DueDate:    dueDate,
			Amount:     amount,
			Status:     models.InstallmentStatusPending,
		})
	}

	return installments, nil
}

// GenerateFromBalance builds a renegotiated schedule: a given balance spread
// evenly over termWeeks, starting one week after startDate with the same
// weekend adjustment as Generate.
func (s *ScheduleService) GenerateFromBalance(loan *models.Loan, balance float64, termWeeks int, startDate time.Time) ([]models.Installment, error) {
	if termWeeks <= 0 {
		return nil, NewValidationError("prazo em semanas deve ser maior que zero")
	}
	if balance <= 0 {
		return nil, NewValidationError("saldo devedor deve ser maior que zero")
	}

	amount := balance / float64(termWeeks)
	installments := make([]models.Installment, 0, termWeeks)

	dueDate := NextBusinessDay(startDate.AddDate(0, 0, 7))
	for i := 0; i < termWeeks; i++ {
		if i > 0 {
			dueDate = NextBusinessDay(dueDate.AddDate(0, 0, 7))
		}
		installments = append(installments, models.Installment{
			LoanID:     loan.ID,
			CustomerID: loan.CustomerID,
			Number:     i + 1,
			DueDate:    dueDate,
			Amount:     amount,
			Status:     models.InstallmentStatusPending,
		})
	}

	return installments, nil
}
