package services

import (
	"context"
	"errors"
	"time"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"github.com/credisul/credisul-api/internal/statemachine"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Renegotiation option constants
const (
	RenegotiationExtend   = "extend"
	RenegotiationDiscount = "discount"
	RenegotiationNewTerms = "new_terms"
)

// RenegotiationParams holds the terms requested by the operator
type RenegotiationParams struct {
	Option          string    `json:"option"`
	ExtensionWeeks  int       `json:"extension_weeks"`
	DiscountPercent *float64  `json:"discount_percent"`
	DiscountFixed   *float64  `json:"discount_fixed"`
	NewInterestRate float64   `json:"new_interest_rate"`
	NewTermWeeks    int       `json:"new_term_weeks"`
	StartDate       time.Time `json:"start_date"`
}

// RenegotiationProposal is the preview of a renegotiation before confirmation
type RenegotiationProposal struct {
	LoanID            uint      `json:"loan_id"`
	Option            string    `json:"option"`
	CurrentBalance    float64   `json:"current_balance"`
	NewBalance        float64   `json:"new_balance"`
	TermWeeks         int       `json:"term_weeks"`
	InstallmentAmount float64   `json:"installment_amount"`
	FirstDueDate      time.Time `json:"first_due_date"`
	ArchivedCount     int       `json:"archived_count"`
}

// RenegotiationService reworks the schedule of a loan in arrears
type RenegotiationService struct {
	loanRepo repository.LoanRepository
	noteSvc  *NoteService
	schedule *ScheduleService
	db       *gorm.DB
}

// NewRenegotiationService creates a new renegotiation service
func NewRenegotiationService(loanRepo repository.LoanRepository, noteSvc *NoteService, db *gorm.DB) *RenegotiationService {
	return &RenegotiationService{
		loanRepo: loanRepo,
		noteSvc:  noteSvc,
		schedule: NewScheduleService(),
		db:       db,
	}
}

// resolveTerms applies one renegotiation option to the current balance and
// open installment count, producing the new balance and term.
func resolveTerms(params *RenegotiationParams, balance float64, pendingCount int) (float64, int, error) {
	newBalance := balance
	termWeeks := 0

	switch params.Option {
	case RenegotiationExtend:
		if params.ExtensionWeeks <= 0 {
			return 0, 0, NewValidationError("semanas de extensão devem ser maiores que zero")
		}
		termWeeks = pendingCount + params.ExtensionWeeks

	case RenegotiationDiscount:
		var discount float64
		switch {
		case params.DiscountPercent != nil:
			pct := *params.DiscountPercent
			if pct < 0 || pct > 100 {
				return 0, 0, NewValidationError("percentual de desconto deve estar entre 0 e 100")
			}
			discount = balance * pct / 100
		case params.DiscountFixed != nil:
			if *params.DiscountFixed < 0 {
				return 0, 0, NewValidationError("desconto fixo não pode ser negativo")
			}
			discount = *params.DiscountFixed
		default:
			return 0, 0, NewValidationError("informe um desconto percentual ou fixo")
		}
		newBalance = balance - discount
		if newBalance < 0 {
			newBalance = 0
		}
		termWeeks = pendingCount

	case RenegotiationNewTerms:
		if params.NewInterestRate > 0 && params.NewTermWeeks > 0 {
			newBalance = balance * (1 + params.NewInterestRate/100)
			termWeeks = params.NewTermWeeks
		} else if params.NewTermWeeks > 0 {
			termWeeks = params.NewTermWeeks
		} else {
			termWeeks = pendingCount
		}

	default:
		return 0, 0, NewValidationError("opção de renegociação inválida")
	}

	if termWeeks <= 0 {
		return 0, 0, NewValidationError("renegociação resultaria em prazo zero")
	}

	return newBalance, termWeeks, nil
}

// Propose previews a renegotiation without persisting anything
func (s *RenegotiationService) Propose(ctx context.Context, loanID uint, params *RenegotiationParams, today time.Time) (*RenegotiationProposal, error) {
	loan, err := s.loanRepo.FindByIDWithSchedule(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.buildProposal(loan, params, today)
}

func (s *RenegotiationService) buildProposal(loan *models.Loan, params *RenegotiationParams, today time.Time) (*RenegotiationProposal, error) {
	if !loan.MayRenegotiate() {
		return nil, NewUserError("empréstimo não pode ser renegociado no estado atual")
	}

	stats := models.ComputeScheduleStats(loan.Installments, today)
	if stats.Balance <= 0 || stats.OverdueCount == 0 {
		return nil, NewUserError("não há nada a renegociar: o empréstimo não possui saldo vencido")
	}

	newBalance, termWeeks, err := resolveTerms(params, stats.Balance, stats.PendingCount)
	if err != nil {
		return nil, err
	}

	startDate := params.StartDate
	if startDate.IsZero() {
		startDate = today
	}

	return &RenegotiationProposal{
		LoanID:            loan.ID,
		Option:            params.Option,
		CurrentBalance:    stats.Balance,
		NewBalance:        newBalance,
		TermWeeks:         termWeeks,
		InstallmentAmount: newBalance / float64(termWeeks),
		FirstDueDate:      NextBusinessDay(startDate.AddDate(0, 0, 7)),
		ArchivedCount:     stats.PendingCount,
	}, nil
}

// Confirm applies a renegotiation atomically: every open installment is
// archived as renegotiated, a fresh schedule for the new balance is created,
// and a late loan returns to active. Nothing is persisted if any step fails.
func (s *RenegotiationService) Confirm(ctx context.Context, loanID uint, params *RenegotiationParams, today time.Time) (*models.Loan, error) {
	var result *models.Loan

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("loan_id = ?", loan.ID).
			Order("due_date ASC, number ASC").
			Find(&loan.Installments).Error; err != nil {
			return err
		}

		proposal, err := s.buildProposal(&loan, params, today)
		if err != nil {
			return err
		}

		startDate := params.StartDate
		if startDate.IsZero() {
			startDate = today
		}

		// Archive all open installments
		openStatuses := []string{
			models.InstallmentStatusPending,
			models.InstallmentStatusLate,
			models.InstallmentStatusPartial,
		}
		if err := tx.Model(&models.Installment{}).
			Where("loan_id = ? AND status IN ?", loan.ID, openStatuses).
			Update("status", models.InstallmentStatusRenegotiated).Error; err != nil {
			return err
		}

		installments, err := s.schedule.GenerateFromBalance(&loan, proposal.NewBalance, proposal.TermWeeks, startDate)
		if err != nil {
			return err
		}
		if err := tx.Create(&installments).Error; err != nil {
			return err
		}

		loan.TermWeeks = proposal.TermWeeks
		if loan.Status == models.LoanStatusLate {
			lfsm := statemachine.NewLoanFSM(&loan)
			if err := lfsm.Recover(ctx); err != nil {
				return err
			}
		}
		if err := tx.Save(&loan).Error; err != nil {
			return err
		}

		result = &loan
		s.noteSvc.LogLoan(loan.ID, "Renegociação (%s): %d parcelas arquivadas, novo saldo %.2f em %d semanas",
			params.Option, proposal.ArchivedCount, proposal.NewBalance, proposal.TermWeeks)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Refinance closes the loan and opens a replacement for a larger amount. The
// new released amount is what remains after settling the old balance and must
// be positive.
func (s *RenegotiationService) Refinance(ctx context.Context, loanID uint, newAmount float64, termWeeks int, today time.Time) (*models.Loan, error) {
	var newLoan *models.Loan

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("loan_id = ?", loan.ID).Find(&loan.Installments).Error; err != nil {
			return err
		}

		if !loan.MayRenegotiate() {
			return NewUserError("empréstimo não pode ser refinanciado no estado atual")
		}
		if termWeeks <= 0 {
			return NewValidationError("prazo em semanas deve ser maior que zero")
		}

		stats := models.ComputeScheduleStats(loan.Installments, today)
		released := newAmount - stats.Balance
		if released <= 0 {
			return NewValidationError("valor do refinanciamento deve exceder o saldo devedor")
		}

		// Settle the old schedule as renegotiated
		openStatuses := []string{
			models.InstallmentStatusPending,
			models.InstallmentStatusLate,
			models.InstallmentStatusPartial,
		}
		if err := tx.Model(&models.Installment{}).
			Where("loan_id = ? AND status IN ?", loan.ID, openStatuses).
			Update("status", models.InstallmentStatusRenegotiated).Error; err != nil {
			return err
		}

		lfsm := statemachine.NewLoanFSM(&loan)
		if err := lfsm.Renegotiate(ctx); err != nil {
			return err
		}
		now := time.Now()
		loan.ClosedAt = &now
		if err := tx.Save(&loan).Error; err != nil {
			return err
		}

		originID := loan.ID
		replacement := models.Loan{
			GUID:               uuid.New().String(),
			CustomerID:         loan.CustomerID,
			ProductID:          loan.ProductID,
			RequestedAmount:    newAmount,
			ReleasedAmount:     released,
			InterestRate:       loan.InterestRate,
			InterestPeriodDays: loan.InterestPeriodDays,
			TermWeeks:          termWeeks,
			StartDate:          today,
			Status:             models.LoanStatusDraft,
			Currency:           loan.Currency,
			IsRenegotiation:    true,
			OriginLoanID:       &originID,
		}
		if err := tx.Create(&replacement).Error; err != nil {
			return err
		}

		newLoan = &replacement
		s.noteSvc.LogLoan(originID, "Refinanciado pelo empréstimo %s: liberado %.2f", replacement.GUID, released)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return newLoan, nil
}
