package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"github.com/credisul/credisul-api/internal/statemachine"
	"github.com/credisul/credisul-api/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoanService handles loan lifecycle and schedule generation
type LoanService struct {
	repo         repository.LoanRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	noteSvc      *NoteService
	schedule     *ScheduleService
	db           *gorm.DB
}

// NewLoanService creates a new loan service
func NewLoanService(
	repo repository.LoanRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	noteSvc *NoteService,
	db *gorm.DB,
) *LoanService {
	return &LoanService{
		repo:         repo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		noteSvc:      noteSvc,
		schedule:     NewScheduleService(),
		db:           db,
	}
}

// FindByID gets a loan by ID
func (s *LoanService) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return loan, err
}

// FindByIDWithSchedule gets a loan with its installments ordered by due date
func (s *LoanService) FindByIDWithSchedule(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.repo.FindByIDWithSchedule(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return loan, err
}

// FindByGUID gets a loan by its contract GUID
func (s *LoanService) FindByGUID(ctx context.Context, guid string) (*models.Loan, error) {
	loan, err := s.repo.FindByGUID(ctx, guid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return loan, err
}

// FindByCustomer returns all loans of a customer, newest first
func (s *LoanService) FindByCustomer(ctx context.Context, customerID uint) ([]models.Loan, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.FindByCustomer(ctx, customerID)
}

// List returns loans matching the query
func (s *LoanService) List(ctx context.Context, query *repository.LoanQuery) ([]models.Loan, int64, error) {
	return s.repo.List(ctx, query)
}

// Create registers a new draft loan. Unset financial terms are filled from
// the loan product when one is referenced.
func (s *LoanService) Create(ctx context.Context, loan *models.Loan) error {
	if _, err := s.customerRepo.FindByID(ctx, loan.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("cliente não encontrado")
		}
		return err
	}

	if loan.ProductID != nil {
		product, err := s.productRepo.FindByID(ctx, *loan.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewValidationError("produto de empréstimo não encontrado")
			}
			return err
		}
		if !product.IsLoanProduct || !product.Active {
			return NewValidationError("produto não está configurado como produto de empréstimo")
		}
		product.ApplyDefaults(loan)
	}

	if loan.RequestedAmount <= 0 {
		return NewValidationError("valor solicitado deve ser maior que zero")
	}
	if loan.TermWeeks <= 0 {
		return NewValidationError("prazo em semanas deve ser maior que zero")
	}
	if loan.StartDate.IsZero() {
		loan.StartDate = time.Now()
	}

	loan.GUID = uuid.New().String()
	loan.Status = models.LoanStatusDraft

	if err := s.repo.Create(ctx, loan); err != nil {
		return err
	}

	s.noteSvc.LogLoan(loan.ID, "Empréstimo criado: %s", loan.GUID)
	return nil
}

// GenerateInstallments builds and persists the weekly schedule for a loan.
// Any existing installments that are not paid and not renegotiated are
// replaced atomically; a draft loan is activated in the same transaction.
func (s *LoanService) GenerateInstallments(ctx context.Context, loanID uint) (*models.Loan, error) {
	loan, err := s.repo.FindByIDWithSchedule(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !loan.MayActivate() {
		return nil, NewUserError(fmt.Sprintf("não é possível gerar parcelas para empréstimo %s", loan.Status))
	}
	if loan.ReleasedAmount <= 0 {
		return nil, NewValidationError("valor liberado deve ser maior que zero")
	}

	installments, err := s.schedule.Generate(loan)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Terminal installments survive regeneration
		if err := tx.Where("loan_id = ? AND status NOT IN ?", loan.ID,
			[]string{models.InstallmentStatusPaid, models.InstallmentStatusRenegotiated}).
			Delete(&models.Installment{}).Error; err != nil {
			return err
		}

		if err := tx.Create(&installments).Error; err != nil {
			return err
		}

		if loan.Status == models.LoanStatusDraft {
			lfsm := statemachine.NewLoanFSM(loan)
			if err := lfsm.Activate(ctx); err != nil {
				return err
			}
			if err := tx.Model(&models.Loan{}).Where("id = ?", loan.ID).
				Update("status", loan.Status).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.noteSvc.LogLoan(loan.ID, "Cronograma gerado: %d parcelas de %.2f", len(installments), loan.InstallmentAmount())
	return s.repo.FindByIDWithSchedule(ctx, loanID)
}

// Summary derives the schedule aggregates for a loan against today
func (s *LoanService) Summary(ctx context.Context, loanID uint, today time.Time) (*models.ScheduleStats, error) {
	loan, err := s.repo.FindByIDWithSchedule(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	stats := models.ComputeScheduleStats(loan.Installments, today)
	return &stats, nil
}

// MarkDefaulted flags a loan as defaulted. This is a manual decision, never
// applied by the sweeps.
func (s *LoanService) MarkDefaulted(ctx context.Context, loanID uint) (*models.Loan, error) {
	loan, err := s.repo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	lfsm := statemachine.NewLoanFSM(loan)
	if err := lfsm.MarkDefaulted(ctx); err != nil {
		return nil, NewUserError(err.Error())
	}

	now := time.Now()
	loan.ClosedAt = &now
	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, err
	}

	s.noteSvc.LogLoan(loan.ID, "Empréstimo marcado como inadimplente")
	return loan, nil
}

// RefreshLoanStatuses is the periodic sweep that keeps loan statuses in line
// with their schedules: active loans with an unpaid overdue installment go
// late, active or late loans with everything paid go paid.
func (s *LoanService) RefreshLoanStatuses(ctx context.Context) error {
	today := time.Now()
	loans, err := s.repo.FindByStatus(ctx, models.LoanStatusActive, models.LoanStatusLate)
	if err != nil {
		return err
	}

	var flagged, settled int
	for i := range loans {
		loan := &loans[i]
		stats := models.ComputeScheduleStats(loan.Installments, today)

		switch {
		case stats.PendingCount == 0 && stats.PaidCount > 0 && stats.Balance <= 0:
			lfsm := statemachine.NewLoanFSM(loan)
			if err := lfsm.Settle(ctx); err != nil {
				logger.Warn(fmt.Sprintf("loan %d: %v", loan.ID, err))
				continue
			}
			now := time.Now()
			loan.ClosedAt = &now
			if err := s.repo.Update(ctx, loan); err != nil {
				logger.Error(fmt.Sprintf("loan %d: failed to settle: %v", loan.ID, err))
				continue
			}
			s.noteSvc.LogLoan(loan.ID, "Empréstimo quitado")
			settled++

		case loan.Status == models.LoanStatusActive && stats.OverdueCount > 0:
			lfsm := statemachine.NewLoanFSM(loan)
			if err := lfsm.MarkLate(ctx); err != nil {
				logger.Warn(fmt.Sprintf("loan %d: %v", loan.ID, err))
				continue
			}
			if err := s.repo.Update(ctx, loan); err != nil {
				logger.Error(fmt.Sprintf("loan %d: failed to mark late: %v", loan.ID, err))
				continue
			}
			s.noteSvc.LogLoan(loan.ID, "Empréstimo em atraso: %d parcelas vencidas", stats.OverdueCount)
			flagged++
		}
	}

	if flagged > 0 || settled > 0 {
		logger.Info(fmt.Sprintf("loan status refresh: %d marked late, %d settled", flagged, settled))
	}
	return nil
}
