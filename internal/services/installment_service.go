package services

import (
	"context"
	"errors"
	"time"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"gorm.io/gorm"
)

// InstallmentService handles installment queries and payment registration
type InstallmentService struct {
	repo    repository.InstallmentRepository
	noteSvc *NoteService
}

// NewInstallmentService creates a new installment service
func NewInstallmentService(repo repository.InstallmentRepository, noteSvc *NoteService) *InstallmentService {
	return &InstallmentService{repo: repo, noteSvc: noteSvc}
}

// FindByID gets an installment by ID
func (s *InstallmentService) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	installment, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return installment, err
}

// List returns installments matching the query
func (s *InstallmentService) List(ctx context.Context, query *repository.InstallmentQuery) ([]models.Installment, int64, error) {
	return s.repo.List(ctx, query)
}

// RegisterPayment settles the full outstanding amount of an installment
func (s *InstallmentService) RegisterPayment(ctx context.Context, id uint, paymentDate time.Time) (*models.Installment, error) {
	installment, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if installment.Status == models.InstallmentStatusRenegotiated {
		return nil, NewUserError("parcela renegociada não aceita pagamentos")
	}
	if installment.Remaining() <= 0 {
		return nil, NewUserError("parcela já está paga")
	}

	installment.AmountPaid = installment.Amount
	installment.PaymentDate = &paymentDate
	installment.Recompute(paymentDate)

	if err := s.repo.Update(ctx, installment); err != nil {
		return nil, err
	}

	s.noteSvc.LogInstallment(installment.ID, "Pagamento integral registrado: %.2f", installment.Amount)
	return installment, nil
}

// RegisterPartialPayment applies a partial amount to an installment. The
// amount must be positive and cannot exceed what is still owed.
func (s *InstallmentService) RegisterPartialPayment(ctx context.Context, id uint, amount float64, paymentDate time.Time) (*models.Installment, error) {
	installment, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if installment.Status == models.InstallmentStatusRenegotiated {
		return nil, NewUserError("parcela renegociada não aceita pagamentos")
	}
	if amount <= 0 {
		return nil, NewValidationError("valor do pagamento deve ser maior que zero")
	}
	remaining := installment.Remaining()
	if remaining <= 0 {
		return nil, NewUserError("parcela já está paga")
	}
	if amount > remaining {
		return nil, NewValidationError("valor do pagamento excede o saldo da parcela")
	}

	installment.AmountPaid += amount
	installment.PaymentDate = &paymentDate
	installment.Recompute(paymentDate)

	if err := s.repo.Update(ctx, installment); err != nil {
		return nil, err
	}

	s.noteSvc.LogInstallment(installment.ID, "Pagamento parcial registrado: %.2f (saldo %.2f)",
		amount, installment.Remaining())
	return installment, nil
}

// RefreshStatuses recomputes the persisted status of unpaid installments that
// slipped past their due date. Runs as part of the loan status sweep so stored
// statuses converge on the derived ones.
func (s *InstallmentService) RefreshStatuses(ctx context.Context) error {
	today := time.Now()
	overdue, err := s.repo.FindOverdue(ctx, today)
	if err != nil {
		return err
	}

	for i := range overdue {
		installment := &overdue[i]
		derived := installment.StatusFor(today)
		if installment.Status == derived {
			continue
		}
		installment.Status = derived
		if err := s.repo.Update(ctx, installment); err != nil {
			return err
		}
	}

	return nil
}
