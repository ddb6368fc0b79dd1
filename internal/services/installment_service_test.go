package services

import (
	"context"
	"testing"

	"github.com/credisul/credisul-api/internal/jobs"
	"github.com/credisul/credisul-api/internal/models"
	"github.com/stretchr/testify/assert"
)

// Mock NoteRepository
type mockNoteRepository struct {
	mockCreate func(ctx context.Context, note *models.Note) error
}

func (m *mockNoteRepository) Create(ctx context.Context, note *models.Note) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, note)
	}
	return nil
}

func (m *mockNoteRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Note, error) {
	return nil, nil
}

func (m *mockNoteRepository) FindByInstallment(ctx context.Context, installmentID uint) ([]models.Note, error) {
	return nil, nil
}

func testNoteService(t *testing.T) *NoteService {
	t.Helper()
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)
	return NewNoteService(&mockNoteRepository{}, worker)
}

func openInstallment() *models.Installment {
	return &models.Installment{
		ID:      1,
		Amount:  100,
		DueDate: date(2026, 3, 9),
		Status:  models.InstallmentStatusPending,
	}
}

func TestRegisterPaymentSettlesInstallment(t *testing.T) {
	var saved *models.Installment
	repo := &mockInstallmentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Installment, error) {
			return openInstallment(), nil
		},
		mockUpdate: func(ctx context.Context, installment *models.Installment) error {
			saved = installment
			return nil
		},
	}
	svc := NewInstallmentService(repo, testNoteService(t))

	paymentDate := date(2026, 3, 16)
	installment, err := svc.RegisterPayment(context.Background(), 1, paymentDate)
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.InDelta(t, 100.0, installment.AmountPaid, 0.001)
	assert.Equal(t, models.InstallmentStatusPaid, installment.Status)
	assert.Equal(t, paymentDate, *installment.PaymentDate)
}

func TestRegisterPaymentRejectsSettledInstallment(t *testing.T) {
	repo := &mockInstallmentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Installment, error) {
			inst := openInstallment()
			inst.AmountPaid = 100
			return inst, nil
		},
	}
	svc := NewInstallmentService(repo, testNoteService(t))

	_, err := svc.RegisterPayment(context.Background(), 1, date(2026, 3, 16))
	assert.True(t, IsUserError(err))
}

func TestRegisterPartialPayment(t *testing.T) {
	repo := &mockInstallmentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Installment, error) {
			return openInstallment(), nil
		},
	}
	svc := NewInstallmentService(repo, testNoteService(t))

	// Past due with a partial amount lands on partial status
	installment, err := svc.RegisterPartialPayment(context.Background(), 1, 40, date(2026, 3, 16))
	assert.NoError(t, err)
	assert.InDelta(t, 40.0, installment.AmountPaid, 0.001)
	assert.Equal(t, models.InstallmentStatusPartial, installment.Status)

	// Paying exactly the remaining settles it
	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Installment, error) {
		inst := openInstallment()
		inst.AmountPaid = 40
		return inst, nil
	}
	installment, err = svc.RegisterPartialPayment(context.Background(), 1, 60, date(2026, 3, 16))
	assert.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, installment.Status)
}

func TestRegisterPartialPaymentValidations(t *testing.T) {
	repo := &mockInstallmentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Installment, error) {
			return openInstallment(), nil
		},
	}
	svc := NewInstallmentService(repo, testNoteService(t))
	today := date(2026, 3, 16)

	_, err := svc.RegisterPartialPayment(context.Background(), 1, 0, today)
	assert.True(t, IsValidationError(err))

	_, err = svc.RegisterPartialPayment(context.Background(), 1, -10, today)
	assert.True(t, IsValidationError(err))

	_, err = svc.RegisterPartialPayment(context.Background(), 1, 150, today)
	assert.True(t, IsValidationError(err))
}

func TestPaymentsRejectedOnRenegotiatedInstallment(t *testing.T) {
	repo := &mockInstallmentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Installment, error) {
			inst := openInstallment()
			inst.Status = models.InstallmentStatusRenegotiated
			return inst, nil
		},
	}
	svc := NewInstallmentService(repo, testNoteService(t))
	today := date(2026, 3, 16)

	_, err := svc.RegisterPayment(context.Background(), 1, today)
	assert.True(t, IsUserError(err))

	_, err = svc.RegisterPartialPayment(context.Background(), 1, 50, today)
	assert.True(t, IsUserError(err))
}
