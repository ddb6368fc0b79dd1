package services

import (
	"context"
	"testing"
	"time"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

// Mock InstallmentRepository (embedding to avoid implementing all methods)
type mockInstallmentRepository struct {
	repository.InstallmentRepository
	mockFindByID  func(ctx context.Context, id uint) (*models.Installment, error)
	mockFindByIDs func(ctx context.Context, ids []uint) ([]models.Installment, error)
	mockUpdate    func(ctx context.Context, installment *models.Installment) error
}

func (m *mockInstallmentRepository) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockInstallmentRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Installment, error) {
	if m.mockFindByIDs != nil {
		return m.mockFindByIDs(ctx, ids)
	}
	return nil, nil
}

func (m *mockInstallmentRepository) Update(ctx context.Context, installment *models.Installment) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, installment)
	}
	return nil
}

// Mock InvoiceRepository
type mockInvoiceRepository struct {
	repository.InvoiceRepository
	mockFindByIDWithLines func(ctx context.Context, id uint) (*models.Invoice, error)
	mockUpdate            func(ctx context.Context, invoice *models.Invoice) error
}

func (m *mockInvoiceRepository) FindByIDWithLines(ctx context.Context, id uint) (*models.Invoice, error) {
	if m.mockFindByIDWithLines != nil {
		return m.mockFindByIDWithLines(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockInvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, invoice)
	}
	return nil
}

func productID() *uint {
	id := uint(1)
	return &id
}

func invoiceableInstallment(number int, customerID uint) models.Installment {
	return models.Installment{
		ID:         uint(number),
		Number:     number,
		CustomerID: customerID,
		Amount:     100,
		DueDate:    date(2026, 3, 9),
		Status:     models.InstallmentStatusPending,
		Loan:       models.Loan{ProductID: productID()},
	}
}

func TestCheckInvoiceable(t *testing.T) {
	today := date(2026, 3, 16)

	ok := invoiceableInstallment(1, 5)
	assert.NoError(t, checkInvoiceable(&ok, today))

	noProduct := invoiceableInstallment(1, 5)
	noProduct.Loan.ProductID = nil
	assert.True(t, IsValidationError(checkInvoiceable(&noProduct, today)))

	paid := invoiceableInstallment(1, 5)
	paid.AmountPaid = 100
	assert.True(t, IsUserError(checkInvoiceable(&paid, today)))

	invoiced := invoiceableInstallment(1, 5)
	inv := uint(3)
	invoiced.InvoiceID = &inv
	assert.True(t, IsUserError(checkInvoiceable(&invoiced, today)))

	renegotiated := invoiceableInstallment(1, 5)
	renegotiated.Status = models.InstallmentStatusRenegotiated
	assert.True(t, IsUserError(checkInvoiceable(&renegotiated, today)))
}

func TestCreateBatchInvoiceRejectsMixedCustomers(t *testing.T) {
	installments := []models.Installment{
		invoiceableInstallment(1, 5),
		invoiceableInstallment(2, 6),
	}
	repo := &mockInstallmentRepository{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.Installment, error) {
			return installments, nil
		},
	}
	svc := NewInvoicingService(nil, repo, nil, nil)

	// The batch must fail before anything is persisted; a nil db would panic
	// if the transaction were reached
	_, err := svc.CreateBatchInvoice(context.Background(), []uint{1, 2}, date(2026, 3, 16))
	assert.True(t, IsUserError(err))
	assert.Contains(t, err.Error(), "mesmo cliente")
}

func TestCreateBatchInvoiceRejectsWhenAnyInstallmentIneligible(t *testing.T) {
	paid := invoiceableInstallment(2, 5)
	paid.AmountPaid = 100
	installments := []models.Installment{invoiceableInstallment(1, 5), paid}

	repo := &mockInstallmentRepository{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.Installment, error) {
			return installments, nil
		},
	}
	svc := NewInvoicingService(nil, repo, nil, nil)

	_, err := svc.CreateBatchInvoice(context.Background(), []uint{1, 2}, date(2026, 3, 16))
	assert.True(t, IsUserError(err))
}

func TestCreateBatchInvoiceRejectsEmptySelection(t *testing.T) {
	svc := NewInvoicingService(nil, &mockInstallmentRepository{}, nil, nil)

	_, err := svc.CreateBatchInvoice(context.Background(), nil, date(2026, 3, 16))
	assert.True(t, IsValidationError(err))
}

func TestCreateBatchInvoiceRejectsMissingInstallments(t *testing.T) {
	repo := &mockInstallmentRepository{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.Installment, error) {
			return []models.Installment{invoiceableInstallment(1, 5)}, nil
		},
	}
	svc := NewInvoicingService(nil, repo, nil, nil)

	_, err := svc.CreateBatchInvoice(context.Background(), []uint{1, 99}, date(2026, 3, 16))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterInvoicePayment(t *testing.T) {
	var saved *models.Invoice
	repo := &mockInvoiceRepository{
		mockFindByIDWithLines: func(ctx context.Context, id uint) (*models.Invoice, error) {
			return &models.Invoice{
				ID:          1,
				State:       models.InvoiceStatePosted,
				AmountTotal: 300,
				AmountPaid:  100,
			}, nil
		},
		mockUpdate: func(ctx context.Context, invoice *models.Invoice) error {
			saved = invoice
			return nil
		},
	}
	svc := NewInvoicingService(repo, nil, nil, nil)

	invoice, err := svc.RegisterInvoicePayment(context.Background(), 1, 200)
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.InDelta(t, 300.0, invoice.AmountPaid, 0.001)
	assert.Equal(t, models.InvoicePaymentStatePaid, invoice.PaymentState)
}

func TestRegisterInvoicePaymentValidations(t *testing.T) {
	repo := &mockInvoiceRepository{
		mockFindByIDWithLines: func(ctx context.Context, id uint) (*models.Invoice, error) {
			return &models.Invoice{ID: 1, State: models.InvoiceStatePosted, AmountTotal: 300}, nil
		},
	}
	svc := NewInvoicingService(repo, nil, nil, nil)

	_, err := svc.RegisterInvoicePayment(context.Background(), 1, 0)
	assert.True(t, IsValidationError(err))

	_, err = svc.RegisterInvoicePayment(context.Background(), 1, 500)
	assert.True(t, IsValidationError(err))
}

func TestRegisterInvoicePaymentPartialStaysInPayment(t *testing.T) {
	repo := &mockInvoiceRepository{
		mockFindByIDWithLines: func(ctx context.Context, id uint) (*models.Invoice, error) {
			return &models.Invoice{ID: 1, State: models.InvoiceStatePosted, AmountTotal: 300}, nil
		},
	}
	svc := NewInvoicingService(repo, nil, nil, nil)

	invoice, err := svc.RegisterInvoicePayment(context.Background(), 1, 120)
	assert.NoError(t, err)
	assert.Equal(t, models.InvoicePaymentStateInPayment, invoice.PaymentState)
}

func reconcilableInstallment(number int, amount, paid float64, due time.Time) models.Installment {
	return models.Installment{
		Number:     number,
		Amount:     amount,
		AmountPaid: paid,
		DueDate:    due,
		Status:     models.InstallmentStatusPending,
	}
}

func TestApplyPaymentPoolCapsAtAmountOwed(t *testing.T) {
	today := date(2026, 3, 16)
	installments := []models.Installment{
		reconcilableInstallment(1, 100, 0, date(2026, 3, 2)),
	}

	applied, touched := applyPaymentPool(installments, 150, today)

	assert.InDelta(t, 100.0, applied, 0.001)
	assert.Equal(t, 1, touched)
	assert.InDelta(t, 100.0, installments[0].AmountPaid, 0.001)
	assert.Equal(t, models.InstallmentStatusPaid, installments[0].Status)
}

func TestApplyPaymentPoolOrderAndPartialTail(t *testing.T) {
	today := date(2026, 3, 16)
	installments := []models.Installment{
		reconcilableInstallment(1, 100, 40, date(2026, 3, 2)),
		reconcilableInstallment(2, 100, 0, date(2026, 3, 9)),
		reconcilableInstallment(3, 100, 0, date(2026, 3, 23)),
	}

	applied, touched := applyPaymentPool(installments, 110, today)

	assert.InDelta(t, 110.0, applied, 0.001)
	assert.Equal(t, 2, touched)

	// First installment settles and gets its payment date stamped
	assert.InDelta(t, 100.0, installments[0].AmountPaid, 0.001)
	assert.Equal(t, models.InstallmentStatusPaid, installments[0].Status)
	if assert.NotNil(t, installments[0].PaymentDate) {
		assert.Equal(t, today, *installments[0].PaymentDate)
	}

	// Second takes the rest but stays partial, without a payment date
	assert.InDelta(t, 50.0, installments[1].AmountPaid, 0.001)
	assert.Equal(t, models.InstallmentStatusPartial, installments[1].Status)
	assert.Nil(t, installments[1].PaymentDate)

	// Third is untouched
	assert.Zero(t, installments[2].AmountPaid)
}

func TestApplyPaymentPoolSkipsSettledInstallments(t *testing.T) {
	today := date(2026, 3, 16)
	installments := []models.Installment{
		reconcilableInstallment(1, 100, 100, date(2026, 3, 2)),
		reconcilableInstallment(2, 100, 0, date(2026, 3, 9)),
	}

	applied, touched := applyPaymentPool(installments, 60, today)

	assert.InDelta(t, 60.0, applied, 0.001)
	assert.Equal(t, 2, touched)
	assert.InDelta(t, 100.0, installments[0].AmountPaid, 0.001)
	assert.Nil(t, installments[0].PaymentDate)
	assert.InDelta(t, 60.0, installments[1].AmountPaid, 0.001)
}

func TestApplyPaymentPoolNeverAppliesTwice(t *testing.T) {
	today := date(2026, 3, 16)
	installments := []models.Installment{
		reconcilableInstallment(1, 100, 0, date(2026, 3, 2)),
	}

	// The sweep only distributes amount_paid minus amount_reconciled
	paid, reconciled := 70.0, 0.0
	applied, _ := applyPaymentPool(installments, paid-reconciled, today)
	reconciled += applied

	// A second sweep over the same invoice finds nothing left to distribute
	applied, touched := applyPaymentPool(installments, paid-reconciled, today)
	assert.Zero(t, applied)
	assert.Zero(t, touched)
	assert.InDelta(t, 70.0, installments[0].AmountPaid, 0.001)
}

func TestCancelPaidInvoiceRejected(t *testing.T) {
	repo := &mockInvoiceRepository{
		mockFindByIDWithLines: func(ctx context.Context, id uint) (*models.Invoice, error) {
			return &models.Invoice{
				ID:           1,
				State:        models.InvoiceStatePosted,
				PaymentState: models.InvoicePaymentStateInPayment,
				AmountTotal:  300,
				AmountPaid:   100,
			}, nil
		},
	}
	svc := NewInvoicingService(repo, nil, nil, nil)

	_, err := svc.CancelInvoice(context.Background(), 1)
	assert.True(t, IsUserError(err))
}
