package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"github.com/credisul/credisul-api/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Batch invoices over this many installments collapse into one aggregated line
const batchAggregationThreshold = 10

// InvoicingService bridges installments to customer invoices
type InvoicingService struct {
	repo            repository.InvoiceRepository
	installmentRepo repository.InstallmentRepository
	noteSvc         *NoteService
	db              *gorm.DB
}

// NewInvoicingService creates a new invoicing service
func NewInvoicingService(
	repo repository.InvoiceRepository,
	installmentRepo repository.InstallmentRepository,
	noteSvc *NoteService,
	db *gorm.DB,
) *InvoicingService {
	return &InvoicingService{
		repo:            repo,
		installmentRepo: installmentRepo,
		noteSvc:         noteSvc,
		db:              db,
	}
}

// FindByID gets an invoice with its lines
func (s *InvoicingService) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	invoice, err := s.repo.FindByIDWithLines(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return invoice, err
}

// List returns invoices matching the query
func (s *InvoicingService) List(ctx context.Context, query *repository.InvoiceQuery) ([]models.Invoice, int64, error) {
	return s.repo.List(ctx, query)
}

// InstallmentsForInvoice returns the installments covered by an invoice in
// due-date order
func (s *InvoicingService) InstallmentsForInvoice(ctx context.Context, invoiceID uint) ([]models.Installment, error) {
	return s.installmentRepo.FindByInvoice(ctx, invoiceID)
}

// checkInvoiceable validates that one installment can be billed
func checkInvoiceable(installment *models.Installment, today time.Time) error {
	if installment.Loan.ProductID == nil {
		return NewValidationError(fmt.Sprintf(
			"parcela %d: o empréstimo não possui produto de empréstimo configurado", installment.Number))
	}
	if installment.StatusFor(today) == models.InstallmentStatusRenegotiated {
		return NewUserError(fmt.Sprintf("parcela %d já foi renegociada", installment.Number))
	}
	if installment.Remaining() <= 0 {
		return NewUserError(fmt.Sprintf("parcela %d já está paga", installment.Number))
	}
	if installment.InvoiceID != nil {
		return NewUserError(fmt.Sprintf("parcela %d já está faturada", installment.Number))
	}
	return nil
}

// CreateInvoice raises an invoice for a single installment
func (s *InvoicingService) CreateInvoice(ctx context.Context, installmentID uint, today time.Time) (*models.Invoice, error) {
	installment, err := s.installmentRepo.FindByID(ctx, installmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := checkInvoiceable(installment, today); err != nil {
		return nil, err
	}

	var invoice models.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice = models.Invoice{
			Reference:   uuid.New().String(),
			CustomerID:  installment.CustomerID,
			State:       models.InvoiceStatePosted,
			DueDate:     installment.DueDate,
			AmountTotal: installment.Remaining(),
			Lines: []models.InvoiceLine{{
				Description: installment.DisplayName(),
				Quantity:    1,
				UnitPrice:   installment.Remaining(),
			}},
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		return tx.Model(&models.Installment{}).
			Where("id = ?", installment.ID).
			Update("invoice_id", invoice.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.noteSvc.LogInstallment(installment.ID, "Fatura %s emitida: %.2f", invoice.Reference, invoice.AmountTotal)
	return &invoice, nil
}

// CreateBatchInvoice raises one invoice covering several installments of the
// same customer. Above the aggregation threshold the lines collapse into a
// single consolidated line; the due date is the earliest of the batch. The
// whole batch is validated before anything is created.
func (s *InvoicingService) CreateBatchInvoice(ctx context.Context, installmentIDs []uint, today time.Time) (*models.Invoice, error) {
	if len(installmentIDs) == 0 {
		return nil, NewValidationError("selecione ao menos uma parcela")
	}

	installments, err := s.installmentRepo.FindByIDs(ctx, installmentIDs)
	if err != nil {
		return nil, err
	}
	if len(installments) != len(installmentIDs) {
		return nil, ErrNotFound
	}

	customerID := installments[0].CustomerID
	var total float64
	earliestDue := installments[0].DueDate
	for i := range installments {
		installment := &installments[i]
		if installment.CustomerID != customerID {
			return nil, NewUserError("todas as parcelas devem pertencer ao mesmo cliente")
		}
		if err := checkInvoiceable(installment, today); err != nil {
			return nil, err
		}
		total += installment.Remaining()
		if installment.DueDate.Before(earliestDue) {
			earliestDue = installment.DueDate
		}
	}

	var invoice models.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice = models.Invoice{
			Reference:   uuid.New().String(),
			CustomerID:  customerID,
			State:       models.InvoiceStatePosted,
			DueDate:     earliestDue,
			AmountTotal: total,
		}

		if len(installments) > batchAggregationThreshold {
			invoice.Lines = []models.InvoiceLine{{
				Description: fmt.Sprintf("Parcelas agrupadas (%d)", len(installments)),
				Quantity:    len(installments),
				UnitPrice:   total / float64(len(installments)),
			}}
		} else {
			for i := range installments {
				invoice.Lines = append(invoice.Lines, models.InvoiceLine{
					Description: installments[i].DisplayName(),
					Quantity:    1,
					UnitPrice:   installments[i].Remaining(),
				})
			}
		}

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		ids := make([]uint, len(installments))
		for i := range installments {
			ids[i] = installments[i].ID
		}
		return tx.Model(&models.Installment{}).
			Where("id IN ?", ids).
			Update("invoice_id", invoice.ID).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info(fmt.Sprintf("batch invoice %s: %d installments, total %.2f", invoice.Reference, len(installments), total))
	return &invoice, nil
}

// RegisterInvoicePayment records a payment received against an invoice. The
// money reaches the installments on the next reconciliation sweep.
func (s *InvoicingService) RegisterInvoicePayment(ctx context.Context, invoiceID uint, amount float64) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, NewValidationError("valor do pagamento deve ser maior que zero")
	}

	invoice, err := s.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.State != models.InvoiceStatePosted {
		return nil, NewUserError("fatura não está confirmada")
	}
	if invoice.AmountPaid+amount > invoice.AmountTotal {
		return nil, NewValidationError("valor do pagamento excede o total da fatura")
	}

	invoice.AmountPaid += amount
	if invoice.AmountPaid >= invoice.AmountTotal {
		invoice.PaymentState = models.InvoicePaymentStatePaid
	} else {
		invoice.PaymentState = models.InvoicePaymentStateInPayment
	}

	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// CancelInvoice voids an invoice and releases its installments for future
// billing. Invoices with registered payments cannot be cancelled.
func (s *InvoicingService) CancelInvoice(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	invoice, err := s.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.MayCancel() {
		return nil, NewUserError("fatura com pagamentos registrados não pode ser cancelada")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Invoice{}).
			Where("id = ?", invoice.ID).
			Update("state", models.InvoiceStateCancelled).Error; err != nil {
			return err
		}
		return tx.Model(&models.Installment{}).
			Where("invoice_id = ?", invoice.ID).
			Update("invoice_id", nil).Error
	})
	if err != nil {
		return nil, err
	}

	invoice.State = models.InvoiceStateCancelled
	return invoice, nil
}

// ReconcileInvoicePayments is the periodic sweep that pushes invoice payments
// onto their installments, earliest due date first, each capped at the amount
// still owed. Amounts already swept are never applied twice.
func (s *InvoicingService) ReconcileInvoicePayments(ctx context.Context) error {
	today := time.Now()
	invoices, err := s.repo.FindUnreconciled(ctx)
	if err != nil {
		return err
	}

	for i := range invoices {
		if err := s.reconcileOne(ctx, invoices[i].ID, today); err != nil {
			logger.Error(fmt.Sprintf("invoice %d: reconciliation failed: %v", invoices[i].ID, err))
		}
	}
	return nil
}

// applyPaymentPool distributes pool over the installments in the order given,
// each capped at the amount still owed. The payment date is stamped only on
// installments that end up fully paid. Returns the total applied and how many
// leading installments were touched.
func applyPaymentPool(installments []models.Installment, pool float64, today time.Time) (float64, int) {
	applied := 0.0
	touched := 0
	for i := range installments {
		if pool <= 0 {
			break
		}
		installment := &installments[i]
		portion := installment.Remaining()
		if portion <= 0 {
			continue
		}
		if portion > pool {
			portion = pool
		}

		installment.AmountPaid += portion
		if installment.AmountPaid >= installment.Amount {
			installment.PaymentDate = &today
		}
		installment.Recompute(today)

		pool -= portion
		applied += portion
		touched = i + 1
	}
	return applied, touched
}

func (s *InvoicingService) reconcileOne(ctx context.Context, invoiceID uint, today time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&invoice, invoiceID).Error; err != nil {
			return err
		}

		pool := invoice.AmountPaid - invoice.AmountReconciled
		if pool <= 0 {
			return nil
		}

		var installments []models.Installment
		if err := tx.Where("invoice_id = ? AND amount_paid < amount", invoice.ID).
			Order("due_date ASC, number ASC").
			Find(&installments).Error; err != nil {
			return err
		}

		applied, touched := applyPaymentPool(installments, pool, today)
		if applied == 0 {
			return nil
		}
		for i := 0; i < touched; i++ {
			if err := tx.Save(&installments[i]).Error; err != nil {
				return err
			}
		}

		invoice.AmountReconciled += applied
		if invoice.AmountReconciled >= invoice.AmountPaid && invoice.AmountPaid >= invoice.AmountTotal {
			now := time.Now()
			invoice.ReconciledAt = &now
		}
		return tx.Save(&invoice).Error
	})
}
