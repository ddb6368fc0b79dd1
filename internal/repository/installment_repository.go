package repository

import (
	"context"
	"time"

	"github.com/credisul/credisul-api/internal/models"
	"gorm.io/gorm"
)

// InstallmentRepository defines the interface for installment data access
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Installment, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Installment, error)
	FindByInvoice(ctx context.Context, invoiceID uint) ([]models.Installment, error)
	FindOverdue(ctx context.Context, before time.Time) ([]models.Installment, error)
	Create(ctx context.Context, installment *models.Installment) error
	Update(ctx context.Context, installment *models.Installment) error
	List(ctx context.Context, query *InstallmentQuery) ([]models.Installment, int64, error)
}

// InstallmentQuery extends ListQuery with installment-specific filters
type InstallmentQuery struct {
	*ListQuery
	LoanID     uint
	CustomerID uint
	Status     string
}

type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	var installment models.Installment
	err := r.db.WithContext(ctx).
		Joins("Loan").
		First(&installment, id).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("installments.id IN ?", ids).
		Joins("Loan").
		Order("due_date ASC").
		Find(&installments).Error
	return installments, err
}

// FindByInvoice loads the installments linked to an invoice ordered by due
// date, the order the reconciliation sweep applies payments in.
func (r *installmentRepository) FindByInvoice(ctx context.Context, invoiceID uint) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("due_date ASC, number ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) FindOverdue(ctx context.Context, before time.Time) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("due_date < ? AND amount_paid < amount AND status NOT IN ?",
			before, []string{models.InstallmentStatusRenegotiated}).
		Joins("Loan").
		Order("due_date ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) Create(ctx context.Context, installment *models.Installment) error {
	return r.db.WithContext(ctx).Create(installment).Error
}

func (r *installmentRepository) Update(ctx context.Context, installment *models.Installment) error {
	return r.db.WithContext(ctx).Save(installment).Error
}

func (r *installmentRepository) List(ctx context.Context, query *InstallmentQuery) ([]models.Installment, int64, error) {
	var installments []models.Installment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Installment{})

	if query.LoanID > 0 {
		db = db.Where("installments.loan_id = ?", query.LoanID)
	}
	if query.CustomerID > 0 {
		db = db.Where("installments.customer_id = ?", query.CustomerID)
	}
	if query.Status != "" {
		db = db.Where("installments.status = ?", query.Status)
	}

	if query.Filters != nil {
		if val, ok := query.Filters["due_from"]; ok && val != "" {
			db = db.Where("installments.due_date >= ?", val)
		}
		if val, ok := query.Filters["due_to"]; ok && val != "" {
			db = db.Where("installments.due_date <= ?", val)
		}
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Loan").
		Order("installments.due_date ASC, installments.number ASC").
		Offset(query.Offset()).
		Limit(query.Limit()).
		Find(&installments).Error
	return installments, total, err
}
