package repository

import (
	"context"

	"github.com/credisul/credisul-api/internal/models"
	"gorm.io/gorm"
)

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Invoice, error)
	FindByIDWithLines(ctx context.Context, id uint) (*models.Invoice, error)
	FindUnreconciled(ctx context.Context) ([]models.Invoice, error)
	Create(ctx context.Context, invoice *models.Invoice) error
	Update(ctx context.Context, invoice *models.Invoice) error
	List(ctx context.Context, query *InvoiceQuery) ([]models.Invoice, int64, error)
}

// InvoiceQuery extends ListQuery with invoice-specific filters
type InvoiceQuery struct {
	*ListQuery
	CustomerID   uint
	State        string
	PaymentState string
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithLines(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Joins("Customer").
		Preload("Lines").
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindUnreconciled loads posted invoices that carry payments not yet swept
// onto their installments.
func (r *invoiceRepository) FindUnreconciled(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where("state = ? AND amount_paid > amount_reconciled",
			models.InvoiceStatePosted).
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *invoiceRepository) List(ctx context.Context, query *InvoiceQuery) ([]models.Invoice, int64, error) {
	var invoices []models.Invoice
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Invoice{})

	if query.CustomerID > 0 {
		db = db.Where("invoices.customer_id = ?", query.CustomerID)
	}
	if query.State != "" {
		db = db.Where("invoices.state = ?", query.State)
	}
	if query.PaymentState != "" {
		db = db.Where("invoices.payment_state = ?", query.PaymentState)
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN customers ON customers.id = invoices.customer_id").
			Where("customers.name ILIKE ? OR invoices.reference ILIKE ?", search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Customer").
		Preload("Lines").
		Order("invoices.created_at DESC").
		Offset(query.Offset()).
		Limit(query.Limit()).
		Find(&invoices).Error
	return invoices, total, err
}
