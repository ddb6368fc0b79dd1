package repository

import (
	"context"
	"strings"

	"github.com/credisul/credisul-api/internal/models"
	"gorm.io/gorm"
)

// LoanRepository defines the interface for loan data access
type LoanRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Loan, error)
	FindByIDWithSchedule(ctx context.Context, id uint) (*models.Loan, error)
	FindByGUID(ctx context.Context, guid string) (*models.Loan, error)
	FindByCustomer(ctx context.Context, customerID uint) ([]models.Loan, error)
	FindByStatus(ctx context.Context, statuses ...string) ([]models.Loan, error)
	Create(ctx context.Context, loan *models.Loan) error
	Update(ctx context.Context, loan *models.Loan) error
	List(ctx context.Context, query *LoanQuery) ([]models.Loan, int64, error)
}

// LoanQuery extends ListQuery with loan-specific filters
type LoanQuery struct {
	*ListQuery
	CustomerID uint
	Status     string
}

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindByIDWithSchedule(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Joins("Customer").
		Joins("Product").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC, number ASC")
		}).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindByGUID(ctx context.Context, guid string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Where("guid = ?", guid).First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindByCustomer(ctx context.Context, customerID uint) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Preload("Installments").
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

// FindByStatus loads loans in any of the given statuses with their schedules.
// Used by the periodic loan status refresh.
func (r *loanRepository) FindByStatus(ctx context.Context, statuses ...string) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Preload("Installments").
		Find(&loans).Error
	return loans, err
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

func (r *loanRepository) List(ctx context.Context, query *LoanQuery) ([]models.Loan, int64, error) {
	var loans []models.Loan
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Loan{})

	if query.CustomerID > 0 {
		db = db.Where("loans.customer_id = ?", query.CustomerID)
	}

	if query.Filters != nil {
		if val, ok := query.Filters["status_in"]; ok && val != "" {
			statuses := strings.Split(val, ",")
			for i, s := range statuses {
				statuses[i] = strings.TrimSpace(s)
			}
			db = db.Where("loans.status IN ?", statuses)
		}
	}
	if (query.Filters == nil || query.Filters["status_in"] == "") && query.Status != "" {
		db = db.Where("loans.status = ?", query.Status)
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN customers ON customers.id = loans.customer_id").
			Where("customers.name ILIKE ? OR customers.email ILIKE ? OR loans.guid ILIKE ?",
				search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := "loans." + query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("loans.created_at DESC")
	}

	err := db.Preload("Customer").
		Preload("Installments").
		Offset(query.Offset()).
		Limit(query.Limit()).
		Find(&loans).Error
	return loans, total, err
}
