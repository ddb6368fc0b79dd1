package repository

import (
	"context"

	"github.com/credisul/credisul-api/internal/models"
	"gorm.io/gorm"
)

// ProductRepository defines the interface for loan product data access
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*models.LoanProduct, error)
	FindActive(ctx context.Context) ([]models.LoanProduct, error)
	Create(ctx context.Context, product *models.LoanProduct) error
	Update(ctx context.Context, product *models.LoanProduct) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new loan product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*models.LoanProduct, error) {
	var product models.LoanProduct
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindActive(ctx context.Context) ([]models.LoanProduct, error) {
	var products []models.LoanProduct
	err := r.db.WithContext(ctx).
		Where("active = ? AND is_loan_product = ?", true, true).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) Create(ctx context.Context, product *models.LoanProduct) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *models.LoanProduct) error {
	return r.db.WithContext(ctx).Save(product).Error
}
