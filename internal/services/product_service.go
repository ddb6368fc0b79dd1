package services

import (
	"context"
	"errors"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"gorm.io/gorm"
)

// ProductService handles loan product configuration
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// FindByID gets a loan product by ID
func (s *ProductService) FindByID(ctx context.Context, id uint) (*models.LoanProduct, error) {
	product, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return product, err
}

// ListActive returns the loan products available for new loans
func (s *ProductService) ListActive(ctx context.Context) ([]models.LoanProduct, error) {
	return s.repo.FindActive(ctx)
}

func validateProduct(product *models.LoanProduct) error {
	if product.Name == "" {
		return NewValidationError("nome do produto é obrigatório")
	}
	if product.InterestRate < 0 {
		return NewValidationError("taxa de juros não pode ser negativa")
	}
	if product.InterestPeriodDays < 0 {
		return NewValidationError("período de juros não pode ser negativo")
	}
	if product.DefaultTermWeeks < 0 {
		return NewValidationError("prazo padrão não pode ser negativo")
	}
	return nil
}

// Create registers a new loan product
func (s *ProductService) Create(ctx context.Context, product *models.LoanProduct) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.Create(ctx, product)
}

// Update modifies a loan product. Existing loans keep the terms they were
// created with; only future loans pick up the new defaults.
func (s *ProductService) Update(ctx context.Context, id uint, updates *models.LoanProduct) (*models.LoanProduct, error) {
	product, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updates.Name != "" {
		product.Name = updates.Name
	}
	if updates.InterestRate > 0 {
		product.InterestRate = updates.InterestRate
	}
	if updates.InterestPeriodDays > 0 {
		product.InterestPeriodDays = updates.InterestPeriodDays
	}
	if updates.DefaultTermWeeks > 0 {
		product.DefaultTermWeeks = updates.DefaultTermWeeks
	}
	product.IsLoanProduct = updates.IsLoanProduct
	product.Active = updates.Active

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}
