package services

import (
	"context"
	"errors"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"gorm.io/gorm"
)

// CustomerService handles customer registration and document validation
type CustomerService struct {
	repo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(repo repository.CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

// FindByID gets a customer by ID
func (s *CustomerService) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return customer, err
}

// List returns customers matching the query
func (s *CustomerService) List(ctx context.Context, query *repository.ListQuery) ([]models.Customer, int64, error) {
	return s.repo.List(ctx, query)
}

// validateDocuments checks and normalizes the customer's CPF/CNPJ. At most one
// of the two is expected; both empty is allowed for prospects.
func validateDocuments(customer *models.Customer) error {
	if customer.CPF != "" {
		if !models.ValidateCPF(customer.CPF) {
			return NewValidationError("CPF inválido")
		}
		customer.CPF = models.FormatCPF(customer.CPF)
	}
	if customer.CNPJ != "" {
		if !models.ValidateCNPJ(customer.CNPJ) {
			return NewValidationError("CNPJ inválido")
		}
		customer.CNPJ = models.FormatCNPJ(customer.CNPJ)
	}
	return nil
}

// Create registers a new customer. CPF/CNPJ must pass the check-digit
// validation and may not belong to another customer.
func (s *CustomerService) Create(ctx context.Context, customer *models.Customer) error {
	if customer.Name == "" {
		return NewValidationError("nome do cliente é obrigatório")
	}
	if err := validateDocuments(customer); err != nil {
		return err
	}

	for _, doc := range []string{customer.CPF, customer.CNPJ} {
		if doc == "" {
			continue
		}
		existing, err := s.repo.FindByDocument(ctx, doc)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			return NewUserError("já existe um cliente com este documento")
		}
	}

	return s.repo.Create(ctx, customer)
}

// Update modifies an existing customer, revalidating documents
func (s *CustomerService) Update(ctx context.Context, id uint, updates *models.Customer) (*models.Customer, error) {
	customer, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updates.Name != "" {
		customer.Name = updates.Name
	}
	if updates.Email != "" {
		customer.Email = updates.Email
	}
	if updates.Phone != "" {
		customer.Phone = updates.Phone
	}
	if updates.CPF != "" {
		customer.CPF = updates.CPF
	}
	if updates.CNPJ != "" {
		customer.CNPJ = updates.CNPJ
	}

	if err := validateDocuments(customer); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}
