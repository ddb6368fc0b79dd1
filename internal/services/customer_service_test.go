package services

import (
	"context"
	"testing"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// Mock CustomerRepository (embedding to avoid implementing all methods)
type mockCustomerRepository struct {
	repository.CustomerRepository
	mockFindByID       func(ctx context.Context, id uint) (*models.Customer, error)
	mockFindByDocument func(ctx context.Context, document string) (*models.Customer, error)
	mockCreate         func(ctx context.Context, customer *models.Customer) error
	mockUpdate         func(ctx context.Context, customer *models.Customer) error
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCustomerRepository) FindByDocument(ctx context.Context, document string) (*models.Customer, error) {
	if m.mockFindByDocument != nil {
		return m.mockFindByDocument(ctx, document)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, customer)
	}
	return nil
}

func (m *mockCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, customer)
	}
	return nil
}

func TestCreateCustomerNormalizesCPF(t *testing.T) {
	var saved *models.Customer
	repo := &mockCustomerRepository{
		mockCreate: func(ctx context.Context, customer *models.Customer) error {
			saved = customer
			return nil
		},
	}
	svc := NewCustomerService(repo)

	customer := &models.Customer{Name: "Maria Silva", CPF: "52998224725"}
	err := svc.Create(context.Background(), customer)
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, "529.982.247-25", saved.CPF)
}

func TestCreateCustomerRejectsInvalidDocuments(t *testing.T) {
	svc := NewCustomerService(&mockCustomerRepository{})

	err := svc.Create(context.Background(), &models.Customer{Name: "João", CPF: "52998224724"})
	assert.True(t, IsValidationError(err))

	err = svc.Create(context.Background(), &models.Customer{Name: "João", CNPJ: "11222333000182"})
	assert.True(t, IsValidationError(err))

	err = svc.Create(context.Background(), &models.Customer{CPF: "52998224725"})
	assert.True(t, IsValidationError(err))
}

func TestCreateCustomerRejectsDuplicateDocument(t *testing.T) {
	repo := &mockCustomerRepository{
		mockFindByDocument: func(ctx context.Context, document string) (*models.Customer, error) {
			return &models.Customer{ID: 7, CPF: document}, nil
		},
	}
	svc := NewCustomerService(repo)

	err := svc.Create(context.Background(), &models.Customer{Name: "Maria", CPF: "529.982.247-25"})
	assert.True(t, IsUserError(err))
}

func TestUpdateCustomerRevalidatesDocuments(t *testing.T) {
	repo := &mockCustomerRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Customer, error) {
			return &models.Customer{ID: 1, Name: "Maria", CPF: "529.982.247-25"}, nil
		},
	}
	svc := NewCustomerService(repo)

	_, err := svc.Update(context.Background(), 1, &models.Customer{CPF: "11111111111"})
	assert.True(t, IsValidationError(err))

	customer, err := svc.Update(context.Background(), 1, &models.Customer{Phone: "11 91234-5678"})
	assert.NoError(t, err)
	assert.Equal(t, "11 91234-5678", customer.Phone)
	assert.Equal(t, "529.982.247-25", customer.CPF)
}
