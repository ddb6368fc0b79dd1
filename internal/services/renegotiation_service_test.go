package services

import (
	"context"
	"testing"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

// Mock LoanRepository (embedding to avoid implementing all methods)
type mockLoanRepository struct {
	repository.LoanRepository
	mockFindByIDWithSchedule func(ctx context.Context, id uint) (*models.Loan, error)
}

func (m *mockLoanRepository) FindByIDWithSchedule(ctx context.Context, id uint) (*models.Loan, error) {
	if m.mockFindByIDWithSchedule != nil {
		return m.mockFindByIDWithSchedule(ctx, id)
	}
	return nil, ErrNotFound
}

func floatPtr(f float64) *float64 { return &f }

func TestResolveTermsExtend(t *testing.T) {
	params := &RenegotiationParams{Option: RenegotiationExtend, ExtensionWeeks: 3}

	balance, termWeeks, err := resolveTerms(params, 1000, 5)
	assert.NoError(t, err)
	assert.InDelta(t, 1000.0, balance, 0.001)
	assert.Equal(t, 8, termWeeks)

	_, _, err = resolveTerms(&RenegotiationParams{Option: RenegotiationExtend}, 1000, 5)
	assert.True(t, IsValidationError(err))
}

func TestResolveTermsDiscountPercent(t *testing.T) {
	params := &RenegotiationParams{Option: RenegotiationDiscount, DiscountPercent: floatPtr(20)}

	balance, termWeeks, err := resolveTerms(params, 1000, 5)
	assert.NoError(t, err)
	assert.InDelta(t, 800.0, balance, 0.001)
	assert.Equal(t, 5, termWeeks)

	_, _, err = resolveTerms(&RenegotiationParams{Option: RenegotiationDiscount, DiscountPercent: floatPtr(120)}, 1000, 5)
	assert.True(t, IsValidationError(err))

	_, _, err = resolveTerms(&RenegotiationParams{Option: RenegotiationDiscount, DiscountPercent: floatPtr(-5)}, 1000, 5)
	assert.True(t, IsValidationError(err))
}

func TestResolveTermsDiscountFixed(t *testing.T) {
	params := &RenegotiationParams{Option: RenegotiationDiscount, DiscountFixed: floatPtr(300)}

	balance, termWeeks, err := resolveTerms(params, 1000, 4)
	assert.NoError(t, err)
	assert.InDelta(t, 700.0, balance, 0.001)
	assert.Equal(t, 4, termWeeks)

	// Discount larger than the balance clamps at zero
	balance, _, err = resolveTerms(&RenegotiationParams{Option: RenegotiationDiscount, DiscountFixed: floatPtr(5000)}, 1000, 4)
	assert.NoError(t, err)
	assert.Zero(t, balance)

	// No discount given at all
	_, _, err = resolveTerms(&RenegotiationParams{Option: RenegotiationDiscount}, 1000, 4)
	assert.True(t, IsValidationError(err))
}

func TestResolveTermsNewTerms(t *testing.T) {
	// Rate and term: balance is recapitalized
	balance, termWeeks, err := resolveTerms(&RenegotiationParams{
		Option: RenegotiationNewTerms, NewInterestRate: 10, NewTermWeeks: 8,
	}, 1000, 5)
	assert.NoError(t, err)
	assert.InDelta(t, 1100.0, balance, 0.001)
	assert.Equal(t, 8, termWeeks)

	// Term only: balance unchanged
	balance, termWeeks, err = resolveTerms(&RenegotiationParams{
		Option: RenegotiationNewTerms, NewTermWeeks: 6,
	}, 1000, 5)
	assert.NoError(t, err)
	assert.InDelta(t, 1000.0, balance, 0.001)
	assert.Equal(t, 6, termWeeks)

	// Nothing given: falls back to the open installment count
	balance, termWeeks, err = resolveTerms(&RenegotiationParams{Option: RenegotiationNewTerms}, 1000, 5)
	assert.NoError(t, err)
	assert.InDelta(t, 1000.0, balance, 0.001)
	assert.Equal(t, 5, termWeeks)
}

func TestResolveTermsRejectsZeroTerm(t *testing.T) {
	// No open installments and no requested term would produce a zero-week schedule
	_, _, err := resolveTerms(&RenegotiationParams{Option: RenegotiationNewTerms}, 1000, 0)
	assert.True(t, IsValidationError(err))

	_, _, err = resolveTerms(&RenegotiationParams{Option: RenegotiationDiscount, DiscountPercent: floatPtr(10)}, 1000, 0)
	assert.True(t, IsValidationError(err))
}

func TestResolveTermsInvalidOption(t *testing.T) {
	_, _, err := resolveTerms(&RenegotiationParams{Option: "forgive_everything"}, 1000, 5)
	assert.True(t, IsValidationError(err))
}

func loanInArrears() *models.Loan {
	return &models.Loan{
		ID:     1,
		Status: models.LoanStatusLate,
		Installments: []models.Installment{
			{Number: 1, Amount: 200, AmountPaid: 200, DueDate: date(2026, 2, 23), Status: models.InstallmentStatusPaid},
			{Number: 2, Amount: 200, DueDate: date(2026, 3, 2), Status: models.InstallmentStatusPending},
			{Number: 3, Amount: 200, AmountPaid: 50, DueDate: date(2026, 3, 9), Status: models.InstallmentStatusPending},
			{Number: 4, Amount: 200, DueDate: date(2026, 3, 23), Status: models.InstallmentStatusPending},
		},
	}
}

func TestProposeExtend(t *testing.T) {
	repo := &mockLoanRepository{
		mockFindByIDWithSchedule: func(ctx context.Context, id uint) (*models.Loan, error) {
			return loanInArrears(), nil
		},
	}
	svc := NewRenegotiationService(repo, nil, nil)
	today := date(2026, 3, 16)

	proposal, err := svc.Propose(context.Background(), 1, &RenegotiationParams{
		Option: RenegotiationExtend, ExtensionWeeks: 2,
	}, today)
	assert.NoError(t, err)

	// Balance: 200 + 150 + 200 over the three open installments
	assert.InDelta(t, 550.0, proposal.CurrentBalance, 0.001)
	assert.InDelta(t, 550.0, proposal.NewBalance, 0.001)
	assert.Equal(t, 5, proposal.TermWeeks)
	assert.Equal(t, 3, proposal.ArchivedCount)
	assert.InDelta(t, 110.0, proposal.InstallmentAmount, 0.001)
	assert.Equal(t, date(2026, 3, 23), proposal.FirstDueDate)
}

func TestProposeRejectsWhenNothingOverdue(t *testing.T) {
	loan := &models.Loan{
		ID:     1,
		Status: models.LoanStatusActive,
		Installments: []models.Installment{
			{Number: 1, Amount: 200, AmountPaid: 200, DueDate: date(2026, 2, 23), Status: models.InstallmentStatusPaid},
			{Number: 2, Amount: 200, DueDate: date(2026, 3, 23), Status: models.InstallmentStatusPending},
		},
	}
	repo := &mockLoanRepository{
		mockFindByIDWithSchedule: func(ctx context.Context, id uint) (*models.Loan, error) {
			return loan, nil
		},
	}
	svc := NewRenegotiationService(repo, nil, nil)

	_, err := svc.Propose(context.Background(), 1, &RenegotiationParams{
		Option: RenegotiationExtend, ExtensionWeeks: 2,
	}, date(2026, 3, 16))
	assert.True(t, IsUserError(err))
}

func TestProposeRejectsClosedLoan(t *testing.T) {
	loan := loanInArrears()
	loan.Status = models.LoanStatusPaid
	repo := &mockLoanRepository{
		mockFindByIDWithSchedule: func(ctx context.Context, id uint) (*models.Loan, error) {
			return loan, nil
		},
	}
	svc := NewRenegotiationService(repo, nil, nil)

	_, err := svc.Propose(context.Background(), 1, &RenegotiationParams{
		Option: RenegotiationExtend, ExtensionWeeks: 2,
	}, date(2026, 3, 16))
	assert.True(t, IsUserError(err))
}
