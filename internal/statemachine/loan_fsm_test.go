package statemachine

import (
	"context"
	"testing"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestLoanLifecycle(t *testing.T) {
	ctx := context.Background()
	loan := &models.Loan{Status: models.LoanStatusDraft}
	lfsm := NewLoanFSM(loan)

	assert.NoError(t, lfsm.Activate(ctx))
	assert.Equal(t, models.LoanStatusActive, loan.Status)

	lfsm = NewLoanFSM(loan)
	assert.NoError(t, lfsm.MarkLate(ctx))
	assert.Equal(t, models.LoanStatusLate, loan.Status)

	lfsm = NewLoanFSM(loan)
	assert.NoError(t, lfsm.Recover(ctx))
	assert.Equal(t, models.LoanStatusActive, loan.Status)

	lfsm = NewLoanFSM(loan)
	assert.NoError(t, lfsm.Settle(ctx))
	assert.Equal(t, models.LoanStatusPaid, loan.Status)
}

func TestLoanInvalidTransitions(t *testing.T) {
	ctx := context.Background()

	paid := &models.Loan{Status: models.LoanStatusPaid}
	assert.Error(t, NewLoanFSM(paid).MarkLate(ctx))
	assert.Error(t, NewLoanFSM(paid).Renegotiate(ctx))
	assert.Equal(t, models.LoanStatusPaid, paid.Status)

	draft := &models.Loan{Status: models.LoanStatusDraft}
	assert.Error(t, NewLoanFSM(draft).Settle(ctx))
	assert.Error(t, NewLoanFSM(draft).MarkDefaulted(ctx))
	assert.Equal(t, models.LoanStatusDraft, draft.Status)
}

func TestLoanRenegotiateAndDefault(t *testing.T) {
	ctx := context.Background()

	late := &models.Loan{Status: models.LoanStatusLate}
	assert.NoError(t, NewLoanFSM(late).Renegotiate(ctx))
	assert.Equal(t, models.LoanStatusRenegotiated, late.Status)

	active := &models.Loan{Status: models.LoanStatusActive}
	assert.NoError(t, NewLoanFSM(active).MarkDefaulted(ctx))
	assert.Equal(t, models.LoanStatusDefaulted, active.Status)

	// Terminal states stay put
	assert.Error(t, NewLoanFSM(late).Recover(ctx))
	assert.Error(t, NewLoanFSM(active).Settle(ctx))
}

func TestLoanFSMCan(t *testing.T) {
	lfsm := NewLoanFSM(&models.Loan{Status: models.LoanStatusActive})
	assert.True(t, lfsm.Can("mark_late"))
	assert.True(t, lfsm.Can("settle"))
	assert.False(t, lfsm.Can("activate"))
	assert.False(t, lfsm.Can("recover"))
}
