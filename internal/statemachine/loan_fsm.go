package statemachine

import (
	"context"
	"fmt"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/looplab/fsm"
)

// LoanFSM wraps a loan with its state machine
type LoanFSM struct {
	loan *models.Loan
	fsm  *fsm.FSM
}

// NewLoanFSM creates a new loan state machine
func NewLoanFSM(loan *models.Loan) *LoanFSM {
	lfsm := &LoanFSM{
		loan: loan,
	}

	lfsm.fsm = fsm.NewFSM(
		loan.Status,
		fsm.Events{
			// draft → active (schedule generated)
			{Name: "activate", Src: []string{models.LoanStatusDraft}, Dst: models.LoanStatusActive},

			// active → late (unpaid overdue installment detected)
			{Name: "mark_late", Src: []string{models.LoanStatusActive}, Dst: models.LoanStatusLate},

			// late → active (arrears cleared or schedule renegotiated)
			{Name: "recover", Src: []string{models.LoanStatusLate}, Dst: models.LoanStatusActive},

			// active/late → paid
			{Name: "settle", Src: []string{models.LoanStatusActive, models.LoanStatusLate}, Dst: models.LoanStatusPaid},

			// active/late → defaulted (manual decision)
			{Name: "mark_defaulted", Src: []string{models.LoanStatusActive, models.LoanStatusLate}, Dst: models.LoanStatusDefaulted},

			// active/late → renegotiated (loan replaced by refinance)
			{Name: "renegotiate", Src: []string{models.LoanStatusActive, models.LoanStatusLate}, Dst: models.LoanStatusRenegotiated},
		},
		fsm.Callbacks{},
	)

	return lfsm
}

// Activate transitions loan to active state
func (l *LoanFSM) Activate(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "activate"); err != nil {
		return fmt.Errorf("failed to activate loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// MarkLate transitions loan to late state
func (l *LoanFSM) MarkLate(ctx context.Context) error {
	if !l.loan.MayMarkLate() {
		return fmt.Errorf("loan cannot be marked late in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "mark_late"); err != nil {
		return fmt.Errorf("failed to mark loan late: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Recover transitions a late loan back to active
func (l *LoanFSM) Recover(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "recover"); err != nil {
		return fmt.Errorf("failed to recover loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Settle transitions loan to paid state
func (l *LoanFSM) Settle(ctx context.Context) error {
	if !l.loan.MaySettle() {
		return fmt.Errorf("loan cannot be settled in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "settle"); err != nil {
		return fmt.Errorf("failed to settle loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// MarkDefaulted transitions loan to defaulted state
func (l *LoanFSM) MarkDefaulted(ctx context.Context) error {
	if !l.loan.MayDefault() {
		return fmt.Errorf("loan cannot be defaulted in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "mark_defaulted"); err != nil {
		return fmt.Errorf("failed to default loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Renegotiate transitions loan to renegotiated state when it is replaced by a
// refinanced loan
func (l *LoanFSM) Renegotiate(ctx context.Context) error {
	if !l.loan.MayRenegotiate() {
		return fmt.Errorf("loan cannot be renegotiated in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "renegotiate"); err != nil {
		return fmt.Errorf("failed to renegotiate loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Current returns the current state
func (l *LoanFSM) Current() string {
	return l.fsm.Current()
}

// Can checks if a transition is possible
func (l *LoanFSM) Can(event string) bool {
	return l.fsm.Can(event)
}
