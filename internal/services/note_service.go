package services

import (
	"context"
	"fmt"

	"github.com/credisul/credisul-api/internal/jobs"
	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"github.com/credisul/credisul-api/pkg/logger"
)

// NoteService records audit trail notes on loans and installments. Writes are
// fire-and-forget through the worker so note persistence never blocks or
// fails a servicing operation.
type NoteService struct {
	repo   repository.NoteRepository
	worker *jobs.Worker
}

// NewNoteService creates a new note service
func NewNoteService(repo repository.NoteRepository, worker *jobs.Worker) *NoteService {
	return &NoteService{repo: repo, worker: worker}
}

// LogLoan records a note against a loan
func (s *NoteService) LogLoan(loanID uint, format string, args ...interface{}) {
	body := fmt.Sprintf(format, args...)
	id := loanID
	s.worker.Enqueue("note", func(ctx context.Context) error {
		if err := s.repo.Create(ctx, &models.Note{LoanID: &id, Body: body}); err != nil {
			logger.Warn(fmt.Sprintf("failed to record loan note: %v", err))
		}
		return nil
	})
}

// LogInstallment records a note against an installment
func (s *NoteService) LogInstallment(installmentID uint, format string, args ...interface{}) {
	body := fmt.Sprintf(format, args...)
	id := installmentID
	s.worker.Enqueue("note", func(ctx context.Context) error {
		if err := s.repo.Create(ctx, &models.Note{InstallmentID: &id, Body: body}); err != nil {
			logger.Warn(fmt.Sprintf("failed to record installment note: %v", err))
		}
		return nil
	})
}

// ForLoan returns the audit trail of a loan
func (s *NoteService) ForLoan(ctx context.Context, loanID uint) ([]models.Note, error) {
	return s.repo.FindByLoan(ctx, loanID)
}

// ForInstallment returns the audit trail of an installment
func (s *NoteService) ForInstallment(ctx context.Context, installmentID uint) ([]models.Note, error) {
	return s.repo.FindByInstallment(ctx, installmentID)
}
