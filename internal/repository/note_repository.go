package repository

import (
	"context"

	"github.com/credisul/credisul-api/internal/models"
	"gorm.io/gorm"
)

// NoteRepository defines the interface for audit note data access
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	FindByLoan(ctx context.Context, loanID uint) ([]models.Note, error)
	FindByInstallment(ctx context.Context, installmentID uint) ([]models.Note, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *noteRepository) FindByInstallment(ctx context.Context, installmentID uint) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Where("installment_id = ?", installmentID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}
