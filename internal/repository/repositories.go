package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User        UserRepository
	Customer    CustomerRepository
	Product     ProductRepository
	Loan        LoanRepository
	Installment InstallmentRepository
	Invoice     InvoiceRepository
	Note        NoteRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Customer:    NewCustomerRepository(db),
		Product:     NewProductRepository(db),
		Loan:        NewLoanRepository(db),
		Installment: NewInstallmentRepository(db),
		Invoice:     NewInvoiceRepository(db),
		Note:        NewNoteRepository(db),
	}
}
