package services

import (
	"github.com/credisul/credisul-api/internal/config"
	"github.com/credisul/credisul-api/internal/jobs"
	"github.com/credisul/credisul-api/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth          *AuthService
	Customer      *CustomerService
	Product       *ProductService
	Loan          *LoanService
	Installment   *InstallmentService
	Renegotiation *RenegotiationService
	Invoicing     *InvoicingService
	Export        *ExportService
	Note          *NoteService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config, db *gorm.DB) *Services {
	noteSvc := NewNoteService(repos.Note, worker)
	loanSvc := NewLoanService(repos.Loan, repos.Customer, repos.Product, noteSvc, db)

	return &Services{
		Auth:          NewAuthService(repos.User, cfg),
		Customer:      NewCustomerService(repos.Customer),
		Product:       NewProductService(repos.Product),
		Loan:          loanSvc,
		Installment:   NewInstallmentService(repos.Installment, noteSvc),
		Renegotiation: NewRenegotiationService(repos.Loan, noteSvc, db),
		Invoicing:     NewInvoicingService(repos.Invoice, repos.Installment, noteSvc, db),
		Export:        NewExportService(loanSvc),
		Note:          noteSvc,
	}
}
