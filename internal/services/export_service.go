package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ExportService renders loan schedules as CSV, XLSX and PDF statements
type ExportService struct {
	loanSvc *LoanService
}

// NewExportService creates a new export service
func NewExportService(loanSvc *LoanService) *ExportService {
	return &ExportService{loanSvc: loanSvc}
}

// ExportScheduleCSV renders the installment schedule of a loan as CSV
func (s *ExportService) ExportScheduleCSV(ctx context.Context, loanID uint, today time.Time) ([]byte, string, error) {
	loan, err := s.loanSvc.FindByIDWithSchedule(ctx, loanID)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Cronograma de Parcelas", loan.GUID})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Parcela", "Vencimento", "Valor", "Pago", "Saldo", "Situação", "Dias em Atraso"})

	for i := range loan.Installments {
		inst := &loan.Installments[i]
		_ = writer.Write([]string{
			fmt.Sprintf("%d", inst.Number),
			inst.DueDate.Format("2006-01-02"),
			fmt.Sprintf("%.2f", inst.Amount),
			fmt.Sprintf("%.2f", inst.AmountPaid),
			fmt.Sprintf("%.2f", inst.Remaining()),
			inst.StatusFor(today),
			fmt.Sprintf("%d", inst.DaysLate(today)),
		})
	}

	stats := models.ComputeScheduleStats(loan.Installments, today)
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Saldo Devedor", fmt.Sprintf("%.2f", stats.Balance)})
	_ = writer.Write([]string{"Parcelas Vencidas", fmt.Sprintf("%d", stats.OverdueCount)})

	writer.Flush()

	filename := fmt.Sprintf("cronograma_%s_%s.csv", loan.GUID, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportScheduleXLSX renders the installment schedule of a loan as XLSX
func (s *ExportService) ExportScheduleXLSX(ctx context.Context, loanID uint, today time.Time) ([]byte, string, error) {
	loan, err := s.loanSvc.FindByIDWithSchedule(ctx, loanID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Cronograma"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Cronograma de Parcelas")
	_ = f.SetCellValue(sheet, "B1", loan.GUID)
	_ = f.SetCellStyle(sheet, "A1", "B1", headerStyle)

	headers := []string{"Parcela", "Vencimento", "Valor", "Pago", "Saldo", "Situação", "Dias em Atraso"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i := range loan.Installments {
		inst := &loan.Installments[i]
		row := i + 4
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), inst.Number)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inst.DueDate.Format("2006-01-02"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), inst.Amount)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), inst.AmountPaid)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), inst.Remaining())
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), inst.StatusFor(today))
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), inst.DaysLate(today))
	}

	stats := models.ComputeScheduleStats(loan.Installments, today)
	summaryRow := len(loan.Installments) + 5
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Saldo Devedor")
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow), stats.Balance)
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+1), "Parcelas Vencidas")
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+1), stats.OverdueCount)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("cronograma_%s_%s.xlsx", loan.GUID, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportStatementPDF renders a loan statement as PDF
func (s *ExportService) ExportStatementPDF(ctx context.Context, loanID uint, today time.Time) ([]byte, string, error) {
	loan, err := s.loanSvc.FindByIDWithSchedule(ctx, loanID)
	if err != nil {
		return nil, "", err
	}
	stats := models.ComputeScheduleStats(loan.Installments, today)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Extrato de Emprestimo")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 10, "Contrato:")
	pdf.Cell(40, 10, loan.GUID)
	pdf.Ln(6)

	if loan.Customer.ID != 0 {
		pdf.Cell(60, 10, "Cliente:")
		pdf.Cell(40, 10, loan.Customer.Name)
		pdf.Ln(6)
	}

	pdf.Cell(60, 10, "Valor Liberado:")
	pdf.Cell(40, 10, fmt.Sprintf("%.2f %s", loan.ReleasedAmount, loan.Currency))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Total a Pagar:")
	pdf.Cell(40, 10, fmt.Sprintf("%.2f %s", loan.TotalAmount(), loan.Currency))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Saldo Devedor:")
	pdf.Cell(40, 10, fmt.Sprintf("%.2f %s", stats.Balance, loan.Currency))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Parcelas Vencidas:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", stats.OverdueCount))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(20, 8, "Parcela", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Vencimento", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Valor", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Pago", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Situacao", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i := range loan.Installments {
		inst := &loan.Installments[i]
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", inst.Number), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, inst.DueDate.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", inst.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", inst.AmountPaid), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, inst.StatusFor(today), "1", 1, "C", false, 0, "")
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("extrato_%s_%s.pdf", loan.GUID, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
