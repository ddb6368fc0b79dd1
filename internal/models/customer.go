package models

import (
	"regexp"
	"strings"
	"time"
)

// Customer represents a borrowing customer
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"index" json:"email"`
	Phone     string    `json:"phone"`
	CPF       string    `gorm:"size:14" json:"cpf"`
	CNPJ      string    `gorm:"size:18" json:"cnpj"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Loans []Loan `gorm:"foreignKey:CustomerID" json:"loans,omitempty"`
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// cleanDocument strips formatting characters from a CPF/CNPJ
func cleanDocument(doc string) string {
	return nonDigits.ReplaceAllString(doc, "")
}

// ValidateCPF checks a CPF using the official check-digit algorithm
func ValidateCPF(cpf string) bool {
	cpf = cleanDocument(cpf)
	if len(cpf) != 11 {
		return false
	}
	if strings.Count(cpf, string(cpf[0])) == 11 {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(cpf[i]-'0') * (10 - i)
	}
	first := 11 - (sum % 11)
	if first >= 10 {
		first = 0
	}
	if int(cpf[9]-'0') != first {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(cpf[i]-'0') * (11 - i)
	}
	second := 11 - (sum % 11)
	if second >= 10 {
		second = 0
	}
	return int(cpf[10]-'0') == second
}

// ValidateCNPJ checks a CNPJ using the official check-digit algorithm
func ValidateCNPJ(cnpj string) bool {
	cnpj = cleanDocument(cnpj)
	if len(cnpj) != 14 {
		return false
	}
	if strings.Count(cnpj, string(cnpj[0])) == 14 {
		return false
	}

	weights1 := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	sum := 0
	for i := 0; i < 12; i++ {
		sum += int(cnpj[i]-'0') * weights1[i]
	}
	first := 11 - (sum % 11)
	if first >= 10 {
		first = 0
	}
	if int(cnpj[12]-'0') != first {
		return false
	}

	weights2 := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	sum = 0
	for i := 0; i < 13; i++ {
		sum += int(cnpj[i]-'0') * weights2[i]
	}
	second := 11 - (sum % 11)
	if second >= 10 {
		second = 0
	}
	return int(cnpj[13]-'0') == second
}

// FormatCPF normalizes a valid CPF to 000.000.000-00
func FormatCPF(cpf string) string {
	clean := cleanDocument(cpf)
	if len(clean) != 11 {
		return cpf
	}
	return clean[:3] + "." + clean[3:6] + "." + clean[6:9] + "-" + clean[9:]
}

// FormatCNPJ normalizes a valid CNPJ to 00.000.000/0000-00
func FormatCNPJ(cnpj string) string {
	clean := cleanDocument(cnpj)
	if len(clean) != 14 {
		return cnpj
	}
	return clean[:2] + "." + clean[2:5] + "." + clean[5:8] + "/" + clean[8:12] + "-" + clean[12:]
}

// CustomerResponse is the JSON response format for customers
type CustomerResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CPF       string `json:"cpf,omitempty"`
	CNPJ      string `json:"cnpj,omitempty"`
	CPFValid  bool   `json:"cpf_valid"`
	CNPJValid bool   `json:"cnpj_valid"`
}

// ToResponse converts Customer to CustomerResponse
func (c *Customer) ToResponse() CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CPF:       c.CPF,
		CNPJ:      c.CNPJ,
		CPFValid:  c.CPF != "" && ValidateCPF(c.CPF),
		CNPJValid: c.CNPJ != "" && ValidateCNPJ(c.CNPJ),
	}
}
