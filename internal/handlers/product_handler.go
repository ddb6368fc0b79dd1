package handlers

import (
	"net/http"
	"strconv"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// @Summary List Loan Products
// @Description Active loan products available for new loans
// @Tags Products
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /products [get]
func (h *ProductHandler) Index(c *gin.Context) {
	products, err := h.productService.ListActive(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

type ProductRequest struct {
	Name               string  `json:"name"`
	IsLoanProduct      bool    `json:"is_loan_product"`
	InterestRate       float64 `json:"interest_rate"`
	InterestPeriodDays int     `json:"interest_period_days"`
	DefaultTermWeeks   int     `json:"default_term_weeks"`
	Active             bool    `json:"active"`
}

// @Summary Create Loan Product
// @Description Registers a new loan product configuration
// @Tags Products
// @Accept json
// @Produce json
// @Param request body ProductRequest true "Product data"
// @Success 201 {object} models.LoanProduct
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.LoanProduct{
		Name:               req.Name,
		IsLoanProduct:      req.IsLoanProduct,
		InterestRate:       req.InterestRate,
		InterestPeriodDays: req.InterestPeriodDays,
		DefaultTermWeeks:   req.DefaultTermWeeks,
		Active:             req.Active,
	}
	if err := h.productService.Create(c.Request.Context(), &product); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// @Summary Update Loan Product
// @Description Modifies a loan product; existing loans keep their original terms
// @Tags Products
// @Accept json
// @Produce json
// @Param product_id path int true "Product ID"
// @Param request body ProductRequest true "Product data"
// @Success 200 {object} models.LoanProduct
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /products/{product_id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := models.LoanProduct{
		Name:               req.Name,
		IsLoanProduct:      req.IsLoanProduct,
		InterestRate:       req.InterestRate,
		InterestPeriodDays: req.InterestPeriodDays,
		DefaultTermWeeks:   req.DefaultTermWeeks,
		Active:             req.Active,
	}
	product, err := h.productService.Update(c.Request.Context(), uint(id), &updates)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}
