package handlers

import (
	"net/http"
	"strconv"

	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"github.com/credisul/credisul-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService *services.CustomerService
}

func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// @Summary List Customers
// @Description Get a paginated list of customers
// @Tags Customers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name, email or document"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")

	customers, total, err := h.customerService.List(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	var responses []interface{}
	for i := range customers {
		responses = append(responses, customers[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Customer
// @Description Get a customer with document validity flags
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} models.CustomerResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{customer_id} [get]
func (h *CustomerHandler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("customer_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	customer, err := h.customerService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer.ToResponse())
}

type CustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	CPF   string `json:"cpf"`
	CNPJ  string `json:"cnpj"`
}

// @Summary Create Customer
// @Description Registers a new customer; CPF/CNPJ must pass check-digit validation
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body CustomerRequest true "Customer data"
// @Success 201 {object} models.CustomerResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer := models.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		CPF:   req.CPF,
		CNPJ:  req.CNPJ,
	}
	if err := h.customerService.Create(c.Request.Context(), &customer); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer.ToResponse())
}

// @Summary Update Customer
// @Description Modifies a customer; documents are revalidated
// @Tags Customers
// @Accept json
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Param request body CustomerRequest true "Customer data"
// @Success 200 {object} models.CustomerResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{customer_id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("customer_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := models.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		CPF:   req.CPF,
		CNPJ:  req.CNPJ,
	}
	customer, err := h.customerService.Update(c.Request.Context(), uint(id), &updates)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer.ToResponse())
}
