package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// CustomerHandler handles customer administration endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *tradeapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *tradeapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// Create godoc
// @Summary      Register a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateCustomerRequest true "Customer"
// @Success      201 {object} APIResponse[tradeapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /admin/customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req tradeapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// GetByID godoc
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Param        id path int true "Customer ID"
// @Success      200 {object} APIResponse[tradeapp.CustomerResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// List godoc
// @Summary      List customers
// @Description  Pass email to look a single customer up instead
// @Tags         customers
// @Produce      json
// @Param        email query string false "Exact email, case-insensitive"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} APIResponse[[]tradeapp.CustomerResponse]
// @Router       /admin/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	if email := c.Query("email"); email != "" {
		customer, err := h.customerService.GetCustomerByEmail(c.Request.Context(), email)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, customer)
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.customerService.ListCustomers(c.Request.Context(), req.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	respondPage(c, page)
}

// Delete godoc
// @Summary      Delete a customer
// @Description  The customer's orders are deleted with them
// @Tags         customers
// @Produce      json
// @Param        id path int true "Customer ID"
// @Success      200 {object} APIResponse[tradeapp.DeleteCustomerResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.customerService.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
