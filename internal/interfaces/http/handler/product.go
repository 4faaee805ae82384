package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	catalogService *catalogapp.CatalogService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService *catalogapp.CatalogService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
	}
}

// Get godoc
// @Summary      Get a product
// @Description  Look a product up by numeric ID or by ASIN. Purely numeric references are treated as IDs.
// @Tags         products
// @Produce      json
// @Param        ref path string true "Product ID or ASIN"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{ref} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	ref := c.Param("ref")

	var (
		product *catalogapp.ProductResponse
		err     error
	)
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil && id > 0 {
		product, err = h.catalogService.GetProduct(c.Request.Context(), id)
	} else {
		product, err = h.catalogService.GetProductByASIN(c.Request.Context(), ref)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category_id query string false "Category ID, or 'none' for uncategorized"
// @Param        min_price query number false "Minimum price"
// @Param        max_price query number false "Maximum price"
// @Param        min_rating query number false "Minimum rating"
// @Param        best_seller query bool false "Best sellers only"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "asc or desc"
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	attrs, err := parseAttributeFilter(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filter.ProductAttributeFilter = attrs

	page, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	respondPage(c, page)
}

// Create godoc
// @Summary      Create a product
// @Description  Strict insert; an existing ASIN is a conflict
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ProductRequest true "Product"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Upsert godoc
// @Summary      Insert or overwrite a product by ASIN
// @Description  category_name is resolved to a category and created when absent. Omitting description keeps the stored one.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ProductRequest true "Product"
// @Success      200 {object} APIResponse[catalogapp.UpsertProductResponse]
// @Success      201 {object} APIResponse[catalogapp.UpsertProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/products [put]
func (h *ProductHandler) Upsert(c *gin.Context) {
	var req catalogapp.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.catalogService.UpsertProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.Created {
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}

// SetDescription godoc
// @Summary      Set or clear a product description
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path int true "Product ID"
// @Param        request body catalogapp.SetDescriptionRequest true "Description, null to clear"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/products/{id}/description [put]
func (h *ProductHandler) SetDescription(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req catalogapp.SetDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.catalogService.SetDescription(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Description  Refused with 422 while any order references the product
// @Tags         products
// @Param        id path int true "Product ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
