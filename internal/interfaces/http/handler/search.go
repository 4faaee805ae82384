package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// SearchHandler serves full-text product search
type SearchHandler struct {
	BaseHandler
	searchService *catalogapp.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService *catalogapp.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// Search godoc
// @Summary      Search products
// @Description  Ranked full-text search over title and description. Ties go to the product with more reviews, then the lower ID.
// @Tags         search
// @Produce      json
// @Param        q query string true "Query text"
// @Param        limit query int false "Page size"
// @Param        offset query int false "Hits to skip"
// @Param        category_id query string false "Category ID, or 'none' for uncategorized"
// @Param        min_price query number false "Minimum price"
// @Param        max_price query number false "Maximum price"
// @Param        min_rating query number false "Minimum rating"
// @Param        best_seller query bool false "Best sellers only"
// @Success      200 {object} APIResponse[catalogapp.SearchResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	var req catalogapp.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	attrs, err := parseAttributeFilter(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	req.ProductAttributeFilter = attrs

	result, err := h.searchService.Search(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
