package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductAPI_UpsertAndGet(t *testing.T) {
	api := newTestAPI(t)

	body := map[string]any{
		"asin":          "B0SUN00001",
		"title":         "Mineral Sunscreen SPF 50",
		"price":         "19.99",
		"review_count":  120,
		"category_name": "Sun Care",
	}
	w, env := api.do(t, http.MethodPut, "/api/v1/admin/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[catalogapp.UpsertProductResponse](t, env)
	assert.True(t, created.Created)
	require.NotNil(t, created.Product.CategoryID)

	body["title"] = "Mineral Sunscreen SPF 50+"
	w, env = api.do(t, http.MethodPut, "/api/v1/admin/products", body)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeData[catalogapp.UpsertProductResponse](t, env)
	assert.False(t, updated.Created)
	assert.Equal(t, created.Product.ID, updated.Product.ID)

	t.Run("by id", func(t *testing.T) {
		w, env := api.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.Product.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Mineral Sunscreen SPF 50+", decodeData[catalogapp.ProductResponse](t, env).Title)
	})

	t.Run("by asin", func(t *testing.T) {
		w, env := api.do(t, http.MethodGet, "/api/v1/products/B0SUN00001", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created.Product.ID, decodeData[catalogapp.ProductResponse](t, env).ID)
	})

	t.Run("unknown asin", func(t *testing.T) {
		w, env := api.do(t, http.MethodGet, "/api/v1/products/B0MISSING0", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ERR_NOT_FOUND", env.Error.Code)
	})
}

func TestProductAPI_StrictCreateConflicts(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]any{"asin": "B0DUP00001", "title": "Lip Balm"}

	w, _ := api.do(t, http.MethodPost, "/api/v1/admin/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := api.do(t, http.MethodPost, "/api/v1/admin/products", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ERR_CONFLICT", env.Error.Code)
}

func TestProductAPI_Validation(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(t, http.MethodPost, "/api/v1/admin/products", map[string]any{"asin": "has space", "title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_VALIDATION", env.Error.Code)

	w, _ = api.do(t, http.MethodGet, "/api/v1/products?min_price=10&max_price=5", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodGet, "/api/v1/products?category_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductAPI_ListFilters(t *testing.T) {
	api := newTestAPI(t)
	api.seedProduct(t, map[string]any{"asin": "B0LIST0001", "title": "Cheap Soap", "price": "3.50", "category_name": "Bath"})
	api.seedProduct(t, map[string]any{"asin": "B0LIST0002", "title": "Fancy Soap", "price": "30.00", "category_name": "Bath"})
	api.seedProduct(t, map[string]any{"asin": "B0LIST0003", "title": "Loose Sponge", "price": "5.00"})

	w, env := api.do(t, http.MethodGet, "/api/v1/products?max_price=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]catalogapp.ProductResponse](t, env), 2)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(2), env.Meta.Total)

	w, env = api.do(t, http.MethodGet, "/api/v1/products?category_id=none", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeData[[]catalogapp.ProductResponse](t, env)
	require.Len(t, items, 1)
	assert.Equal(t, "B0LIST0003", items[0].ASIN)
}

func TestProductAPI_DescriptionFeedsSearch(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedProduct(t, map[string]any{"asin": "B0DESC0001", "title": "Daily Moisturizer"})

	w, env := api.do(t, http.MethodGet, "/api/v1/products/search?q=hyaluronic", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[catalogapp.SearchResponse](t, env).Items)

	w, _ = api.do(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/products/%d/description", id),
		map[string]any{"description": "Lightweight hyaluronic acid gel"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = api.do(t, http.MethodGet, "/api/v1/products/search?q=hyaluronic", nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeData[catalogapp.SearchResponse](t, env)
	require.Len(t, result.Items, 1)
	assert.Equal(t, id, result.Items[0].ID)
}

func TestProductAPI_DeleteRestrictedByOrders(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedProduct(t, map[string]any{"asin": "B0DEL00001", "title": "Hand Cream", "price": "7.25"})

	w, _ := api.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"customer": map[string]any{"first_name": "Ada", "last_name": "Byron", "email": "ada@example.com"},
		"asin":     "B0DEL00001",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := api.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/products/%d", id), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ERR_REFERENTIAL", env.Error.Code)

	other := api.seedProduct(t, map[string]any{"asin": "B0DEL00002", "title": "Foot Cream"})
	w, _ = api.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/products/%d", other), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCategoryAPI(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(t, http.MethodPost, "/api/v1/admin/categories", map[string]any{"name": "Skin Care"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	category := decodeData[catalogapp.CategoryResponse](t, env)

	w, env = api.do(t, http.MethodPost, "/api/v1/admin/categories", map[string]any{"name": "SKIN CARE"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ERR_DUPLICATE_NAME", env.Error.Code)

	productID := api.seedProduct(t, map[string]any{"asin": "B0CAT00001", "title": "Toner", "category_id": category.ID})

	w, env = api.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/categories/%d", category.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decodeData[catalogapp.DeleteCategoryResponse](t, env).ProductsDetached)

	w, env = api.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", productID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeData[catalogapp.ProductResponse](t, env).CategoryID)

	w, _ = api.do(t, http.MethodGet, fmt.Sprintf("/api/v1/categories/%d", category.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
