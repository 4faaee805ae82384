package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.basePath)
	assert.Empty(t, r.groups)

	r = NewRouter(gin.New(), WithBasePath("/api/v2"))
	assert.Equal(t, "/api/v2", r.basePath)
}

func TestGroup_Mount(t *testing.T) {
	engine := gin.New()

	catalog := NewGroup("catalog", "/catalog", func(c *gin.Context) {
		c.Header("X-Group", "catalog")
		c.Next()
	})
	catalog.
		GET("/items", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
		POST("/items", func(c *gin.Context) { c.String(http.StatusCreated, "created") }).
		PUT("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) }).
		DELETE("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	catalog.Sub("tags", "/tags").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, "tags") })

	NewRouter(engine).Add(catalog).Setup()

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/api/v1/catalog/items", http.StatusOK, "list"},
		{http.MethodPost, "/api/v1/catalog/items", http.StatusCreated, "created"},
		{http.MethodPut, "/api/v1/catalog/items/42", http.StatusOK, "42"},
		{http.MethodDelete, "/api/v1/catalog/items/42", http.StatusNoContent, ""},
		{http.MethodGet, "/api/v1/catalog/tags", http.StatusOK, "tags"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
			assert.Equal(t, "catalog", w.Header().Get("X-Group"), "parent middleware applies to sub-groups")
		})
	}
}

func TestRouter_Routes(t *testing.T) {
	g := NewGroup("orders", "/orders")
	g.GET("", nil).GET("/:number/status", nil)
	g.Sub("admin", "/admin").PUT("/:id/status", nil)

	routes := NewRouter(gin.New()).Add(g).Routes()

	assert.Equal(t, []Route{
		{Method: http.MethodGet, Path: "/api/v1/orders", Group: "orders"},
		{Method: http.MethodGet, Path: "/api/v1/orders/:number/status", Group: "orders"},
		{Method: http.MethodPut, Path: "/api/v1/orders/admin/:id/status", Group: "admin"},
	}, routes)
}

func TestStorefront_Routes(t *testing.T) {
	routes := NewRouter(gin.New()).Add(Storefront(Handlers{}, Guards{})...).Routes()

	index := make(map[string]string, len(routes))
	for _, r := range routes {
		index[r.Method+" "+r.Path] = r.Group
	}

	for _, want := range []string{
		"GET /api/v1/health",
		"GET /api/v1/system/info",
		"GET /api/v1/products/search",
		"GET /api/v1/products",
		"GET /api/v1/products/:ref",
		"GET /api/v1/categories",
		"GET /api/v1/categories/:id",
		"POST /api/v1/orders",
		"GET /api/v1/orders/:number",
		"GET /api/v1/orders/:number/status",
		"POST /api/v1/admin/categories",
		"DELETE /api/v1/admin/categories/:id",
		"POST /api/v1/admin/products",
		"PUT /api/v1/admin/products",
		"PUT /api/v1/admin/products/:id/description",
		"DELETE /api/v1/admin/products/:id",
		"POST /api/v1/admin/import/catalog",
		"POST /api/v1/admin/export/snapshot",
		"POST /api/v1/admin/customers",
		"GET /api/v1/admin/customers",
		"GET /api/v1/admin/customers/:id",
		"DELETE /api/v1/admin/customers/:id",
		"GET /api/v1/admin/customers/:id/orders",
		"POST /api/v1/admin/orders",
		"GET /api/v1/admin/orders/:id",
		"PUT /api/v1/admin/orders/:id/status",
	} {
		assert.Contains(t, index, want)
	}
	assert.Len(t, routes, 26)
}

func TestStorefront_MountsWithoutConflicts(t *testing.T) {
	engine := gin.New()
	require.NotPanics(t, func() {
		NewRouter(engine).Add(Storefront(Handlers{}, Guards{})...).Setup()
	})
}

func TestStorefront_AdminGuards(t *testing.T) {
	tokens := auth.NewTokenService(config.AuthConfig{
		Enabled:  true,
		Secret:   "router-test-secret-that-is-long-enough",
		Issuer:   "storefront",
		TokenTTL: time.Hour,
	})
	limiter := middleware.NewRateLimiter(5, time.Minute)
	defer limiter.Close()

	engine := gin.New()
	NewRouter(engine).Add(Storefront(Handlers{}, Guards{Verifier: tokens, OrderLimiter: limiter})...).Setup()

	t.Run("admin routes require a token", func(t *testing.T) {
		for _, target := range []string{"/api/v1/admin/products", "/api/v1/admin/orders"} {
			w := serve(engine, http.MethodPost, target)
			assert.Equal(t, http.StatusUnauthorized, w.Code, target)
		}
	})

	t.Run("scopes are separated", func(t *testing.T) {
		token, _, err := tokens.Issue("catalog-bot", auth.ScopeCatalogAdmin)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/customers/1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
