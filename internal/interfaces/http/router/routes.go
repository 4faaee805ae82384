package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Handlers are the endpoint handlers the storefront API exposes
type Handlers struct {
	System   *handler.SystemHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Search   *handler.SearchHandler
	Order    *handler.OrderHandler
	Customer *handler.CustomerHandler
	Import   *handler.ImportHandler
	Export   *handler.ExportHandler
}

// Guards are the access controls applied per route group.
// A nil Verifier leaves the admin API open; a nil OrderLimiter disables rate limiting.
type Guards struct {
	Verifier     middleware.TokenVerifier
	OrderLimiter *middleware.RateLimiter
}

// Storefront builds the public and admin route groups
func Storefront(h Handlers, g Guards) []*Group {
	var orderLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if g.OrderLimiter != nil {
		orderLimit = middleware.RateLimit(g.OrderLimiter)
	}

	public := NewGroup("public", "/")
	public.
		GET("/health", h.System.Health).
		GET("/system/info", h.System.GetSystemInfo)
	public.Sub("products", "/products").
		GET("/search", h.Search.Search).
		GET("", h.Product.List).
		GET("/:ref", h.Product.Get)
	public.Sub("categories", "/categories").
		GET("", h.Category.List).
		GET("/:id", h.Category.GetByID)
	public.Sub("orders", "/orders").
		POST("", orderLimit, h.Order.Create).
		GET("/:number", h.Order.GetByNumber).
		GET("/:number/status", h.Order.GetStatus)

	catalogAdmin := middleware.RequireScope(g.Verifier, auth.ScopeCatalogAdmin)
	ordersAdmin := middleware.RequireScope(g.Verifier, auth.ScopeOrdersAdmin)

	admin := NewGroup("admin", "/admin")
	admin.Sub("categories", "/categories", catalogAdmin).
		POST("", h.Category.Create).
		DELETE("/:id", h.Category.Delete)
	admin.Sub("products", "/products", catalogAdmin).
		POST("", h.Product.Create).
		PUT("", h.Product.Upsert).
		PUT("/:id/description", h.Product.SetDescription).
		DELETE("/:id", h.Product.Delete)
	admin.Sub("import", "/import", catalogAdmin).
		POST("/catalog", h.Import.ImportCatalog)
	admin.Sub("export", "/export", catalogAdmin).
		POST("/snapshot", h.Export.Snapshot)
	admin.Sub("customers", "/customers", ordersAdmin).
		POST("", h.Customer.Create).
		GET("", h.Customer.List).
		GET("/:id", h.Customer.GetByID).
		DELETE("/:id", h.Customer.Delete).
		GET("/:id/orders", h.Order.ListByCustomer)
	admin.Sub("orders", "/orders", ordersAdmin).
		POST("", h.Order.Place).
		GET("/:id", h.Order.GetByID).
		PUT("/:id/status", h.Order.UpdateStatus)

	return []*Group{public, admin}
}
