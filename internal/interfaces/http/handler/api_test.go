package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	appexport "github.com/storefront/backend/internal/application/export"
	importapp "github.com/storefront/backend/internal/application/import"
	tradeapp "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	searchindex "github.com/storefront/backend/internal/infrastructure/search"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// envelope decodes any response with the data left raw
type envelope = handler.APIResponse[json.RawMessage]

type memorySink struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memorySink) Put(_ context.Context, name string, body io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = data
	return "mem://" + name, nil
}

type testAPI struct {
	engine *gin.Engine
	sink   *memorySink
}

// newTestAPI wires the full storefront stack over an in-memory sqlite database
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver: "sqlite", Path: ":memory:", LogLevel: "silent", LockTimeout: time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	categories := persistence.NewGormCategoryRepository(db.DB)
	products := persistence.NewGormProductRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	index := searchindex.NewMemoryIndex()
	bus := event.NewInMemoryEventBus(nil)
	bus.Subscribe(searchindex.NewIndexHandler(index, nil))

	catalogService := catalogapp.NewCatalogService(categories, products, nil)
	catalogService.SetEventPublisher(bus)
	searchService := catalogapp.NewSearchService(index, products,
		catalogapp.SearchServiceConfig{DefaultLimit: 10, MaxLimit: 50}, nil)

	customerService := tradeapp.NewCustomerService(persistence.NewGormCustomerRepository(db.DB), scope, nil)
	orderService := tradeapp.NewOrderService(scope, persistence.NewGormOrderRepository(db.DB), products, customerService,
		tradeapp.OrderServiceConfig{NumberPrefix: "ORD", NumberRetries: 3, IdempotencyTTL: time.Hour}, nil)
	orderService.SetIdempotencyStore(cache.NewInMemoryIdempotencyStore())
	orderService.SetEventPublisher(bus)

	importService := importapp.NewCatalogImportService(categories, catalogService, importapp.Config{MaxErrors: 10}, nil)
	sink := &memorySink{objects: map[string][]byte{}}
	snapshotService := appexport.NewSnapshotService(persistence.NewGormSnapshotScope(db), sink, nil)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).Add(router.Storefront(router.Handlers{
		System:   handler.NewSystemHandler("storefront", "test", db),
		Category: handler.NewCategoryHandler(catalogService),
		Product:  handler.NewProductHandler(catalogService),
		Search:   handler.NewSearchHandler(searchService),
		Order:    handler.NewOrderHandler(orderService),
		Customer: handler.NewCustomerHandler(customerService),
		Import:   handler.NewImportHandler(importService),
		Export:   handler.NewExportHandler(snapshotService),
	}, router.Guards{})...).Setup()

	return &testAPI{engine: engine, sink: sink}
}

func (a *testAPI) do(t *testing.T, method, target string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return a.serve(t, req)
}

func (a *testAPI) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

// seedProduct upserts a product through the admin API and returns its ID
func (a *testAPI) seedProduct(t *testing.T, req map[string]any) int64 {
	t.Helper()
	w, env := a.do(t, http.MethodPut, "/api/v1/admin/products", req)
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, w.Code, w.Body.String())
	return decodeData[catalogapp.UpsertProductResponse](t, env).Product.ID
}
