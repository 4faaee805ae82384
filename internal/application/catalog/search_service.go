package catalog

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/search"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// hydrateChunk bounds the ID list of one hydration query
const hydrateChunk = 500

// SearchServiceConfig bounds search paging
type SearchServiceConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// SearchService answers search_products: ranked hits from the index, hydrated from the store.
// Hits for products the store no longer has are dropped, so stale index entries never surface.
type SearchService struct {
	index       search.Index
	productRepo catalog.ProductRepository
	cfg         SearchServiceConfig
	logger      *zap.Logger
}

// NewSearchService creates a new SearchService
func NewSearchService(index search.Index, productRepo catalog.ProductRepository, cfg SearchServiceConfig, logger *zap.Logger) *SearchService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		index:       index,
		productRepo: productRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Search runs a full-text query. Attribute filters apply after ranking.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	query := search.Query{Text: req.Query, Limit: limit, Offset: req.Offset}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	response := &SearchResponse{Items: []SearchHitResponse{}, Limit: limit, Offset: req.Offset}

	if req.ProductAttributeFilter.IsEmpty() {
		result, err := s.index.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		items, err := s.hydrate(ctx, result.Hits, catalog.ProductFilter{})
		if err != nil {
			return nil, err
		}
		response.Items = items
		response.Total = result.Total
		return response, nil
	}

	query.Limit, query.Offset = 0, 0
	result, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	items, err := s.hydrate(ctx, result.Hits, req.ProductAttributeFilter.toDomain(shared.Filter{}))
	if err != nil {
		return nil, err
	}
	response.Total = len(items)
	if req.Offset < len(items) {
		items = items[req.Offset:]
		if len(items) > limit {
			items = items[:limit]
		}
		response.Items = items
	}
	return response, nil
}

// hydrate loads the products behind hits, keeping rank order and dropping products
// that are gone or fail the filter
func (s *SearchService) hydrate(ctx context.Context, hits []search.Hit, filter catalog.ProductFilter) ([]SearchHitResponse, error) {
	found := make(map[int64]*catalog.Product, len(hits))
	for start := 0; start < len(hits); start += hydrateChunk {
		end := min(start+hydrateChunk, len(hits))
		ids := make([]int64, 0, end-start)
		for _, h := range hits[start:end] {
			ids = append(ids, h.ProductID)
		}

		chunk := filter
		chunk.IDs = ids
		products, _, err := s.productRepo.FindAll(ctx, chunk)
		if err != nil {
			return nil, err
		}
		for i := range products {
			found[products[i].ID] = &products[i]
		}
	}

	items := make([]SearchHitResponse, 0, len(found))
	stale := 0
	for _, h := range hits {
		product, ok := found[h.ProductID]
		if !ok {
			stale++
			continue
		}
		items = append(items, SearchHitResponse{ProductResponse: ToProductResponse(product), Score: h.Score})
	}
	if stale > 0 {
		s.logger.Debug("search hits dropped", zap.Int("dropped", stale))
	}
	return items, nil
}
