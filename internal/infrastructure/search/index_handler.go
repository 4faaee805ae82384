package searchindex

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/search"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IndexHandler applies catalog events to a search index
type IndexHandler struct {
	index  search.Index
	logger *zap.Logger
}

// NewIndexHandler creates a handler that keeps index in step with the catalog
func NewIndexHandler(index search.Index, logger *zap.Logger) *IndexHandler {
	return &IndexHandler{
		index:  index,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *IndexHandler) EventTypes() []string {
	return []string{
		catalog.EventTypeProductUpserted,
		catalog.EventTypeProductDeleted,
	}
}

// Handle updates the index for one catalog event
func (h *IndexHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *catalog.ProductUpsertedEvent:
		if err := h.index.Upsert(ctx, search.Document{
			ProductID:   e.ProductID,
			Title:       e.Title,
			Description: e.Description,
			ReviewCount: e.ReviewCount,
		}); err != nil {
			return fmt.Errorf("index product %d: %w", e.ProductID, err)
		}
		h.logger.Debug("product indexed", zap.Int64("product_id", e.ProductID))
	case *catalog.ProductDeletedEvent:
		if err := h.index.Remove(ctx, e.ProductID); err != nil {
			return fmt.Errorf("unindex product %d: %w", e.ProductID, err)
		}
		h.logger.Debug("product unindexed", zap.Int64("product_id", e.ProductID))
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}

var _ shared.EventHandler = (*IndexHandler)(nil)
