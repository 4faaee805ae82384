package searchindex

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/search"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultRebuildBatchSize is the page size used when reading the catalog for a rebuild
const DefaultRebuildBatchSize = 500

// ProductPager pages through the catalog in ID order
type ProductPager interface {
	FindAfter(ctx context.Context, afterID int64, limit int) ([]catalog.Product, error)
}

// DocumentFromProduct returns the indexed view of a product
func DocumentFromProduct(p *catalog.Product) search.Document {
	title, description := p.SearchText()
	return search.Document{
		ProductID:   p.ID,
		Title:       title,
		Description: description,
		ReviewCount: p.ReviewCount,
	}
}

// journaled is implemented by indexes that can replay updates made while a rebuild reads the catalog
type journaled interface {
	BeginRebuild()
	EndRebuild()
}

// Rebuild reads the whole catalog and replaces the contents of index with it.
// One goroutine pages the store while another turns products into documents.
// Updates the index receives meanwhile survive when it implements BeginRebuild.
func Rebuild(ctx context.Context, products ProductPager, index search.Index, batchSize int, logger *zap.Logger) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultRebuildBatchSize
	}
	start := time.Now()
	if j, ok := index.(journaled); ok {
		j.BeginRebuild()
		defer j.EndRebuild()
	}

	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan []catalog.Product, 2)

	g.Go(func() error {
		defer close(batches)
		var afterID int64
		for {
			page, err := products.FindAfter(gctx, afterID, batchSize)
			if err != nil {
				return err
			}
			if len(page) == 0 {
				return nil
			}
			select {
			case batches <- page:
			case <-gctx.Done():
				return gctx.Err()
			}
			afterID = page[len(page)-1].ID
		}
	})

	docs := make([]search.Document, 0, batchSize)
	g.Go(func() error {
		for page := range batches {
			for i := range page {
				docs = append(docs, DocumentFromProduct(&page[i]))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := index.Rebuild(ctx, docs); err != nil {
		return 0, err
	}

	logger.Info("search index rebuilt",
		zap.Int("documents", len(docs)),
		zap.Duration("duration", time.Since(start)),
	)
	return len(docs), nil
}
