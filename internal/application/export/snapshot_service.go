// Package export writes point-in-time catalog snapshots for analytics.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// SnapshotRepositories gives read access to the catalog inside one snapshot
type SnapshotRepositories interface {
	Categories() catalog.CategoryRepository
	Products() catalog.ProductRepository
}

// SnapshotScope runs fn against a consistent, read-only view of the catalog
type SnapshotScope interface {
	Read(ctx context.Context, fn func(repos SnapshotRepositories) error) error
}

// SnapshotSink stores an encoded snapshot under name and returns where it went
type SnapshotSink interface {
	Put(ctx context.Context, name string, body io.Reader, size int64) (location string, err error)
}

// Record kinds, one per line
const (
	KindSnapshot = "snapshot"
	KindCategory = "category"
	KindProduct  = "product"
)

// ContentType of the encoded snapshot
const ContentType = "application/x-ndjson"

// Header is the first line of every snapshot
type Header struct {
	Kind       string    `json:"kind"`
	TakenAt    time.Time `json:"taken_at"`
	Categories int       `json:"categories"`
	Products   int       `json:"products"`
}

// CategoryRecord is one category line
type CategoryRecord struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductRecord is one product line
type ProductRecord struct {
	Kind              string           `json:"kind"`
	ID                int64            `json:"id"`
	ASIN              string           `json:"asin"`
	Title             string           `json:"title"`
	ImageURL          string           `json:"img_url,omitempty"`
	ProductURL        string           `json:"product_url,omitempty"`
	Rating            *decimal.Decimal `json:"stars"`
	ReviewCount       int              `json:"reviews"`
	Price             *decimal.Decimal `json:"price"`
	ListPrice         *decimal.Decimal `json:"list_price"`
	CategoryID        *int64           `json:"category_id"`
	IsBestSeller      bool             `json:"is_best_seller"`
	BoughtInLastMonth int              `json:"bought_in_last_month"`
	Description       *string          `json:"description"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Result describes a written snapshot
type Result struct {
	Location   string    `json:"location"`
	Name       string    `json:"name"`
	TakenAt    time.Time `json:"taken_at"`
	Categories int       `json:"categories"`
	Products   int       `json:"products"`
	Bytes      int64     `json:"bytes"`
}

// DefaultBatchSize is the number of products read per page
const DefaultBatchSize = 500

// SnapshotService exports the catalog as JSON Lines
type SnapshotService struct {
	scope     SnapshotScope
	sink      SnapshotSink
	batchSize int
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a SnapshotService
type Option func(*SnapshotService)

// WithBatchSize sets how many products are read per page
func WithBatchSize(n int) Option {
	return func(s *SnapshotService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithClock overrides the snapshot timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *SnapshotService) {
		s.now = now
	}
}

// NewSnapshotService creates a new SnapshotService
func NewSnapshotService(scope SnapshotScope, sink SnapshotSink, logger *zap.Logger, opts ...Option) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SnapshotService{
		scope:     scope,
		sink:      sink,
		batchSize: DefaultBatchSize,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export reads the whole catalog in one snapshot and hands the encoding to the sink.
// The sink is written only after the read transaction has ended.
func (s *SnapshotService) Export(ctx context.Context) (*Result, error) {
	var (
		body    bytes.Buffer
		header  Header
		takenAt time.Time
	)

	err := s.scope.Read(ctx, func(repos SnapshotRepositories) error {
		body.Reset()
		takenAt = s.now().UTC()
		header = Header{Kind: KindSnapshot, TakenAt: takenAt}
		enc := json.NewEncoder(&body)

		categories, err := repos.Categories().FindAll(ctx)
		if err != nil {
			return fmt.Errorf("read categories: %w", err)
		}
		for i := range categories {
			if err := enc.Encode(toCategoryRecord(&categories[i])); err != nil {
				return err
			}
		}
		header.Categories = len(categories)

		var afterID int64
		for {
			page, err := repos.Products().FindAfter(ctx, afterID, s.batchSize)
			if err != nil {
				return fmt.Errorf("read products after %d: %w", afterID, err)
			}
			for i := range page {
				if err := enc.Encode(toProductRecord(&page[i])); err != nil {
					return err
				}
			}
			header.Products += len(page)
			if len(page) < s.batchSize {
				return nil
			}
			afterID = page[len(page)-1].ID
		}
	})
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.NewEncoder(&out).Encode(header); err != nil {
		return nil, err
	}
	out.Grow(body.Len())
	_, _ = body.WriteTo(&out)

	name := SnapshotName(takenAt)
	size := int64(out.Len())
	location, err := s.sink.Put(ctx, name, &out, size)
	if err != nil {
		return nil, fmt.Errorf("store snapshot %s: %w", name, err)
	}

	s.logger.Info("catalog snapshot exported",
		zap.String("location", location),
		zap.Int("categories", header.Categories),
		zap.Int("products", header.Products),
		zap.Int64("bytes", size),
	)

	return &Result{
		Location:   location,
		Name:       name,
		TakenAt:    takenAt,
		Categories: header.Categories,
		Products:   header.Products,
		Bytes:      size,
	}, nil
}

// SnapshotName is the object name for a snapshot taken at t
func SnapshotName(t time.Time) string {
	return "catalog-" + t.UTC().Format("20060102T150405Z") + ".jsonl"
}

func toCategoryRecord(c *catalog.Category) CategoryRecord {
	return CategoryRecord{
		Kind:      KindCategory,
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt.UTC(),
	}
}

func toProductRecord(p *catalog.Product) ProductRecord {
	return ProductRecord{
		Kind:              KindProduct,
		ID:                p.ID,
		ASIN:              p.ASIN,
		Title:             p.Title,
		ImageURL:          p.ImageURL,
		ProductURL:        p.ProductURL,
		Rating:            p.Rating,
		ReviewCount:       p.ReviewCount,
		Price:             p.Price,
		ListPrice:         p.ListPrice,
		CategoryID:        p.CategoryID,
		IsBestSeller:      p.IsBestSeller,
		BoughtInLastMonth: p.BoughtInLastMonth,
		Description:       p.Description,
		UpdatedAt:         p.UpdatedAt.UTC(),
	}
}
