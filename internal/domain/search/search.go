// Package search defines the product discovery index: documents, queries, ranked hits
// and the text analysis shared by every index backend.
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Document is the indexed view of a product
type Document struct {
	ProductID   int64
	Title       string
	Description string
	ReviewCount int
}

// Query is a full-text query. Limit <= 0 means no limit.
type Query struct {
	Text   string
	Limit  int
	Offset int
}

// Validate rejects empty and whitespace-only queries
func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return shared.NewDomainError(shared.CodeValidation, "Search query cannot be empty")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return shared.NewDomainError(shared.CodeValidation, "Limit and offset cannot be negative")
	}
	return nil
}

// Hit is one ranked match
type Hit struct {
	ProductID   int64
	Score       float64
	ReviewCount int
}

// Result is a page of hits plus the number of matches before paging
type Result struct {
	Hits  []Hit
	Total int
}

// Index answers full-text queries over product titles and descriptions.
// Implementations may lag the catalog; callers hydrate hits against the store.
type Index interface {
	// Search returns hits ordered by Rank
	Search(ctx context.Context, q Query) (Result, error)

	// Upsert indexes or re-indexes a document
	Upsert(ctx context.Context, doc Document) error

	// Remove drops a product from the index
	Remove(ctx context.Context, productID int64) error

	// Rebuild replaces the whole index with docs
	Rebuild(ctx context.Context, docs []Document) error
}

// Rank sorts hits by score descending, then review count descending, then product ID ascending
func Rank(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.ReviewCount != b.ReviewCount {
			return a.ReviewCount > b.ReviewCount
		}
		return a.ProductID < b.ProductID
	})
}

// Page applies offset and limit to ranked hits
func Page(hits []Hit, offset, limit int) []Hit {
	if offset >= len(hits) {
		return []Hit{}
	}
	hits = hits[offset:]
	if limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}
	return hits
}
