package persistence

import (
	"context"
	"strings"

	"github.com/storefront/backend/internal/domain/search"
	"gorm.io/gorm"
)

// PostgresSearchIndex answers search queries from the products.search_vector column.
// The column is generated by the database, so it is always consistent with the catalog
// and the write-side methods are no-ops.
type PostgresSearchIndex struct {
	db *gorm.DB
}

// NewPostgresSearchIndex creates a new PostgresSearchIndex
func NewPostgresSearchIndex(db *gorm.DB) *PostgresSearchIndex {
	return &PostgresSearchIndex{db: db}
}

type searchRow struct {
	ProductID   int64
	ReviewCount int
	Score       float64
	Total       int
}

// Search matches any query term against title (weight A) and description (weight B)
func (i *PostgresSearchIndex) Search(ctx context.Context, q search.Query) (search.Result, error) {
	if err := q.Validate(); err != nil {
		return search.Result{}, err
	}
	terms := search.UniqueTerms(q.Text)
	if len(terms) == 0 {
		return search.Result{Hits: []search.Hit{}}, nil
	}

	sql := `SELECT p.id AS product_id, p.review_count, ts_rank(p.search_vector, q) AS score, count(*) OVER () AS total
FROM products p, to_tsquery('english', ?) q
WHERE p.search_vector @@ q
ORDER BY score DESC, p.review_count DESC, p.id ASC`
	args := []any{strings.Join(terms, " | ")}
	if q.Limit > 0 {
		sql += " LIMIT ?"
		args = append(args, q.Limit)
	}
	if q.Offset > 0 {
		sql += " OFFSET ?"
		args = append(args, q.Offset)
	}

	var rows []searchRow
	if err := i.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return search.Result{}, translateError(err, "")
	}

	result := search.Result{Hits: make([]search.Hit, len(rows))}
	for n, row := range rows {
		result.Hits[n] = search.Hit{ProductID: row.ProductID, Score: row.Score, ReviewCount: row.ReviewCount}
		result.Total = row.Total
	}
	if len(rows) == 0 && q.Offset > 0 {
		var total int64
		if err := i.db.WithContext(ctx).
			Raw(`SELECT count(*) FROM products p WHERE p.search_vector @@ to_tsquery('english', ?)`, args[0]).
			Scan(&total).Error; err != nil {
			return search.Result{}, translateError(err, "")
		}
		result.Total = int(total)
	}
	return result, nil
}

// Upsert is a no-op; the search vector is a generated column
func (i *PostgresSearchIndex) Upsert(context.Context, search.Document) error { return nil }

// Remove is a no-op; deleting the row removes it from the index
func (i *PostgresSearchIndex) Remove(context.Context, int64) error { return nil }

// Rebuild is a no-op; the GIN index is maintained by the database
func (i *PostgresSearchIndex) Rebuild(context.Context, []search.Document) error { return nil }

// Ensure PostgresSearchIndex implements Index
var _ search.Index = (*PostgresSearchIndex)(nil)
