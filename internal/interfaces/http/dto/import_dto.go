package dto

import csvimport "github.com/storefront/backend/internal/infrastructure/import"

// Multipart field names accepted by the catalog import endpoint
const (
	ImportFieldCategories = "categories"
	ImportFieldProducts   = "products"
)

// ImportFeedResponse reports the outcome of one feed
// @Description Per-feed import counters
type ImportFeedResponse struct {
	TotalRows    int                  `json:"total_rows" example:"100"`
	ImportedRows int                  `json:"imported_rows" example:"95"`
	UpdatedRows  int                  `json:"updated_rows" example:"3"`
	SkippedRows  int                  `json:"skipped_rows" example:"2"`
	ErrorRows    int                  `json:"error_rows" example:"2"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty" example:"false"`
	TotalErrors  int                  `json:"total_errors,omitempty" example:"0"`
}

// CatalogImportResponse is returned by the catalog import endpoint
// @Description Response from a two-phase catalog import
type CatalogImportResponse struct {
	Categories *ImportFeedResponse `json:"categories,omitempty"`
	Products   *ImportFeedResponse `json:"products"`
}

// SnapshotExportResponse is returned by the snapshot export endpoint
// @Description Location and counters of a written catalog snapshot
type SnapshotExportResponse struct {
	Location   string `json:"location" example:"s3://shop-exports/snapshots/catalog-20261017T093000Z.jsonl"`
	Name       string `json:"name" example:"catalog-20261017T093000Z.jsonl"`
	TakenAt    string `json:"taken_at" example:"2026-10-17T09:30:00Z"`
	Categories int    `json:"categories" example:"12"`
	Products   int    `json:"products" example:"1400"`
	Bytes      int64  `json:"bytes" example:"524288"`
}
