package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	csvimport "github.com/storefront/backend/internal/infrastructure/import"
	"go.uber.org/zap"
)

// ProductWriter is the catalog write path used by the importer
type ProductWriter interface {
	UpsertRecord(ctx context.Context, rec catalog.ProductRecord) (*catalog.Product, bool, error)
}

// Config holds the import settings
type Config struct {
	MaxErrors int
	Delimiter rune
}

// Result reports one feed.
// ErrorRows counts rows rejected with a row error; SkippedRows also includes blank rows.
type Result struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	UpdatedRows  int                  `json:"updated_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// Report is the outcome of one import run
type Report struct {
	Categories *Result `json:"categories,omitempty"`
	Products   *Result `json:"products"`
}

// CatalogImportService loads the category and product feeds into the catalog
type CatalogImportService struct {
	categoryRepo catalog.CategoryRepository
	products     ProductWriter
	cfg          Config
	logger       *zap.Logger
}

// NewCatalogImportService creates a new CatalogImportService
func NewCatalogImportService(
	categoryRepo catalog.CategoryRepository,
	products ProductWriter,
	cfg Config,
	logger *zap.Logger,
) *CatalogImportService {
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = 100
	}
	if cfg.Delimiter == 0 {
		cfg.Delimiter = ','
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogImportService{
		categoryRepo: categoryRepo,
		products:     products,
		cfg:          cfg,
		logger:       logger,
	}
}

// Import runs both phases. The category feed is optional; without it product rows
// can still refer to existing category ids or to category names.
// Row errors are reported in the result; any other error aborts the run, which is safe to repeat.
func (s *CatalogImportService) Import(ctx context.Context, categoryFeed, productFeed io.Reader) (*Report, error) {
	labels := newCategoryLabels()
	report := &Report{}

	if categoryFeed != nil {
		result, err := s.importCategories(ctx, categoryFeed, labels)
		if err != nil {
			return nil, fmt.Errorf("category feed: %w", err)
		}
		report.Categories = result
	}

	result, err := s.importProducts(ctx, productFeed, labels)
	if err != nil {
		return nil, fmt.Errorf("product feed: %w", err)
	}
	report.Products = result

	s.logger.Info("catalog import finished",
		zap.Int("products_imported", result.ImportedRows),
		zap.Int("products_updated", result.UpdatedRows),
		zap.Int("products_skipped", result.SkippedRows),
	)
	return report, nil
}

// categoryLabels resolves product category references for one run
type categoryLabels struct {
	byLabel map[string]int64
	byName  map[string]int64
}

func newCategoryLabels() *categoryLabels {
	return &categoryLabels{
		byLabel: make(map[string]int64),
		byName:  make(map[string]int64),
	}
}

func (l *categoryLabels) add(label, name string, id int64) {
	if label != "" {
		l.byLabel[label] = id
	}
	l.byName[catalog.CategoryNameKey(name)] = id
}

// importCategories is phase one: resolve or create every category and record its labels
func (s *CatalogImportService) importCategories(ctx context.Context, r io.Reader, labels *categoryLabels) (*Result, error) {
	feed, err := s.open(r, csvimport.RequiredCategoryColumns)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	errs := csvimport.NewErrorLog(s.cfg.MaxErrors)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := feed.Next()
		if err == io.EOF {
			break
		}
		result.TotalRows++
		if err != nil {
			if !s.rowFailed(err, errs, result) {
				return nil, err
			}
			continue
		}
		if row.Blank() {
			result.SkippedRows++
			continue
		}

		parsed, rowErrs := csvimport.ParseCategoryRow(row)
		if len(rowErrs) > 0 {
			s.reject(errs, result, rowErrs...)
			continue
		}
		if parsed.Label != "" {
			if _, dup := labels.byLabel[parsed.Label]; dup {
				s.reject(errs, result, csvimport.Reject(parsed.Line, csvimport.ColCategoryID,
					csvimport.CodeRejected, "category id appears more than once in the feed").WithValue(parsed.Label))
				continue
			}
		}

		category, created, err := s.categoryRepo.EnsureByName(ctx, parsed.Name)
		if err != nil {
			if errors.Is(err, shared.ErrValidation) {
				s.reject(errs, result, csvimport.Reject(parsed.Line, csvimport.ColCategoryName,
					csvimport.CodeRejected, messageOf(err)).WithValue(parsed.Name))
				continue
			}
			return nil, err
		}
		labels.add(parsed.Label, category.Name, category.ID)
		if created {
			result.ImportedRows++
		} else {
			result.UpdatedRows++
		}
	}

	finish(result, errs)
	return result, nil
}

// importProducts is phase two: bind every product to its resolved category and upsert it by ASIN
func (s *CatalogImportService) importProducts(ctx context.Context, r io.Reader, labels *categoryLabels) (*Result, error) {
	feed, err := s.open(r, csvimport.RequiredProductColumns)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	errs := csvimport.NewErrorLog(s.cfg.MaxErrors)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := feed.Next()
		if err == io.EOF {
			break
		}
		result.TotalRows++
		if err != nil {
			if !s.rowFailed(err, errs, result) {
				return nil, err
			}
			continue
		}
		if row.Blank() {
			result.SkippedRows++
			continue
		}

		parsed, rowErrs := csvimport.ParseProductRow(row)
		if len(rowErrs) > 0 {
			s.reject(errs, result, rowErrs...)
			continue
		}

		rec := recordFromRow(parsed)
		rowErr, ok, err := s.bindCategory(ctx, &rec, parsed, labels)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.reject(errs, result, rowErr)
			continue
		}

		product, created, err := s.products.UpsertRecord(ctx, rec)
		if err != nil {
			if errors.Is(err, shared.ErrValidation) || errors.Is(err, shared.ErrReferential) {
				s.reject(errs, result, csvimport.Reject(parsed.Line, "", csvimport.CodeRejected, messageOf(err)).WithValue(parsed.ASIN))
				continue
			}
			return nil, err
		}
		if rec.CategoryName != "" && product.CategoryID != nil {
			labels.add("", rec.CategoryName, *product.CategoryID)
		}
		if created {
			result.ImportedRows++
		} else {
			result.UpdatedRows++
		}
	}

	finish(result, errs)
	return result, nil
}

// bindCategory resolves the row's category reference onto rec.
// An empty reference leaves the product uncategorized. A numeric reference is a feed id
// or an existing category id; anything else is a category name, created if absent.
func (s *CatalogImportService) bindCategory(
	ctx context.Context,
	rec *catalog.ProductRecord,
	row csvimport.ProductRow,
	labels *categoryLabels,
) (csvimport.RowError, bool, error) {
	ref := row.CategoryReference
	if ref == "" {
		return csvimport.RowError{}, true, nil
	}

	if n, err := csvimport.ParseInt(ref); err == nil {
		label := strconv.FormatInt(n, 10)
		if id, ok := labels.byLabel[label]; ok {
			rec.CategoryID = &id
			return csvimport.RowError{}, true, nil
		}
		_, err := s.categoryRepo.FindByID(ctx, n)
		switch {
		case err == nil:
			labels.byLabel[label] = n
			rec.CategoryID = &n
			return csvimport.RowError{}, true, nil
		case errors.Is(err, shared.ErrNotFound):
			return csvimport.Reject(row.Line, csvimport.ColCategoryReference,
				csvimport.CodeReference, "no category with this id").WithValue(ref), false, nil
		default:
			return csvimport.RowError{}, false, err
		}
	}

	if id, ok := labels.byName[catalog.CategoryNameKey(ref)]; ok {
		rec.CategoryID = &id
		return csvimport.RowError{}, true, nil
	}
	rec.CategoryName = ref
	return csvimport.RowError{}, true, nil
}

// recordFromRow maps a feed row to a product record. Description is always absent at import;
// it is filled in later by enrichment and kept across re-imports.
func recordFromRow(row csvimport.ProductRow) catalog.ProductRecord {
	return catalog.ProductRecord{
		ASIN:              row.ASIN,
		Title:             row.Title,
		ImageURL:          row.ImageURL,
		ProductURL:        row.ProductURL,
		Rating:            row.Rating,
		ReviewCount:       row.ReviewCount,
		Price:             row.Price,
		ListPrice:         row.ListPrice,
		IsBestSeller:      row.IsBestSeller,
		BoughtInLastMonth: row.BoughtInLastMonth,
		Description:       nil,
	}
}

func (s *CatalogImportService) open(r io.Reader, required []string) (*csvimport.FeedReader, error) {
	if r == nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Feed is required")
	}
	feed, err := csvimport.NewFeedReader(r,
		csvimport.Delimiter(s.cfg.Delimiter),
		csvimport.Aliases(csvimport.FeedHeaderAliases),
	)
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodeValidation, "Feed cannot be read", err)
	}
	if missing := feed.Missing(required); len(missing) > 0 {
		return nil, shared.NewDomainError(shared.CodeValidation,
			"Feed header is missing required columns: "+strings.Join(missing, ", "))
	}
	return feed, nil
}

// rowFailed records a row-level read error. It returns false for errors that must abort the feed.
func (s *CatalogImportService) rowFailed(err error, errs *csvimport.ErrorLog, result *Result) bool {
	var rowErr csvimport.RowError
	if !errors.As(err, &rowErr) {
		return false
	}
	s.reject(errs, result, rowErr)
	return true
}

func (s *CatalogImportService) reject(errs *csvimport.ErrorLog, result *Result, rowErrs ...csvimport.RowError) {
	result.ErrorRows++
	result.SkippedRows++
	errs.Add(rowErrs...)
	for _, e := range rowErrs {
		s.logger.Warn("import row skipped",
			zap.Int("row", e.Row),
			zap.String("column", e.Column),
			zap.String("code", string(e.Code)),
			zap.String("reason", e.Message),
		)
	}
}

func finish(result *Result, errs *csvimport.ErrorLog) {
	result.Errors = errs.Kept()
	result.IsTruncated = errs.Truncated()
	result.TotalErrors = errs.Total()
}

func messageOf(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
