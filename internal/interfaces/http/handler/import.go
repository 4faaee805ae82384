package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	importapp "github.com/storefront/backend/internal/application/import"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ImportHandler accepts catalog feed uploads
type ImportHandler struct {
	BaseHandler
	importService *importapp.CatalogImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *importapp.CatalogImportService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
	}
}

// ImportCatalog godoc
//
//	@Summary		Import the catalog feeds
//	@Description	Runs the category feed first, if given, then the product feed. Products are upserted by ASIN.
//	@Description	Rows that fail to parse are skipped and reported; re-running the same feeds is safe.
//	@Tags			import
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			categories	formData	file	false	"Category feed CSV (id,label)"
//	@Param			products	formData	file	true	"Product feed CSV"
//	@Success		200			{object}	APIResponse[dto.CatalogImportResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		413			{object}	ErrorResponse
//	@Failure		503			{object}	ErrorResponse
//	@Router			/admin/import/catalog [post]
func (h *ImportHandler) ImportCatalog(c *gin.Context) {
	products, err := openFormFile(c, dto.ImportFieldProducts)
	if err != nil {
		h.formError(c, err)
		return
	}
	if products == nil {
		h.HandleError(c, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Multipart field %q is required", dto.ImportFieldProducts)))
		return
	}
	defer products.Close()

	categories, err := openFormFile(c, dto.ImportFieldCategories)
	if err != nil {
		h.formError(c, err)
		return
	}
	var categoryFeed io.Reader
	if categories != nil {
		defer categories.Close()
		categoryFeed = categories
	}

	report, err := h.importService.Import(c.Request.Context(), categoryFeed, products)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toImportResponse(report))
}

// formError answers a multipart parsing failure
func (h *ImportHandler) formError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Upload exceeds maximum allowed size")
		return
	}
	h.BadRequest(c, "Invalid multipart upload: "+err.Error())
}

// openFormFile opens an uploaded file, returning nil when the field is absent
func openFormFile(c *gin.Context, field string) (multipart.File, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return header.Open()
}

func toImportResponse(report *importapp.Report) dto.CatalogImportResponse {
	return dto.CatalogImportResponse{
		Categories: toFeedResponse(report.Categories),
		Products:   toFeedResponse(report.Products),
	}
}

func toFeedResponse(r *importapp.Result) *dto.ImportFeedResponse {
	if r == nil {
		return nil
	}
	return &dto.ImportFeedResponse{
		TotalRows:    r.TotalRows,
		ImportedRows: r.ImportedRows,
		UpdatedRows:  r.UpdatedRows,
		SkippedRows:  r.SkippedRows,
		ErrorRows:    r.ErrorRows,
		Errors:       r.Errors,
		IsTruncated:  r.IsTruncated,
		TotalErrors:  r.TotalErrors,
	}
}
