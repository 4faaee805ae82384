package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appexport "github.com/storefront/backend/internal/application/export"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ExportHandler triggers analytics snapshots
type ExportHandler struct {
	BaseHandler
	snapshotService *appexport.SnapshotService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(snapshotService *appexport.SnapshotService) *ExportHandler {
	return &ExportHandler{
		snapshotService: snapshotService,
	}
}

// Snapshot godoc
// @Summary      Export a catalog snapshot
// @Description  Writes every category and product, read in one consistent transaction, to the configured sink as JSON lines
// @Tags         export
// @Produce      json
// @Success      201 {object} APIResponse[dto.SnapshotExportResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /admin/export/snapshot [post]
func (h *ExportHandler) Snapshot(c *gin.Context) {
	result, err := h.snapshotService.Export(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.SnapshotExportResponse{
		Location:   result.Location,
		Name:       result.Name,
		TakenAt:    result.TakenAt.UTC().Format(time.RFC3339),
		Categories: result.Categories,
		Products:   result.Products,
		Bytes:      result.Bytes,
	})
}
