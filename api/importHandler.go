package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/importer"
	"github.com/gin-gonic/gin"
)

const maxImportSize = 10 << 20

// openUpload pulls the "file" part out of a multipart upload and rejects
// anything that is not an .xlsx.
func openUpload(c *gin.Context) (io.ReadCloser, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return nil, false
	}
	if !strings.HasSuffix(fh.Filename, ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .xlsx files are allowed"})
		return nil, false
	}
	if fh.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open upload"})
		return nil, false
	}
	return f, true
}

func (h *Handler) runImport(c *gin.Context, run func(ctx context.Context, r io.Reader) (*importer.ImportResult, error)) {
	f, ok := openUpload(c)
	if !ok {
		return
	}
	defer f.Close()

	result, err := run(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ImportFinancialWorkbook(c *gin.Context) {
	h.runImport(c, importer.NewImporter(h.Workflow).ImportFinancialWorkbook)
}

func (h *Handler) ImportManufacturingWorkbook(c *gin.Context) {
	h.runImport(c, importer.NewImporter(h.Workflow).ImportManufacturingWorkbook)
}

func (h *Handler) ImportStorePLWorkbook(c *gin.Context) {
	h.runImport(c, importer.NewImporter(h.Workflow).ImportStorePLWorkbook)
}
