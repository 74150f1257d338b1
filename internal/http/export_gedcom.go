package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arkivist/heritage/internal/services"
)

// GedcomExportController serves rendered GEDCOM files.
type GedcomExportController struct {
	exporter *services.ExportService
}

func NewGedcomExportController(exporter *services.ExportService) *GedcomExportController {
	return &GedcomExportController{exporter: exporter}
}

// Export handles GET /api/trees/:id/export and returns the tree as a
// downloadable .ged file.
func (controller *GedcomExportController) Export(c *gin.Context) {
	treeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid tree id"})
		return
	}

	text, err := controller.exporter.Export(c.Request.Context(), uint(treeID))
	if err != nil {
		if isNotFound(err) {
			c.IndentedJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=tree-%d.ged", treeID))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
