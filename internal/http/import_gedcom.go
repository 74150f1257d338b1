package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arkivist/heritage/internal/gedcom"
	"github.com/arkivist/heritage/internal/importers"
	"github.com/arkivist/heritage/internal/services"
)

// GedcomImportResponse mirrors the pipeline outcome for API consumers.
type GedcomImportResponse struct {
	Success         bool                      `json:"success"`
	Strategy        string                    `json:"strategy"`
	TreeID          uint                      `json:"tree_id"`
	RunID           string                    `json:"run_id"`
	TotalRecords    int                       `json:"total_records"`
	Counts          importers.StoreCounts     `json:"counts"`
	DurationMs      int64                     `json:"duration_ms"`
	MemoryPeakBytes uint64                    `json:"memory_peak_bytes"`
	Errors          []importers.ErrorRecord   `json:"errors,omitempty"`
	Reconciliation  importers.Reconciliation  `json:"reconciliation"`
}

// GedcomImportController handles GEDCOM file uploads.
type GedcomImportController struct {
	importer *services.ImportService
}

func NewGedcomImportController(importer *services.ImportService) *GedcomImportController {
	return &GedcomImportController{importer: importer}
}

// Import handles POST /api/trees/:id/import. The file arrives as the "file"
// multipart field; strategy comes from the "strategy" form field or query
// parameter and defaults to standard.
func (controller *GedcomImportController) Import(c *gin.Context) {
	treeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid tree id"})
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	defer file.Close()

	strategy := c.PostForm("strategy")
	if strategy == "" {
		strategy = c.Query("strategy")
	}

	out, runErr := controller.importer.Import(c.Request.Context(), file, uint(treeID), strategy)
	if runErr != nil && out == nil {
		c.IndentedJSON(importErrorStatus(runErr), gin.H{"error": runErr.Error()})
		return
	}

	resp := GedcomImportResponse{
		Success:         out.Success,
		Strategy:        string(out.Strategy),
		TreeID:          out.TreeID,
		RunID:           out.RunID,
		TotalRecords:    out.TotalRecords,
		Counts:          out.Counts,
		DurationMs:      out.Duration.Milliseconds(),
		MemoryPeakBytes: out.MemoryPeakBytes,
		Errors:          out.Errors,
		Reconciliation:  out.Reconciliation,
	}

	if runErr != nil {
		resp.Errors = append(resp.Errors, importers.ErrorRecord{Stage: "run", Message: runErr.Error()})
		c.IndentedJSON(importErrorStatus(runErr), resp)
		return
	}
	c.IndentedJSON(http.StatusOK, resp)
}

func importErrorStatus(err error) int {
	var tooLarge *services.ErrFileTooLarge
	switch {
	case errors.Is(err, gedcom.ErrMalformedFile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, importers.ErrUnknownStrategy):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case isNotFound(err):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
