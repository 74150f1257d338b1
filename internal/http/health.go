package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arkivist/heritage/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db       *database.Database
	document Pinger
	graph    Pinger
	version  string
}

func NewHealthController(db *database.Database, document, graph Pinger, version string) *HealthController {
	return &HealthController{
		db:       db,
		document: document,
		graph:    graph,
		version:  version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	// The relational store alone decides healthy/unhealthy: documents and
	// graph are reconciled after the fact and a brief outage there should
	// not fail readiness.
	checks["documents"] = probe(c, h.document)
	checks["graph"] = probe(c, h.graph)

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

func probe(c *gin.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.Ping(c.Request.Context()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
