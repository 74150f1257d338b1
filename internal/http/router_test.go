package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/arkivist/heritage/internal/database"
	"github.com/arkivist/heritage/internal/database/trees"
	"github.com/arkivist/heritage/internal/entities"
	"github.com/arkivist/heritage/internal/importers"
	"github.com/arkivist/heritage/internal/services"
)

type stubRunner struct {
	raw      string
	strategy importers.Strategy
	out      *importers.Outcome
	err      error
}

func (s *stubRunner) Run(_ context.Context, raw string, treeID uint, strategy importers.Strategy) (*importers.Outcome, error) {
	s.raw = raw
	s.strategy = strategy
	if s.out != nil {
		s.out.TreeID = treeID
	}
	return s.out, s.err
}

type stubExporter struct {
	text string
	err  error
}

func (s *stubExporter) Export(context.Context, uint) (string, error) {
	return s.text, s.err
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func setupRouter(t *testing.T, runner services.ImportRunner, exporter services.TreeExporter) (*gin.Engine, uint) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "http_test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.DB.Logger = logger.Default.LogMode(logger.Silent)

	repo := trees.NewRepository(db.DB)
	tree := &entities.Tree{Name: "test"}
	require.NoError(t, repo.Create(tree))

	cfg := RouterConfig{
		Database:      db,
		Version:       "test",
		ImportService: services.NewImportService(repo, runner, nil, 64, testLogger()),
		ExportService: services.NewExportService(exporter),
		TreeService:   services.NewTreeService(repo),
		Log:           testLogger(),
	}
	return NewRouter(cfg), tree.ID
}

func multipartUpload(t *testing.T, field, filename, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for key, value := range extra {
		require.NoError(t, w.WriteField(key, value))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupRouter(t, &stubRunner{}, &stubExporter{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Equal(t, "not configured", resp.Checks["documents"])
}

func TestCreateAndListTrees(t *testing.T) {
	router, _ := setupRouter(t, &stubRunner{}, &stubExporter{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trees",
		strings.NewReader(`{"name": "Lindqvist", "description": "maternal line"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created entities.Tree
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Lindqvist", created.Name)
	assert.NotZero(t, created.ID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/trees", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count": 2`)
}

func TestCreateTreeValidation(t *testing.T) {
	router, _ := setupRouter(t, &stubRunner{}, &stubExporter{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trees", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGedcomImport(t *testing.T) {
	counts := importers.NewStoreCounts()
	counts[importers.StoreRelational][importers.KindIndividuals] = 2
	runner := &stubRunner{out: &importers.Outcome{
		Success:      true,
		Strategy:     importers.StrategyOptimized,
		RunID:        "run-1",
		Counts:       counts,
		TotalRecords: 2,
	}}
	router, treeID := setupRouter(t, runner, &stubExporter{})

	raw := "0 HEAD\n0 @I1@ INDI\n0 @I2@ INDI\n0 TRLR\n"
	body, contentType := multipartUpload(t, "file", "family.ged", raw,
		map[string]string{"strategy": "optimized"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trees/1/import", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, raw, runner.raw)
	assert.Equal(t, importers.StrategyOptimized, runner.strategy)

	var resp GedcomImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, treeID, resp.TreeID)
	assert.Equal(t, 2, resp.Counts[importers.StoreRelational][importers.KindIndividuals])
}

func TestGedcomImportMissingFile(t *testing.T) {
	router, _ := setupRouter(t, &stubRunner{}, &stubExporter{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trees/1/import", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGedcomImportUnknownTree(t *testing.T) {
	router, _ := setupRouter(t, &stubRunner{}, &stubExporter{})

	body, contentType := multipartUpload(t, "file", "family.ged", "0 HEAD\n0 TRLR\n", nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trees/999/import", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGedcomImportUnknownStrategy(t *testing.T) {
	router, _ := setupRouter(t, &stubRunner{}, &stubExporter{})

	body, contentType := multipartUpload(t, "file", "family.ged", "0 HEAD\n0 TRLR\n",
		map[string]string{"strategy": "turbo"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trees/1/import", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGedcomExport(t *testing.T) {
	text := "0 HEAD\n0 @I1@ INDI\n0 TRLR\n"
	router, _ := setupRouter(t, &stubRunner{}, &stubExporter{text: text})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/trees/1/export", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, text, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "tree-1.ged")
}
