package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/stackusage/internal/config"
	"github.com/xxxsen/stackusage/internal/export"
	"github.com/xxxsen/stackusage/internal/filestore"
	"github.com/xxxsen/stackusage/internal/handler"
	"github.com/xxxsen/stackusage/internal/render"
	"github.com/xxxsen/stackusage/internal/report"
	"github.com/xxxsen/stackusage/internal/stackapi"
)

func setupRouter(t *testing.T, withArtifacts bool) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := filestore.New(config.StoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)

	if withArtifacts {
		snap := &stackapi.Snapshot{
			Questions: []stackapi.Question{
				{QuestionID: 1, Tags: []string{"go"}, ViewCount: 7, Owner: &stackapi.Owner{UserID: 1}},
			},
			RawQuestions: []json.RawMessage{json.RawMessage(`{"question_id":1,"tags":["go"],"view_count":7}`)},
			RawAnswers:   []json.RawMessage{},
			RawUsers:     []json.RawMessage{},
			FetchedAt:    time.Now(),
		}
		require.NoError(t, export.NewExporter(store).Export(context.Background(), snap, report.Build(snap)))
	}

	engine := gin.New()
	handler.RegisterRoutes(engine.Group("/api/v1"), handler.RouterDeps{
		Reports: handler.NewReportHandler(store, render.NewHTMLRenderer(4, time.Minute)),
	})
	return engine
}

func doGet(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReportSummary(t *testing.T) {
	router := setupRouter(t, true)
	rec := doGet(t, router, "/api/v1/report/summary")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"question_count":1`)
	require.Contains(t, rec.Body.String(), `"user_count":0`)
}

func TestReportTags(t *testing.T) {
	router := setupRouter(t, true)
	rec := doGet(t, router, "/api/v1/report/tags")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"tag":"go"`)
	require.Contains(t, rec.Body.String(), `"view_count":7`)
}

func TestReportDownloadCSV(t *testing.T) {
	router := setupRouter(t, true)
	rec := doGet(t, router, "/api/v1/report/files/tag_metrics.csv")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, rec.Header().Get("Content-Disposition"), "tag_metrics.csv")
	require.Contains(t, rec.Body.String(), "Tag,Aggregate Page Views")
	require.Contains(t, rec.Body.String(), "go,7")
}

func TestReportDownloadRawDump(t *testing.T) {
	router := setupRouter(t, true)
	rec := doGet(t, router, "/api/v1/report/files/questions.json")

	require.Equal(t, http.StatusOK, rec.Code)
	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	require.JSONEq(t, `{"question_id":1,"tags":["go"],"view_count":7}`, string(items[0]))
}

func TestReportDownloadUnknownArtifact(t *testing.T) {
	router := setupRouter(t, true)
	rec := doGet(t, router, "/api/v1/report/files/secrets.txt")
	require.NotContains(t, rec.Body.String(), "secrets")
}

func TestReportView(t *testing.T) {
	router := setupRouter(t, true)
	rec := doGet(t, router, "/api/v1/report/view")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "Usage Report")
}

func TestReportBeforeFirstRun(t *testing.T) {
	router := setupRouter(t, false)
	rec := doGet(t, router, "/api/v1/report/summary")
	require.NotContains(t, rec.Body.String(), `"question_count"`)
}
