package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/stackusage/internal/config"
	"github.com/xxxsen/stackusage/internal/export"
	"github.com/xxxsen/stackusage/internal/filestore"
	"github.com/xxxsen/stackusage/internal/stackapi"
)

func newMockAPI(t *testing.T, failEndpoint string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/"+failEndpoint {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		switch r.URL.Path {
		case "/questions":
			fmt.Fprint(w, `{"items":[
				{"question_id":1,"tags":["go"],"view_count":9,"owner":{"user_id":1},"answer_count":1,"is_answered":true},
				{"question_id":2,"tags":["go","http"],"view_count":3,"owner":{"user_id":2}}
			],"has_more":false}`)
		case "/answers":
			fmt.Fprint(w, `{"items":[{"answer_id":7,"question_id":1,"owner":{"user_id":2},"up_vote_count":2}],"has_more":false}`)
		case "/users":
			fmt.Fprint(w, `{"items":[{"user_id":1,"badge_counts":{"bronze":1}},{"user_id":2}],"has_more":false}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
}

func newService(t *testing.T, baseURL string, console *bytes.Buffer) (*ReportService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := filestore.New(config.StoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": dir},
	})
	require.NoError(t, err)

	client := stackapi.NewClient(config.APIConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		PageSize:       100,
		TimeoutSeconds: 5,
	})
	return NewReportService(client, export.NewExporter(store), console), dir
}

func TestRun_ProducesReportAndArtifacts(t *testing.T) {
	server := newMockAPI(t, "")
	defer server.Close()

	var console bytes.Buffer
	reports, dir := newService(t, server.URL, &console)

	rep, err := reports.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, rep.Summary.QuestionCount)
	require.Equal(t, 1, rep.Summary.AnswerCount)
	require.Equal(t, 2, rep.Summary.UserCount)
	require.Equal(t, 12, rep.Summary.TotalViewCount)

	out := console.String()
	require.Contains(t, out, "USAGE REPORT")
	require.Contains(t, out, "Total registered users: 2")

	for _, name := range []string{
		export.FileTagMetrics, export.FileQuestions, export.FileAnswers,
		export.FileUsers, export.FileSummary, export.FileMarkdown,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, "missing artifact %s", name)
	}
}

func TestRun_FailedEndpointLeavesNoArtifacts(t *testing.T) {
	for _, endpoint := range []string{"questions", "answers", "users"} {
		t.Run(endpoint, func(t *testing.T) {
			server := newMockAPI(t, endpoint)
			defer server.Close()

			var console bytes.Buffer
			reports, dir := newService(t, server.URL, &console)

			_, err := reports.Run(context.Background())
			require.Error(t, err)

			var statusErr *stackapi.StatusError
			require.ErrorAs(t, err, &statusErr)
			require.Equal(t, endpoint, statusErr.Endpoint)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Empty(t, entries, "no artifacts may be written on fetch failure")
			require.Empty(t, console.String())
		})
	}
}
