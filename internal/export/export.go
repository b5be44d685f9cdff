// Package export writes the report artifacts: the extended tag-metric CSV,
// raw JSON dumps of each collection, a summary JSON, and a markdown report.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/stackusage/internal/filestore"
	"github.com/xxxsen/stackusage/internal/report"
	"github.com/xxxsen/stackusage/internal/stackapi"
)

const (
	FileTagMetrics = "tag_metrics.csv"
	FileQuestions  = "questions.json"
	FileAnswers    = "answers.json"
	FileUsers      = "users.json"
	FileSummary    = "usage_report.json"
	FileMarkdown   = "usage_report.md"
)

// CSVHeader is the fixed column set of the tag-metric CSV.
var CSVHeader = []string{
	"Tag", "Aggregate Page Views", "Unique Askers", "Unique Answerers",
	"Unique Commenters", "Unique Contributors", "Question Count", "Question Upvotes",
	"Question Downvotes", "Question Comments", "Questions Without Answers",
	"Questions With Accepted Answers", "Answer Count", "Answer Upvotes",
	"Answer Downvotes", "Answer Comments",
}

type Exporter struct {
	store filestore.Store
}

func NewExporter(store filestore.Store) *Exporter {
	return &Exporter{store: store}
}

// Export writes every artifact for one run. Callers fetch the full snapshot
// before invoking it, so a fetch failure never leaves partial artifacts; a
// write failure aborts the run with artifacts already written left in place.
func (e *Exporter) Export(ctx context.Context, snap *stackapi.Snapshot, rep *report.Report) error {
	logger := logutil.GetLogger(ctx)

	artifacts := []struct {
		key  string
		data func() ([]byte, error)
	}{
		{FileTagMetrics, func() ([]byte, error) { return renderCSV(rep) }},
		{FileQuestions, func() ([]byte, error) { return marshalRaw(snap.RawQuestions) }},
		{FileAnswers, func() ([]byte, error) { return marshalRaw(snap.RawAnswers) }},
		{FileUsers, func() ([]byte, error) { return marshalRaw(snap.RawUsers) }},
		{FileSummary, func() ([]byte, error) { return renderSummary(snap, rep) }},
		{FileMarkdown, func() ([]byte, error) { return []byte(report.Markdown(rep)), nil }},
	}

	for _, artifact := range artifacts {
		data, err := artifact.data()
		if err != nil {
			return fmt.Errorf("render %s: %w", artifact.key, err)
		}
		if err := e.store.Save(ctx, artifact.key, newByteReader(data), int64(len(data))); err != nil {
			return fmt.Errorf("save %s: %w", artifact.key, err)
		}
		logger.Info("artifact saved", zap.String("key", artifact.key), zap.Int("bytes", len(data)))
	}
	return nil
}

func renderCSV(rep *report.Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, tag := range rep.Tags {
		row := []string{
			tag.Tag,
			strconv.Itoa(tag.ViewCount),
			strconv.Itoa(tag.UniqueAskers),
			strconv.Itoa(tag.UniqueAnswerers),
			strconv.Itoa(tag.UniqueCommenters),
			strconv.Itoa(tag.UniqueContributors),
			strconv.Itoa(tag.QuestionCount),
			strconv.Itoa(tag.QuestionUpvotes),
			strconv.Itoa(tag.QuestionDownvotes),
			strconv.Itoa(tag.QuestionComments),
			strconv.Itoa(tag.QuestionsNoAnswers),
			strconv.Itoa(tag.QuestionsAcceptedAnswer),
			strconv.Itoa(tag.AnswerCount),
			strconv.Itoa(tag.AnswerUpvotes),
			strconv.Itoa(tag.AnswerDownvotes),
			strconv.Itoa(tag.AnswerComments),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalRaw serializes the unmodified items; each element is emitted exactly
// as the API returned it.
func marshalRaw(items []json.RawMessage) ([]byte, error) {
	if items == nil {
		items = []json.RawMessage{}
	}
	return json.Marshal(items)
}

// SummaryDocument is the shape of the usage_report.json artifact; the serve
// mode decodes it back to answer summary queries.
type SummaryDocument struct {
	Metadata struct {
		GeneratedAt   time.Time `json:"generated_at"`
		FetchedAt     time.Time `json:"fetched_at"`
		QuestionCount int       `json:"question_count"`
		AnswerCount   int       `json:"answer_count"`
		UserCount     int       `json:"user_count"`
		TagCount      int       `json:"tag_count"`
		Version       string    `json:"version"`
	} `json:"metadata"`
	Summary report.Summary      `json:"summary"`
	Tags    []report.TagMetrics `json:"tags"`
}

func renderSummary(snap *stackapi.Snapshot, rep *report.Report) ([]byte, error) {
	doc := SummaryDocument{
		Summary: rep.Summary,
		Tags:    rep.Tags,
	}
	doc.Metadata.GeneratedAt = rep.GeneratedAt
	doc.Metadata.FetchedAt = snap.FetchedAt
	doc.Metadata.QuestionCount = len(snap.Questions)
	doc.Metadata.AnswerCount = len(snap.Answers)
	doc.Metadata.UserCount = len(snap.Users)
	doc.Metadata.TagCount = len(rep.Tags)
	doc.Metadata.Version = "1.0"

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type byteReader struct {
	*bytes.Reader
}

func newByteReader(data []byte) filestore.ReadSeekCloser {
	return byteReader{Reader: bytes.NewReader(data)}
}

func (byteReader) Close() error {
	return nil
}
