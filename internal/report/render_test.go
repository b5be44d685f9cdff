package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/stackusage/internal/stackapi"
)

func TestRender_ConsoleReport(t *testing.T) {
	rep := Build(fixtureSnapshot())

	var buf bytes.Buffer
	Render(&buf, rep)
	out := buf.String()

	require.Contains(t, out, "USAGE REPORT")
	require.Contains(t, out, "Total registered users: 3")
	require.Contains(t, out, "Total users who asked AND answered: 2")
	require.Contains(t, out, "Total questions: 3")
	require.Contains(t, out, "Total page views across questions: 17")
}

func TestRender_ZeroCountsAreReportedNotErrored(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Build(&stackapi.Snapshot{}))
	require.Contains(t, buf.String(), "Total registered users: 0")
	require.Contains(t, buf.String(), "Total questions: 0")
}

func TestMarkdown_IncludesSummaryAndTagTable(t *testing.T) {
	md := Markdown(Build(fixtureSnapshot()))

	require.True(t, strings.HasPrefix(md, "# Usage Report"))
	require.Contains(t, md, "- Total registered users: 3")
	require.Contains(t, md, "| go | 15 | 2 | 2 | 3 |")
	require.Contains(t, md, "- Answers without a fetched question: 1")
}

func TestMarkdown_CapsTagTable(t *testing.T) {
	snap := &stackapi.Snapshot{}
	for i := 0; i < markdownTagLimit+10; i++ {
		snap.Questions = append(snap.Questions, stackapi.Question{
			QuestionID: int64(i + 1),
			Owner:      owner(1),
			Tags:       []string{fmt.Sprintf("tag-%02d", i)},
			ViewCount:  i,
		})
	}
	md := Markdown(Build(snap))
	require.Contains(t, md, "The full list of 35 tags")
	// header + separator + capped rows
	require.Equal(t, markdownTagLimit+2, strings.Count(md, "\n|"))
}
