package report

import (
	"fmt"
	"io"
	"strings"
)

// markdownTagLimit caps the tag table in the markdown report; the full list
// lives in the CSV artifact.
const markdownTagLimit = 25

// Render writes the copy-paste friendly console report.
func Render(w io.Writer, rep *Report) {
	s := rep.Summary
	fmt.Fprintln(w)
	fmt.Fprintln(w, "************")
	fmt.Fprintln(w, "USAGE REPORT")
	fmt.Fprintln(w, "************")
	fmt.Fprintf(w, "Total registered users: %d\n", s.UserCount)
	fmt.Fprintf(w, "Total users who asked questions: %d\n", s.AskerCount)
	fmt.Fprintf(w, "Total users who answered questions: %d\n", s.AnswererCount)
	fmt.Fprintf(w, "Total users who asked AND answered: %d\n", s.AskedAndAnsweredCount)
	fmt.Fprintf(w, "Total users who asked OR answered: %d\n", s.ContributorCount)
	fmt.Fprintf(w, "Total users with participation badges: %d\n", s.UsersWithBadges)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total questions: %d\n", s.QuestionCount)
	fmt.Fprintf(w, "Total answers: %d\n", s.AnswerCount)
	fmt.Fprintf(w, "Total page views across questions: %d\n", s.TotalViewCount)
}

// Markdown renders the report as a markdown document. The HTML view of the
// serve mode is generated from this output.
func Markdown(rep *Report) string {
	s := rep.Summary
	var b strings.Builder
	b.WriteString("# Usage Report\n\n")
	fmt.Fprintf(&b, "Generated at %s.\n\n", rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	b.WriteString("## Users\n\n")
	fmt.Fprintf(&b, "- Total registered users: %d\n", s.UserCount)
	fmt.Fprintf(&b, "- Users who asked questions: %d\n", s.AskerCount)
	fmt.Fprintf(&b, "- Users who answered questions: %d\n", s.AnswererCount)
	fmt.Fprintf(&b, "- Users who asked AND answered: %d\n", s.AskedAndAnsweredCount)
	fmt.Fprintf(&b, "- Users who asked OR answered: %d\n", s.ContributorCount)
	fmt.Fprintf(&b, "- Users with participation badges: %d\n", s.UsersWithBadges)
	b.WriteString("\n## Content\n\n")
	fmt.Fprintf(&b, "- Total questions: %d\n", s.QuestionCount)
	fmt.Fprintf(&b, "- Total answers: %d\n", s.AnswerCount)
	fmt.Fprintf(&b, "- Total page views across questions: %d\n", s.TotalViewCount)
	if s.UnmatchedAnswerCount > 0 {
		fmt.Fprintf(&b, "- Answers without a fetched question: %d\n", s.UnmatchedAnswerCount)
	}

	if len(rep.Tags) > 0 {
		b.WriteString("\n## Top tags by aggregate page views\n\n")
		b.WriteString("| Tag | Views | Questions | Answers | Contributors |\n")
		b.WriteString("| --- | ---: | ---: | ---: | ---: |\n")
		limit := len(rep.Tags)
		if limit > markdownTagLimit {
			limit = markdownTagLimit
		}
		for _, tag := range rep.Tags[:limit] {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d |\n",
				tag.Tag, tag.ViewCount, tag.QuestionCount, tag.AnswerCount, tag.UniqueContributors)
		}
		if len(rep.Tags) > limit {
			fmt.Fprintf(&b, "\nThe full list of %d tags is in `tag_metrics.csv`.\n", len(rep.Tags))
		}
	}
	return b.String()
}
