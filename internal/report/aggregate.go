package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/xxxsen/stackusage/internal/stackapi"
)

// UnknownContributor attributes content whose authoring account was deleted.
const UnknownContributor = "unknown"

type Summary struct {
	UserCount             int `json:"user_count"`
	AskerCount            int `json:"asker_count"`
	AnswererCount         int `json:"answerer_count"`
	AskedAndAnsweredCount int `json:"asked_and_answered_count"`
	ContributorCount      int `json:"contributor_count"`
	UsersWithBadges       int `json:"users_with_badges"`
	QuestionCount         int `json:"question_count"`
	AnswerCount           int `json:"answer_count"`
	TotalViewCount        int `json:"total_view_count"`
	UnmatchedAnswerCount  int `json:"unmatched_answer_count,omitempty"`
}

type TagMetrics struct {
	Tag                     string `json:"tag"`
	ViewCount               int    `json:"view_count"`
	UniqueAskers            int    `json:"unique_askers"`
	UniqueAnswerers         int    `json:"unique_answerers"`
	UniqueCommenters        int    `json:"unique_commenters"`
	UniqueContributors      int    `json:"unique_contributors"`
	QuestionCount           int    `json:"question_count"`
	QuestionUpvotes         int    `json:"question_upvotes"`
	QuestionDownvotes       int    `json:"question_downvotes"`
	QuestionComments        int    `json:"question_comments"`
	QuestionsNoAnswers      int    `json:"questions_no_answers"`
	QuestionsAcceptedAnswer int    `json:"questions_accepted_answer"`
	AnswerCount             int    `json:"answer_count"`
	AnswerUpvotes           int    `json:"answer_upvotes"`
	AnswerDownvotes         int    `json:"answer_downvotes"`
	AnswerComments          int    `json:"answer_comments"`
}

// Report is one aggregation pass over a snapshot. Tags are ordered by
// aggregate page views, highest first.
type Report struct {
	Summary     Summary      `json:"summary"`
	Tags        []TagMetrics `json:"tags"`
	GeneratedAt time.Time    `json:"generated_at"`
}

type contributorSet map[string]struct{}

func (s contributorSet) add(id string) {
	s[id] = struct{}{}
}

type tagAgg struct {
	metrics    TagMetrics
	askers     contributorSet
	answerers  contributorSet
	commenters contributorSet
}

// Build tallies a snapshot into per-tag metrics and an overall summary.
// Answers are attributed to the tags of their parent question; an answer
// whose question is absent from the snapshot counts toward the totals but
// cannot be attributed to any tag.
func Build(snap *stackapi.Snapshot) *Report {
	askers := contributorSet{}
	answerers := contributorSet{}
	commenters := contributorSet{}

	tags := map[string]*tagAgg{}
	ensure := func(tag string) *tagAgg {
		agg, ok := tags[tag]
		if !ok {
			agg = &tagAgg{
				metrics:    TagMetrics{Tag: tag},
				askers:     contributorSet{},
				answerers:  contributorSet{},
				commenters: contributorSet{},
			}
			tags[tag] = agg
		}
		return agg
	}

	questionIndex := make(map[int64]*stackapi.Question, len(snap.Questions))
	totalViews := 0

	for i := range snap.Questions {
		q := &snap.Questions[i]
		questionIndex[q.QuestionID] = q
		totalViews += q.ViewCount

		askerID := contributorID(q.Owner)
		askers.add(askerID)
		for _, comment := range q.Comments {
			commenters.add(contributorID(comment.Owner))
		}

		for _, tag := range q.Tags {
			agg := ensure(tag)
			agg.metrics.QuestionCount++
			agg.metrics.ViewCount += q.ViewCount
			agg.metrics.QuestionUpvotes += q.UpVoteCount
			agg.metrics.QuestionDownvotes += q.DownVoteCount
			agg.metrics.QuestionComments += len(q.Comments)
			if q.AnswerCount == 0 {
				agg.metrics.QuestionsNoAnswers++
			}
			if q.IsAnswered {
				agg.metrics.QuestionsAcceptedAnswer++
			}
			agg.askers.add(askerID)
			for _, comment := range q.Comments {
				agg.commenters.add(contributorID(comment.Owner))
			}
		}
	}

	unmatched := 0
	for i := range snap.Answers {
		a := &snap.Answers[i]
		answererID := contributorID(a.Owner)
		answerers.add(answererID)
		for _, comment := range a.Comments {
			commenters.add(contributorID(comment.Owner))
		}

		q, ok := questionIndex[a.QuestionID]
		if !ok {
			unmatched++
			continue
		}
		for _, tag := range q.Tags {
			agg := ensure(tag)
			agg.metrics.AnswerCount++
			agg.metrics.AnswerUpvotes += a.UpVoteCount
			agg.metrics.AnswerDownvotes += a.DownVoteCount
			agg.metrics.AnswerComments += len(a.Comments)
			agg.answerers.add(answererID)
			for _, comment := range a.Comments {
				agg.commenters.add(contributorID(comment.Owner))
			}
		}
	}

	usersWithBadges := 0
	for i := range snap.Users {
		if snap.Users[i].BadgeCounts.Bronze > 0 {
			usersWithBadges++
		}
	}

	rep := &Report{
		Summary: Summary{
			UserCount:             len(snap.Users),
			AskerCount:            len(askers),
			AnswererCount:         len(answerers),
			AskedAndAnsweredCount: intersectionSize(askers, answerers),
			ContributorCount:      unionSize(askers, answerers, commenters),
			UsersWithBadges:       usersWithBadges,
			QuestionCount:         len(snap.Questions),
			AnswerCount:           len(snap.Answers),
			TotalViewCount:        totalViews,
			UnmatchedAnswerCount:  unmatched,
		},
		GeneratedAt: time.Now(),
	}

	rep.Tags = make([]TagMetrics, 0, len(tags))
	for _, agg := range tags {
		agg.metrics.UniqueAskers = len(agg.askers)
		agg.metrics.UniqueAnswerers = len(agg.answerers)
		agg.metrics.UniqueCommenters = len(agg.commenters)
		agg.metrics.UniqueContributors = unionSize(agg.askers, agg.answerers, agg.commenters)
		rep.Tags = append(rep.Tags, agg.metrics)
	}
	sort.Slice(rep.Tags, func(i, j int) bool {
		if rep.Tags[i].ViewCount != rep.Tags[j].ViewCount {
			return rep.Tags[i].ViewCount > rep.Tags[j].ViewCount
		}
		return rep.Tags[i].Tag < rep.Tags[j].Tag
	})
	return rep
}

func contributorID(owner *stackapi.Owner) string {
	if owner == nil || owner.UserID == 0 {
		return UnknownContributor
	}
	return strconv.FormatInt(owner.UserID, 10)
}

func intersectionSize(a, b contributorSet) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for id := range a {
		if _, ok := b[id]; ok {
			n++
		}
	}
	return n
}

func unionSize(sets ...contributorSet) int {
	union := contributorSet{}
	for _, s := range sets {
		for id := range s {
			union.add(id)
		}
	}
	return len(union)
}
