// Package analytics aggregates submitted responses into campaign statistics.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayCount is the number of submissions on one UTC calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// QuestionStats summarizes the answers to one question.
// Distribution is present only for choice and rating questions.
type QuestionStats struct {
	QuestionID    primitive.ObjectID  `json:"questionId"`
	QuestionText  string              `json:"questionText"`
	Type          models.QuestionType `json:"type"`
	ResponseCount int                 `json:"responseCount"`
	Distribution  map[string]int      `json:"distribution,omitempty"`
}

// Report is the analytics payload for one campaign.
type Report struct {
	TotalResponses     int64           `json:"totalResponses"`
	TotalStarted       int64           `json:"totalStarted"`
	CompletionRate     float64         `json:"completionRate"`
	AverageTimeSeconds float64         `json:"averageTimeSeconds"`
	ResponsesByDay     []DayCount      `json:"responsesByDay"`
	QuestionStats      []QuestionStats `json:"questionStats"`
}

// CompletionRate returns submitted/started as a percentage rounded to two
// decimal places. Zero started attempts yield zero.
func CompletionRate(submitted, started int64) decimal.Decimal {
	if started <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(submitted).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(started), 2)
}

// Compute builds the report for campaign c from its submitted respondents.
// started counts every attempt, submitted or not. Respondents without a
// SubmittedAt are ignored.
func Compute(c models.Campaign, respondents []models.Respondent, started int64) Report {
	questions := append([]models.Question(nil), c.Questions...)
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })

	stats := make([]QuestionStats, len(questions))
	index := make(map[primitive.ObjectID]int, len(questions))
	for i, q := range questions {
		stats[i] = QuestionStats{QuestionID: q.ID, QuestionText: q.Text, Type: q.Type}
		if q.Type.HasDistribution() {
			stats[i].Distribution = map[string]int{}
		}
		index[q.ID] = i
	}

	byDay := map[string]int{}
	var submitted int64
	var elapsed time.Duration
	for _, r := range respondents {
		if !r.Submitted() {
			continue
		}
		submitted++
		byDay[r.SubmittedAt.UTC().Format("2006-01-02")]++
		if d := r.SubmittedAt.Sub(r.StartedAt); d > 0 {
			elapsed += d
		}

		for _, a := range r.Answers {
			i, ok := index[a.QuestionID]
			if !ok || isBlank(a.Value) {
				continue
			}
			stats[i].ResponseCount++
			if stats[i].Distribution != nil {
				for _, key := range distributionKeys(a.Value) {
					stats[i].Distribution[key]++
				}
			}
		}
	}

	for i := range stats {
		if len(stats[i].Distribution) == 0 {
			stats[i].Distribution = nil
		}
	}

	days := make([]DayCount, 0, len(byDay))
	for d, n := range byDay {
		days = append(days, DayCount{Date: d, Count: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	if started < submitted {
		started = submitted
	}

	rep := Report{
		TotalResponses: submitted,
		TotalStarted:   started,
		CompletionRate: CompletionRate(submitted, started).InexactFloat64(),
		ResponsesByDay: days,
		QuestionStats:  stats,
	}
	if submitted > 0 {
		rep.AverageTimeSeconds = decimal.NewFromFloat(elapsed.Seconds()).
			DivRound(decimal.NewFromInt(submitted), 2).
			InexactFloat64()
	}
	return rep
}

// distributionKeys returns the tally keys for one answer. Checkbox answers
// are lists and count once per selected option.
func distributionKeys(v any) []string {
	switch x := v.(type) {
	case []any:
		return stringsOf(x)
	case primitive.A:
		return stringsOf(x)
	case []string:
		return x
	default:
		return []string{fmt.Sprint(x)}
	}
}

func stringsOf(xs []any) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		out = append(out, fmt.Sprint(x))
	}
	return out
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case primitive.A:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}
