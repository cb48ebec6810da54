package polls

import (
	"strconv"

	"github.com/Chetan8299/live-polling-backend/internal/models"
)

// Aggregate computes per-option counts and percentages for a poll. Every option
// appears in the result, including options nobody picked. Percentages are
// formatted to one decimal place; with zero responses every percentage is "0.0".
func Aggregate(p *models.Poll) *models.PollResult {
	counts := countAnswers(p)
	total := len(p.Responses)

	percentages := make(map[string]string, len(p.Options))
	for _, opt := range p.Options {
		percentages[opt.Text] = formatPercent(counts[opt.Text], total)
	}

	return &models.PollResult{
		Question:       p.Question,
		Options:        p.Options,
		Percentages:    percentages,
		TotalResponses: total,
	}
}

// HistoryEntry formats a poll for the teacher's history view.
func HistoryEntry(p *models.Poll) *models.PollHistoryEntry {
	result := Aggregate(p)
	return &models.PollHistoryEntry{
		Question:       result.Question,
		Options:        result.Options,
		Percentages:    result.Percentages,
		TotalResponses: result.TotalResponses,
		CreatedAt:      p.CreatedAt,
	}
}

// countAnswers tallies responses per option text. Responses that match no
// option are ignored for counting but still contribute to the total.
func countAnswers(p *models.Poll) map[string]int {
	counts := make(map[string]int, len(p.Options))
	for _, opt := range p.Options {
		counts[opt.Text] = 0
	}
	for _, res := range p.Responses {
		if _, ok := counts[res.Answer]; ok {
			counts[res.Answer]++
		}
	}
	return counts
}

func formatPercent(count, total int) string {
	if total == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(float64(count)/float64(total)*100, 'f', 1, 64)
}
