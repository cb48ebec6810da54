package polls

import (
	"testing"
	"time"

	"github.com/Chetan8299/live-polling-backend/internal/models"
)

func twoOptionPoll(responses ...models.PollResponse) *models.Poll {
	return &models.Poll{
		Question: "2+2?",
		Options: []models.PollOption{
			{Text: "3", IsCorrect: false},
			{Text: "4", IsCorrect: true},
		},
		Responses: responses,
		TimeLimit: 5,
	}
}

func TestAggregateSplitVote(t *testing.T) {
	poll := twoOptionPoll(
		models.PollResponse{StudentName: "A", Answer: "4"},
		models.PollResponse{StudentName: "B", Answer: "3"},
	)

	result := Aggregate(poll)

	if result.TotalResponses != 2 {
		t.Errorf("expected 2 total responses, got %d", result.TotalResponses)
	}
	if result.Percentages["4"] != "50.0" {
		t.Errorf("expected 50.0 for option 4, got %s", result.Percentages["4"])
	}
	if result.Percentages["3"] != "50.0" {
		t.Errorf("expected 50.0 for option 3, got %s", result.Percentages["3"])
	}
}

func TestAggregateZeroResponses(t *testing.T) {
	result := Aggregate(twoOptionPoll())

	if result.TotalResponses != 0 {
		t.Errorf("expected 0 total responses, got %d", result.TotalResponses)
	}
	for opt, pct := range result.Percentages {
		if pct != "0.0" {
			t.Errorf("expected 0.0 for option %s with no responses, got %s", opt, pct)
		}
	}
	if len(result.Percentages) != 2 {
		t.Errorf("expected every option in percentages, got %d entries", len(result.Percentages))
	}
}

func TestAggregateOptionWithoutVotes(t *testing.T) {
	poll := twoOptionPoll(
		models.PollResponse{StudentName: "A", Answer: "4"},
	)

	result := Aggregate(poll)

	if result.Percentages["4"] != "100.0" {
		t.Errorf("expected 100.0 for option 4, got %s", result.Percentages["4"])
	}
	if result.Percentages["3"] != "0.0" {
		t.Errorf("expected 0.0 for unchosen option, got %s", result.Percentages["3"])
	}
}

func TestAggregateOneDecimalRounding(t *testing.T) {
	poll := twoOptionPoll(
		models.PollResponse{StudentName: "A", Answer: "4"},
		models.PollResponse{StudentName: "B", Answer: "4"},
		models.PollResponse{StudentName: "C", Answer: "3"},
	)

	result := Aggregate(poll)

	if result.Percentages["4"] != "66.7" {
		t.Errorf("expected 66.7, got %s", result.Percentages["4"])
	}
	if result.Percentages["3"] != "33.3" {
		t.Errorf("expected 33.3, got %s", result.Percentages["3"])
	}
}

func TestAggregateKeepsOptionRecords(t *testing.T) {
	result := Aggregate(twoOptionPoll())

	if len(result.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(result.Options))
	}
	if !result.Options[1].IsCorrect || result.Options[0].IsCorrect {
		t.Error("expected correctness flags carried through to the result")
	}
}

func TestAggregateAnswerMatchingNoOption(t *testing.T) {
	// A response that matches no option still counts toward the total but
	// never shows up in an option's percentage.
	poll := twoOptionPoll(
		models.PollResponse{StudentName: "A", Answer: "4"},
		models.PollResponse{StudentName: "B", Answer: "5"},
	)

	result := Aggregate(poll)

	if result.TotalResponses != 2 {
		t.Errorf("expected total 2, got %d", result.TotalResponses)
	}
	if result.Percentages["4"] != "50.0" {
		t.Errorf("expected 50.0 for option 4, got %s", result.Percentages["4"])
	}
	if _, ok := result.Percentages["5"]; ok {
		t.Error("unexpected percentage entry for answer that is not an option")
	}
}

func TestHistoryEntry(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	poll := twoOptionPoll(models.PollResponse{StudentName: "A", Answer: "4"})
	poll.CreatedAt = createdAt

	entry := HistoryEntry(poll)

	if !entry.CreatedAt.Equal(createdAt) {
		t.Errorf("expected createdAt %v, got %v", createdAt, entry.CreatedAt)
	}
	if entry.TotalResponses != 1 {
		t.Errorf("expected 1 response, got %d", entry.TotalResponses)
	}
	if entry.Percentages["4"] != "100.0" {
		t.Errorf("expected 100.0, got %s", entry.Percentages["4"])
	}
}
