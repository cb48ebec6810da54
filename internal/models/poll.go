package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTimeLimit is the countdown length in seconds when a poll does not set one.
const DefaultTimeLimit = 60

// PollOption is one answer choice of a poll. Option text is unique within a poll.
type PollOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// PollResponse is one respondent's answer. Answer holds the chosen option's text.
type PollResponse struct {
	StudentName string `json:"studentName"`
	Answer      string `json:"answer"`
}

// Poll represents a multiple-choice question asked in a classroom session.
// OwnerID is the connection id of the teacher that created it.
type Poll struct {
	ID        uuid.UUID      `json:"id"`
	Question  string         `json:"question"`
	Options   []PollOption   `json:"options"`
	Responses []PollResponse `json:"responses"`
	TimeLimit int            `json:"timeLimit"`
	OwnerID   string         `json:"ownerId"`
	CreatedAt time.Time      `json:"createdAt"`
}

// PollResult is the aggregated view of a poll streamed to clients. Percentages
// are keyed by option text and formatted to one decimal place.
type PollResult struct {
	Question       string            `json:"question"`
	Options        []PollOption      `json:"options"`
	Percentages    map[string]string `json:"percentages"`
	TotalResponses int               `json:"totalResponses"`
}

// PollHistoryEntry is one row of the teacher's poll history.
type PollHistoryEntry struct {
	Question       string            `json:"question"`
	Options        []PollOption      `json:"options"`
	Percentages    map[string]string `json:"percentages"`
	TotalResponses int               `json:"totalResponses"`
	CreatedAt      time.Time         `json:"createdAt"`
}
