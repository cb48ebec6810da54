package session

import (
	"github.com/google/uuid"

	"github.com/Chetan8299/live-polling-backend/internal/models"
)

// Inbound event names (client -> server).
const (
	EventRegisterStudent = "register_student"
	EventRegisterTeacher = "register_teacher"
	EventAskQuestion     = "ask_question"
	EventSubmitAnswer    = "submit_answer"
	EventGetPollHistory  = "get_poll_history"
)

// Outbound event names (server -> client).
const (
	EventTeacherRejected   = "teacher_rejected"
	EventNewQuestion       = "new_question"
	EventTimerUpdate       = "timer_update"
	EventLivePollUpdate    = "live_poll_update"
	EventLiveStudentUpdate = "live_student_update"
	EventPollEnded         = "poll_ended"
	EventAnswerSubmitted   = "answer_submitted"
	EventPollResult        = "poll_result"
	EventPollHistory       = "poll_history"
)

// NewQuestionPayload announces a freshly launched poll to every connection.
type NewQuestionPayload struct {
	ID            uuid.UUID           `json:"id"`
	Question      string              `json:"question"`
	Options       []models.PollOption `json:"options"`
	TimeLimit     int                 `json:"timeLimit"`
	TimeRemaining int                 `json:"timeRemaining"`
}

// TimerUpdatePayload carries the countdown value broadcast once per second.
type TimerUpdatePayload struct {
	TimeRemaining int `json:"timeRemaining"`
}

// AnswerSubmittedPayload confirms a submission to the respondent who made it.
type AnswerSubmittedPayload struct {
	Success bool `json:"success"`
}

// RejectionPayload explains why a registration was refused.
type RejectionPayload struct {
	Msg string `json:"msg"`
}
