package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Chetan8299/live-polling-backend/internal/models"
	"github.com/Chetan8299/live-polling-backend/internal/polls"
)

// Store is the durable poll storage the session depends on. GetByID returns
// (nil, nil) when no poll exists for the id.
type Store interface {
	Create(ctx context.Context, p *models.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Poll, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Poll, error)
	AppendResponse(ctx context.Context, pollID uuid.UUID, res models.PollResponse) error
}

// Sender delivers events to connected clients. Broadcast reaches every
// connection; SendTo addresses a single connection id. Both are best-effort
// and never block.
type Sender interface {
	Broadcast(event string, payload interface{})
	SendTo(connID, event string, payload interface{})
}

// Session orchestrates one live classroom poll: the teacher slot, the active
// poll, the countdown and the set of connections that have answered. All state
// is guarded by a single mutex; the countdown goroutine takes the same lock,
// so a tick and a submission never interleave mid-mutation.
type Session struct {
	store  Store
	sender Sender
	logger *zap.Logger

	mu            sync.Mutex
	names         map[string]string // connection id -> display name
	teacherID     string
	activePoll    *models.Poll
	timeRemaining int
	submitted     map[string]struct{}
	countdown     *countdown

	defaultTimeLimit int
	tickEvery        time.Duration
}

// countdown identifies one running countdown. Ticks compare their countdown
// against the session's current one, so a tick that was already queued when
// the countdown got replaced or stopped is discarded instead of firing.
type countdown struct {
	stop chan struct{}
}

// New creates an idle session. State lives for the process lifetime.
// defaultTimeLimit is used when ask_question omits one; zero or negative
// falls back to models.DefaultTimeLimit.
func New(store Store, sender Sender, defaultTimeLimit int, logger *zap.Logger) *Session {
	if defaultTimeLimit <= 0 {
		defaultTimeLimit = models.DefaultTimeLimit
	}
	return &Session{
		store:            store,
		sender:           sender,
		logger:           logger,
		names:            make(map[string]string),
		submitted:        make(map[string]struct{}),
		defaultTimeLimit: defaultTimeLimit,
		tickEvery:        time.Second,
	}
}

// RegisterStudent records the display name for a connection. Names are not
// required to be unique; duplicate submissions are keyed by this name.
func (s *Session) RegisterStudent(connID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[connID] = name
	s.logger.Info("student registered", zap.String("conn_id", connID), zap.String("name", name))
}

// RegisterTeacher claims the single teacher slot. While the slot is held,
// every further attempt is rejected with a teacher_rejected event sent only
// to the requester; the current teacher is unaffected.
func (s *Session) RegisterTeacher(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.teacherID != "" {
		s.sender.SendTo(connID, EventTeacherRejected, RejectionPayload{Msg: "Teacher already exists!"})
		return ErrTeacherExists
	}
	s.teacherID = connID
	s.logger.Info("teacher registered", zap.String("conn_id", connID))
	return nil
}

// CreatePoll persists a new poll, announces it to every connection and starts
// the countdown. Calls from anyone but the registered teacher are ignored.
// Any countdown still running is torn down first, so two countdowns are never
// alive at once even under back-to-back calls.
func (s *Session) CreatePoll(ctx context.Context, connID, question string, options []models.PollOption, timeLimit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.teacherID == "" || connID != s.teacherID {
		return nil
	}

	s.stopCountdownLocked()

	if timeLimit <= 0 {
		timeLimit = s.defaultTimeLimit
	}
	poll := &models.Poll{
		Question:  question,
		Options:   options,
		TimeLimit: timeLimit,
		OwnerID:   connID,
	}
	if err := s.store.Create(ctx, poll); err != nil {
		s.logger.Error("persist poll", zap.Error(err))
		return err
	}

	s.activePoll = poll
	s.timeRemaining = timeLimit
	s.submitted = make(map[string]struct{})

	s.sender.Broadcast(EventNewQuestion, NewQuestionPayload{
		ID:            poll.ID,
		Question:      poll.Question,
		Options:       poll.Options,
		TimeLimit:     poll.TimeLimit,
		TimeRemaining: s.timeRemaining,
	})

	s.startCountdownLocked()
	s.logger.Info("poll started",
		zap.String("poll_id", poll.ID.String()),
		zap.Int("time_limit", timeLimit))
	return nil
}

// SubmitAnswer records one answer for the connection's display name. A second
// answer under the same name for the same poll is dropped, as is an answer
// against an unknown poll id. The submitter gets a confirmation and the
// current results; everyone who already answered plus the teacher get a live
// update.
func (s *Session) SubmitAnswer(ctx context.Context, connID string, pollID uuid.UUID, option string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := s.names[connID]

	poll, err := s.store.GetByID(ctx, pollID)
	if err != nil {
		s.logger.Error("load poll for answer", zap.Error(err))
		return
	}
	if poll == nil {
		return
	}
	for _, res := range poll.Responses {
		if res.StudentName == name {
			return
		}
	}

	res := models.PollResponse{StudentName: name, Answer: option}
	if err := s.store.AppendResponse(ctx, poll.ID, res); err != nil {
		s.logger.Error("persist response", zap.Error(err))
		return
	}
	poll.Responses = append(poll.Responses, res)
	if s.activePoll != nil && s.activePoll.ID == poll.ID {
		s.activePoll.Responses = append(s.activePoll.Responses, res)
	}

	s.submitted[connID] = struct{}{}
	s.sender.SendTo(connID, EventAnswerSubmitted, AnswerSubmittedPayload{Success: true})

	result := polls.Aggregate(poll)
	s.sender.SendTo(connID, EventPollResult, result)
	for id := range s.submitted {
		s.sender.SendTo(id, EventLiveStudentUpdate, result)
	}
	if s.teacherID != "" {
		s.sender.SendTo(s.teacherID, EventLivePollUpdate, result)
	}
}

// PollHistory sends the teacher their past polls, newest first, with
// aggregated percentages. Requests from anyone else are ignored. Reads only
// the store; session state is untouched.
func (s *Session) PollHistory(ctx context.Context, connID string) {
	s.mu.Lock()
	isTeacher := s.teacherID != "" && connID == s.teacherID
	s.mu.Unlock()
	if !isTeacher {
		return
	}

	owned, err := s.store.ListByOwner(ctx, connID)
	if err != nil {
		s.logger.Error("load poll history", zap.Error(err))
		return
	}
	history := make([]*models.PollHistoryEntry, 0, len(owned))
	for _, p := range owned {
		history = append(history, polls.HistoryEntry(p))
	}
	s.sender.SendTo(connID, EventPollHistory, history)
}

// HandleDisconnect drops a connection from the submitted set and the name
// registry. A teacher disconnect is a hard reset: the countdown stops, the
// active poll and submitted set are cleared and the teacher slot is freed.
// The stored poll record survives.
func (s *Session) HandleDisconnect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.submitted, connID)
	delete(s.names, connID)

	if s.teacherID != "" && connID == s.teacherID {
		s.teacherID = ""
		s.stopCountdownLocked()
		s.activePoll = nil
		s.submitted = make(map[string]struct{})
		s.logger.Info("teacher left, session reset", zap.String("conn_id", connID))
	}
}

// Close stops any running countdown. Used on server shutdown.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCountdownLocked()
	s.activePoll = nil
}

func (s *Session) startCountdownLocked() {
	c := &countdown{stop: make(chan struct{})}
	s.countdown = c
	go s.runCountdown(c)
}

// stopCountdownLocked cancels the running countdown if any. Idempotent.
func (s *Session) stopCountdownLocked() {
	if s.countdown != nil {
		close(s.countdown.stop)
		s.countdown = nil
	}
}

func (s *Session) runCountdown(c *countdown) {
	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if !s.tick(c) {
				return
			}
		}
	}
}

// tick advances the countdown by one second: broadcast the remaining time,
// stream live results to the teacher and to everyone who answered, and on
// reaching zero emit the final poll_ended broadcast and go idle. Returns
// false when the countdown is finished or no longer current.
func (s *Session) tick(c *countdown) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The countdown may have been replaced or stopped after this tick was
	// already queued; such a tick must not touch the new state.
	if s.countdown != c || s.activePoll == nil {
		return false
	}

	s.timeRemaining--
	s.sender.Broadcast(EventTimerUpdate, TimerUpdatePayload{TimeRemaining: s.timeRemaining})

	result := s.liveResultLocked()
	if s.teacherID != "" {
		s.sender.SendTo(s.teacherID, EventLivePollUpdate, result)
	}
	for id := range s.submitted {
		s.sender.SendTo(id, EventLiveStudentUpdate, result)
	}

	if s.timeRemaining <= 0 {
		s.countdown = nil
		s.sender.Broadcast(EventPollEnded, result)
		s.logger.Info("poll ended", zap.String("poll_id", s.activePoll.ID.String()),
			zap.Int("responses", result.TotalResponses))
		s.activePoll = nil
		return false
	}
	return true
}

// liveResultLocked aggregates the active poll from the store so responses
// persisted by other handlers are included. Falls back to the in-memory copy
// when the store read fails, so the countdown keeps going.
func (s *Session) liveResultLocked() *models.PollResult {
	ctx, cancel := context.WithTimeout(context.Background(), s.tickEvery)
	defer cancel()
	fresh, err := s.store.GetByID(ctx, s.activePoll.ID)
	if err != nil {
		s.logger.Warn("load poll for live results", zap.Error(err))
	}
	if fresh == nil {
		return polls.Aggregate(s.activePoll)
	}
	return polls.Aggregate(fresh)
}
