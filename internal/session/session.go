package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quantprep/examgate/internal/model"
)

var (
	// ErrIndexOutOfRange is returned when a navigation target falls
	// outside [0, len(questions)).
	ErrIndexOutOfRange = errors.New("question index out of range")

	// ErrTimerAttached is returned when a second timer is attached to a
	// session that already has one.
	ErrTimerAttached = errors.New("session already has an active timer")
)

// QuestionAttempt is the mutable per-question record of a session:
// immutable content plus the answer/review label. The label reflects the
// most recent action only, never inferred from SelectedAnswer.
type QuestionAttempt struct {
	Question       model.Question      `json:"question"`
	Status         model.AttemptStatus `json:"status"`
	SelectedAnswer model.AnswerChoice  `json:"selectedAnswer"`
}

// Counts are the aggregate status tallies shown next to the question
// palette. They are derived fresh on every read, never stored.
type Counts struct {
	Answered   int `json:"answered"`
	Unanswered int `json:"unanswered"`
	Review     int `json:"review"`
}

// Snapshot is a point-in-time copy of session state safe to serialize
// while mutations continue.
type Snapshot struct {
	ID            uuid.UUID            `json:"id"`
	Test          model.TestDefinition `json:"test"`
	Questions     []QuestionAttempt    `json:"questions"`
	CurrentIndex  int                  `json:"currentQuestionIndex"`
	TimeRemaining int                  `json:"timeRemainingSeconds"`
	Submitted     bool                 `json:"submitted"`
	Counts        Counts               `json:"counts"`
}

// Session is the exclusive owner of one in-progress test attempt. All
// reads and writes go through its methods; the mutex serializes timer
// ticks against user actions the way the source runtime's single thread
// did. Questions are fixed in order and count after construction.
type Session struct {
	mu sync.Mutex

	id        uuid.UUID
	token     string
	test      model.TestDefinition
	questions []QuestionAttempt

	currentIndex  int
	timeRemaining int
	submitted     bool
	createdAt     time.Time

	timer *Timer
}

// New builds a session from a fetched test definition and its resolved
// questions. Every question starts unanswered with no selection and the
// clock starts at the full allotment in seconds.
func New(test model.TestDefinition, questions []model.Question, token string) *Session {
	attempts := make([]QuestionAttempt, len(questions))
	for i, q := range questions {
		attempts[i] = QuestionAttempt{
			Question:       q,
			Status:         model.StatusUnanswered,
			SelectedAnswer: model.ChoiceNone,
		}
	}

	return &Session{
		id:            uuid.New(),
		token:         token,
		test:          test,
		questions:     attempts,
		timeRemaining: test.TimeMinutes * 60,
		createdAt:     time.Now(),
	}
}

// ID returns the server-issued session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Token returns the bearer token captured at session start, forwarded
// verbatim on the submission call.
func (s *Session) Token() string {
	return s.token
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// AllottedSeconds returns the test's full time allotment in seconds.
func (s *Session) AllottedSeconds() int {
	return s.test.TimeMinutes * 60
}

// Len returns the number of questions in the attempt.
func (s *Session) Len() int {
	return len(s.questions)
}

// SetCurrentQuestion moves the cursor to an explicit index. Out-of-range
// targets are rejected rather than stored.
func (s *Session) SetCurrentQuestion(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.questions) {
		return ErrIndexOutOfRange
	}
	s.currentIndex = index
	return nil
}

// CurrentIndex returns the cursor position.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

// DecrementTimer takes one second off the clock, flooring at zero, and
// returns the new value.
func (s *Session) DecrementTimer() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timeRemaining > 0 {
		s.timeRemaining--
	}
	return s.timeRemaining
}

// TimeRemaining returns the seconds left on the clock.
func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeRemaining
}

// AnswerQuestion records a selection for the question with the given id
// and labels it answered. Unknown ids are a silent no-op; the returned
// bool reports whether a question matched.
func (s *Session) AnswerQuestion(questionID string, answer model.AnswerChoice) bool {
	if !answer.Valid() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.questions {
		if s.questions[i].Question.ID == questionID {
			s.questions[i].Status = model.StatusAnswered
			s.questions[i].SelectedAnswer = answer
			return true
		}
	}
	return false
}

// MarkForReview labels the question with the given id for review,
// leaving any recorded selection untouched. Unknown ids are a silent
// no-op; the returned bool reports whether a question matched.
func (s *Session) MarkForReview(questionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.questions {
		if s.questions[i].Question.ID == questionID {
			s.questions[i].Status = model.StatusReview
			return true
		}
	}
	return false
}

// AdvanceIfNotLast moves the cursor forward by one unless it already
// sits on the last question.
func (s *Session) AdvanceIfNotLast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentIndex < len(s.questions)-1 {
		s.currentIndex++
	}
}

// CurrentQuestionID returns the id of the question under the cursor,
// or "" for an empty session.
func (s *Session) CurrentQuestionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return ""
	}
	return s.questions[s.currentIndex].Question.ID
}

// Counts tallies the status labels across all questions.
func (s *Session) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countsLocked()
}

func (s *Session) countsLocked() Counts {
	var c Counts
	for i := range s.questions {
		switch s.questions[i].Status {
		case model.StatusAnswered:
			c.Answered++
		case model.StatusReview:
			c.Review++
		default:
			c.Unanswered++
		}
	}
	return c
}

// Answers packages the final per-question results for submission.
func (s *Session) Answers() []model.SubmittedAnswer {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make([]model.SubmittedAnswer, len(s.questions))
	for i := range s.questions {
		answers[i] = model.SubmittedAnswer{
			QuestionID:     s.questions[i].Question.ID,
			SelectedAnswer: s.questions[i].SelectedAnswer,
			Status:         s.questions[i].Status,
		}
	}
	return answers
}

// MarkSubmitted pins the clock to zero as the terminal marker and flags
// the session terminal. Returns true only for the call that performed
// the transition, so the timer-expiry and manual-submit paths cannot
// both post the answers upstream.
func (s *Session) MarkSubmitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return false
	}
	s.submitted = true
	s.timeRemaining = 0
	return true
}

// Submitted reports whether the attempt has reached its terminal state.
func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// AttachTimer binds the session's timer so teardown paths can reach it.
// A session may only ever have one.
func (s *Session) AttachTimer(t *Timer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		return ErrTimerAttached
	}
	s.timer = t
	return nil
}

// StopTimer stops the attached timer if any. Idempotent.
func (s *Session) StopTimer() {
	s.mu.Lock()
	t := s.timer
	s.mu.Unlock()

	if t != nil {
		t.Stop()
	}
}

// Snapshot copies the full observable state under one lock acquisition.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := make([]QuestionAttempt, len(s.questions))
	copy(questions, s.questions)

	return Snapshot{
		ID:            s.id,
		Test:          s.test,
		Questions:     questions,
		CurrentIndex:  s.currentIndex,
		TimeRemaining: s.timeRemaining,
		Submitted:     s.submitted,
		Counts:        s.countsLocked(),
	}
}
