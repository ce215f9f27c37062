package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantprep/examgate/internal/backend"
	"github.com/quantprep/examgate/internal/model"
	"github.com/quantprep/examgate/internal/session"
)

var (
	// ErrSessionFinished is returned for mutations against a session
	// that has already reached its terminal state.
	ErrSessionFinished = errors.New("session already submitted")

	// ErrNoQuestions is returned when a test definition references an
	// empty question list.
	ErrNoQuestions = errors.New("test has no questions")
)

// submitTimeout bounds the upstream submission call when it is driven
// by timer expiry rather than a live request context.
const submitTimeout = 15 * time.Second

// SessionService orchestrates the test-taking flow: it fetches and
// assembles sessions, exposes the navigation and answer operations the
// presentation layer invokes, and handles manual and timer-forced
// submission. It is a thin layer over the session store; all state
// lives there.
type SessionService struct {
	client       *backend.Client
	manager      *session.Manager
	tickInterval time.Duration
	log          zerolog.Logger
}

// NewSessionService creates a SessionService. tickInterval is the timer
// resolution; production passes one second, tests pass less.
func NewSessionService(client *backend.Client, manager *session.Manager, tickInterval time.Duration, log zerolog.Logger) *SessionService {
	return &SessionService{
		client:       client,
		manager:      manager,
		tickInterval: tickInterval,
		log:          log.With().Str("component", "session_service").Logger(),
	}
}

// Start fetches the test definition and its referenced questions, builds
// a fully-initialized session, registers it and starts its countdown.
// Any fetch failure aborts before registration, so a partial session is
// never exposed.
func (s *SessionService) Start(ctx context.Context, token, testID string) (*session.Session, error) {
	test, err := s.client.FetchTest(ctx, token, testID)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	if len(test.QuestionsList) == 0 {
		return nil, ErrNoQuestions
	}

	questions, err := s.client.FetchQuestions(ctx, token, test.QuestionsList)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	sess := session.New(*test, questions, token)

	timer := session.NewTimer(sess, s.tickInterval, func() {
		s.forceSubmit(sess)
	})
	if err := sess.AttachTimer(timer); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	s.manager.Put(sess)
	timer.Start()

	s.log.Info().
		Str("session_id", sess.ID().String()).
		Str("test_id", test.ID).
		Int("questions", sess.Len()).
		Int("seconds", sess.TimeRemaining()).
		Msg("Session started")
	return sess, nil
}

// Get looks up an active session.
func (s *SessionService) Get(id uuid.UUID) (*session.Session, error) {
	return s.manager.Get(id)
}

// AnswerAndAdvance records the answer on the addressed question, then
// advances the cursor unless it already sits on the last question. An
// unknown question id leaves all state untouched.
func (s *SessionService) AnswerAndAdvance(id uuid.UUID, questionID string, answer model.AnswerChoice) (*session.Session, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Submitted() {
		return nil, ErrSessionFinished
	}

	if sess.AnswerQuestion(questionID, answer) {
		sess.AdvanceIfNotLast()
	}
	return sess, nil
}

// MarkForReview labels the addressed question for review without moving
// the cursor or touching the recorded selection.
func (s *SessionService) MarkForReview(id uuid.UUID, questionID string) (*session.Session, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Submitted() {
		return nil, ErrSessionFinished
	}

	sess.MarkForReview(questionID)
	return sess, nil
}

// Navigate jumps the cursor to an explicit index. The store validates
// bounds and rejects out-of-range targets.
func (s *SessionService) Navigate(id uuid.UUID, index int) (*session.Session, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Submitted() {
		return nil, ErrSessionFinished
	}

	if err := sess.SetCurrentQuestion(index); err != nil {
		return nil, err
	}
	return sess, nil
}

// Submit finishes the attempt on user request: the timer is stopped,
// the final answers are posted upstream and the session is removed.
// Submission is fire-and-forget: an upstream failure is logged, never
// surfaced, and the caller proceeds to the dashboard either way.
func (s *SessionService) Submit(ctx context.Context, id uuid.UUID) error {
	sess, err := s.manager.Get(id)
	if err != nil {
		return err
	}
	if sess.Submitted() {
		return ErrSessionFinished
	}

	s.finish(ctx, sess, "manual")
	return nil
}

// Abandon tears a session down without submitting. The timer is stopped
// and the state discarded.
func (s *SessionService) Abandon(id uuid.UUID) error {
	sess, err := s.manager.Get(id)
	if err != nil {
		return err
	}

	sess.StopTimer()
	s.manager.Remove(id)

	s.log.Info().
		Str("session_id", id.String()).
		Msg("Session abandoned")
	return nil
}

// forceSubmit is the timer-expiry path: no user confirmation, no
// request context.
func (s *SessionService) forceSubmit(sess *session.Session) {
	if sess.Submitted() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	s.finish(ctx, sess, "timer")
}

func (s *SessionService) finish(ctx context.Context, sess *session.Session, trigger string) {
	sess.StopTimer()

	answers := sess.Answers()
	if !sess.MarkSubmitted() {
		return // Lost the race against the other submission path.
	}

	if err := s.client.SubmitTest(ctx, sess.Token(), answers); err != nil {
		// Intentionally not propagated: the attempt ends for the user
		// regardless of upstream acknowledgement.
		s.log.Error().Err(err).
			Str("session_id", sess.ID().String()).
			Str("trigger", trigger).
			Msg("Submission failed")
	} else {
		s.log.Info().
			Str("session_id", sess.ID().String()).
			Str("trigger", trigger).
			Int("answers", len(answers)).
			Msg("Session submitted")
	}

	s.manager.Remove(sess.ID())
}
