package worker

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantprep/examgate/internal/model"
	"github.com/quantprep/examgate/internal/session"
)

func newSession(minutes int) *session.Session {
	test := model.TestDefinition{
		ID:            "t-1",
		Name:          "Mock",
		QuestionsList: []string{"q1"},
		TimeMinutes:   minutes,
	}
	questions := []model.Question{{ID: "q1", Statement: "s"}}
	return session.New(test, questions, "")
}

func TestSweepReapsTerminalSessions(t *testing.T) {
	manager := session.NewManager()
	w := NewReaperWorker(manager, time.Minute, time.Minute, zerolog.Nop())

	live := newSession(60)
	done := newSession(60)
	done.MarkSubmitted()

	manager.Put(live)
	manager.Put(done)

	w.sweep()

	if _, err := manager.Get(done.ID()); err != session.ErrSessionNotFound {
		t.Error("terminal session survived the sweep")
	}
	if _, err := manager.Get(live.ID()); err != nil {
		t.Error("live session was reaped")
	}
}

func TestSweepReapsOverdueSessions(t *testing.T) {
	manager := session.NewManager()
	// Zero grace: a 0-minute session is overdue as soon as it exists.
	w := NewReaperWorker(manager, time.Minute, 0, zerolog.Nop())

	overdue := newSession(0)
	manager.Put(overdue)

	time.Sleep(5 * time.Millisecond)
	w.sweep()

	if _, err := manager.Get(overdue.ID()); err != session.ErrSessionNotFound {
		t.Error("overdue session survived the sweep")
	}
}
