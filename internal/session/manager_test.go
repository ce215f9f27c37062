package session

import (
	"testing"

	"github.com/google/uuid"
)

func TestManagerPutGetRemove(t *testing.T) {
	m := NewManager()
	s := newTestSession(2, 10)

	if _, err := m.Get(s.ID()); err != ErrSessionNotFound {
		t.Fatalf("Get before Put error = %v, want ErrSessionNotFound", err)
	}

	m.Put(s)
	got, err := m.Get(s.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session instance")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}

	m.Remove(s.ID())
	if _, err := m.Get(s.ID()); err != ErrSessionNotFound {
		t.Errorf("Get after Remove error = %v, want ErrSessionNotFound", err)
	}

	// Removing an unknown id is a no-op.
	m.Remove(uuid.New())
}

func TestManagerRangeAllowsRemoval(t *testing.T) {
	m := NewManager()
	for i := 0; i < 3; i++ {
		m.Put(newTestSession(1, 10))
	}

	m.Range(func(s *Session) {
		m.Remove(s.ID())
	})

	if m.Len() != 0 {
		t.Errorf("Len() = %d after removing during Range, want 0", m.Len())
	}
}
