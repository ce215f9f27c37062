package cache

import (
	"context"
	"strings"
	"testing"
)

func TestNilCacheAlwaysMisses(t *testing.T) {
	var c *Cache

	var dst string
	if c.GetJSON(context.Background(), "some:key", &dst) {
		t.Error("nil cache reported a hit")
	}

	// Writes and Close on a nil cache must be safe no-ops.
	c.SetJSON(context.Background(), "some:key", "value")
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil cache: %v", err)
	}
}

func TestTestKey(t *testing.T) {
	if got, want := TestKey("t-9"), "test:t-9:definition"; got != want {
		t.Errorf("TestKey() = %q, want %q", got, want)
	}
}

func TestQuestionsKeyStableAndBounded(t *testing.T) {
	ids := []string{"a1", "a2", "a3"}

	first := QuestionsKey(ids)
	second := QuestionsKey([]string{"a1", "a2", "a3"})
	if first != second {
		t.Errorf("same ids produced different keys: %q vs %q", first, second)
	}

	different := QuestionsKey([]string{"a1", "a2"})
	if first == different {
		t.Error("different id lists produced the same key")
	}

	long := make([]string, 500)
	for i := range long {
		long[i] = strings.Repeat("x", 24)
	}
	if got := len(QuestionsKey(long)); got > 64 {
		t.Errorf("key length = %d for large batch, want bounded", got)
	}
}
