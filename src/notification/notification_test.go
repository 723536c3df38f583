package notification

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	if got := truncate("  short  "); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	long := strings.Repeat("a", maxMessageLen+50)
	got := truncate(long)
	if len(got) != maxMessageLen+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("truncate length = %d", len(got))
	}
}
