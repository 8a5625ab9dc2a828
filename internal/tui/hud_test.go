package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/aimtui/internal/model"
	"github.com/verte-zerg/aimtui/internal/stats"
	"github.com/verte-zerg/aimtui/internal/trainer"
)

func TestHUDLines(t *testing.T) {
	status := hudStatusLine(trainer.StateRunning, model.ModeTriple, 12100*time.Millisecond)
	if !containsAll(status, []string{"RUNNING", "Triple targets", "Time 13s"}) {
		t.Fatalf("unexpected status line: %s", status)
	}
	line := hudStatsLine(trainer.Summarize(3, 1, []float64{300, 200, 400}))
	if !containsAll(line, []string{"Hits 3", "Misses 1", "Accuracy 75.0%", "Avg 300 ms"}) {
		t.Fatalf("unexpected stats line: %s", line)
	}
	empty := hudStatsLine(trainer.Summarize(0, 0, nil))
	if !containsAll(empty, []string{"Accuracy 0.0%", "Avg -"}) {
		t.Fatalf("unexpected empty stats line: %s", empty)
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		styles:  newStyles(nil),
		hasLast: true,
		lastRun: model.RunAggregate{Hits: 30, Misses: 10, ElapsedMs: 30000, Samples: 30, AvgReactionMs: 412},
		allTime: stats.Totals{Runs: 4, Accuracy: 0.969, AvgReactionMs: 388, HasReaction: true},
	}
	out := m.renderFooter()
	if !containsAll(out, []string{"Last 60.0 hits/min", "75.0%", "412 ms", "All-time 4 runs", "96.9%", "388 ms"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Fatalf("zero width must not truncate: %q", got)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
