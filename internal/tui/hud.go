package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/aimtui/internal/model"
	"github.com/verte-zerg/aimtui/internal/stats"
	"github.com/verte-zerg/aimtui/internal/trainer"
)

func secondsLeft(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

func stateLabel(s trainer.State) string {
	switch s {
	case trainer.StateRunning:
		return "RUNNING"
	case trainer.StateFinished:
		return "FINISHED"
	default:
		return "READY"
	}
}

func hudStatusLine(s trainer.State, mode model.Mode, remaining time.Duration) string {
	return fmt.Sprintf("aimtui  %s  %s  Time %ds", stateLabel(s), mode.Label(), secondsLeft(remaining))
}

func hudStatsLine(sum trainer.Summary) string {
	return fmt.Sprintf("Hits %d  Misses %d  Accuracy %.1f%%  Avg %s",
		sum.Hits, sum.Misses, sum.Accuracy*100, trainer.FormatMs(sum.AvgMs, sum.Samples > 0))
}

func hudHelpLine(s trainer.State) string {
	if s == trainer.StateRunning {
		return "Click targets  s/space: stop  q: quit"
	}
	return "s/space: start  r: reset  1/3/6: mode  tab: settings  esc: home  q: quit"
}

func (m *Model) renderHUD() []string {
	st := m.ctrl.State()
	status := truncate(hudStatusLine(st, m.ctrl.Config().Mode, m.ctrl.DisplayRemaining()), m.width)
	if st == trainer.StateRunning {
		status = m.styles.running.Render(status)
	} else {
		status = m.styles.state.Render(status)
	}
	return []string{
		status,
		m.styles.hud.Render(truncate(hudStatsLine(m.ctrl.Summary()), m.width)),
		m.styles.muted.Render(truncate(hudHelpLine(st), m.width)),
	}
}

func (m *Model) renderFooter() string {
	var segments []string
	if m.hasLast {
		acc, rate := stats.RunMetrics(m.lastRun.Hits, m.lastRun.Misses, m.lastRun.ElapsedMs)
		segments = append(segments, fmt.Sprintf("Last %.1f hits/min · %.1f%% · %s",
			rate, acc*100, trainer.FormatMs(m.lastRun.AvgReactionMs, m.lastRun.Samples > 0)))
	}
	segments = append(segments, fmt.Sprintf("All-time %d runs · %.1f%% · %s",
		m.allTime.Runs, m.allTime.Accuracy*100, trainer.FormatMs(m.allTime.AvgReactionMs, m.allTime.HasReaction)))
	return m.styles.footer.Render(truncate(strings.Join(segments, "  "), m.width))
}

func renderResult(st styles, sum trainer.Summary) string {
	ok := sum.Samples > 0
	lines := []string{
		st.title.Render("Run complete"),
		fmt.Sprintf("Hits %d  Misses %d  Accuracy %.1f%%", sum.Hits, sum.Misses, sum.Accuracy*100),
		fmt.Sprintf("Avg %s  Median %s  Best %s",
			trainer.FormatMs(sum.AvgMs, ok), trainer.FormatMs(sum.MedianMs, ok), trainer.FormatMs(sum.BestMs, ok)),
		st.muted.Render("s: restart  r: reset"),
	}
	return st.panel.Render(strings.Join(lines, "\n"))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
