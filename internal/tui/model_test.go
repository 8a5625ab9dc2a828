package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/aimtui/internal/generator"
	"github.com/verte-zerg/aimtui/internal/model"
	"github.com/verte-zerg/aimtui/internal/store"
	"github.com/verte-zerg/aimtui/internal/trainer"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestModel(t *testing.T, st *store.Store) (*Model, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cfg := trainer.DefaultConfig()
	cfg.DurationSec = 5
	m := NewModel(cfg, Options{
		Store:     st,
		NoSave:    st == nil,
		Generator: generator.NewSeeded(1),
		Clock:     clock.Now,
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, clock
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
}

// startTrainer moves to the trainer screen, starts a run and delivers the
// deferred batch spawn.
func startTrainer(t *testing.T, m *Model) {
	t.Helper()
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenTrainer {
		t.Fatalf("expected trainer screen after enter")
	}
	_, cmd := m.Update(key("s"))
	if cmd == nil {
		t.Fatalf("expected start to schedule spawn and tick")
	}
	if !m.ctrl.Running() {
		t.Fatalf("expected running state")
	}
	m.Update(spawnMsg{run: m.ctrl.Run()})
	if got := len(m.ctrl.Targets()); got != 1 {
		t.Fatalf("expected 1 target after batch spawn, got %d", got)
	}
}

func TestHomeNavigation(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if m.screen != screenHome {
		t.Fatalf("expected home screen initially")
	}
	if view := m.View(); !containsAll(view, []string{"aimtui", "Static click", "planned", "enter"}) {
		t.Fatalf("unexpected home view: %s", view)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenTrainer {
		t.Fatalf("expected trainer screen")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenHome {
		t.Fatalf("expected esc to return home")
	}
}

func TestClickHitAndMiss(t *testing.T) {
	m, clock := newTestModel(t, nil)
	startTrainer(t, m)
	size := float64(m.ctrl.Config().TargetSizePx)

	clock.Advance(250 * time.Millisecond)
	c := centerCell(m.ctrl.Targets()[0], size)
	_, cmd := m.Update(click(c.col, c.row))
	if m.ctrl.Hits() != 1 {
		t.Fatalf("expected a hit, got %d", m.ctrl.Hits())
	}
	if cmd == nil {
		t.Fatalf("expected respawn command")
	}
	if got := m.ctrl.Reactions(); len(got) != 1 || got[0] != 250 {
		t.Fatalf("unexpected reactions: %v", got)
	}
	if len(m.ctrl.Targets()) != 0 {
		t.Fatalf("expected target removed until respawn")
	}

	m.Update(click(0, 1))
	if m.ctrl.Misses() != 0 {
		t.Fatalf("HUD presses must not count as shots")
	}
	m.Update(click(0, hudRows))
	if m.ctrl.Misses() != 1 {
		t.Fatalf("expected a miss on empty arena, got %d", m.ctrl.Misses())
	}

	m.Update(respawnMsg{ticket: trainer.Respawn{Run: m.ctrl.Run()}})
	if len(m.ctrl.Targets()) != 1 {
		t.Fatalf("expected replacement target")
	}
}

func TestResizeRefillsTargetsLostToUnmeasuredArena(t *testing.T) {
	m, _ := newTestModel(t, nil)
	startTrainer(t, m)
	size := float64(m.ctrl.Config().TargetSizePx)

	c := centerCell(m.ctrl.Targets()[0], size)
	_, cmd := m.Update(click(c.col, c.row))
	if cmd == nil {
		t.Fatalf("expected respawn command")
	}
	m.Update(tea.WindowSizeMsg{Width: 120, Height: hudRows + footerRows})
	m.Update(respawnMsg{ticket: trainer.Respawn{Run: m.ctrl.Run()}})
	if got := len(m.ctrl.Targets()); got != 0 {
		t.Fatalf("expected no spawn into an unmeasured arena, got %d", got)
	}

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if got := len(m.ctrl.Targets()); got != 1 {
		t.Fatalf("expected target restored after resize, got %d", got)
	}
}

func TestStaleMessagesIgnored(t *testing.T) {
	m, _ := newTestModel(t, nil)
	startTrainer(t, m)
	stale := m.ctrl.Run() - 1
	if _, cmd := m.Update(tickMsg{run: stale}); cmd != nil {
		t.Fatalf("stale tick must not re-arm")
	}
	m.Update(respawnMsg{ticket: trainer.Respawn{Run: stale}})
	if len(m.ctrl.Targets()) != 1 {
		t.Fatalf("stale respawn must be discarded")
	}
	if _, cmd := m.Update(tickMsg{run: m.ctrl.Run()}); cmd == nil {
		t.Fatalf("current tick must re-arm while running")
	}
}

func TestTimeoutSavesRun(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "aimtui.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	m, clock := newTestModel(t, st)
	startTrainer(t, m)
	m.Update(click(0, hudRows))

	clock.Advance(6 * time.Second)
	if _, cmd := m.Update(tickMsg{run: m.ctrl.Run()}); cmd != nil {
		t.Fatalf("finished run must not re-arm the tick")
	}
	if m.ctrl.State() != trainer.StateFinished {
		t.Fatalf("expected finished state, got %s", m.ctrl.State())
	}
	if !m.hasLast || m.allTime.Runs != 1 {
		t.Fatalf("expected footer stats refreshed: %+v", m.allTime)
	}
	runs, err := st.ListRuns(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Misses != 1 || runs[0].Reason != model.EndTimeout {
		t.Fatalf("unexpected saved runs: %+v", runs)
	}
	if view := m.View(); !containsAll(view, []string{"FINISHED", "Run complete"}) {
		t.Fatalf("expected result panel: %s", view)
	}
}

func TestModeAndSettingsLockedWhileRunning(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(key("6"))
	if m.ctrl.Config().Mode != model.ModeSix {
		t.Fatalf("expected mode 6")
	}
	m.Update(key("s"))
	m.Update(key("1"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.ctrl.Config().Mode != model.ModeSix || m.settingsOpen {
		t.Fatalf("mode and settings must be locked while running")
	}
	m.Update(key("s"))
	if m.ctrl.Running() {
		t.Fatalf("expected s to stop the run")
	}
}

func TestSettingsApplyClamps(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if !m.settingsOpen {
		t.Fatalf("expected settings panel")
	}
	m.inputs[fieldMode].SetValue("4")
	m.inputs[fieldDuration].SetValue("999")
	m.inputs[fieldSize].SetValue("abc")
	m.inputs[fieldDelay].SetValue("-5")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.settingsOpen {
		t.Fatalf("expected panel closed after apply")
	}
	cfg := m.ctrl.Config()
	want := model.Config{
		Mode:         model.ModeSingle,
		DurationSec:  trainer.MaxDurationSec,
		TargetSizePx: trainer.DefaultTargetSize,
		DelayMs:      trainer.MinDelayMs,
	}
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}
}

func TestSettingsCancel(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.inputs[fieldDuration].SetValue("60")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.settingsOpen || m.ctrl.Config().DurationSec != 5 {
		t.Fatalf("esc must discard edits: %+v", m.ctrl.Config())
	}
	if m.screen != screenTrainer {
		t.Fatalf("esc in settings must not leave the trainer")
	}
}
