// Package tui provides the Bubble Tea aim trainer interface.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/verte-zerg/aimtui/internal/audio"
	"github.com/verte-zerg/aimtui/internal/generator"
	"github.com/verte-zerg/aimtui/internal/logging"
	"github.com/verte-zerg/aimtui/internal/model"
	"github.com/verte-zerg/aimtui/internal/stats"
	"github.com/verte-zerg/aimtui/internal/store"
	"github.com/verte-zerg/aimtui/internal/trainer"
)

type screen int

const (
	screenHome screen = iota
	screenTrainer
)

type tickMsg struct{ run uint64 }

type spawnMsg struct{ run uint64 }

type respawnMsg struct{ ticket trainer.Respawn }

// Options wires the model's collaborators. Every field is optional.
type Options struct {
	Store     *store.Store
	NoSave    bool
	Generator *generator.Generator
	Audio     audio.Player
	Logger    *log.Logger
	Clock     func() time.Time
	// Renderer binds styles to an output; nil uses the local terminal.
	Renderer  *lipgloss.Renderer
}

// Model implements the Bubble Tea trainer UI.
type Model struct {
	ctrl   *trainer.Controller
	store  *store.Store
	noSave bool
	audio  audio.Player
	logger *log.Logger
	styles styles

	screen screen
	width  int
	height int

	settingsOpen bool
	inputs       []textinput.Model
	inputIndex   int

	history []model.RunAggregate
	allTime stats.Totals
	lastRun model.RunAggregate
	hasLast bool
}

// NewModel constructs a trainer TUI model on the home screen.
func NewModel(cfg model.Config, opts Options) *Model {
	var ctrlOpts []trainer.Option
	if opts.Generator != nil {
		ctrlOpts = append(ctrlOpts, trainer.WithGenerator(opts.Generator))
	}
	if opts.Clock != nil {
		ctrlOpts = append(ctrlOpts, trainer.WithClock(opts.Clock))
	}
	m := &Model{
		ctrl:   trainer.New(cfg, ctrlOpts...),
		store:  opts.Store,
		noSave: opts.NoSave,
		audio:  opts.Audio,
		logger: opts.Logger,
		styles: newStyles(opts.Renderer),
	}
	if m.audio == nil {
		m.audio = audio.Nop{}
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	m.initInputs()
	m.loadHistory()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ctrl.SetArena(arenaFor(msg.Width, msg.Height))
		if n := m.ctrl.FillTargets(m.ctrl.Run()); n > 0 {
			m.logger.Debug("targets refilled after resize", "count", n)
		}
		return m, nil
	case tickMsg:
		if msg.run != m.ctrl.Run() || !m.ctrl.Running() {
			return m, nil
		}
		if m.ctrl.Tick() {
			m.finishRun()
			return m, nil
		}
		return m, tickCmd(msg.run)
	case spawnMsg:
		m.ctrl.FillTargets(msg.run)
		return m, nil
	case respawnMsg:
		m.ctrl.Respawn(msg.ticket)
		return m, nil
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.settingsOpen {
			return m.updateSettings(msg)
		}
		if m.screen == screenHome {
			return m.updateHome(msg)
		}
		return m.updateTrainer(msg)
	}
	if m.settingsOpen {
		var cmd tea.Cmd
		m.inputs[m.inputIndex], cmd = m.inputs[m.inputIndex].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	footer := m.styles.place(m.width, footerRows, m.renderFooter())
	bodyHeight := max(m.height-footerRows, 1)
	if m.screen == screenHome {
		return m.styles.place(m.width, bodyHeight, renderHome(m.styles)) + "\n" + footer
	}
	lines := m.renderHUD()
	arenaRows := max(bodyHeight-hudRows, 0)
	switch {
	case m.settingsOpen:
		lines = append(lines, m.placeLines(m.renderSettings(), arenaRows)...)
	case m.ctrl.State() == trainer.StateFinished:
		lines = append(lines, m.placeLines(renderResult(m.styles, m.ctrl.Summary()), arenaRows)...)
	case m.ctrl.State() == trainer.StateIdle:
		lines = append(lines, m.placeLines(m.styles.muted.Render("Press s or space to start"), arenaRows)...)
	default:
		size := float64(m.ctrl.Config().TargetSizePx)
		lines = append(lines, renderArena(m.styles, m.ctrl.Targets(), size, m.width, hudRows, arenaRows)...)
	}
	return strings.Join(lines, "\n") + "\n" + footer
}

func (m *Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.screen = screenTrainer
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateTrainer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "s", " ":
		if m.ctrl.Running() {
			m.ctrl.Stop()
			m.finishRun()
			return m, nil
		}
		return m, m.startRun()
	}
	if m.ctrl.Running() {
		return m, nil
	}
	switch key {
	case "r":
		if err := m.ctrl.Reset(); err != nil {
			m.logger.Warn("reset refused", "err", err)
		}
	case "tab":
		return m, m.openSettings()
	case "1", "3", "6":
		if err := m.ctrl.SetMode(model.Mode(key[0] - '0')); err != nil {
			m.logger.Warn("mode not changed", "err", err)
		}
	case "esc":
		m.screen = screenHome
	}
	return m, nil
}

func (m *Model) startRun() tea.Cmd {
	run := m.ctrl.Start()
	m.logger.Debug("run started", "run", run, "mode", int(m.ctrl.Config().Mode))
	return tea.Batch(spawnCmd(run), tickCmd(run))
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.screen != screenTrainer || m.settingsOpen || !m.ctrl.Running() {
		return nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if msg.Y < hudRows || msg.Y >= m.height-footerRows {
		return nil
	}
	size := float64(m.ctrl.Config().TargetSizePx)
	target, ok := targetAt(m.ctrl.Targets(), size, cell{col: msg.X, row: msg.Y})
	if !ok {
		if m.ctrl.Miss() {
			m.audio.Miss()
		}
		return nil
	}
	shot, err := m.ctrl.Hit(target.ID)
	if err != nil || !shot.Hit {
		return nil
	}
	m.audio.Hit()
	return respawnCmd(shot.Respawn)
}

func (m *Model) finishRun() {
	m.audio.Finish()
	rec, ok := m.ctrl.Record()
	if !ok {
		return
	}
	var id int64
	if m.store != nil && !m.noSave {
		saved, err := m.store.InsertRun(context.Background(), rec)
		if err != nil {
			m.logger.Error("failed to save run", "err", err)
		} else {
			id = saved
			m.history = append(m.history, stats.FromRecord(id, rec))
			m.allTime = stats.Summarize(m.history)
			m.logger.Info("run saved", "id", id, "hits", rec.Hits, "misses", rec.Misses, "reason", rec.Reason)
		}
	}
	m.lastRun = stats.FromRecord(id, rec)
	m.hasLast = true
}

func (m *Model) loadHistory() {
	if m.store == nil {
		return
	}
	runs, err := m.store.ListRuns(context.Background(), model.StatsConfig{})
	if err != nil {
		m.logger.Error("failed to load run history", "err", err)
		return
	}
	m.history = runs
	m.allTime = stats.Summarize(runs)
	if len(runs) > 0 {
		m.lastRun = runs[len(runs)-1]
		m.hasLast = true
	}
}

func tickCmd(run uint64) tea.Cmd {
	return tea.Tick(trainer.TickInterval, func(time.Time) tea.Msg {
		return tickMsg{run: run}
	})
}

func spawnCmd(run uint64) tea.Cmd {
	return func() tea.Msg {
		return spawnMsg{run: run}
	}
}

func respawnCmd(ticket trainer.Respawn) tea.Cmd {
	if ticket.Delay <= 0 {
		return func() tea.Msg {
			return respawnMsg{ticket: ticket}
		}
	}
	return tea.Tick(ticket.Delay, func(time.Time) tea.Msg {
		return respawnMsg{ticket: ticket}
	})
}

func renderHome(st styles) string {
	modes := []struct {
		name   string
		status string
	}{
		{"Static click", "available"},
		{"Tracking", "planned"},
		{"Flick", "planned"},
	}
	lines := []string{
		st.title.Render("aimtui"),
		"Terminal aim trainer. Click the targets as fast as you can.",
		"",
		st.hud.Render("Modes"),
	}
	for _, md := range modes {
		line := "  " + md.name + strings.Repeat(" ", 16-len(md.name)) + md.status
		if md.status != "available" {
			line = st.muted.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", st.muted.Render("Press enter to start training · q to quit"))
	return strings.Join(lines, "\n")
}

// placeLines centers content in a block of the model's width and splits it
// into rows.
func (m *Model) placeLines(content string, height int) []string {
	if height <= 0 {
		return nil
	}
	return strings.Split(m.styles.place(m.width, height, content), "\n")
}
