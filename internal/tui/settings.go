package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/aimtui/internal/model"
	"github.com/verte-zerg/aimtui/internal/trainer"
)

const (
	fieldMode = iota
	fieldDuration
	fieldSize
	fieldDelay
)

func newSettingInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 5
	input.Width = 8
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) initInputs() {
	m.inputs = []textinput.Model{
		newSettingInput("Mode (1/3/6):      "),
		newSettingInput(fmt.Sprintf("Duration (%d-%d s): ", trainer.MinDurationSec, trainer.MaxDurationSec)),
		newSettingInput(fmt.Sprintf("Size (%d-%d px):   ", trainer.MinTargetSize, trainer.MaxTargetSize)),
		newSettingInput(fmt.Sprintf("Delay (%d-%d ms):  ", trainer.MinDelayMs, trainer.MaxDelayMs)),
	}
}

func (m *Model) openSettings() tea.Cmd {
	cfg := m.ctrl.Config()
	m.inputs[fieldMode].SetValue(strconv.Itoa(int(cfg.Mode)))
	m.inputs[fieldDuration].SetValue(strconv.Itoa(cfg.DurationSec))
	m.inputs[fieldSize].SetValue(strconv.Itoa(cfg.TargetSizePx))
	m.inputs[fieldDelay].SetValue(strconv.Itoa(cfg.DelayMs))
	m.settingsOpen = true
	return m.setInputIndex(0)
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.settingsOpen = false
		return m, nil
	case tea.KeyEnter:
		if err := m.applySettings(settingsConfig(m.ctrl.Config(), m.inputValues())); err != nil {
			m.logger.Warn("settings not applied", "err", err)
		}
		m.settingsOpen = false
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setInputIndex(m.inputIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setInputIndex(m.inputIndex - 1)
	}
	var cmd tea.Cmd
	m.inputs[m.inputIndex], cmd = m.inputs[m.inputIndex].Update(msg)
	return m, cmd
}

// applySettings pushes each field through its controller setter, which
// clamps it.
func (m *Model) applySettings(cfg model.Config) error {
	setters := []func() error{
		func() error { return m.ctrl.SetMode(cfg.Mode) },
		func() error { return m.ctrl.SetDuration(cfg.DurationSec) },
		func() error { return m.ctrl.SetTargetSize(cfg.TargetSizePx) },
		func() error { return m.ctrl.SetDelay(cfg.DelayMs) },
	}
	for _, set := range setters {
		if err := set(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) setInputIndex(idx int) tea.Cmd {
	count := len(m.inputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.inputIndex = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == idx {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) inputValues() []string {
	values := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		values[i] = input.Value()
	}
	return values
}

// settingsConfig overlays the parsed field values onto cfg. Fields that do
// not parse keep their current value; range clamping is left to the
// controller.
func settingsConfig(cfg model.Config, values []string) model.Config {
	parse := func(idx, current int) int {
		if idx >= len(values) {
			return current
		}
		n, err := strconv.Atoi(strings.TrimSpace(values[idx]))
		if err != nil {
			return current
		}
		return n
	}
	cfg.Mode = model.Mode(parse(fieldMode, int(cfg.Mode)))
	cfg.DurationSec = parse(fieldDuration, cfg.DurationSec)
	cfg.TargetSizePx = parse(fieldSize, cfg.TargetSizePx)
	cfg.DelayMs = parse(fieldDelay, cfg.DelayMs)
	return cfg
}

func (m *Model) renderSettings() string {
	sum := m.ctrl.Summary()
	ok := sum.Samples > 0
	lines := []string{m.styles.title.Render("Settings")}
	for _, input := range m.inputs {
		lines = append(lines, input.View())
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Best %s  Median %s", trainer.FormatMs(sum.BestMs, ok), trainer.FormatMs(sum.MedianMs, ok)),
		m.styles.muted.Render("tab: next field  enter: apply  esc: cancel"),
	)
	return m.styles.panel.Render(strings.Join(lines, "\n"))
}
