// Package model defines shared data structures.
package model

import "time"

// Mode selects how many targets are live at once.
type Mode int

// Supported target-count modes.
const (
	ModeSingle Mode = 1
	ModeTriple Mode = 3
	ModeSix    Mode = 6
)

// Modes lists the supported modes in display order.
var Modes = []Mode{ModeSingle, ModeTriple, ModeSix}

// TargetCount returns the number of live targets for the mode.
func (m Mode) TargetCount() int {
	switch m {
	case ModeTriple:
		return 3
	case ModeSix:
		return 6
	default:
		return 1
	}
}

// Label returns a human readable mode name.
func (m Mode) Label() string {
	switch m {
	case ModeTriple:
		return "Triple targets"
	case ModeSix:
		return "Six targets"
	default:
		return "Static click"
	}
}

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool {
	return m == ModeSingle || m == ModeTriple || m == ModeSix
}

// Config defines trainer settings.
type Config struct {
	Mode         Mode
	DurationSec  int
	TargetSizePx int
	DelayMs      int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        Mode
	Since       *time.Time
	Last        int
	CurveWindow int
}

// EndReason records why a run finished.
type EndReason string

// Run end reasons.
const (
	EndTimeout EndReason = "timeout"
	EndStopped EndReason = "stopped"
)

// RunRecord captures a finished run.
type RunRecord struct {
	UUID        string
	StartedAt   time.Time
	EndedAt     time.Time
	Config      Config
	Hits        int
	Misses      int
	ElapsedMs   int64
	Reason      EndReason
	ReactionsMs []float64
}

// RunAggregate summarizes a stored run for reporting.
type RunAggregate struct {
	RunID          int64
	UUID           string
	EndedAt        time.Time
	Mode           Mode
	DurationSec    int
	TargetSizePx   int
	Hits           int
	Misses         int
	ElapsedMs      int64
	Reason         EndReason
	Samples        int
	AvgReactionMs  float64
	BestReactionMs float64
}
