package trainer

import "github.com/verte-zerg/aimtui/internal/model"

// Setting limits.
const (
	MinDurationSec = 5
	MaxDurationSec = 180
	MinTargetSize  = 18
	MaxTargetSize  = 120
	MinDelayMs     = 0
	MaxDelayMs     = 2000

	DefaultDurationSec = 30
	DefaultTargetSize  = 52
	DefaultDelayMs     = 150
)

// DefaultConfig returns the out-of-the-box trainer settings.
func DefaultConfig() model.Config {
	return model.Config{
		Mode:         model.ModeSingle,
		DurationSec:  DefaultDurationSec,
		TargetSizePx: DefaultTargetSize,
		DelayMs:      DefaultDelayMs,
	}
}

// Clamp restricts n to [lo, hi].
func Clamp[T ~int | ~int64 | ~float64](n, lo, hi T) T {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// NormalizeConfig clamps every numeric setting and falls back to single
// target mode for unknown modes.
func NormalizeConfig(cfg model.Config) model.Config {
	if !cfg.Mode.Valid() {
		cfg.Mode = model.ModeSingle
	}
	cfg.DurationSec = Clamp(cfg.DurationSec, MinDurationSec, MaxDurationSec)
	cfg.TargetSizePx = Clamp(cfg.TargetSizePx, MinTargetSize, MaxTargetSize)
	cfg.DelayMs = Clamp(cfg.DelayMs, MinDelayMs, MaxDelayMs)
	return cfg
}
