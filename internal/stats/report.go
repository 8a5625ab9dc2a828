// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/verte-zerg/aimtui/internal/model"
	"github.com/verte-zerg/aimtui/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Runs         []model.RunAggregate
	WindowRunIDs []int64
	Reactions    map[int64][]float64
}

// Latest returns the most recent run, if any.
func (r Report) Latest() (model.RunAggregate, bool) {
	if len(r.Runs) == 0 {
		return model.RunAggregate{}, false
	}
	return r.Runs[len(r.Runs)-1], true
}

// BuildReport loads and prepares data for stats rendering. Reaction samples
// are loaded for the runs inside the curve window only.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	windowIDs := lastRunIDs(runs, cfg.CurveWindow)
	reactions, err := st.ListReactions(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Runs:         runs,
		WindowRunIDs: windowIDs,
		Reactions:    reactions,
	}, nil
}

// RunIDs returns the ids of runs in order.
func RunIDs(runs []model.RunAggregate) []int64 {
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	return ids
}

func lastRunIDs(runs []model.RunAggregate, window int) []int64 {
	if window <= 0 || len(runs) <= window {
		return RunIDs(runs)
	}
	return RunIDs(runs[len(runs)-window:])
}
