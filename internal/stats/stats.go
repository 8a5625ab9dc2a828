// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/aimtui/internal/model"
	"github.com/verte-zerg/aimtui/internal/trainer"
)

const sparkChars = " .:-=+*#%@"

// RunMetrics computes accuracy and hit rate per minute for a run.
func RunMetrics(hits, misses int, elapsedMs int64) (accuracy, hitsPerMin float64) {
	accuracy = trainer.Accuracy(hits, misses)
	if elapsedMs <= 0 {
		return accuracy, 0
	}
	minutes := float64(elapsedMs) / 60000.0
	return accuracy, float64(hits) / minutes
}

// FromRecord derives the aggregate row of a finished run.
func FromRecord(id int64, rec model.RunRecord) model.RunAggregate {
	agg := model.RunAggregate{
		RunID:        id,
		UUID:         rec.UUID,
		EndedAt:      rec.EndedAt,
		Mode:         rec.Config.Mode,
		DurationSec:  rec.Config.DurationSec,
		TargetSizePx: rec.Config.TargetSizePx,
		Hits:         rec.Hits,
		Misses:       rec.Misses,
		ElapsedMs:    rec.ElapsedMs,
		Reason:       rec.Reason,
		Samples:      len(rec.ReactionsMs),
	}
	if avg, ok := trainer.Mean(rec.ReactionsMs); ok {
		agg.AvgReactionMs = avg
	}
	if best, ok := trainer.Min(rec.ReactionsMs); ok {
		agg.BestReactionMs = best
	}
	return agg
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[min(max(idx, 0), len(sparkChars)-1)])
	}
	return b.String()
}

// Totals aggregates a set of runs.
type Totals struct {
	Runs           int
	Hits           int
	Misses         int
	Accuracy       float64
	AvgHitsPerMin  float64
	BestHitsPerMin float64
	AvgReactionMs  float64
	BestReactionMs float64
	HasReaction    bool
}

// Summarize aggregates runs; reaction figures are sample-weighted.
func Summarize(runs []model.RunAggregate) Totals {
	t := Totals{Runs: len(runs)}
	if len(runs) == 0 {
		return t
	}
	var rateSum, reactionSum float64
	samples := 0
	for _, r := range runs {
		t.Hits += r.Hits
		t.Misses += r.Misses
		_, rate := RunMetrics(r.Hits, r.Misses, r.ElapsedMs)
		rateSum += rate
		t.BestHitsPerMin = math.Max(t.BestHitsPerMin, rate)
		if r.Samples == 0 {
			continue
		}
		reactionSum += r.AvgReactionMs * float64(r.Samples)
		samples += r.Samples
		if !t.HasReaction || r.BestReactionMs < t.BestReactionMs {
			t.BestReactionMs = r.BestReactionMs
		}
		t.HasReaction = true
	}
	t.Accuracy = trainer.Accuracy(t.Hits, t.Misses)
	t.AvgHitsPerMin = rateSum / float64(len(runs))
	if samples > 0 {
		t.AvgReactionMs = reactionSum / float64(samples)
	}
	return t
}

// RenderSummary prints a summary block for runs.
func RenderSummary(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	t := Summarize(runs)
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", t.Runs),
		fmt.Sprintf("Hits/Misses: %d/%d", t.Hits, t.Misses),
		fmt.Sprintf("Accuracy: %.2f%%", t.Accuracy*100),
		fmt.Sprintf("Avg hits/min: %.2f", t.AvgHitsPerMin),
		fmt.Sprintf("Best hits/min: %.2f", t.BestHitsPerMin),
		fmt.Sprintf("Avg reaction: %s", trainer.FormatMs(t.AvgReactionMs, t.HasReaction)),
		fmt.Sprintf("Best reaction: %s", trainer.FormatMs(t.BestReactionMs, t.HasReaction)),
		"",
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// RenderCurves prints learning curves for accuracy, hit rate and reaction.
func RenderCurves(w io.Writer, runs []model.RunAggregate, window int) error {
	return RenderCurvesWithSize(w, runs, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, runs []model.RunAggregate, window, totalWidth, height int, useColor bool) error {
	if len(runs) == 0 {
		return nil
	}
	accs := make([]float64, len(runs))
	rates := make([]float64, len(runs))
	reactions := make([]float64, 0, len(runs))
	for i, r := range runs {
		acc, rate := RunMetrics(r.Hits, r.Misses, r.ElapsedMs)
		accs[i] = acc * 100
		rates[i] = rate
		if r.Samples > 0 {
			reactions = append(reactions, r.AvgReactionMs)
		}
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
		{Name: "Hits/min", Values: MovingAverage(rates, window)},
		{Name: "Reaction", Values: MovingAverage(reactions, window)},
	}, width, height, useColor)
}

// RenderReactionCurve plots the reaction samples of one run in order.
func RenderReactionCurve(w io.Writer, title string, samples []float64, totalWidth, height int, useColor bool) error {
	if len(samples) == 0 {
		_, err := fmt.Fprintln(w, "No reaction samples.")
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, title, []Series{
		{Name: "Reaction ms", Values: samples},
	}, width, height, useColor)
}

// RunRow formats a run as table cells.
func RunRow(r model.RunAggregate) []string {
	acc, rate := RunMetrics(r.Hits, r.Misses, r.ElapsedMs)
	ok := r.Samples > 0
	return []string{
		r.EndedAt.Local().Format("2006-01-02 15:04"),
		fmt.Sprintf("%d", int(r.Mode)),
		fmt.Sprintf("%d", r.Hits),
		fmt.Sprintf("%d", r.Misses),
		fmt.Sprintf("%.1f%%", acc*100),
		fmt.Sprintf("%.1f", rate),
		trainer.FormatMs(r.AvgReactionMs, ok),
		trainer.FormatMs(r.BestReactionMs, ok),
		string(r.Reason),
	}
}

// RunHeaders are the column titles matching RunRow.
var RunHeaders = []string{"Ended", "Mode", "Hits", "Misses", "Accuracy", "Hits/min", "Avg RT", "Best RT", "End"}

// RenderRunTable prints one row per run, newest first.
func RenderRunTable(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	rows := make([][]string, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		rows = append(rows, RunRow(runs[i]))
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	lines := append([]string{"Runs"}, formatTable(RunHeaders, rows, rightAlign)...)
	lines = append(lines, "")
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
