// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/verte-zerg/aimtui/internal/model"
)

// TopRuns returns the best n runs by hits per minute, breaking ties by
// accuracy and then by recency.
func TopRuns(runs []model.RunAggregate, n int) []model.RunAggregate {
	if n <= 0 || len(runs) == 0 {
		return nil
	}
	type ranked struct {
		run  model.RunAggregate
		acc  float64
		rate float64
	}
	items := make([]ranked, 0, len(runs))
	for _, r := range runs {
		acc, rate := RunMetrics(r.Hits, r.Misses, r.ElapsedMs)
		items = append(items, ranked{run: r, acc: acc, rate: rate})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].rate != items[j].rate {
			return items[i].rate > items[j].rate
		}
		if items[i].acc != items[j].acc {
			return items[i].acc > items[j].acc
		}
		return items[i].run.EndedAt.After(items[j].run.EndedAt)
	})
	n = min(n, len(items))
	out := make([]model.RunAggregate, n)
	for i := range out {
		out[i] = items[i].run
	}
	return out
}

// RenderTopRuns prints the best n runs as a table.
func RenderTopRuns(w io.Writer, runs []model.RunAggregate, n int) error {
	top := TopRuns(runs, n)
	if len(top) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(top))
	for i, r := range top {
		rows = append(rows, append([]string{fmt.Sprintf("%d.", i+1)}, RunRow(r)...))
	}
	headers := append([]string{"#"}, RunHeaders...)
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true}
	lines := append([]string{"Top Runs"}, formatTable(headers, rows, rightAlign)...)
	lines = append(lines, "")
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
