// Package export writes run history as YAML or JSON documents.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/aimtui/internal/model"
	"github.com/verte-zerg/aimtui/internal/stats"
)

// Format is an export encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat resolves a format name; "yml" is accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use yaml or json)", name)
	}
}

// Document is the exported history.
type Document struct {
	ExportedAt time.Time `yaml:"exported_at" json:"exported_at"`
	Filter     Filter    `yaml:"filter" json:"filter"`
	Runs       []Run     `yaml:"runs" json:"runs"`
}

// Filter records the selection the document was built from.
type Filter struct {
	Mode  int        `yaml:"mode,omitempty" json:"mode,omitempty"`
	Since *time.Time `yaml:"since,omitempty" json:"since,omitempty"`
	Last  int        `yaml:"last,omitempty" json:"last,omitempty"`
}

// Run is one exported run with its reaction samples.
type Run struct {
	ID             int64     `yaml:"id" json:"id"`
	UUID           string    `yaml:"uuid" json:"uuid"`
	EndedAt        time.Time `yaml:"ended_at" json:"ended_at"`
	Mode           int       `yaml:"mode" json:"mode"`
	DurationSec    int       `yaml:"duration_sec" json:"duration_sec"`
	TargetSizePx   int       `yaml:"target_size_px" json:"target_size_px"`
	Hits           int       `yaml:"hits" json:"hits"`
	Misses         int       `yaml:"misses" json:"misses"`
	ElapsedMs      int64     `yaml:"elapsed_ms" json:"elapsed_ms"`
	Reason         string    `yaml:"reason" json:"reason"`
	Accuracy       float64   `yaml:"accuracy" json:"accuracy"`
	HitsPerMin     float64   `yaml:"hits_per_min" json:"hits_per_min"`
	AvgReactionMs  *float64  `yaml:"avg_reaction_ms,omitempty" json:"avg_reaction_ms,omitempty"`
	BestReactionMs *float64  `yaml:"best_reaction_ms,omitempty" json:"best_reaction_ms,omitempty"`
	ReactionsMs    []float64 `yaml:"reactions_ms" json:"reactions_ms"`
}

// Build converts a report into an export document. Reaction samples are
// taken from the report; runs outside its window export without samples.
func Build(report stats.Report, cfg model.StatsConfig, exportedAt time.Time) Document {
	doc := Document{
		ExportedAt: exportedAt,
		Filter: Filter{
			Mode:  int(cfg.Mode),
			Since: cfg.Since,
			Last:  cfg.Last,
		},
		Runs: make([]Run, 0, len(report.Runs)),
	}
	for _, r := range report.Runs {
		acc, rate := stats.RunMetrics(r.Hits, r.Misses, r.ElapsedMs)
		run := Run{
			ID:           r.RunID,
			UUID:         r.UUID,
			EndedAt:      r.EndedAt,
			Mode:         int(r.Mode),
			DurationSec:  r.DurationSec,
			TargetSizePx: r.TargetSizePx,
			Hits:         r.Hits,
			Misses:       r.Misses,
			ElapsedMs:    r.ElapsedMs,
			Reason:       string(r.Reason),
			Accuracy:     acc,
			HitsPerMin:   rate,
			ReactionsMs:  report.Reactions[r.RunID],
		}
		if run.ReactionsMs == nil {
			run.ReactionsMs = []float64{}
		}
		if r.Samples > 0 {
			avg, best := r.AvgReactionMs, r.BestReactionMs
			run.AvgReactionMs = &avg
			run.BestReactionMs = &best
		}
		doc.Runs = append(doc.Runs, run)
	}
	return doc
}

// Write encodes doc to w in the given format.
func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush yaml: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
