package trainer

import "testing"

func TestAccuracy(t *testing.T) {
	if got := Accuracy(0, 0); got != 0 {
		t.Fatalf("expected 0 for no shots, got %v", got)
	}
	if got := Accuracy(3, 1); got != 0.75 {
		t.Fatalf("expected 0.75, got %v", got)
	}
	for hits := 0; hits < 5; hits++ {
		for misses := 0; misses < 5; misses++ {
			acc := Accuracy(hits, misses)
			if acc < 0 || acc > 1 {
				t.Fatalf("accuracy %v out of range for %d/%d", acc, hits, misses)
			}
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(4, 1, []float64{300, 100, 400, 200})
	if s.Samples != 4 {
		t.Fatalf("expected 4 samples, got %d", s.Samples)
	}
	if s.AvgMs != 250 {
		t.Fatalf("expected mean 250, got %v", s.AvgMs)
	}
	if s.MedianMs != 250 {
		t.Fatalf("expected median 250, got %v", s.MedianMs)
	}
	if s.BestMs != 100 {
		t.Fatalf("expected best 100, got %v", s.BestMs)
	}
	if s.Accuracy != 0.8 {
		t.Fatalf("expected accuracy 0.8, got %v", s.Accuracy)
	}
}

func TestMedianOdd(t *testing.T) {
	values := []float64{9, 1, 5}
	got, ok := Median(values)
	if !ok || got != 5 {
		t.Fatalf("expected 5, got %v (%v)", got, ok)
	}
	if values[0] != 9 {
		t.Fatalf("median must not reorder input")
	}
}

func TestEmptyStatsUndefined(t *testing.T) {
	if _, ok := Mean(nil); ok {
		t.Fatalf("mean of empty must be undefined")
	}
	if _, ok := Median(nil); ok {
		t.Fatalf("median of empty must be undefined")
	}
	if _, ok := Min(nil); ok {
		t.Fatalf("min of empty must be undefined")
	}
	if got := FormatMs(0, false); got != "-" {
		t.Fatalf("expected '-', got %q", got)
	}
	if got := FormatMs(412.6, true); got != "413 ms" {
		t.Fatalf("expected '413 ms', got %q", got)
	}
}

func TestNormalizeConfig(t *testing.T) {
	cfg := NormalizeConfig(DefaultConfig())
	if cfg != DefaultConfig() {
		t.Fatalf("defaults must already be normalized: %+v", cfg)
	}
	if got := Clamp(2.5, 0.0, 1.0); got != 1.0 {
		t.Fatalf("expected 1.0, got %v", got)
	}
}
