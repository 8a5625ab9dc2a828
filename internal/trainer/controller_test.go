package trainer

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/verte-zerg/aimtui/internal/generator"
	"github.com/verte-zerg/aimtui/internal/model"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestController(t *testing.T, cfg model.Config) (*Controller, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	seq := 0
	c := New(cfg,
		WithClock(clock.Now),
		WithGenerator(generator.NewSeeded(1)),
		WithIDs(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	c.SetArena(Arena{Width: 1280, Height: 720, TopInset: 64})
	return c, clock
}

func TestStartSpawnsModeCountAfterFill(t *testing.T) {
	for _, mode := range model.Modes {
		t.Run(mode.Label(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Mode = mode
			c, _ := newTestController(t, cfg)
			run := c.Start()
			if got := len(c.Targets()); got != 0 {
				t.Fatalf("expected no targets before fill, got %d", got)
			}
			if n := c.FillTargets(run); n != mode.TargetCount() {
				t.Fatalf("expected %d spawned, got %d", mode.TargetCount(), n)
			}
			if got := len(c.Targets()); got != mode.TargetCount() {
				t.Fatalf("expected %d targets, got %d", mode.TargetCount(), got)
			}
		})
	}
}

func TestFillTargetsWithoutArenaIsNoop(t *testing.T) {
	c, _ := newTestController(t, DefaultConfig())
	c.SetArena(Arena{})
	run := c.Start()
	if n := c.FillTargets(run); n != 0 {
		t.Fatalf("expected no spawn without arena, got %d", n)
	}
	if c.State() != StateRunning {
		t.Fatalf("expected running, got %s", c.State())
	}
}

func TestTargetsStayInsideUsableArea(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = model.ModeSix
	c, _ := newTestController(t, cfg)
	run := c.Start()
	c.FillTargets(run)
	size := float64(cfg.TargetSizePx)
	for _, target := range c.Targets() {
		if target.X < ArenaPadding || target.X > 1280-size-ArenaPadding {
			t.Fatalf("x out of bounds: %+v", target)
		}
		if target.Y < ArenaPadding+64+8 || target.Y > 720-size-ArenaPadding {
			t.Fatalf("y out of bounds: %+v", target)
		}
	}
}

func TestHitRecordsReactionAndRespawnsAfterDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationSec = 30
	c, clock := newTestController(t, cfg)
	run := c.Start()
	c.FillTargets(run)
	targets := c.Targets()
	if len(targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(targets))
	}

	clock.Advance(320 * time.Millisecond)
	shot, err := c.Hit(targets[0].ID)
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	if !shot.Hit || shot.ReactionMs != 320 {
		t.Fatalf("unexpected shot: %+v", shot)
	}
	if c.Hits() != 1 || c.Misses() != 0 {
		t.Fatalf("expected 1/0, got %d/%d", c.Hits(), c.Misses())
	}
	if got := c.Reactions(); len(got) != 1 || got[0] != 320 {
		t.Fatalf("unexpected reactions: %v", got)
	}
	if len(c.Targets()) != 0 {
		t.Fatalf("expected target removed")
	}
	if shot.Respawn.Delay != 150*time.Millisecond || shot.Respawn.Run != run {
		t.Fatalf("unexpected respawn ticket: %+v", shot.Respawn)
	}

	clock.Advance(shot.Respawn.Delay)
	if !c.Respawn(shot.Respawn) {
		t.Fatalf("expected respawn to succeed")
	}
	if got := len(c.Targets()); got != 1 {
		t.Fatalf("expected 1 target after respawn, got %d", got)
	}
}

func TestStaleRespawnIsDiscarded(t *testing.T) {
	c, _ := newTestController(t, DefaultConfig())
	run := c.Start()
	c.FillTargets(run)
	shot, err := c.Hit(c.Targets()[0].ID)
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	c.Stop()
	if c.Respawn(shot.Respawn) {
		t.Fatalf("respawn after stop must be discarded")
	}

	c.Start()
	if c.Respawn(shot.Respawn) {
		t.Fatalf("respawn from previous run must be discarded")
	}
	if got := len(c.Targets()); got != 0 {
		t.Fatalf("expected no targets, got %d", got)
	}
}

func TestMissOnlyCountsMiss(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = model.ModeTriple
	c, _ := newTestController(t, cfg)
	run := c.Start()
	c.FillTargets(run)
	before := c.Targets()

	if !c.Miss() {
		t.Fatalf("expected miss to count while running")
	}
	if c.Misses() != 1 || c.Hits() != 0 {
		t.Fatalf("expected 0/1, got %d/%d", c.Hits(), c.Misses())
	}
	after := c.Targets()
	if len(after) != len(before) {
		t.Fatalf("target set changed on miss")
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("target %d changed on miss", i)
		}
	}
}

func TestHitReturnsTargetAndTicket(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DelayMs = 300
	c, _ := newTestController(t, cfg)
	run := c.Start()
	c.FillTargets(run)
	target := c.Targets()[0]
	shot, err := c.Hit(target.ID)
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	if !shot.Hit || shot.TargetID != target.ID {
		t.Fatalf("expected hit on %s, got %+v", target.ID, shot)
	}
	if shot.Respawn.Run != run || shot.Respawn.Delay != 300*time.Millisecond {
		t.Fatalf("unexpected ticket: %+v", shot.Respawn)
	}
}

func TestRefillAfterArenaRestored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = model.ModeTriple
	c, _ := newTestController(t, cfg)
	run := c.Start()
	c.FillTargets(run)

	shot, _ := c.Hit(c.Targets()[0].ID)
	if n := c.FillTargets(run); n != 0 {
		t.Fatalf("fill must leave the ticketed slot empty, spawned %d", n)
	}

	c.SetArena(Arena{})
	if c.Respawn(shot.Respawn) {
		t.Fatalf("respawn must not spawn without an arena")
	}
	if got := len(c.Targets()); got != 2 {
		t.Fatalf("expected 2 targets, got %d", got)
	}

	c.SetArena(Arena{Width: 1280, Height: 720, TopInset: 64})
	if n := c.FillTargets(run); n != 1 {
		t.Fatalf("expected the lost target refilled, spawned %d", n)
	}
	if got := len(c.Targets()); got != cfg.Mode.TargetCount() {
		t.Fatalf("expected %d targets, got %d", cfg.Mode.TargetCount(), got)
	}
}

func TestShotsIgnoredWhenNotRunning(t *testing.T) {
	c, _ := newTestController(t, DefaultConfig())
	if shot, err := c.Hit("id-1"); err != nil || shot.Hit {
		t.Fatalf("expected idle hit ignored, got %+v (%v)", shot, err)
	}
	if c.Miss() {
		t.Fatalf("expected idle miss ignored")
	}
	if c.Hits() != 0 || c.Misses() != 0 {
		t.Fatalf("counters changed while idle")
	}
}

func TestHitUnknownTarget(t *testing.T) {
	c, _ := newTestController(t, DefaultConfig())
	c.Start()
	if _, err := c.Hit("missing"); !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestTimeoutFinishesAndFreezes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationSec = 5
	c, clock := newTestController(t, cfg)
	run := c.Start()
	c.FillTargets(run)
	c.Miss()
	shot, _ := c.Hit(c.Targets()[0].ID)
	c.Respawn(shot.Respawn)

	clock.Advance(2 * time.Second)
	if c.Tick() {
		t.Fatalf("finished too early")
	}
	if got := c.Remaining(); got != 3*time.Second {
		t.Fatalf("expected 3s remaining, got %v", got)
	}

	clock.Advance(4 * time.Second)
	if !c.Tick() {
		t.Fatalf("expected tick to finish the run")
	}
	if c.State() != StateFinished {
		t.Fatalf("expected finished, got %s", c.State())
	}
	if c.Remaining() != 0 {
		t.Fatalf("expected remaining clamped to 0, got %v", c.Remaining())
	}
	if len(c.Targets()) != 0 {
		t.Fatalf("expected targets cleared")
	}
	hits, misses, acc := c.Hits(), c.Misses(), c.Summary().Accuracy
	c.Miss()
	if c.Tick() {
		t.Fatalf("tick after finish must be a no-op")
	}
	if c.Hits() != hits || c.Misses() != misses || c.Summary().Accuracy != acc {
		t.Fatalf("stats changed after finish")
	}

	rec, ok := c.Record()
	if !ok {
		t.Fatalf("expected record")
	}
	if rec.Reason != model.EndTimeout || rec.Hits != 1 || rec.Misses != 1 || rec.ElapsedMs != 5000 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestStopFinishesRun(t *testing.T) {
	c, _ := newTestController(t, DefaultConfig())
	run := c.Start()
	c.FillTargets(run)
	if !c.Stop() {
		t.Fatalf("expected stop to succeed")
	}
	if c.Stop() {
		t.Fatalf("second stop must be a no-op")
	}
	if len(c.Targets()) != 0 {
		t.Fatalf("expected targets cleared")
	}
	if _, ok := c.Record(); ok {
		t.Fatalf("run without shots must not produce a record")
	}
}

func TestResetRestoresIdle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationSec = 45
	c, clock := newTestController(t, cfg)
	run := c.Start()
	c.FillTargets(run)
	if err := c.Reset(); !errors.Is(err, ErrRunActive) {
		t.Fatalf("expected ErrRunActive, got %v", err)
	}
	clock.Advance(100 * time.Millisecond)
	c.Hit(c.Targets()[0].ID)
	c.Miss()
	clock.Advance(time.Second)
	c.Tick()
	c.Stop()

	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle, got %s", c.State())
	}
	if c.Hits() != 0 || c.Misses() != 0 || len(c.Reactions()) != 0 || len(c.Targets()) != 0 {
		t.Fatalf("reset left state behind")
	}
	if c.Remaining() != 45*time.Second {
		t.Fatalf("expected full duration, got %v", c.Remaining())
	}
}

func TestRestartFromFinished(t *testing.T) {
	c, _ := newTestController(t, DefaultConfig())
	first := c.Start()
	c.FillTargets(first)
	c.Miss()
	c.Stop()
	second := c.Start()
	if second == first {
		t.Fatalf("expected new run generation")
	}
	if c.Misses() != 0 || c.State() != StateRunning {
		t.Fatalf("restart did not clear counters")
	}
	if c.FillTargets(first) != 0 {
		t.Fatalf("stale fill must be ignored")
	}
	if c.FillTargets(second) != 1 {
		t.Fatalf("expected fill for current run")
	}
}

func TestSettingsLockedWhileRunning(t *testing.T) {
	c, _ := newTestController(t, DefaultConfig())
	c.Start()
	if err := c.SetDuration(60); !errors.Is(err, ErrRunActive) {
		t.Fatalf("expected ErrRunActive, got %v", err)
	}
	if err := c.SetMode(model.ModeSix); !errors.Is(err, ErrRunActive) {
		t.Fatalf("expected ErrRunActive, got %v", err)
	}
}

func TestSettersClamp(t *testing.T) {
	c, _ := newTestController(t, DefaultConfig())
	cases := []struct {
		name string
		set  func(int) error
		get  func() int
		in   int
		want int
	}{
		{"duration low", c.SetDuration, func() int { return c.Config().DurationSec }, 1, 5},
		{"duration high", c.SetDuration, func() int { return c.Config().DurationSec }, 999, 180},
		{"duration ok", c.SetDuration, func() int { return c.Config().DurationSec }, 60, 60},
		{"size low", c.SetTargetSize, func() int { return c.Config().TargetSizePx }, 0, 18},
		{"size high", c.SetTargetSize, func() int { return c.Config().TargetSizePx }, 500, 120},
		{"delay negative", c.SetDelay, func() int { return c.Config().DelayMs }, -10, 0},
		{"delay high", c.SetDelay, func() int { return c.Config().DelayMs }, 5000, 2000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.set(tc.in); err != nil {
				t.Fatalf("set: %v", err)
			}
			if got := tc.get(); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
	if err := c.SetMode(model.Mode(4)); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if c.Config().Mode != model.ModeSingle {
		t.Fatalf("expected unknown mode to fall back to single, got %d", c.Config().Mode)
	}
}

func TestLiveCountInvariantAcrossHits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = model.ModeSix
	cfg.DelayMs = 0
	c, clock := newTestController(t, cfg)
	run := c.Start()
	c.FillTargets(run)
	for i := 0; i < 30; i++ {
		clock.Advance(10 * time.Millisecond)
		targets := c.Targets()
		shot, err := c.Hit(targets[i%len(targets)].ID)
		if err != nil {
			t.Fatalf("hit %d: %v", i, err)
		}
		if got := len(c.Targets()); got != 5 {
			t.Fatalf("expected 5 targets inside the delay window, got %d", got)
		}
		c.Respawn(shot.Respawn)
		if got := len(c.Targets()); got != 6 {
			t.Fatalf("expected 6 targets after respawn, got %d", got)
		}
	}
	if c.Hits() != 30 {
		t.Fatalf("expected 30 hits, got %d", c.Hits())
	}
}
