// Package trainer implements the aim trainer session controller.
//
// The controller is not safe for concurrent use; callers drive it from a
// single event loop. Deferred work (the first batch spawn and delayed
// replacements) is tagged with a run generation so that work scheduled for
// a previous run is discarded.
package trainer

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/aimtui/internal/generator"
	"github.com/verte-zerg/aimtui/internal/model"
)

const (
	// TickInterval is the countdown refresh period.
	TickInterval = 50 * time.Millisecond
	// ArenaPadding keeps targets away from the arena edges.
	ArenaPadding = 8.0
	hudGap       = 8.0
)

var (
	// ErrRunActive is returned for operations that require a stopped run.
	ErrRunActive = errors.New("run in progress")
	// ErrUnknownTarget is returned when a hit names no live target.
	ErrUnknownTarget = errors.New("unknown target")
)

// State is the run lifecycle state.
type State int

// Run states.
const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// Target is a live clickable target. X and Y are its top-left corner.
type Target struct {
	ID        string
	X         float64
	Y         float64
	SpawnedAt time.Time
}

// Center returns the target's center for the given size.
func (t Target) Center(size float64) (float64, float64) {
	return t.X + size/2, t.Y + size/2
}

// Contains reports whether (x, y) lies within the target's circle.
func (t Target) Contains(x, y, size float64) bool {
	cx, cy := t.Center(size)
	dx := x - cx
	dy := y - cy
	r := size / 2
	return dx*dx+dy*dy <= r*r
}

// Arena describes the measured arena in pixels. TopInset is the part
// covered by the HUD.
type Arena struct {
	Width    float64
	Height   float64
	TopInset float64
}

// Respawn is a ticket for a delayed replacement spawn.
type Respawn struct {
	Run   uint64
	Delay time.Duration
}

// Shot is the outcome of a press on a target.
type Shot struct {
	Hit        bool
	TargetID   string
	ReactionMs float64
	Respawn    Respawn
}

// Controller owns a run: its state, targets, timers and counters.
type Controller struct {
	cfg   model.Config
	gen   *generator.Generator
	now   func() time.Time
	newID func() string

	arena Arena

	state     State
	run       uint64
	runUUID   string
	startedAt time.Time
	endedAt   time.Time
	remaining time.Duration
	reason    model.EndReason

	targets   []Target
	pending   int
	hits      int
	misses    int
	reactions []float64
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithGenerator overrides the placement generator.
func WithGenerator(gen *generator.Generator) Option {
	return func(c *Controller) { c.gen = gen }
}

// WithIDs overrides target and run id generation.
func WithIDs(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// New constructs an idle controller with normalized settings.
func New(cfg model.Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:   NormalizeConfig(cfg),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.gen == nil {
		c.gen = generator.New()
	}
	c.remaining = c.total()
	return c
}

// Config returns the current settings.
func (c *Controller) Config() model.Config { return c.cfg }

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Running reports whether a run is active.
func (c *Controller) Running() bool { return c.state == StateRunning }

// Run returns the current run generation.
func (c *Controller) Run() uint64 { return c.run }

// Hits returns the hit count.
func (c *Controller) Hits() int { return c.hits }

// Misses returns the miss count.
func (c *Controller) Misses() int { return c.misses }

// Remaining returns the countdown value.
func (c *Controller) Remaining() time.Duration { return c.remaining }

// DisplayRemaining is the countdown while running and the full duration
// otherwise.
func (c *Controller) DisplayRemaining() time.Duration {
	if c.state == StateRunning {
		return c.remaining
	}
	return c.total()
}

// Targets returns a copy of the live targets.
func (c *Controller) Targets() []Target {
	return append([]Target(nil), c.targets...)
}

// Reactions returns a copy of the reaction samples in milliseconds.
func (c *Controller) Reactions() []float64 {
	return append([]float64(nil), c.reactions...)
}

// Summary derives statistics from the current counters.
func (c *Controller) Summary() Summary {
	return Summarize(c.hits, c.misses, c.reactions)
}

// SetArena records the arena measurement. It may change at any time.
func (c *Controller) SetArena(a Arena) {
	c.arena = a
}

// SetConfig replaces all settings, clamping each value.
func (c *Controller) SetConfig(cfg model.Config) error {
	if c.Running() {
		return ErrRunActive
	}
	c.cfg = NormalizeConfig(cfg)
	c.remaining = c.total()
	return nil
}

// SetMode changes the target-count mode.
func (c *Controller) SetMode(m model.Mode) error {
	cfg := c.cfg
	cfg.Mode = m
	return c.SetConfig(cfg)
}

// SetDuration changes the run duration in seconds.
func (c *Controller) SetDuration(sec int) error {
	cfg := c.cfg
	cfg.DurationSec = sec
	return c.SetConfig(cfg)
}

// SetTargetSize changes the target diameter in pixels.
func (c *Controller) SetTargetSize(px int) error {
	cfg := c.cfg
	cfg.TargetSizePx = px
	return c.SetConfig(cfg)
}

// SetDelay changes the inter-target delay in milliseconds.
func (c *Controller) SetDelay(ms int) error {
	cfg := c.cfg
	cfg.DelayMs = ms
	return c.SetConfig(cfg)
}

// Start begins a new run and returns its generation. The first batch of
// targets is not spawned here; call FillTargets once the arena is laid out.
func (c *Controller) Start() uint64 {
	c.clear()
	c.run++
	c.runUUID = c.newID()
	c.state = StateRunning
	c.startedAt = c.now()
	c.endedAt = time.Time{}
	c.reason = ""
	c.remaining = c.total()
	return c.run
}

// FillTargets spawns targets until the mode's count is live, less the slots
// held by outstanding replacement tickets. It returns the number spawned;
// zero when run is stale or the arena is not measured. Calling it again
// after the arena is measured restores targets lost to an unmeasured arena.
func (c *Controller) FillTargets(run uint64) int {
	if !c.current(run) {
		return 0
	}
	spawned := 0
	for len(c.targets)+c.pending < c.cfg.Mode.TargetCount() {
		if !c.spawnOne() {
			break
		}
		spawned++
	}
	return spawned
}

// Respawn fulfils a replacement ticket. Tickets from an ended run are
// discarded.
func (c *Controller) Respawn(r Respawn) bool {
	if !c.current(r.Run) {
		return false
	}
	if c.pending > 0 {
		c.pending--
	}
	if len(c.targets) >= c.cfg.Mode.TargetCount() {
		return false
	}
	return c.spawnOne()
}

// Tick recomputes the countdown against the start time. It returns true
// when this tick finished the run.
func (c *Controller) Tick() bool {
	if c.state != StateRunning {
		return false
	}
	total := c.total()
	elapsed := c.now().Sub(c.startedAt)
	c.remaining = Clamp(total-elapsed, 0, total)
	if c.remaining <= 0 {
		c.finish(model.EndTimeout)
		return true
	}
	return false
}

// Stop ends the running run early.
func (c *Controller) Stop() bool {
	if c.state != StateRunning {
		return false
	}
	c.finish(model.EndStopped)
	return true
}

// Reset clears counters, samples and targets. It is refused while running.
func (c *Controller) Reset() error {
	if c.Running() {
		return ErrRunActive
	}
	c.clear()
	c.state = StateIdle
	c.remaining = c.total()
	return nil
}

// Hit registers a hit on the target with the given id.
func (c *Controller) Hit(id string) (Shot, error) {
	if !c.Running() {
		return Shot{}, nil
	}
	idx := -1
	for i, t := range c.targets {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Shot{}, ErrUnknownTarget
	}
	t := c.targets[idx]
	reaction := math.Max(0, float64(c.now().Sub(t.SpawnedAt))/float64(time.Millisecond))
	c.hits++
	c.pending++
	c.reactions = append(c.reactions, reaction)
	c.targets = append(c.targets[:idx], c.targets[idx+1:]...)
	return Shot{
		Hit:        true,
		TargetID:   t.ID,
		ReactionMs: reaction,
		Respawn: Respawn{
			Run:   c.run,
			Delay: time.Duration(Clamp(c.cfg.DelayMs, MinDelayMs, MaxDelayMs)) * time.Millisecond,
		},
	}, nil
}

// Miss registers a press on empty arena space.
func (c *Controller) Miss() bool {
	if !c.Running() {
		return false
	}
	c.misses++
	return true
}

// Record returns the finished run for persistence. ok is false unless the
// run finished with at least one shot.
func (c *Controller) Record() (model.RunRecord, bool) {
	if c.state != StateFinished || c.hits+c.misses == 0 {
		return model.RunRecord{}, false
	}
	elapsed := Clamp(c.endedAt.Sub(c.startedAt), 0, c.total())
	return model.RunRecord{
		UUID:        c.runUUID,
		StartedAt:   c.startedAt,
		EndedAt:     c.endedAt,
		Config:      c.cfg,
		Hits:        c.hits,
		Misses:      c.misses,
		ElapsedMs:   elapsed.Milliseconds(),
		Reason:      c.reason,
		ReactionsMs: c.Reactions(),
	}, true
}

func (c *Controller) current(run uint64) bool {
	return c.state == StateRunning && run == c.run
}

func (c *Controller) finish(reason model.EndReason) {
	c.state = StateFinished
	c.targets = nil
	c.endedAt = c.now()
	c.reason = reason
}

func (c *Controller) clear() {
	c.hits = 0
	c.misses = 0
	c.reactions = nil
	c.targets = nil
	c.pending = 0
}

func (c *Controller) total() time.Duration {
	return time.Duration(c.cfg.DurationSec) * time.Second
}

func (c *Controller) spawnOne() bool {
	area, ok := c.area()
	if !ok {
		return false
	}
	existing := make([]generator.Point, len(c.targets))
	for i, t := range c.targets {
		existing[i] = generator.Point{X: t.X, Y: t.Y}
	}
	p := c.gen.Place(area, existing, float64(c.cfg.TargetSizePx))
	c.targets = append(c.targets, Target{
		ID:        c.newID(),
		X:         p.X,
		Y:         p.Y,
		SpawnedAt: c.now(),
	})
	return true
}

func (c *Controller) area() (generator.Area, bool) {
	if c.arena.Width <= 0 || c.arena.Height <= 0 {
		return generator.Area{}, false
	}
	size := float64(c.cfg.TargetSizePx)
	minX := ArenaPadding
	maxX := math.Max(ArenaPadding, c.arena.Width-size-ArenaPadding)
	minY := ArenaPadding + math.Max(0, c.arena.TopInset) + hudGap
	maxY := math.Max(minY, c.arena.Height-size-ArenaPadding)
	return generator.Area{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}, true
}
