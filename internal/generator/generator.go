// Package generator places targets inside the arena.
package generator

import (
	"math/rand"
	"time"
)

const (
	// MaxTries bounds the rejection sampling before falling back to any position.
	MaxTries = 50
	// SpacingFactor scales target size into the minimum center distance.
	SpacingFactor = 1.1
)

// Point is a top-left target position in arena pixels.
type Point struct {
	X float64
	Y float64
}

// Area is the rectangle of valid top-left positions.
type Area struct {
	MinX float64
	MaxX float64
	MinY float64
	MaxY float64
}

// Generator produces randomized target positions.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Place draws a position that keeps its distance from existing targets.
// After MaxTries rejected draws it returns a fresh draw unconditionally.
func (g *Generator) Place(area Area, existing []Point, size float64) Point {
	for i := 0; i < MaxTries; i++ {
		candidate := g.draw(area)
		if !overlapsAny(candidate, existing, size) {
			return candidate
		}
	}
	return g.draw(area)
}

func (g *Generator) draw(area Area) Point {
	return Point{
		X: area.MinX + g.rnd.Float64()*(area.MaxX-area.MinX),
		Y: area.MinY + g.rnd.Float64()*(area.MaxY-area.MinY),
	}
}

func overlapsAny(p Point, existing []Point, size float64) bool {
	for _, e := range existing {
		if Overlapping(p, e, size) {
			return true
		}
	}
	return false
}

// Overlapping reports whether two targets of the given size sit closer than
// SpacingFactor × size, center to center.
func Overlapping(a, b Point, size float64) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	minDist := size * SpacingFactor
	return dx*dx+dy*dy < minDist*minDist
}
