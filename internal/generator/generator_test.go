package generator

import "testing"

func TestPlaceStaysInsideArea(t *testing.T) {
	g := NewSeeded(1)
	area := Area{MinX: 8, MaxX: 500, MinY: 72, MaxY: 300}
	var placed []Point
	for i := 0; i < 200; i++ {
		p := g.Place(area, placed, 40)
		if p.X < area.MinX || p.X > area.MaxX || p.Y < area.MinY || p.Y > area.MaxY {
			t.Fatalf("point %+v outside %+v", p, area)
		}
		if len(placed) < 6 {
			placed = append(placed, p)
		}
	}
}

func TestPlaceKeepsSpacingWhenRoomAvailable(t *testing.T) {
	g := NewSeeded(42)
	area := Area{MinX: 0, MaxX: 2000, MinY: 0, MaxY: 2000}
	var placed []Point
	for i := 0; i < 6; i++ {
		placed = append(placed, g.Place(area, placed, 20))
	}
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			if Overlapping(placed[i], placed[j], 20) {
				t.Fatalf("targets %d and %d overlap: %+v %+v", i, j, placed[i], placed[j])
			}
		}
	}
}

func TestPlaceFallsBackWhenCrowded(t *testing.T) {
	g := NewSeeded(7)
	// Degenerate area: every draw lands on the same spot as the existing target.
	area := Area{MinX: 10, MaxX: 10, MinY: 10, MaxY: 10}
	existing := []Point{{X: 10, Y: 10}}
	p := g.Place(area, existing, 50)
	if p.X != 10 || p.Y != 10 {
		t.Fatalf("expected fallback position (10,10), got %+v", p)
	}
}

func TestOverlapping(t *testing.T) {
	cases := []struct {
		name string
		a, b Point
		size float64
		want bool
	}{
		{"same point", Point{0, 0}, Point{0, 0}, 10, true},
		{"just inside", Point{0, 0}, Point{10.9, 0}, 10, true},
		{"just outside", Point{0, 0}, Point{11.5, 0}, 10, false},
		{"far apart", Point{0, 0}, Point{100, 100}, 10, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlapping(tc.a, tc.b, tc.size); got != tc.want {
				t.Fatalf("Overlapping(%+v, %+v, %v) = %v, want %v", tc.a, tc.b, tc.size, got, tc.want)
			}
		})
	}
}
