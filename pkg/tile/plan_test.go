package tile

import (
	"reflect"
	"testing"

	"github.com/paulmach/orb"
)

var indonesia = orb.Bound{
	Min: orb.Point{94.5, -11.5},
	Max: orb.Point{141.5, 6.0},
}

func TestPlanZoomZero(t *testing.T) {
	p, err := NewPlan(indonesia, 0, 0)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	if got := p.TotalTiles(); got != 1 {
		t.Fatalf("TotalTiles() = %d, want 1", got)
	}

	var coords []Coord
	p.Tiles(func(c Coord) bool {
		coords = append(coords, c)
		return true
	})
	if len(coords) != 1 || coords[0] != (Coord{Z: 0, X: 0, Y: 0}) {
		t.Errorf("zoom 0 enumeration = %v, want [(0,0,0)]", coords)
	}
}

func TestPlanZoomOneWholeGlobe(t *testing.T) {
	globe := orb.Bound{
		Min: orb.Point{-179.9, -85},
		Max: orb.Point{179.9, 85},
	}

	p, err := NewPlan(globe, 1, 1)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if got := p.TotalTiles(); got != 4 {
		t.Fatalf("TotalTiles() = %d, want 4", got)
	}

	seen := make(map[Coord]int)
	p.Tiles(func(c Coord) bool {
		seen[c]++
		return true
	})

	want := []Coord{
		{Z: 1, X: 0, Y: 0}, {Z: 1, X: 0, Y: 1},
		{Z: 1, X: 1, Y: 0}, {Z: 1, X: 1, Y: 1},
	}
	for _, c := range want {
		if seen[c] != 1 {
			t.Errorf("tile %v enumerated %d times, want exactly once", c, seen[c])
		}
	}
	if len(seen) != 4 {
		t.Errorf("enumerated %d distinct tiles, want 4", len(seen))
	}
}

func TestPlanCountsMatchEnumeration(t *testing.T) {
	p, err := NewPlan(indonesia, 2, 6)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	var sum int64
	for _, l := range p.Levels {
		area := int64(l.MaxX-l.MinX+1) * int64(l.MaxY-l.MinY+1)
		if got := l.Count(); got != area {
			t.Errorf("zoom %d: Count() = %d, want %d", l.Zoom, got, area)
		}
		sum += area
	}
	if got := p.TotalTiles(); got != sum {
		t.Errorf("TotalTiles() = %d, want %d", got, sum)
	}

	var enumerated int64
	p.Tiles(func(Coord) bool {
		enumerated++
		return true
	})
	if enumerated != sum {
		t.Errorf("enumerated %d tiles, want %d", enumerated, sum)
	}
}

func TestPlanDeterministic(t *testing.T) {
	a, err := NewPlan(indonesia, 2, 8)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	b, err := NewPlan(indonesia, 2, 8)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if !reflect.DeepEqual(a.Levels, b.Levels) {
		t.Error("identical inputs produced different plans")
	}
}

func TestPlanNormalizesCornerOrdering(t *testing.T) {
	// A bound handed over with min/max latitudes swapped must yield the
	// same rectangles: the planner normalizes, it does not assume
	// ordering.
	swapped := orb.Bound{
		Min: orb.Point{94.5, 6.0},
		Max: orb.Point{141.5, -11.5},
	}

	normal, err := NewPlan(indonesia, 3, 5)
	if err != nil {
		t.Fatalf("NewPlan(normal): %v", err)
	}
	flipped, err := NewPlan(swapped, 3, 5)
	if err != nil {
		t.Fatalf("NewPlan(swapped): %v", err)
	}
	if !reflect.DeepEqual(normal.Levels, flipped.Levels) {
		t.Errorf("swapped latitudes changed the plan:\n%v\nvs\n%v", normal.Levels, flipped.Levels)
	}
}

func TestPlanInvalidZoomRange(t *testing.T) {
	if _, err := NewPlan(indonesia, 5, 2); err == nil {
		t.Error("expected error for min > max")
	}
	if _, err := NewPlan(indonesia, -1, 2); err == nil {
		t.Error("expected error for negative min zoom")
	}
}

func TestPlanPolarBoundFails(t *testing.T) {
	polar := orb.Bound{
		Min: orb.Point{0, 80},
		Max: orb.Point{10, 88},
	}
	if _, err := NewPlan(polar, 2, 4); err == nil {
		t.Error("expected domain error for bound crossing the Mercator limit")
	}
}

func TestPlanTilesEarlyStop(t *testing.T) {
	p, err := NewPlan(indonesia, 4, 4)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	var n int
	p.Tiles(func(Coord) bool {
		n++
		return false
	})
	if n != 1 {
		t.Errorf("enumeration continued after yield returned false: %d calls", n)
	}
}
