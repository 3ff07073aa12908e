package tile

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Level is the inclusive tile rectangle covering a bounding box at one zoom
// level.
type Level struct {
	Zoom int
	MinX int
	MaxX int
	MinY int
	MaxY int
}

// Count returns the number of tiles in the level's rectangle.
func (l Level) Count() int64 {
	return int64(l.MaxX-l.MinX+1) * int64(l.MaxY-l.MinY+1)
}

// Plan is the enumerated set of tiles covering a bounding box across a zoom
// range, one Level per zoom. Plans are built once and never mutated.
type Plan struct {
	Bound   orb.Bound
	MinZoom int
	MaxZoom int
	Levels  []Level
}

// NewPlan builds the tile plan for bound across minZoom..maxZoom inclusive.
//
// For each zoom level the two defining corners of the box are converted to
// tile coordinates and the resulting ranges normalized on both axes. Tile y
// grows southward, so neither corner is assumed to hold the smaller value.
// The same inputs always produce the same plan.
func NewPlan(bound orb.Bound, minZoom, maxZoom int) (*Plan, error) {
	if minZoom < 0 || minZoom > maxZoom {
		return nil, fmt.Errorf("tile: invalid zoom range %d..%d", minZoom, maxZoom)
	}

	p := &Plan{
		Bound:   bound,
		MinZoom: minZoom,
		MaxZoom: maxZoom,
		Levels:  make([]Level, 0, maxZoom-minZoom+1),
	}

	for z := minZoom; z <= maxZoom; z++ {
		a, err := FromLatLon(bound.Top(), bound.Left(), z)
		if err != nil {
			return nil, err
		}
		b, err := FromLatLon(bound.Bottom(), bound.Right(), z)
		if err != nil {
			return nil, err
		}

		p.Levels = append(p.Levels, Level{
			Zoom: z,
			MinX: min(a.X, b.X),
			MaxX: max(a.X, b.X),
			MinY: min(a.Y, b.Y),
			MaxY: max(a.Y, b.Y),
		})
	}

	return p, nil
}

// TotalTiles returns the sum of per-zoom rectangle areas.
func (p *Plan) TotalTiles() int64 {
	var total int64
	for _, l := range p.Levels {
		total += l.Count()
	}
	return total
}

// Tiles calls yield for every tile in the plan, zoom-major then x then y,
// until yield returns false.
func (p *Plan) Tiles(yield func(Coord) bool) {
	for _, l := range p.Levels {
		for x := l.MinX; x <= l.MaxX; x++ {
			for y := l.MinY; y <= l.MaxY; y++ {
				if !yield(Coord{Z: l.Zoom, X: x, Y: y}) {
					return
				}
			}
		}
	}
}
