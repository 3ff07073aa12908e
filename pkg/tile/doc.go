// Package tile implements Web Mercator slippy-map tile addressing and
// bounding-box tile plans.
//
// A tile is addressed by (zoom, x, y) in a pyramid where zoom level z holds
// a 2^z x 2^z grid. FromLatLon converts geographic coordinates to the tile
// containing them; NewPlan enumerates the inclusive tile rectangles covering
// a bounding box across a zoom range.
//
// # Usage
//
//	bound := orb.Bound{Min: orb.Point{94.5, -11.5}, Max: orb.Point{141.5, 6.0}}
//	plan, err := tile.NewPlan(bound, 2, 12)
//
//	fmt.Println(plan.TotalTiles())
//	plan.Tiles(func(c tile.Coord) bool {
//	    fmt.Println(c.Path()) // "2/3/1", ...
//	    return true
//	})
//
// Coordinates at or beyond the Web Mercator latitude limit (~85.0511
// degrees) have no tile representation; FromLatLon returns a *DomainError
// for them instead of clamping.
package tile
