package refscene

import (
	"math"

	"github.com/duskward/visioner/geometry"
	"github.com/duskward/visioner/sceneapi"
)

// segment is a wall edge that can block line of sight, adapted from the
// teacher's shadows.Segment — trimmed of the tile/edge bookkeeping that only
// made sense for a tilemap renderer, since the reference scene stores walls
// as free-standing segments rather than derived tile edges.
type segment struct {
	A, B geometry.Point
}

// raySegmentIntersection reports whether a ray from origin in direction
// (dx,dy) crosses seg, and at what parametric distance. Adapted from
// shadows.raySegmentIntersection: same 2x2 linear solve, same >=0/<=1 ray vs
// segment bound checks.
func raySegmentIntersection(origin geometry.Point, dx, dy float64, seg segment) (bool, float64) {
	segDX := seg.B.X - seg.A.X
	segDY := seg.B.Y - seg.A.Y

	denominator := dx*segDY - dy*segDX
	if math.Abs(denominator) < 1e-10 {
		return false, 0
	}

	diffX := seg.A.X - origin.X
	diffY := seg.A.Y - origin.Y

	u := (dx*diffY - dy*diffX) / denominator
	t := (segDX*diffY - segDY*diffX) / denominator

	if u >= 0 && u <= 1 && t >= 0 {
		return true, t
	}
	return false, 0
}

// hasLineOfSight walks a ray from a to b and reports whether any wall
// segment blocks it strictly before b is reached.
func hasLineOfSight(a, b geometry.Point, walls []segment) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	fullDist := math.Hypot(dx, dy)
	if fullDist < 1e-9 {
		return true
	}
	dirX, dirY := dx/fullDist, dy/fullDist

	for _, wall := range walls {
		if hit, dist := raySegmentIntersection(a, dirX, dirY, wall); hit {
			// A wall strictly between the two points blocks sight; a wall
			// exactly at the target (dist ~= fullDist) does not occlude the
			// target itself.
			if dist < fullDist-1e-6 {
				return false
			}
		}
	}
	return true
}

// squareCorners returns the four corners of the grid square centered on
// center with the given half-width, approximating a token's occupied square
// for corner-to-corner cover sampling.
func squareCorners(center geometry.Point, halfSize float64) [4]geometry.Point {
	return [4]geometry.Point{
		{X: center.X - halfSize, Y: center.Y - halfSize},
		{X: center.X + halfSize, Y: center.Y - halfSize},
		{X: center.X - halfSize, Y: center.Y + halfSize},
		{X: center.X + halfSize, Y: center.Y + halfSize},
	}
}

// computeCover approximates the PF2e cover ladder by corner-peeking: casting
// a ray from the observer to each of the target's four square corners and
// counting how many are blocked by walls. A full visibility polygon against
// every wall vertex would support a continuous render, but a turn-based
// cover check only needs this coarser four-corner sample.
func computeCover(observer, target geometry.Point, halfSize float64, walls []segment) sceneapi.CoverLevel {
	corners := squareCorners(target, halfSize)
	blocked := 0
	for _, corner := range corners {
		if !hasLineOfSight(observer, corner, walls) {
			blocked++
		}
	}
	switch {
	case blocked >= 4:
		return sceneapi.CoverGreater
	case blocked == 3:
		return sceneapi.CoverStandard
	case blocked >= 1:
		return sceneapi.CoverLesser
	default:
		return sceneapi.CoverNone
	}
}

// pointInPolygon is a standard even-odd ray-casting point-in-polygon test,
// used here to decide whether a point falls inside a named darkness or
// lighting region polygon.
func pointInPolygon(point geometry.Point, polygon []geometry.Point) bool {
	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y

		if ((yi > point.Y) != (yj > point.Y)) &&
			(point.X < (xj-xi)*(point.Y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}

	return inside
}
