// Package refscene is a reference implementation of sceneapi.Scene over a
// simple in-memory grid of tokens, walls, and named lighting/darkness
// regions. It is not part of the host contract — Foundry (or any real
// host) supplies its own — but gives the engine and demo CLI something
// concrete to run against.
package refscene

import (
	"math"

	"github.com/duskward/visioner/geometry"
	"github.com/duskward/visioner/sceneapi"
)

// Region is a named polygon used for both lighting levels and magical
// darkness sources.
type Region struct {
	Name     string
	Polygon  []geometry.Point
	Light    sceneapi.LightLevel
	Darkness bool
	Rank     int
}

// Builder assembles a Scene incrementally; tests and the demo CLI construct
// one, add tokens/walls/regions, then call Build.
type Builder struct {
	feetPerSquare int
	tokens        []sceneapi.Token
	actors        map[string]sceneapi.Actor
	walls         []sceneapi.Wall
	regions       []Region
}

// NewBuilder creates an empty scene builder with the given grid scale.
func NewBuilder(feetPerSquare int) *Builder {
	return &Builder{
		feetPerSquare: feetPerSquare,
		actors:        make(map[string]sceneapi.Actor),
	}
}

// AddToken registers a token and its actor data.
func (b *Builder) AddToken(tok sceneapi.Token, actor sceneapi.Actor) *Builder {
	b.tokens = append(b.tokens, tok)
	b.actors[tok.ID] = actor
	return b
}

// AddWall registers a wall segment.
func (b *Builder) AddWall(w sceneapi.Wall) *Builder {
	b.walls = append(b.walls, w)
	return b
}

// AddRegion registers a named lighting or darkness region.
func (b *Builder) AddRegion(r Region) *Builder {
	b.regions = append(b.regions, r)
	return b
}

func toPoint(p sceneapi.Position) geometry.Point {
	return geometry.Point{X: p.X, Y: p.Y}
}

func toSegment(w sceneapi.Wall) segment {
	return segment{A: toPoint(w.A), B: toPoint(w.B)}
}

// Build produces the sceneapi.Scene closures backed by the builder's state.
func (b *Builder) Build() sceneapi.Scene {
	tokens := append([]sceneapi.Token(nil), b.tokens...)
	walls := append([]sceneapi.Wall(nil), b.walls...)
	segments := make([]segment, 0, len(walls))
	for _, w := range walls {
		segments = append(segments, toSegment(w))
	}
	regions := append([]Region(nil), b.regions...)
	actors := b.actors
	feetPerSquare := b.feetPerSquare

	return sceneapi.Scene{
		TokensInScene: func() []sceneapi.Token { return tokens },
		WallsInScene:  func() []sceneapi.Wall { return walls },
		GridFeetPerSquare: func() int {
			return feetPerSquare
		},
		TokenAt: func(id string) (sceneapi.Token, bool) {
			for _, t := range tokens {
				if t.ID == id {
					return t, true
				}
			}
			return sceneapi.Token{}, false
		},
		ActorFor: func(tokenID string) (sceneapi.Actor, bool) {
			a, ok := actors[tokenID]
			return a, ok
		},
		DistanceFeet: func(a, c sceneapi.Position) float64 {
			return geometry.Distance(toPoint(a), toPoint(c))
		},
		HasLineOfSight: func(a, c sceneapi.Position) bool {
			return hasLineOfSight(toPoint(a), toPoint(c), segments)
		},
		LightLevelAt: func(p sceneapi.Position) sceneapi.Lighting {
			pt := toPoint(p)
			for _, r := range regions {
				if r.Darkness {
					continue
				}
				if pointInPolygon(pt, r.Polygon) {
					return sceneapi.Lighting{Level: r.Light}
				}
			}
			return sceneapi.Lighting{Level: sceneapi.LightBright}
		},
		RayCrossesDarkness: func(a, c sceneapi.Position) sceneapi.DarknessCrossing {
			mid := geometry.Point{X: (a.X + c.X) / 2, Y: (a.Y + c.Y) / 2}
			for _, r := range regions {
				if !r.Darkness {
					continue
				}
				if pointInPolygon(mid, r.Polygon) || segmentCrossesPolygon(toPoint(a), toPoint(c), r.Polygon) {
					return sceneapi.DarknessCrossing{CrossesDarkness: true, Rank: r.Rank}
				}
			}
			return sceneapi.DarknessCrossing{}
		},
		CoverAt: func(observer, target sceneapi.Position) sceneapi.CoverLevel {
			halfSquare := float64(feetPerSquare) / 2
			return computeCover(toPoint(observer), toPoint(target), halfSquare, segments)
		},
	}
}

// segmentCrossesPolygon is a coarse check: true if either endpoint, or any
// of seven evenly spaced interior sample points, lies inside the polygon.
// RayCrossesDarkness uses it to catch regions its midpoint test misses.
// Good enough for the reference adapter; real hosts do real ray/volume
// intersection.
func segmentCrossesPolygon(a, c geometry.Point, polygon []geometry.Point) bool {
	if pointInPolygon(a, polygon) || pointInPolygon(c, polygon) {
		return true
	}
	steps := 8
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		p := geometry.Point{X: a.X + (c.X-a.X)*t, Y: a.Y + (c.Y-a.Y)*t}
		if pointInPolygon(p, polygon) {
			return true
		}
	}
	return false
}

// DistanceFeetRounded applies the PF2e 5-ft floor rule on top of a raw
// Euclidean distance — a convenience for callers that bypass the Scene
// closures.
func DistanceFeetRounded(a, c sceneapi.Position) int {
	raw := geometry.Distance(toPoint(a), toPoint(c))
	return geometry.RoundDownToSquare(math.Max(raw, 0))
}
