// Package filters implements the pure row filters applied to Seek/bulk
// operation subject lists: encounter membership, allies, distance caps,
// defeated creatures, viewport bounds, and aimed templates, driven by the
// config surface (defaultEncounterFilter, ignoreAllies, limitSeekRange*).
package filters

import "github.com/duskward/visioner/sceneapi"

// Row is one candidate subject a filter chain can accept or reject.
type Row struct {
	Token    sceneapi.Token
	Actor    sceneapi.Actor
	Distance float64
}

// Predicate reports whether row survives this filter.
type Predicate func(row Row) bool

// Chain applies every predicate in order, short-circuiting on the first
// rejection; a row survives only if every predicate accepts it.
func Chain(predicates ...Predicate) Predicate {
	return func(row Row) bool {
		for _, p := range predicates {
			if !p(row) {
				return false
			}
		}
		return true
	}
}

// Apply filters rows down to the ones every predicate in the chain accepts.
func Apply(rows []Row, predicate Predicate) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if predicate(row) {
			out = append(out, row)
		}
	}
	return out
}

// Encounter keeps only rows whose token ID is present in the active
// encounter roster. A nil or empty roster disables the filter (passes
// everything), matching defaultEncounterFilter=false.
func Encounter(enabled bool, roster map[string]bool) Predicate {
	return func(row Row) bool {
		if !enabled || len(roster) == 0 {
			return true
		}
		return roster[row.Token.ID]
	}
}

// ExcludeAllies drops rows whose disposition matches the seeker's.
func ExcludeAllies(enabled bool, seekerDisposition int) Predicate {
	return func(row Row) bool {
		if !enabled {
			return true
		}
		return row.Token.Disposition != seekerDisposition
	}
}

// Distance drops rows beyond maxFeet. maxFeet <= 0 disables the cap.
func Distance(maxFeet float64) Predicate {
	return func(row Row) bool {
		if maxFeet <= 0 {
			return true
		}
		return row.Distance <= maxFeet
	}
}

// ExcludeDefeated drops dead actors.
func ExcludeDefeated() Predicate {
	return func(row Row) bool {
		return !row.Actor.IsDead
	}
}

// ExcludeSceneHidden drops tokens the host has marked hidden from play.
func ExcludeSceneHidden() Predicate {
	return func(row Row) bool {
		return !row.Token.SceneHidden
	}
}

// Viewport keeps only rows whose token position falls within [min, max] on
// both axes, used to cap Seek to what's currently on-screen.
func Viewport(min, max sceneapi.Position) Predicate {
	return func(row Row) bool {
		p := row.Token.Position
		return p.X >= min.X && p.X <= max.X && p.Y >= min.Y && p.Y <= max.Y
	}
}

// Template keeps only rows whose token position falls within radiusFeet of
// center, modeling an aimed Seek template.
func Template(center sceneapi.Position, radiusFeet float64, distanceFn func(a, b sceneapi.Position) float64) Predicate {
	return func(row Row) bool {
		return distanceFn(center, row.Token.Position) <= radiusFeet
	}
}
