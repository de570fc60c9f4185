// Package dice provides the d20 rolling primitive the engine's own CLI uses
// when a host wants the engine to roll a check itself rather than supply an
// externally-rolled natural/total pair.
package dice

import (
	"math/rand"
)

// Roller rolls d20s against a configurable random source.
type Roller struct {
	rng *rand.Rand
}

// NewRoller creates a new Roller with the given random source.
func NewRoller(rng *rand.Rand) *Roller {
	return &Roller{rng: rng}
}
