// Package visibility implements the pure Visibility Calculator: given an
// observer's sense capabilities, a target's state, and the environment
// between them, it derives a VisibilityState and records which sense
// produced it.
package visibility

// State is the result of resolving a single observer→target pair.
type State string

const (
	Observed   State = "observed"
	Concealed  State = "concealed"
	Hidden     State = "hidden"
	Undetected State = "undetected"
	// AVS is a sentinel meaning "no override; let the calculator decide".
	// It is never a persisted per-pair result, only a user selection that
	// clears an override.
	AVS State = "avs"
)

// rank orders states from most to least detected, used by downgrade logic
// (cover/concealment can only ever move a result down this ladder, never up).
var rank = map[State]int{
	Observed:   3,
	Concealed:  2,
	Hidden:     1,
	Undetected: 0,
}

// Rank returns a state's position on the detection ladder, highest (most
// detected, Observed) to lowest (least detected, Undetected). Exported so
// callers outside this package can classify a state transition (improved /
// worsened / unchanged) without duplicating the ladder order.
func Rank(s State) int {
	return rank[s]
}

// Downgrade returns the worse (less-detected) of s and floor.
func Downgrade(s, floor State) State {
	if rank[floor] < rank[s] {
		return floor
	}
	return s
}

// Better returns the more-detected of a and b.
func Better(a, b State) State {
	if rank[a] >= rank[b] {
		return a
	}
	return b
}

// Cover is the PF2e cover ladder; each step grants a stealth bonus.
type Cover string

const (
	CoverNone     Cover = "none"
	CoverLesser   Cover = "lesser"
	CoverStandard Cover = "standard"
	CoverGreater  Cover = "greater"
)

// StealthBonus returns the Stealth check bonus a cover state grants.
func (c Cover) StealthBonus() int {
	switch c {
	case CoverLesser:
		return 1
	case CoverStandard:
		return 2
	case CoverGreater:
		return 4
	default:
		return 0
	}
}

// AtLeastStandard reports whether cover meets the "standard or greater"
// threshold several action prerequisites key on for end qualification.
func (c Cover) AtLeastStandard() bool {
	return c == CoverStandard || c == CoverGreater
}

// stateOrder is the ladder UpgradeState and DowngradeState step along;
// vanish-into-the-land (feats/builtins.go) uses DowngradeState.
var stateOrder = []State{Undetected, Hidden, Concealed, Observed}

// UpgradeState bumps s up by one rung toward Observed, clamped at Observed.
// Ladder direction here is "more detected"; callers wanting "more concealed"
// (vanish-into-the-land) call it on the reversed sense — see DowngradeState.
func UpgradeState(s State) State {
	for i, step := range stateOrder {
		if step == s {
			if i+1 < len(stateOrder) {
				return stateOrder[i+1]
			}
			return s
		}
	}
	return s
}

// DowngradeState bumps s down by one rung toward Undetected (more
// concealed), clamped at Undetected.
func DowngradeState(s State) State {
	for i, step := range stateOrder {
		if step == s {
			if i > 0 {
				return stateOrder[i-1]
			}
			return s
		}
	}
	return s
}

// coverOrder lets UpgradeOneStep move a cover state up the ladder, used by
// feats.CeaselessShadows.
var coverOrder = []Cover{CoverNone, CoverLesser, CoverStandard, CoverGreater}

// UpgradeOneStep bumps cover up by one rung, clamped at greater.
func UpgradeOneStep(c Cover) Cover {
	for i, step := range coverOrder {
		if step == c {
			if i+1 < len(coverOrder) {
				return coverOrder[i+1]
			}
			return c
		}
	}
	return c
}
