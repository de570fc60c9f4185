// Package senses derives a token's vision capabilities from the raw sense
// list the host reports, dropping senses suppressed by the blinded/deafened
// conditions before the visibility calculator ever sees them. Range is not
// filtered here; callers check it per pair with InRange.
package senses

import (
	"math"

	"github.com/duskward/visioner/sceneapi"
)

// Precision classifies how good a sense's best-case detection is.
type Precision string

const (
	Precise   Precision = "precise"
	Imprecise Precision = "imprecise"
)

// Kind enumerates the sense families the calculator knows about.
type Kind string

const (
	KindVision            Kind = "vision"
	KindDarkvision         Kind = "darkvision"
	KindGreaterDarkvision  Kind = "greater-darkvision"
	KindHearing            Kind = "hearing"
	KindEcholocation       Kind = "echolocation"
	KindScent              Kind = "scent"
	KindTremorsense        Kind = "tremorsense"
	KindLifesense          Kind = "lifesense"
	KindPreciseOther       Kind = "precise-other"
	KindImpreciseOther     Kind = "imprecise-other"
)

// Infinite represents an unlimited sense range (hearing, absent a fixed cap).
const Infinite = math.MaxInt32

// Descriptor is a single sense a creature possesses.
type Descriptor struct {
	Kind      Kind
	Precision Precision
	RangeFeet int
}

// Capabilities is the aggregated, ready-to-evaluate sense picture for one
// token, already filtered by the conditions that suppress whole families.
type Capabilities struct {
	Precise           map[Kind]int
	Imprecise         map[Kind]int
	HasVision         bool
	IsBlinded         bool
	IsDeafened        bool
	DarkvisionRange   int
	GreaterDarkvision bool
}

// constructOnly is the construct gate lifesense and scent apply (scent also
// checks undead inline in UnmetCondition); it's small enough not to warrant
// its own package.
func constructOnly(creatureType string, traits map[string]bool) bool {
	if creatureType == "construct" {
		return true
	}
	return traits["construct"]
}

// Build aggregates an actor's reported senses into Capabilities, applying
// condition-based suppressions: hearing-family senses (hearing, echolocation)
// are dropped when deafened; vision and visual darkvision are dropped when
// blinded.
func Build(actor sceneapi.Actor) Capabilities {
	caps := Capabilities{
		Precise:   make(map[Kind]int),
		Imprecise: make(map[Kind]int),
	}

	caps.IsBlinded = actor.ConditionSlugs["blinded"]
	caps.IsDeafened = actor.ConditionSlugs["deafened"]

	for _, dto := range actor.Senses {
		kind := Kind(dto.Kind)
		if kind == "" {
			continue
		}
		rangeFeet := dto.RangeFeet
		if rangeFeet <= 0 {
			rangeFeet = Infinite
		}

		switch kind {
		case KindVision:
			if caps.IsBlinded {
				continue
			}
			caps.HasVision = true
		case KindDarkvision:
			if caps.IsBlinded {
				continue
			}
			caps.DarkvisionRange = rangeFeet
			continue
		case KindGreaterDarkvision:
			if caps.IsBlinded {
				continue
			}
			caps.DarkvisionRange = rangeFeet
			caps.GreaterDarkvision = true
			continue
		case KindHearing, KindEcholocation:
			if caps.IsDeafened {
				continue
			}
		}

		switch Precision(dto.Precision) {
		case Precise:
			caps.Precise[kind] = maxRange(caps.Precise[kind], rangeFeet)
		default:
			caps.Imprecise[kind] = maxRange(caps.Imprecise[kind], rangeFeet)
		}
	}

	return caps
}

func maxRange(existing, candidate int) int {
	if existing == 0 {
		return candidate
	}
	if candidate > existing {
		return candidate
	}
	return existing
}

// InRange reports whether distanceFeet (already PF2e 5-ft floor rounded by
// the caller) is within a sense's reach.
func InRange(rangeFeet int, distanceFeet int) bool {
	return rangeFeet >= distanceFeet
}

// UnmetConditionReason names why a sense can't detect a particular target,
// used to populate the Seek engine's unmet-conditions outcome row.
type UnmetConditionReason string

const (
	ReasonLifesenseVsConstruct UnmetConditionReason = "lifesense cannot detect constructs"
	ReasonScentVsUndeadOrConstruct UnmetConditionReason = "scent cannot detect undead or constructs"
	ReasonTremorsenseVsFlying UnmetConditionReason = "tremorsense cannot detect flying creatures"
	ReasonScentBlockedByWind   UnmetConditionReason = "scent is blocked by wind or a no-scent trait here"
)

// Environment carries scene-level conditions that suppress an entire sense
// family independent of any one target's traits, as opposed to the
// creature-type gates UnmetCondition otherwise checks.
type Environment struct {
	// ScentBlocked is true when strong wind or a no-scent terrain trait is
	// in effect between observer and target, per the scent sense's range
	// rules.
	ScentBlocked bool
}

// UnmetCondition checks whether kind is blocked against target's creature
// type/traits or the ambient environment, independent of range. Returns
// ("", false) when the sense is unconditionally usable against this target.
func UnmetCondition(kind Kind, target sceneapi.Actor, targetIsFlying bool, env Environment) (UnmetConditionReason, bool) {
	switch kind {
	case KindLifesense:
		if constructOnly(target.CreatureType, target.Traits) {
			return ReasonLifesenseVsConstruct, true
		}
	case KindScent:
		if constructOnly(target.CreatureType, target.Traits) || target.CreatureType == "undead" || target.Traits["undead"] {
			return ReasonScentVsUndeadOrConstruct, true
		}
		if env.ScentBlocked {
			return ReasonScentBlockedByWind, true
		}
	case KindTremorsense:
		if targetIsFlying {
			return ReasonTremorsenseVsFlying, true
		}
	}
	return "", false
}

// DetectsLiving reports whether lifesense perceives both undead and living
// creatures (but never constructs — gated by UnmetCondition above).
func DetectsLiving(target sceneapi.Actor) bool {
	return !constructOnly(target.CreatureType, target.Traits)
}
