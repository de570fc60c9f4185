package visibility

import (
	"sort"

	"github.com/duskward/visioner/sceneapi"
	"github.com/duskward/visioner/senses"
)

// DiagnosticReason names why the calculator degraded to a conservative
// result instead of a confident one.
type DiagnosticReason string

const (
	ReasonNone                DiagnosticReason = ""
	ReasonGeometryUnavailable DiagnosticReason = "geometry-unavailable"
	ReasonMissingCapability   DiagnosticReason = "missing-capability"
)

// Diagnostic is attached to a Result when the calculator had to fall back
// to a conservative answer rather than a confidently computed one. The
// calculator never returns a Go error — every input combination produces a
// total result.
type Diagnostic struct {
	Reason DiagnosticReason
	Detail string
}

// Result is the calculator's total output for one observer→target pair.
type Result struct {
	State          State
	DetectingSense senses.Kind
	Diagnostic     *Diagnostic
}

// Input bundles everything the calculator needs to resolve one pair. All
// geometry (distance, LoS, lighting, darkness-crossing) is the host's
// responsibility to supply; the calculator performs no geometry itself.
type Input struct {
	Observer senses.Capabilities

	// DistanceFeet must already be PF2e 5-ft floor rounded (geometry.RoundDownToSquare).
	DistanceFeet int
	LineOfSight  bool

	Lighting           sceneapi.LightLevel
	DarknessCrossesRay bool

	Cover Cover

	TargetInvisible bool
	// TargetIsFlying gates tremorsense; TargetActor carries creature type
	// and traits for the lifesense/scent gates.
	TargetIsFlying bool
	TargetActor    sceneapi.Actor
	// Environment carries scene-level sense-blocking conditions (e.g. wind
	// blocking scent) independent of the target's own traits.
	Environment senses.Environment

	// GeometryOK is false when the host's geometry probe failed; the
	// calculator then degrades to Undetected with a diagnostic rather than
	// guessing.
	GeometryOK bool
}

// candidate is one sense's contribution before the best-of-all-senses
// selection.
type candidate struct {
	kind     senses.Kind
	state    State
	priority int // lower = earlier in the fixed precedence order
}

// precedence priorities:
// precise non-visual -> visual precise -> imprecise non-visual -> hearing.
const (
	priorityPreciseNonVisual = 0
	priorityVisualPrecise    = 1
	priorityImpreciseOther   = 2
	priorityHearing          = 3
)

// Resolve is the pure visibility function: it picks the best-ranked state
// across every sense the observer has that can reach the target at all.
func Resolve(in Input) Result {
	if !in.GeometryOK {
		return Result{
			State: Undetected,
			Diagnostic: &Diagnostic{
				Reason: ReasonGeometryUnavailable,
				Detail: "geometry probe failed; falling back to undetected",
			},
		}
	}

	var candidates []candidate

	// Precise non-visual senses.
	for kind, rangeFeet := range in.Observer.Precise {
		if kind == senses.KindVision {
			continue
		}
		if !senses.InRange(rangeFeet, in.DistanceFeet) {
			continue
		}
		if _, unmet := senses.UnmetCondition(kind, in.TargetActor, in.TargetIsFlying, in.Environment); unmet {
			continue
		}
		candidates = append(candidates, candidate{kind: kind, state: Observed, priority: priorityPreciseNonVisual})
	}

	// Visual precise sense (vision / darkvision / greater darkvision).
	if state, ok := resolveVisual(in); ok {
		candidates = append(candidates, candidate{kind: senses.KindVision, state: state, priority: priorityVisualPrecise})
	}

	// Imprecise non-visual senses, capped at Hidden.
	for kind, rangeFeet := range in.Observer.Imprecise {
		if kind == senses.KindHearing {
			continue
		}
		if !senses.InRange(rangeFeet, in.DistanceFeet) {
			continue
		}
		if _, unmet := senses.UnmetCondition(kind, in.TargetActor, in.TargetIsFlying, in.Environment); unmet {
			continue
		}
		candidates = append(candidates, candidate{kind: kind, state: Hidden, priority: priorityImpreciseOther})
	}

	// Hearing: infinite range unless deafened (already dropped from caps if so).
	if rangeFeet, ok := in.Observer.Imprecise[senses.KindHearing]; ok {
		if senses.InRange(rangeFeet, in.DistanceFeet) {
			candidates = append(candidates, candidate{kind: senses.KindHearing, state: Hidden, priority: priorityHearing})
		}
	}

	if len(candidates) == 0 {
		return Result{State: Undetected}
	}

	return Result{State: best(candidates).state, DetectingSense: best(candidates).kind}
}

// resolveVisual computes the precise-visual candidate, applying the
// blinded/LoS gates, the darkness/darkvision rules, the dim+cover downgrade,
// and the invisibility floor, in that order.
func resolveVisual(in Input) (State, bool) {
	caps := in.Observer
	if caps.IsBlinded || !in.LineOfSight {
		return "", false
	}
	if !caps.HasVision && caps.DarkvisionRange <= 0 {
		return "", false
	}

	effectiveDark := false
	switch {
	case in.DarknessCrossesRay:
		if caps.GreaterDarkvision && senses.InRange(caps.DarkvisionRange, in.DistanceFeet) {
			effectiveDark = false
		} else {
			effectiveDark = true
		}
	case in.Lighting == sceneapi.LightDarkness:
		if senses.InRange(caps.DarkvisionRange, in.DistanceFeet) {
			effectiveDark = false
		} else {
			effectiveDark = true
		}
	}

	if effectiveDark {
		return "", false
	}

	// At this point either plain vision or darkvision carries the sense;
	// if only darkvision is present it must still be in range.
	if !caps.HasVision && !senses.InRange(caps.DarkvisionRange, in.DistanceFeet) {
		return "", false
	}

	return EnvironmentalDowngrade(Observed, in.Lighting, in.Cover, in.TargetInvisible), true
}

// EnvironmentalDowngrade applies the dim-light-plus-cover downgrade and the
// invisibility floor to a precise-visual state. Exported so action
// resolvers that derive a new state from a roll outcome (rather than from
// Resolve directly) still apply the same environmental degradation the
// calculator would.
func EnvironmentalDowngrade(state State, lighting sceneapi.LightLevel, cover Cover, targetInvisible bool) State {
	if lighting == sceneapi.LightDim && cover.AtLeastStandard() {
		state = Downgrade(state, Concealed)
	}
	if targetInvisible {
		state = Downgrade(state, Hidden)
	}
	return state
}

// best picks the highest-ranked candidate, breaking ties by the fixed
// sense precedence and then by kind name for determinism.
func best(candidates []candidate) candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := rank[candidates[i].state], rank[candidates[j].state]
		if ri != rj {
			return ri > rj
		}
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return candidates[i].kind < candidates[j].kind
	})
	return candidates[0]
}
