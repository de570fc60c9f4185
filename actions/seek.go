package actions

import (
	"github.com/duskward/visioner/dice"
	"github.com/duskward/visioner/feats"
	"github.com/duskward/visioner/sceneapi"
	"github.com/duskward/visioner/senses"
	"github.com/duskward/visioner/visibility"
)

// SeekSubjectInput is one subject (token or hidden wall) being searched for.
type SeekSubjectInput struct {
	TargetID       string
	TargetActor    sceneapi.Actor
	CurrentState   visibility.State
	DistanceFeet   int
	TargetIsFlying bool

	// Environmental inputs, applied only when the winning sense is vision.
	Lighting        sceneapi.LightLevel
	Cover           visibility.Cover
	TargetInvisible bool
	// AutoCover is true when Cover came from scene-geometry auto-detection
	// rather than a manual GM declaration.
	AutoCover bool
	// Environment carries scene-level sense-blocking conditions (e.g. wind
	// blocking scent) checked independent of the target's own traits.
	Environment senses.Environment

	PerceptionDC int
	// HasSneakyRollOption mirrors the target's Sneaky-feat roll-option: when
	// set, clamps this Seek's result to at best hidden.
	HasSneakyRollOption bool
	// RequiredPerceptionRank gates hazards/loot; 0 means no gate.
	RequiredPerceptionRank int
}

// SeekInput bundles a seeker's roll and feats against a batch of subjects.
type SeekInput struct {
	SeekerID        string
	Feats           feats.Set
	SeekerPerceptionRank int
	Natural         int
	PerceptionModifier int
	Subjects        []SeekSubjectInput
	SeekerSenses    senses.Capabilities
}

// ResolveSeek evaluates one Seek action against every subject in in.
func ResolveSeek(registry *feats.Registry, in SeekInput) []Outcome {
	outcomes := make([]Outcome, 0, len(in.Subjects))

	for _, subj := range in.Subjects {
		ctx := &feats.Context{
			ActorID: in.SeekerID,
			Feats:   in.Feats,
			Action:  "seek",
		}

		outcome := Outcome{ObserverID: in.SeekerID, TargetID: subj.TargetID, OldVisibility: subj.CurrentState, AutoCover: subj.AutoCover}

		if subj.RequiredPerceptionRank > 0 && in.SeekerPerceptionRank < subj.RequiredPerceptionRank && !in.Feats.Has("thats-odd") {
			outcome.NoProficiency = true
			outcome.NewState = subj.CurrentState
			outcome.Finalize()
			outcomes = append(outcomes, outcome)
			continue
		}

		sense, impreciseOnly, reason, outOfRange := bestReachableSense(in.SeekerSenses, subj)
		if outOfRange {
			outcome.OutOfRange = true
			outcome.NewState = subj.CurrentState
			outcome.Finalize()
			outcomes = append(outcomes, outcome)
			continue
		}
		if reason != "" {
			outcome.UnmetReason = reason
			outcome.NewState = subj.CurrentState
			outcome.Finalize()
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.DetectingSense = sense

		check := dice.EvaluateCheck(in.Natural, in.Natural+in.PerceptionModifier, subj.PerceptionDC)
		outcome.DC = check.DC
		outcome.RollTotal = check.Total
		outcome.Die = check.Natural
		ctx.OutcomeBand = int(check.Band)
		shift := registry.RunOutcomeShift(ctx)
		band := check.Band.Step(shift)
		outcome.Band = band

		var newState visibility.State
		switch band {
		case dice.CriticalSuccess, dice.Success:
			newState = visibility.Observed
		case dice.CriticalFailure:
			newState = visibility.Undetected
		default:
			newState = visibility.Downgrade(subj.CurrentState, visibility.Concealed)
		}

		if sense == senses.KindVision && newState == visibility.Observed {
			newState = visibility.EnvironmentalDowngrade(newState, subj.Lighting, subj.Cover, subj.TargetInvisible)
		}
		if impreciseOnly {
			newState = visibility.Downgrade(newState, visibility.Hidden)
		}
		if subj.HasSneakyRollOption {
			newState = visibility.Downgrade(newState, visibility.Hidden)
		}

		ctx.OutcomeBand = int(band)
		outcome.NewState = registry.RunAdjustVisibility(ctx, newState)
		outcome.Finalize()
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// bestReachableSense picks the sense that would carry this observer/target
// pair per the calculator's fixed precedence (precise non-visual -> visual
// precise -> imprecise non-visual -> hearing), reporting whether the winner
// is imprecise-only and surfacing out-of-range/unmet-condition diagnostics
// when nothing reaches.
func bestReachableSense(caps senses.Capabilities, subj SeekSubjectInput) (kind senses.Kind, impreciseOnly bool, reason senses.UnmetConditionReason, outOfRange bool) {
	anyInRangeButUnmet := false

	for k, rangeFeet := range caps.Precise {
		if k == senses.KindVision {
			continue
		}
		if !senses.InRange(rangeFeet, subj.DistanceFeet) {
			continue
		}
		if r, unmet := senses.UnmetCondition(k, subj.TargetActor, subj.TargetIsFlying, subj.Environment); unmet {
			reason = r
			anyInRangeButUnmet = true
			continue
		}
		return k, false, "", false
	}

	if caps.HasVision || caps.DarkvisionRange > 0 {
		if senses.InRange(maxOf(caps.DarkvisionRange, boolToRange(caps.HasVision)), subj.DistanceFeet) {
			return senses.KindVision, false, "", false
		}
	}

	for k, rangeFeet := range caps.Imprecise {
		if k == senses.KindHearing {
			continue
		}
		if !senses.InRange(rangeFeet, subj.DistanceFeet) {
			continue
		}
		if r, unmet := senses.UnmetCondition(k, subj.TargetActor, subj.TargetIsFlying, subj.Environment); unmet {
			reason = r
			anyInRangeButUnmet = true
			continue
		}
		return k, true, "", false
	}

	if rangeFeet, ok := caps.Imprecise[senses.KindHearing]; ok && senses.InRange(rangeFeet, subj.DistanceFeet) {
		return senses.KindHearing, true, "", false
	}

	if anyInRangeButUnmet {
		return "", false, reason, false
	}
	return "", false, "", true
}

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func boolToRange(hasVision bool) int {
	if hasVision {
		return senses.Infinite
	}
	return 0
}
