package actions

import (
	"github.com/duskward/visioner/dice"
	"github.com/duskward/visioner/feats"
	"github.com/duskward/visioner/visibility"
)

// HideObserverInput is one observer's snapshot for a Hide action.
type HideObserverInput struct {
	ObserverID   string
	CurrentState visibility.State
	Concealed    bool
	Cover        visibility.Cover
	PerceptionDC int

	CoverProviderSizeDelta int
	// AutoCover is true when Cover came from scene-geometry auto-detection
	// rather than a manual GM declaration.
	AutoCover bool
}

// HideInput bundles a Hide action's context.
type HideInput struct {
	ActorID            string
	Feats              feats.Set
	Terrain            string
	Natural            int
	StealthModifier    int
	Observers          []HideObserverInput
}

// ResolveHide runs Hide against every observer. Start qualification mirrors
// Sneak's end qualification (concealed, or standard-or-greater cover,
// modulated by the same relaxation feats); a successful Hide only ever
// grants hidden, never undetected.
func ResolveHide(registry *feats.Registry, in HideInput) []Outcome {
	outcomes := make([]Outcome, 0, len(in.Observers))

	for _, obs := range in.Observers {
		ctx := &feats.Context{
			ActorID:                in.ActorID,
			Feats:                  in.Feats,
			Action:                 "hide",
			Terrain:                in.Terrain,
			CoverProviderSizeDelta: obs.CoverProviderSizeDelta,
			EndCoverAtLeastLesser:  obs.Cover != visibility.CoverNone,
			EndQualifies:           obs.Concealed || obs.Cover.AtLeastStandard(),
		}
		registry.RunPreprocessPrerequisites(ctx)

		outcome := Outcome{ObserverID: obs.ObserverID, TargetID: in.ActorID, OldVisibility: obs.CurrentState, AutoCover: obs.AutoCover}

		if !ctx.EndQualifies {
			outcome.NewState = visibility.Observed
			outcome.Finalize()
			outcomes = append(outcomes, outcome)
			continue
		}

		check := dice.EvaluateCheck(in.Natural, in.Natural+in.StealthModifier, obs.PerceptionDC)
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
			newState = visibility.Hidden
		case dice.CriticalFailure:
			newState = visibility.Observed
		default:
			newState = obs.CurrentState
		}

		ctx.OutcomeBand = int(band)
		outcome.NewState = registry.RunAdjustVisibility(ctx, newState)
		outcome.Finalize()
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}
