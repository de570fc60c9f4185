package actions

import (
	"github.com/duskward/visioner/dice"
	"github.com/duskward/visioner/feats"
	"github.com/duskward/visioner/turntracker"
	"github.com/duskward/visioner/visibility"
)

// SneakObserverInput is one observer's snapshot for a single Sneak action.
type SneakObserverInput struct {
	ObserverID string

	// StartState is the captured startStates snapshot for this observer,
	// taken at the moment Sneak began. Its priority-ordered sources are
	// override flag -> stored start state -> position transition data ->
	// live calculation; resolving that chain is the caller's job, this
	// resolver only consumes the final value.
	StartState visibility.State

	EndCover      visibility.Cover
	EndConcealed  bool
	// AutoCover is true when EndCover came from scene-geometry auto-detection
	// rather than a manual GM declaration.
	AutoCover bool

	// CoverProviderSizeDelta is the size-category delta of whatever creature
	// is providing cover at the end point, used by distracting-shadows.
	CoverProviderSizeDelta int

	PerceptionDC int
}

// SneakInput bundles one Sneak action's full context: the actor's feats and
// terrain situation, plus one entry per observer who might notice it.
type SneakInput struct {
	ActorID string
	Feats   feats.Set

	Terrain                  string
	TerrainStalkerSelections []string
	MovementFeet             float64
	PathClearOfEnemies       bool
	AllNonAlliesUndetected   bool

	Natural         int
	StealthModifier int

	Observers []SneakObserverInput
}

// SneakObserverResult is one observer's resolved Sneak outcome.
type SneakObserverResult struct {
	Outcome
	StartQualifies bool
	EndQualifies   bool
}

// ResolveSneak runs the Sneak state machine for every observer in in,
// consulting registry for feat relaxations and tracker for per-turn
// coercion/deferral bookkeeping. turnNumber is the sneaker's current turn,
// used when scheduling a deferred check.
func ResolveSneak(registry *feats.Registry, tracker *turntracker.Tracker, turnNumber int, in SneakInput) []SneakObserverResult {
	results := make([]SneakObserverResult, 0, len(in.Observers))

	for _, obs := range in.Observers {
		ctx := &feats.Context{
			ActorID:                  in.ActorID,
			Feats:                    in.Feats,
			Action:                   "sneak",
			Terrain:                  in.Terrain,
			TerrainStalkerSelections: in.TerrainStalkerSelections,
			MovementFeet:             in.MovementFeet,
			AllNonAlliesUndetected:   in.AllNonAlliesUndetected,
			PathClearOfEnemies:       in.PathClearOfEnemies,
			CoverProviderSizeDelta:   obs.CoverProviderSizeDelta,
			EndCoverAtLeastLesser:    obs.EndCover != visibility.CoverNone,
			StartQualifies:           obs.StartState == visibility.Hidden || obs.StartState == visibility.Undetected,
			EndQualifies:             obs.EndConcealed || obs.EndCover.AtLeastStandard(),
		}

		registry.RunPreprocessPrerequisites(ctx)

		result := SneakObserverResult{
			Outcome: Outcome{
				ObserverID:    obs.ObserverID,
				TargetID:      in.ActorID,
				OldVisibility: obs.StartState,
				AutoCover:     obs.AutoCover,
			},
			StartQualifies: ctx.StartQualifies,
			EndQualifies:   ctx.EndQualifies,
		}

		switch {
		case ctx.FreeSneak:
			result.FreeAction = true
			result.Band = dice.Success
			result.NewState = obs.StartState
			result.FeatNotes = append(result.FeatNotes, "Terrain Stalker: free Sneak")
			result.Finalize()

		case tracker != nil && tracker.IsCoerced(in.ActorID, obs.ObserverID):
			result.NewState = visibility.AVS
			result.Finalize()

		default:
			check := dice.EvaluateCheck(in.Natural, in.Natural+in.StealthModifier, obs.PerceptionDC)
			result.DC = check.DC
			result.RollTotal = check.Total
			result.Die = check.Natural
			ctx.OutcomeBand = int(check.Band)
			shift := registry.RunOutcomeShift(ctx)
			band := check.Band.Step(shift)
			result.Band = band

			qualifies := ctx.StartQualifies && ctx.EndQualifies
			succeeded := band == dice.Success || band == dice.CriticalSuccess
			hasDeferralFeat := in.Feats.Has("sneaky") || in.Feats.Has("very-sneaky")
			deferEligible := hasDeferralFeat && succeeded && ctx.StartQualifies && !ctx.EndQualifies

			var newState visibility.State
			switch {
			case qualifies && succeeded:
				newState = visibility.Undetected
			case deferEligible:
				// Prerequisite-forced observed is held back; the pending
				// (optimistic) result is carried until end-of-turn
				// revalidation decides it for real.
				newState = visibility.Undetected
				result.Deferred = true
			default:
				newState = visibility.Observed
			}

			ctx.OutcomeBand = int(band)
			result.NewState = registry.RunAdjustVisibility(ctx, newState)
			result.Finalize()

			if tracker != nil {
				failed := band == dice.Failure || band == dice.CriticalFailure
				tracker.RecordRollOutcome(in.ActorID, obs.ObserverID, failed)
				if result.Deferred {
					tracker.ScheduleDeferredCheck(in.ActorID, obs.ObserverID, turnNumber, result.NewState)
				}
			}
		}

		startPos := PositionState{EffectiveVisibility: obs.StartState}
		endPos := PositionState{EffectiveVisibility: result.NewState, CoverState: obs.EndCover}
		transition := NewPositionTransition(startPos, endPos)
		result.PositionTransition = &transition

		results = append(results, result)
	}

	return results
}
