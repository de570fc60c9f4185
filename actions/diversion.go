package actions

import (
	"github.com/duskward/visioner/dice"
	"github.com/duskward/visioner/feats"
	"github.com/duskward/visioner/visibility"
)

// DiversionObserverInput is one observer's snapshot for Create a Diversion.
type DiversionObserverInput struct {
	ObserverID   string
	CurrentState visibility.State
	PerceptionDC int
}

// DiversionInput bundles a Create a Diversion action's context. The
// diverting token never appears in Observers (it can't divert against
// itself) — callers are responsible for excluding it from the subject
// list before calling ResolveDiversion.
type DiversionInput struct {
	ActorID           string
	Feats             feats.Set
	Natural           int
	DeceptionModifier int
	Observers         []DiversionObserverInput
}

// DiversionOutcome adds the off-guard surge flag to the base Outcome; the
// surge window itself (off-guard for one round) is out of scope for this
// core and is left for the host to apply.
type DiversionOutcome struct {
	Outcome
	GrantsOffGuard bool
}

// ResolveDiversion runs Create a Diversion against every observer.
func ResolveDiversion(registry *feats.Registry, in DiversionInput) []DiversionOutcome {
	outcomes := make([]DiversionOutcome, 0, len(in.Observers))

	for _, obs := range in.Observers {
		ctx := &feats.Context{ActorID: in.ActorID, Feats: in.Feats, Action: "diversion"}

		check := dice.EvaluateCheck(in.Natural, in.Natural+in.DeceptionModifier, obs.PerceptionDC)
		ctx.OutcomeBand = int(check.Band)
		shift := registry.RunOutcomeShift(ctx)
		band := check.Band.Step(shift)

		result := DiversionOutcome{Outcome: Outcome{
			ObserverID:    obs.ObserverID,
			TargetID:      in.ActorID,
			Band:          band,
			OldVisibility: obs.CurrentState,
			DC:            check.DC,
			RollTotal:     check.Total,
			Die:           check.Natural,
		}}

		switch band {
		case dice.CriticalSuccess:
			result.NewState = visibility.Hidden
			result.GrantsOffGuard = true
		case dice.Success:
			result.NewState = visibility.Hidden
		default:
			result.NewState = obs.CurrentState
		}

		ctx.OutcomeBand = int(band)
		result.NewState = registry.RunAdjustVisibility(ctx, result.NewState)
		result.Finalize()
		outcomes = append(outcomes, result)
	}

	return outcomes
}
