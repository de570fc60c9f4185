// Package actions implements the per-action visibility resolvers: Seek,
// Hide, Sneak, Create a Diversion, Point Out, and Take Cover. Each resolver
// is a pure function of its inputs plus the feats registry; callers decide
// whether to persist the result through overrides.Manager.
package actions

import (
	"github.com/duskward/visioner/dice"
	"github.com/duskward/visioner/sceneapi"
	"github.com/duskward/visioner/senses"
	"github.com/duskward/visioner/visibility"
)

// PositionState snapshots one side of a position transition: the detection
// state and environment an observer/target pair sat in at either the start
// or end of an action.
type PositionState struct {
	EffectiveVisibility visibility.State
	CoverState          visibility.Cover
	DistanceFeet        int
	Lighting            sceneapi.LightLevel
	StealthBonus        int
}

// PositionTransition describes how a pair's position changed over the
// course of an action, most relevantly Sneak's start->end state machine.
// TransitionType is judged from the detection-ladder rank of Start vs End:
// "improved" means harder to detect at the end (e.g. hidden -> undetected),
// "worsened" means easier, "unchanged" means the same rank either side.
type PositionTransition struct {
	Start          PositionState
	End            PositionState
	HasChanged     bool
	TransitionType string // "improved" | "worsened" | "unchanged"
}

// NewPositionTransition derives HasChanged/TransitionType from start and end.
func NewPositionTransition(start, end PositionState) PositionTransition {
	t := PositionTransition{Start: start, End: end}
	startRank := visibility.Rank(start.EffectiveVisibility)
	endRank := visibility.Rank(end.EffectiveVisibility)
	switch {
	case endRank < startRank:
		t.TransitionType = "improved"
		t.HasChanged = true
	case endRank > startRank:
		t.TransitionType = "worsened"
		t.HasChanged = true
	default:
		t.TransitionType = "unchanged"
	}
	return t
}

// Outcome is one observer's resolved result for an action taken against (or
// by) a single subject.
type Outcome struct {
	ObserverID string
	TargetID   string

	// DC, RollTotal, Die (the natural d20 face), and Margin (RollTotal-DC)
	// are the roll's full audit trail; zero when the outcome was a free
	// action (no roll occurred).
	DC        int
	RollTotal int
	Die       int
	Margin    int

	Band           dice.Band
	// OldVisibility is the pair's state immediately before this action ran;
	// callers resolve it the same priority-ordered way they resolve
	// StartState/CurrentState (override flag -> stored state -> live calc).
	OldVisibility visibility.State
	NewState      visibility.State
	DetectingSense senses.Kind

	// Deferred is true when the result must wait for end-of-turn
	// revalidation (Sneaky/Very Sneaky) rather than applying immediately.
	Deferred bool
	// FreeAction is true when no roll occurred (e.g. Terrain Stalker).
	FreeAction bool

	FeatNotes []string

	UnmetReason   senses.UnmetConditionReason
	OutOfRange    bool
	NoProficiency bool

	// OverrideState is the state the engine actually persisted through the
	// Override Manager for this pair, filled in by Engine.Apply* once
	// written; nil when nothing was persisted (deferred, AVS, or the host
	// chose not to apply this row).
	OverrideState *visibility.State
	// HasActionableChange reports whether NewState differs from
	// OldVisibility, so hosts can skip redrawing tokens whose state didn't
	// move.
	HasActionableChange bool
	// AutoCover is true when the cover this outcome was computed against
	// came from scene-geometry auto-detection rather than a manually
	// declared GM override.
	AutoCover bool
	// PositionTransition is filled in for actions with a real start/end
	// state machine (Sneak); nil otherwise.
	PositionTransition *PositionTransition
}

// Finalize derives Margin and HasActionableChange from the fields already
// set, and must be called once a resolver has fully populated an Outcome's
// DC/RollTotal/OldVisibility/NewState.
func (o *Outcome) Finalize() {
	o.Margin = o.RollTotal - o.DC
	o.HasActionableChange = o.NewState != o.OldVisibility
}
