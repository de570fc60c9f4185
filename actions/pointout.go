package actions

import "github.com/duskward/visioner/visibility"

// PointOutInput names the ally observer, the pointing creature, and the
// target being revealed.
type PointOutInput struct {
	PointerID  string
	AllyID     string
	TargetID   string
	AllyState  visibility.State
}

// ResolvePointOut upgrades the ally's perception of the target to at worst
// hidden; it never downgrades an already-better state. The result carries
// no duration or expiry.
func ResolvePointOut(in PointOutInput) Outcome {
	newState := visibility.Better(in.AllyState, visibility.Hidden)
	outcome := Outcome{ObserverID: in.AllyID, TargetID: in.TargetID, OldVisibility: in.AllyState, NewState: newState}
	outcome.Finalize()
	return outcome
}
