package actions

import "github.com/duskward/visioner/visibility"

// TakeCoverResult is the cover-upgrade event Take Cover emits on the acting
// token. Take Cover is not itself an AVS state change; it only raises the
// actor's effective cover by one step, clamped at greater.
type TakeCoverResult struct {
	ActorID  string
	OldCover visibility.Cover
	NewCover visibility.Cover
}

// ResolveTakeCover upgrades actorID's current cover by one step.
func ResolveTakeCover(actorID string, current visibility.Cover) TakeCoverResult {
	return TakeCoverResult{ActorID: actorID, OldCover: current, NewCover: visibility.UpgradeOneStep(current)}
}
