// Package turntracker manages per-turn Sneak state: which observers have
// already produced a rollFailure against a sneaking creature this turn
// (which coerces the rest of that turn's results to AVS for them), and which
// observers have a deferred end-of-turn position check pending from the
// Sneaky/Very Sneaky feats.
package turntracker

import (
	"fmt"

	"github.com/duskward/visioner/visibility"
)

// TurnSneakState is one sneaking creature's bookkeeping for the turn it is
// currently acting on.
type TurnSneakState struct {
	ActorID    string
	TurnNumber int

	// coercedObservers holds every observer ID that has already recorded a
	// rollFailure against this actor's Sneak check this turn. Once an
	// observer is in this set, every later Sneak result against it this turn
	// is forced to AVS rather than re-applying a fresh visibility state.
	coercedObservers map[string]bool
}

// DeferredCheck represents a pending end-of-turn position re-check against
// one observer, scheduled by the Sneaky or Very Sneaky feats so the
// sneaking creature's final position (rather than its position at the time
// of the roll) decides the outcome. OriginalOutcome is the optimistic result
// the Sneak roll produced (held back, not yet applied); ProcessEndOfTurn
// either restores it in full or forces Observed, it never substitutes an
// unrelated result.
type DeferredCheck struct {
	ActorID        string
	ObserverID     string
	TurnNumber     int
	OriginalOutcome visibility.State
}

func deferredKey(actorID, observerID string) string {
	return fmt.Sprintf("%s|%s", actorID, observerID)
}

// Tracker owns the turn-scoped Sneak bookkeeping for every actor currently
// mid-combat. It is host-agnostic: the engine calls into it and reacts to
// its callbacks, mirroring the turn.Manager On* collaboration pattern.
type Tracker struct {
	states   map[string]*TurnSneakState
	deferred map[string]*DeferredCheck

	// OnDeferredCheckScheduled fires when a Sneaky/Very Sneaky feat defers an
	// observer's position check to end of turn.
	OnDeferredCheckScheduled func(actorID, observerID string, turnNumber int)
	// OnDeferredCheckResolved fires once ProcessEndOfTurn resolves a deferred
	// check, reporting the final visibility state applied.
	OnDeferredCheckResolved func(actorID, observerID string, turnNumber int, result visibility.State)
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		states:   make(map[string]*TurnSneakState),
		deferred: make(map[string]*DeferredCheck),
	}
}

// StartTurnSneak resets actorID's coercion bookkeeping for a new turn. Call
// this once at the top of the actor's turn, before any Sneak rolls.
func (t *Tracker) StartTurnSneak(actorID string, turnNumber int) {
	t.states[actorID] = &TurnSneakState{
		ActorID:          actorID,
		TurnNumber:       turnNumber,
		coercedObservers: make(map[string]bool),
	}
}

// RecordRollOutcome records whether actorID's Sneak roll against observerID
// failed (failure or critical failure). A failed roll marks observerID as
// coerced for the remainder of the turn; a later non-failing roll leaves an
// existing coercion in place.
func (t *Tracker) RecordRollOutcome(actorID, observerID string, failed bool) {
	state, ok := t.states[actorID]
	if !ok {
		return
	}
	if failed {
		state.coercedObservers[observerID] = true
	}
}

// IsCoerced reports whether observerID's result against actorID must be
// forced to AVS this turn because an earlier roll already failed against it.
func (t *Tracker) IsCoerced(actorID, observerID string) bool {
	state, ok := t.states[actorID]
	if !ok {
		return false
	}
	return state.coercedObservers[observerID]
}

// ScheduleDeferredCheck records that observerID's position re-check against
// actorID must happen at end of turn rather than immediately, holding
// originalOutcome (the optimistic result the roll produced) for
// ProcessEndOfTurn to restore verbatim if the end position still qualifies,
// and fires OnDeferredCheckScheduled.
func (t *Tracker) ScheduleDeferredCheck(actorID, observerID string, turnNumber int, originalOutcome visibility.State) {
	key := deferredKey(actorID, observerID)
	t.deferred[key] = &DeferredCheck{
		ActorID:         actorID,
		ObserverID:      observerID,
		TurnNumber:      turnNumber,
		OriginalOutcome: originalOutcome,
	}
	if t.OnDeferredCheckScheduled != nil {
		t.OnDeferredCheckScheduled(actorID, observerID, turnNumber)
	}
}

// IsDeferred reports whether observerID has a pending deferred check against
// actorID.
func (t *Tracker) IsDeferred(actorID, observerID string) bool {
	_, ok := t.deferred[deferredKey(actorID, observerID)]
	return ok
}

// RemoveDeferredCheck clears a pending deferred check, used when an override
// or later event supersedes it before end of turn.
func (t *Tracker) RemoveDeferredCheck(actorID, observerID string) {
	delete(t.deferred, deferredKey(actorID, observerID))
}

// ProcessEndOfTurn resolves every deferred check scheduled against actorID.
// recheck reports the sneaking creature's actual end-of-turn concealment and
// cover against observerID; if either qualifies (endConcealed ||
// endCover.AtLeastStandard(), the same test actions/sneak.go applies at roll
// time) the held-back OriginalOutcome is restored exactly, otherwise the
// result is forced to Observed. OnDeferredCheckResolved fires with whichever
// result was decided. Resolved checks are removed.
func (t *Tracker) ProcessEndOfTurn(actorID string, turnNumber int, recheck func(observerID string) (endConcealed bool, endCover visibility.Cover)) {
	for key, dc := range t.deferred {
		if dc.ActorID != actorID {
			continue
		}
		endConcealed, endCover := recheck(dc.ObserverID)
		result := visibility.Observed
		if endConcealed || endCover.AtLeastStandard() {
			result = dc.OriginalOutcome
		}
		if t.OnDeferredCheckResolved != nil {
			t.OnDeferredCheckResolved(actorID, dc.ObserverID, turnNumber, result)
		}
		delete(t.deferred, key)
	}
	delete(t.states, actorID)
}

// PendingObservers lists the observer IDs still holding a deferred check
// against actorID, sorted only insofar as map iteration is not guaranteed;
// callers that need deterministic order should sort the result themselves.
func (t *Tracker) PendingObservers(actorID string) []string {
	var out []string
	for _, dc := range t.deferred {
		if dc.ActorID == actorID {
			out = append(out, dc.ObserverID)
		}
	}
	return out
}
