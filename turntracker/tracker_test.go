package turntracker

import (
	"testing"

	"github.com/duskward/visioner/visibility"
)

func TestCoercionPersistsForRestOfTurn(t *testing.T) {
	tr := NewTracker()
	tr.StartTurnSneak("rogue-1", 4)

	tr.RecordRollOutcome("rogue-1", "guard-1", true)
	if !tr.IsCoerced("rogue-1", "guard-1") {
		t.Fatal("expected guard-1 to be coerced after a failed roll")
	}
	if tr.IsCoerced("rogue-1", "guard-2") {
		t.Fatal("guard-2 should not be coerced")
	}

	tr.RecordRollOutcome("rogue-1", "guard-1", false)
	if !tr.IsCoerced("rogue-1", "guard-1") {
		t.Fatal("a later non-failing roll must not clear an existing coercion")
	}
}

func TestDeferredCheckLifecycle(t *testing.T) {
	tr := NewTracker()
	var scheduled, resolved bool
	tr.OnDeferredCheckScheduled = func(actorID, observerID string, turnNumber int) { scheduled = true }
	tr.OnDeferredCheckResolved = func(actorID, observerID string, turnNumber int, result visibility.State) { resolved = true }

	tr.ScheduleDeferredCheck("rogue-1", "guard-1", 4, visibility.Undetected)
	if !scheduled {
		t.Fatal("expected OnDeferredCheckScheduled to fire")
	}
	if !tr.IsDeferred("rogue-1", "guard-1") {
		t.Fatal("expected deferred check to be pending")
	}

	tr.ProcessEndOfTurn("rogue-1", 4, func(observerID string) (bool, visibility.Cover) {
		return true, visibility.CoverNone
	})
	if !resolved {
		t.Fatal("expected OnDeferredCheckResolved to fire")
	}
	if tr.IsDeferred("rogue-1", "guard-1") {
		t.Fatal("expected deferred check to be cleared after resolution")
	}
}

func TestRemoveDeferredCheck(t *testing.T) {
	tr := NewTracker()
	tr.ScheduleDeferredCheck("rogue-1", "guard-1", 4, visibility.Undetected)
	tr.RemoveDeferredCheck("rogue-1", "guard-1")
	if tr.IsDeferred("rogue-1", "guard-1") {
		t.Fatal("expected deferred check to be removed")
	}
}

func TestPendingObserversFiltersByActor(t *testing.T) {
	tr := NewTracker()
	tr.ScheduleDeferredCheck("rogue-1", "guard-1", 4, visibility.Undetected)
	tr.ScheduleDeferredCheck("rogue-2", "guard-2", 4, visibility.Undetected)
	pending := tr.PendingObservers("rogue-1")
	if len(pending) != 1 || pending[0] != "guard-1" {
		t.Fatalf("expected only guard-1 pending for rogue-1, got %v", pending)
	}
}
