package actions

import (
	"testing"

	"github.com/duskward/visioner/feats"
	"github.com/duskward/visioner/visibility"
)

func TestResolveDiversion_CriticalSuccessGrantsOffGuard(t *testing.T) {
	registry := feats.NewRegistry()
	in := DiversionInput{
		ActorID:           "bard-1",
		Natural:           18,
		DeceptionModifier: 10, // total 28 vs dc 15 -> critical success
		Observers: []DiversionObserverInput{
			{ObserverID: "guard-1", PerceptionDC: 15, CurrentState: visibility.Observed},
		},
	}
	outcomes := ResolveDiversion(registry, in)
	if !outcomes[0].GrantsOffGuard {
		t.Fatal("expected critical success to grant off-guard")
	}
	if outcomes[0].NewState != visibility.Hidden {
		t.Fatalf("expected hidden, got %s", outcomes[0].NewState)
	}
}

func TestResolveDiversion_FailureLeavesStateUnchanged(t *testing.T) {
	registry := feats.NewRegistry()
	in := DiversionInput{
		ActorID: "bard-1",
		Natural: 5,
		Observers: []DiversionObserverInput{
			{ObserverID: "guard-1", PerceptionDC: 20, CurrentState: visibility.Observed},
		},
	}
	outcomes := ResolveDiversion(registry, in)
	if outcomes[0].NewState != visibility.Observed {
		t.Fatalf("expected unchanged state on failure, got %s", outcomes[0].NewState)
	}
}
