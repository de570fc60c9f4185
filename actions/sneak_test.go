package actions

import (
	"testing"

	"github.com/duskward/visioner/feats"
	"github.com/duskward/visioner/turntracker"
	"github.com/duskward/visioner/visibility"
)

// S2: Sneak with Sneaky, end fails.
func TestResolveSneak_SneakyDefersOnEndFailure(t *testing.T) {
	registry := feats.NewRegistry()
	tracker := turntracker.NewTracker()
	tracker.StartTurnSneak("rogue-1", 3)

	in := SneakInput{
		ActorID: "rogue-1",
		Feats:   feats.NewSet([]string{"sneaky"}),
		Natural: 15,
		StealthModifier: 6,
		Observers: []SneakObserverInput{
			{ObserverID: "guard-1", StartState: visibility.Hidden, EndCover: visibility.CoverNone, EndConcealed: false, PerceptionDC: 18},
		},
	}

	results := ResolveSneak(registry, tracker, 3, in)
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	r := results[0]
	if !r.StartQualifies {
		t.Fatal("expected start to qualify from hidden start state")
	}
	if r.EndQualifies {
		t.Fatal("expected end not to qualify (no cover, not concealed)")
	}
	if !r.Deferred {
		t.Fatal("expected sneaky to defer this observer")
	}
	if !tracker.IsDeferred("rogue-1", "guard-1") {
		t.Fatal("expected tracker to record the deferred check")
	}
}

// S3: Terrain Stalker free Sneak.
func TestResolveSneak_TerrainStalkerFreeSneak(t *testing.T) {
	registry := feats.NewRegistry()
	in := SneakInput{
		ActorID:                  "ranger-1",
		Feats:                    feats.NewSet([]string{"terrain-stalker"}),
		Terrain:                  "forest",
		TerrainStalkerSelections: []string{"forest"},
		MovementFeet:             5,
		PathClearOfEnemies:       true,
		AllNonAlliesUndetected:   true,
		Observers: []SneakObserverInput{
			{ObserverID: "guard-1", StartState: visibility.Undetected, EndCover: visibility.CoverNone, PerceptionDC: 18},
		},
	}

	results := ResolveSneak(registry, nil, 1, in)
	r := results[0]
	if !r.FreeAction {
		t.Fatal("expected a free sneak (no roll)")
	}
	if r.NewState != visibility.Undetected {
		t.Fatalf("expected undetected preserved, got %s", r.NewState)
	}
	if len(r.FeatNotes) == 0 || r.FeatNotes[0] != "Terrain Stalker: free Sneak" {
		t.Fatalf("expected free-sneak feat note, got %v", r.FeatNotes)
	}
}

// S6: Camouflage in urban does not relax the end requirement.
func TestResolveSneak_CamouflageDoesNotApplyInUrban(t *testing.T) {
	registry := feats.NewRegistry()
	in := SneakInput{
		ActorID: "rogue-1",
		Feats:   feats.NewSet([]string{"camouflage"}),
		Terrain: "urban",
		Natural: 15,
		StealthModifier: 10,
		Observers: []SneakObserverInput{
			{ObserverID: "guard-1", StartState: visibility.Hidden, EndCover: visibility.CoverNone, EndConcealed: false, PerceptionDC: 10},
		},
	}

	results := ResolveSneak(registry, nil, 1, in)
	r := results[0]
	if r.EndQualifies {
		t.Fatal("expected camouflage to not relax end qualification in urban terrain")
	}
	if r.NewState != visibility.Observed {
		t.Fatalf("expected forced observed, got %s", r.NewState)
	}
}

func TestResolveSneak_CoercedObserverYieldsAVS(t *testing.T) {
	registry := feats.NewRegistry()
	tracker := turntracker.NewTracker()
	tracker.StartTurnSneak("rogue-1", 2)
	tracker.RecordRollOutcome("rogue-1", "guard-1", true)

	in := SneakInput{
		ActorID: "rogue-1",
		Natural: 18,
		StealthModifier: 10,
		Observers: []SneakObserverInput{
			{ObserverID: "guard-1", StartState: visibility.Hidden, EndCover: visibility.CoverStandard, PerceptionDC: 10},
		},
	}

	results := ResolveSneak(registry, tracker, 2, in)
	if results[0].NewState != visibility.AVS {
		t.Fatalf("expected AVS coercion, got %s", results[0].NewState)
	}
}

func TestResolveSneak_SneakAdeptPromotesFailureToSuccess(t *testing.T) {
	registry := feats.NewRegistry()
	in := SneakInput{
		ActorID: "rogue-1",
		Feats:   feats.NewSet([]string{"sneak-adept"}),
		Natural: 10,
		StealthModifier: 2, // total 12 vs dc 18 -> plain failure (margin -6, not <=-10)
		Observers: []SneakObserverInput{
			{ObserverID: "guard-1", StartState: visibility.Hidden, EndCover: visibility.CoverStandard, PerceptionDC: 18},
		},
	}

	results := ResolveSneak(registry, nil, 1, in)
	if results[0].NewState != visibility.Undetected {
		t.Fatalf("expected sneak-adept promoted success -> undetected, got %s", results[0].NewState)
	}
}
