package actions

import (
	"testing"

	"github.com/duskward/visioner/visibility"
)

func TestResolvePointOut_UpgradesUndetectedToHidden(t *testing.T) {
	r := ResolvePointOut(PointOutInput{PointerID: "rogue-1", AllyID: "ally-1", TargetID: "target-1", AllyState: visibility.Undetected})
	if r.NewState != visibility.Hidden {
		t.Fatalf("expected hidden, got %s", r.NewState)
	}
}

func TestResolvePointOut_NeverDowngradesAlreadyObserved(t *testing.T) {
	r := ResolvePointOut(PointOutInput{PointerID: "rogue-1", AllyID: "ally-1", TargetID: "target-1", AllyState: visibility.Observed})
	if r.NewState != visibility.Observed {
		t.Fatalf("expected observed preserved, got %s", r.NewState)
	}
}

func TestResolveTakeCover_UpgradesOneStep(t *testing.T) {
	r := ResolveTakeCover("fighter-1", visibility.CoverLesser)
	if r.NewCover != visibility.CoverStandard {
		t.Fatalf("expected standard cover, got %s", r.NewCover)
	}
}

func TestResolveTakeCover_ClampsAtGreater(t *testing.T) {
	r := ResolveTakeCover("fighter-1", visibility.CoverGreater)
	if r.NewCover != visibility.CoverGreater {
		t.Fatalf("expected clamped at greater, got %s", r.NewCover)
	}
}
