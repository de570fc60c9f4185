package actions

import (
	"testing"

	"github.com/duskward/visioner/feats"
	"github.com/duskward/visioner/sceneapi"
	"github.com/duskward/visioner/senses"
	"github.com/duskward/visioner/visibility"
)

// S1: Seek, in-range dim-light observer, target with standard cover.
func TestResolveSeek_DimLightCoverDowngradesSuccessToConcealed(t *testing.T) {
	registry := feats.NewRegistry()
	in := SeekInput{
		SeekerID:           "seeker-1",
		Natural:            15,
		PerceptionModifier: 6, // total 21
		SeekerSenses:       senses.Capabilities{Precise: map[senses.Kind]int{}, Imprecise: map[senses.Kind]int{}, HasVision: true},
		Subjects: []SeekSubjectInput{
			{
				TargetID:     "target-1",
				DistanceFeet: 20,
				PerceptionDC: 18,
				Lighting:     sceneapi.LightDim,
				Cover:        visibility.CoverStandard,
			},
		},
	}

	outcomes := ResolveSeek(registry, in)
	if len(outcomes) != 1 {
		t.Fatalf("expected one outcome, got %d", len(outcomes))
	}
	o := outcomes[0]
	if o.DetectingSense != senses.KindVision {
		t.Fatalf("expected vision as detecting sense, got %s", o.DetectingSense)
	}
	if o.NewState != visibility.Concealed {
		t.Fatalf("expected concealed after dim+cover downgrade, got %s", o.NewState)
	}
}

// S4 (partial): lifesense-only vs construct yields an unmet-condition row.
func TestResolveSeek_LifesenseOnlyVsConstructYieldsUnmet(t *testing.T) {
	registry := feats.NewRegistry()
	in := SeekInput{
		SeekerID: "seeker-1",
		Natural:  15,
		SeekerSenses: senses.Capabilities{
			Precise:   map[senses.Kind]int{senses.KindLifesense: 10},
			Imprecise: map[senses.Kind]int{},
		},
		Subjects: []SeekSubjectInput{
			{
				TargetID:     "construct-1",
				TargetActor:  sceneapi.Actor{CreatureType: "construct"},
				DistanceFeet: 5,
				PerceptionDC: 15,
			},
		},
	}

	outcomes := ResolveSeek(registry, in)
	if outcomes[0].UnmetReason == "" {
		t.Fatal("expected an unmet-condition reason for lifesense vs construct")
	}
}

func TestResolveSeek_ImpreciseOnlyClampsToHiddenAtBest(t *testing.T) {
	registry := feats.NewRegistry()
	in := SeekInput{
		SeekerID:           "seeker-1",
		Natural:            19,
		PerceptionModifier: 10, // total 29, dc 15 -> critical success
		SeekerSenses: senses.Capabilities{
			Precise:   map[senses.Kind]int{},
			Imprecise: map[senses.Kind]int{senses.KindTremorsense: 30},
		},
		Subjects: []SeekSubjectInput{
			{TargetID: "target-1", DistanceFeet: 20, PerceptionDC: 15},
		},
	}

	outcomes := ResolveSeek(registry, in)
	if outcomes[0].NewState == visibility.Observed {
		t.Fatal("imprecise-only Seek must never resolve to observed")
	}
}

func TestResolveSeek_NoProficiencyGatesHazard(t *testing.T) {
	registry := feats.NewRegistry()
	in := SeekInput{
		SeekerID:             "seeker-1",
		SeekerPerceptionRank: 1,
		Subjects: []SeekSubjectInput{
			{TargetID: "trap-1", RequiredPerceptionRank: 3, CurrentState: visibility.Undetected},
		},
	}

	outcomes := ResolveSeek(registry, in)
	if !outcomes[0].NoProficiency {
		t.Fatal("expected NoProficiency to gate this hazard")
	}
	if outcomes[0].NewState != visibility.Undetected {
		t.Fatal("expected state unchanged when gated by proficiency")
	}
}
