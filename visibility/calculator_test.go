package visibility

import (
	"testing"

	"github.com/duskward/visioner/sceneapi"
	"github.com/duskward/visioner/senses"
)

func baseCaps() senses.Capabilities {
	return senses.Capabilities{
		Precise:   make(map[senses.Kind]int),
		Imprecise: make(map[senses.Kind]int),
		HasVision: true,
	}
}

// S1: Seek, in-range dim-light observer, target with standard cover.
func TestResolve_DimLightStandardCoverDowngradesToConcealed(t *testing.T) {
	caps := baseCaps()

	in := Input{
		Observer:     caps,
		DistanceFeet: 20,
		LineOfSight:  true,
		Lighting:     sceneapi.LightDim,
		Cover:        CoverStandard,
		GeometryOK:   true,
	}

	got := Resolve(in)
	if got.State != Concealed {
		t.Fatalf("expected concealed, got %s", got.State)
	}
	if got.DetectingSense != senses.KindVision {
		t.Fatalf("expected vision as detecting sense, got %s", got.DetectingSense)
	}
}

func TestResolve_NoSenseInRangeYieldsUndetected(t *testing.T) {
	caps := senses.Capabilities{Precise: map[senses.Kind]int{}, Imprecise: map[senses.Kind]int{}}
	got := Resolve(Input{Observer: caps, DistanceFeet: 50, GeometryOK: true})
	if got.State != Undetected {
		t.Fatalf("expected undetected with no senses, got %s", got.State)
	}
}

func TestResolve_ImpreciseOnlyNeverYieldsObserved(t *testing.T) {
	caps := senses.Capabilities{
		Precise:   map[senses.Kind]int{},
		Imprecise: map[senses.Kind]int{senses.KindTremorsense: 60},
	}
	got := Resolve(Input{Observer: caps, DistanceFeet: 30, GeometryOK: true})
	if got.State == Observed {
		t.Fatalf("imprecise-only detection must never yield observed, got %s", got.State)
	}
	if got.State != Hidden {
		t.Fatalf("expected hidden from imprecise tremorsense, got %s", got.State)
	}
}

func TestResolve_LifesenseVsConstructUnmet(t *testing.T) {
	caps := senses.Capabilities{
		Precise:   map[senses.Kind]int{senses.KindLifesense: 30},
		Imprecise: map[senses.Kind]int{},
	}
	in := Input{
		Observer:     caps,
		DistanceFeet: 10,
		GeometryOK:   true,
		TargetActor:  sceneapi.Actor{CreatureType: "construct"},
	}
	got := Resolve(in)
	if got.State != Undetected {
		t.Fatalf("lifesense vs construct should yield no detection, got %s", got.State)
	}
}

func TestResolve_InvisibilityForcesMinimumHidden(t *testing.T) {
	caps := baseCaps()
	in := Input{
		Observer:        caps,
		DistanceFeet:    10,
		LineOfSight:     true,
		Lighting:        sceneapi.LightBright,
		Cover:           CoverNone,
		TargetInvisible: true,
		GeometryOK:      true,
	}
	got := Resolve(in)
	if got.State != Hidden {
		t.Fatalf("expected hidden against invisible target, got %s", got.State)
	}
}

func TestResolve_GreaterDarkvisionNullifiesMagicalDarkness(t *testing.T) {
	caps := baseCaps()
	caps.GreaterDarkvision = true
	caps.DarkvisionRange = 60

	in := Input{
		Observer:           caps,
		DistanceFeet:        30,
		LineOfSight:         true,
		Lighting:            sceneapi.LightDarkness,
		DarknessCrossesRay:  true,
		GeometryOK:          true,
	}
	got := Resolve(in)
	if got.State != Observed {
		t.Fatalf("greater darkvision should see through magical darkness, got %s", got.State)
	}
}

func TestResolve_OrdinaryDarkvisionDoesNotNullifyMagicalDarkness(t *testing.T) {
	caps := senses.Capabilities{
		Precise:         map[senses.Kind]int{},
		Imprecise:       map[senses.Kind]int{},
		DarkvisionRange: 60,
	}

	in := Input{
		Observer:           caps,
		DistanceFeet:        30,
		LineOfSight:         true,
		Lighting:            sceneapi.LightDarkness,
		DarknessCrossesRay:  true,
		GeometryOK:          true,
	}
	got := Resolve(in)
	if got.State != Undetected {
		t.Fatalf("ordinary darkvision must not see through magical darkness, got %s", got.State)
	}
}

func TestResolve_GeometryUnavailableFallsBackConservatively(t *testing.T) {
	got := Resolve(Input{GeometryOK: false})
	if got.State != Undetected {
		t.Fatalf("expected undetected fallback, got %s", got.State)
	}
	if got.Diagnostic == nil || got.Diagnostic.Reason != ReasonGeometryUnavailable {
		t.Fatalf("expected a GeometryUnavailable diagnostic, got %+v", got.Diagnostic)
	}
}

func TestResolve_DistanceEqualToRangeIsIncluded(t *testing.T) {
	caps := senses.Capabilities{
		Precise:   map[senses.Kind]int{senses.KindLifesense: 30},
		Imprecise: map[senses.Kind]int{},
	}
	got := Resolve(Input{Observer: caps, DistanceFeet: 30, GeometryOK: true, TargetActor: sceneapi.Actor{CreatureType: "humanoid"}})
	if got.State != Observed {
		t.Fatalf("distance exactly at sense range should still detect, got %s", got.State)
	}
}

func TestDeterministic(t *testing.T) {
	caps := baseCaps()
	in := Input{Observer: caps, DistanceFeet: 10, LineOfSight: true, Lighting: sceneapi.LightBright, GeometryOK: true}
	a := Resolve(in)
	b := Resolve(in)
	if a.State != b.State || a.DetectingSense != b.DetectingSense {
		t.Fatalf("Resolve must be deterministic for identical inputs")
	}
}
