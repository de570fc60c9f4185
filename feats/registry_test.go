package feats

import "testing"

func TestNormalizeEquivalence(t *testing.T) {
	forms := []string{"That's Odd", "thats-odd", "That’s Odd", "  THAT'S   ODD  "}
	want := Normalize(forms[0])
	for _, f := range forms[1:] {
		if got := Normalize(f); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", f, got, want)
		}
	}
}

func TestNewSetHasIgnoresCasing(t *testing.T) {
	s := NewSet([]string{"Keen Eyes", "Sneak Adept"})
	if !s.Has("keen-eyes") {
		t.Fatal("expected keen-eyes in set")
	}
	if !s.Has("Sneak Adept") {
		t.Fatal("Has should normalize its argument too")
	}
	if s.Has("camouflage") {
		t.Fatal("unexpected feat present")
	}
}

func TestRunOutcomeShiftClampsToRange(t *testing.T) {
	r := NewRegistry()
	r.Register(Handler{
		Slug:         "homebrew-plus-ten",
		OutcomeShift: func(ctx *Context) int { return 10 },
	})
	ctx := &Context{Action: "seek", Feats: NewSet([]string{"keen-eyes", "homebrew-plus-ten"})}
	if got := r.RunOutcomeShift(ctx); got != 2 {
		t.Fatalf("expected clamped shift of 2, got %d", got)
	}
}

func TestTerrainStalkerGrantsFreeSneak(t *testing.T) {
	r := NewRegistry()
	ctx := &Context{
		Action:                   "sneak",
		Feats:                    NewSet([]string{"terrain-stalker"}),
		Terrain:                  "forest",
		TerrainStalkerSelections: []string{"forest"},
		PathClearOfEnemies:       true,
		AllNonAlliesUndetected:   true,
	}
	r.RunPreprocessPrerequisites(ctx)
	if !ctx.FreeSneak {
		t.Fatal("expected terrain-stalker to grant a free sneak")
	}
	if !ctx.StartQualifies || !ctx.EndQualifies {
		t.Fatal("expected both prerequisites satisfied")
	}
}

func TestLegendarySneakWaivesStartQualification(t *testing.T) {
	r := NewRegistry()
	ctx := &Context{Action: "sneak", Feats: NewSet([]string{"legendary-sneak"})}
	r.RunPreprocessPrerequisites(ctx)
	if !ctx.StartQualifies {
		t.Fatal("expected legendary-sneak to waive the start qualification")
	}
}

func TestEvaluationOrderIsDeterministic(t *testing.T) {
	r := NewRegistry()
	ctx1 := &Context{Action: "diversion", Feats: NewSet([]string{"thats-odd", "keen-eyes"})}
	ctx2 := &Context{Action: "diversion", Feats: NewSet([]string{"keen-eyes", "thats-odd"})}
	if r.RunOutcomeShift(ctx1) != r.RunOutcomeShift(ctx2) {
		t.Fatal("evaluation order must not depend on set iteration order")
	}
}
