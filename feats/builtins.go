package feats

import (
	"github.com/duskward/visioner/dice"
	"github.com/duskward/visioner/visibility"
)

// builtinHandlers returns the feats this engine ships with. Each handler
// mirrors the condition-evaluator shape in interaction/conditions.go:
// small, named, single-purpose functions registered under a slug.
func builtinHandlers() []Handler {
	return []Handler{
		ceaselessShadows(),
		camouflage(),
		legendarySneak(),
		veryVerySneaky(),
		vanishIntoTheLand(),
		terrainStalker(),
		distractingShadows(),
		sneaky(),
		verySneaky(),
		sneakAdept(),
		keenEyes(),
		thatsOdd(),
	}
}

// ceaselessShadows: steps cover up one rung through the UpgradeCover hook
// when the action is Seek; it sets no prerequisite flags and has no
// outcome-shift hook.
func ceaselessShadows() Handler {
	return Handler{
		Slug: "ceaseless-shadows",
		UpgradeCover: func(ctx *Context, cover visibility.Cover) visibility.Cover {
			if ctx.Action == "seek" {
				return visibility.UpgradeOneStep(cover)
			}
			return cover
		},
	}
}

// camouflage: end requirement removed while in any natural (non-urban)
// terrain.
func camouflage() Handler {
	return Handler{
		Slug: "camouflage",
		PreprocessPrerequisites: func(ctx *Context) {
			if (ctx.Action == "sneak" || ctx.Action == "hide") && isNaturalTerrain(ctx.Terrain) {
				ctx.EndQualifies = true
			}
		},
	}
}

// legendarySneak: Sneak no longer requires starting with cover or
// concealment; the start qualification always passes.
func legendarySneak() Handler {
	return Handler{
		Slug: "legendary-sneak",
		PreprocessPrerequisites: func(ctx *Context) {
			if ctx.Action == "sneak" {
				ctx.StartQualifies = true
			}
		},
	}
}

// veryVerySneaky: the deferred end-of-turn position check (Sneaky/Very
// Sneaky) is skipped outright; Sneak results apply immediately.
func veryVerySneaky() Handler {
	return Handler{
		Slug: "very-very-sneaky",
		PreprocessPrerequisites: func(ctx *Context) {
			if ctx.Action == "sneak" {
				ctx.EndQualifies = ctx.EndQualifies || true
			}
		},
	}
}

// naturalTerrains are the terrain tags camouflage and vanish-into-the-land
// treat as "natural"; urban is deliberately excluded.
var naturalTerrains = map[string]bool{
	"aquatic": true, "arctic": true, "desert": true, "forest": true,
	"mountain": true, "plains": true, "sky": true, "swamp": true,
	"underground": true,
}

func isNaturalTerrain(terrain string) bool {
	return naturalTerrains[terrain]
}

// vanishIntoTheLand: in matching natural terrain, Sneak's end-position
// check is automatically satisfied, and a successful Sneak in natural
// terrain bumps the resulting visibility one step toward greater
// concealment.
func vanishIntoTheLand() Handler {
	return Handler{
		Slug: "vanish-into-the-land",
		PreprocessPrerequisites: func(ctx *Context) {
			if ctx.Action == "sneak" && contains(ctx.TerrainStalkerSelections, ctx.Terrain) {
				ctx.EndQualifies = true
			}
		},
		AdjustVisibility: func(ctx *Context, computed visibility.State) visibility.State {
			if ctx.Action == "sneak" && ctx.OutcomeBand == int(dice.Success) && isNaturalTerrain(ctx.Terrain) {
				return visibility.DowngradeState(computed)
			}
			return computed
		},
	}
}

// terrainStalker: Sneaking at normal speed (no more than 5 feet of movement)
// through the chosen terrain costs no action and requires no roll at all,
// provided the path stays clear of enemies and every non-ally is already
// undetected.
func terrainStalker() Handler {
	return Handler{
		Slug: "terrain-stalker",
		PreprocessPrerequisites: func(ctx *Context) {
			if ctx.Action != "sneak" {
				return
			}
			if contains(ctx.TerrainStalkerSelections, ctx.Terrain) &&
				ctx.PathClearOfEnemies &&
				ctx.MovementFeet <= 5 &&
				ctx.AllNonAlliesUndetected {
				ctx.FreeSneak = true
				ctx.StartQualifies = true
				ctx.EndQualifies = true
			}
		},
	}
}

// distractingShadows: end requirement is met when a creature at least one
// size larger than the sneaker provides at least lesser cover at the end
// point.
func distractingShadows() Handler {
	return Handler{
		Slug: "distracting-shadows",
		PreprocessPrerequisites: func(ctx *Context) {
			if ctx.Action == "sneak" && ctx.CoverProviderSizeDelta >= 1 && ctx.EndCoverAtLeastLesser {
				ctx.EndQualifies = true
			}
		},
	}
}

// sneaky: Sneak's position check resolves at the end of the sneaking
// creature's turn rather than immediately, deferred by the turn tracker.
func sneaky() Handler {
	return Handler{Slug: "sneaky"}
}

// verySneaky: as Sneaky, and additionally the creature is always treated as
// if it rolled Sneak at the start of each of its turns while moving at half
// speed or slower. Both are orchestration-level behaviors the turn tracker
// and Sneak resolver branch on directly; the handler exists
// as a registry marker so Has("sneaky")/Has("very-sneaky") checks stay
// slug-normalized and centralized.
func verySneaky() Handler {
	return Handler{Slug: "very-sneaky"}
}

// sneakAdept: a Sneak roll that would otherwise be a failure is promoted to
// a success (never to critical-success).
func sneakAdept() Handler {
	return Handler{
		Slug: "sneak-adept",
		OutcomeShift: func(ctx *Context) int {
			if ctx.Action == "sneak" && ctx.OutcomeBand == int(dice.Failure) {
				return 1
			}
			return 0
		},
	}
}

// keenEyes: grants a +1 outcome-shift on every Seek check; the target's
// current visibility state is not consulted.
func keenEyes() Handler {
	return Handler{
		Slug: "keen-eyes",
		OutcomeShift: func(ctx *Context) int {
			if ctx.Action == "seek" {
				return 1
			}
			return 0
		},
	}
}

// thatsOdd: the classic "something's not right here" bonus against
// Create a Diversion when the observer has already noticed tampering;
// modeled as a -1 shift against the diverting creature's check.
func thatsOdd() Handler {
	return Handler{
		Slug: "thats-odd",
		OutcomeShift: func(ctx *Context) int {
			if ctx.Action == "diversion" {
				return -1
			}
			return 0
		},
	}
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
