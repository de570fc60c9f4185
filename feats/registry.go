package feats

import (
	"sort"

	"github.com/duskward/visioner/visibility"
)

// Context carries everything a feat hook might need to evaluate. Action
// resolvers populate it before running the registry's hooks in the fixed
// order the engine mandates: preprocess, outcome-shift, cover-upgrade,
// visibility-adjust, speed-and-distance. Shift always runs before
// visibility-adjust so a feat's degree-of-success bump is visible to any
// later hook that inspects the band.
type Context struct {
	ActorID  string
	Feats    Set
	Action   string // "sneak" | "hide" | "seek" | "diversion" | "point-out" | "take-cover"

	StartQualifies bool
	EndQualifies   bool

	// Terrain carries the current terrain tag (e.g. "forest", "urban") the
	// actor occupies, used by camouflage/terrain-stalker/vanish-into-the-land.
	Terrain                  string
	TerrainStalkerSelections []string

	MovementFeet           float64
	AllNonAlliesUndetected bool
	PathClearOfEnemies     bool

	// CoverProviderSizeDelta is the size-category difference between a
	// cover-providing creature and the sneaker (positive = provider larger),
	// used by distracting-shadows.
	CoverProviderSizeDelta  int
	EndCoverAtLeastLesser   bool

	// FreeSneak is set by preprocessPrerequisites (terrain-stalker) and read
	// by the Sneak resolver to skip the roll entirely.
	FreeSneak bool

	// OutcomeBand is filled in once the roll resolves; adjustVisibility and
	// outcomeShift both read/write around it as the action resolver steps
	// through the hook pipeline.
	OutcomeBand int
}

// SpeedAndDistance is the result of the speedAndDistance hook: a per-action
// distance cap multiplier and a flat bonus.
type SpeedAndDistance struct {
	Multiplier float64
	BonusFeet  float64
}

// Handler is the five-hook interface a feat plugs into the registry with.
// Every field is optional; a nil hook is a no-op.
type Handler struct {
	Slug string

	PreprocessPrerequisites func(ctx *Context)
	OutcomeShift            func(ctx *Context) int
	UpgradeCover            func(ctx *Context, cover visibility.Cover) visibility.Cover
	AdjustVisibility        func(ctx *Context, computed visibility.State) visibility.State
	SpeedAndDistance        func(ctx *Context) SpeedAndDistance
}

// Registry is the slug-indexed feat-handler lookup. Zero value is usable;
// NewRegistry returns one pre-populated with the built-in feats.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds a registry containing every built-in feat handler.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	for _, h := range builtinHandlers() {
		r.Register(h)
	}
	return r
}

// Register adds or replaces a handler, keyed by its normalized slug. Hosts
// can call this to add homebrew feats without forking the engine.
func (r *Registry) Register(h Handler) {
	if r.handlers == nil {
		r.handlers = make(map[string]Handler)
	}
	r.handlers[Normalize(h.Slug)] = h
}

// active returns the handlers present in ctx.Feats, sorted by slug for a
// deterministic evaluation order.
func (r *Registry) active(ctx *Context) []Handler {
	var out []Handler
	for slug := range ctx.Feats {
		if h, ok := r.handlers[slug]; ok {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// RunPreprocessPrerequisites runs hook 1 for every active feat.
func (r *Registry) RunPreprocessPrerequisites(ctx *Context) {
	for _, h := range r.active(ctx) {
		if h.PreprocessPrerequisites != nil {
			h.PreprocessPrerequisites(ctx)
		}
	}
}

// RunOutcomeShift runs hook 2, accumulating and clamping the total shift to
// [-2, +2] so no combination of feats can skip more than two degrees of
// success.
func (r *Registry) RunOutcomeShift(ctx *Context) int {
	total := 0
	for _, h := range r.active(ctx) {
		if h.OutcomeShift != nil {
			total += clamp(h.OutcomeShift(ctx), -2, 2)
		}
	}
	return clamp(total, -2, 2)
}

// RunUpgradeCover runs hook 3, threading the cover value through every
// active feat in order.
func (r *Registry) RunUpgradeCover(ctx *Context, cover visibility.Cover) visibility.Cover {
	for _, h := range r.active(ctx) {
		if h.UpgradeCover != nil {
			cover = h.UpgradeCover(ctx, cover)
		}
	}
	return cover
}

// RunAdjustVisibility runs hook 4, threading the computed state through
// every active feat in order.
func (r *Registry) RunAdjustVisibility(ctx *Context, computed visibility.State) visibility.State {
	for _, h := range r.active(ctx) {
		if h.AdjustVisibility != nil {
			computed = h.AdjustVisibility(ctx, computed)
		}
	}
	return computed
}

// RunSpeedAndDistance runs hook 5, taking the most generous multiplier and
// summing bonus feet across active feats.
func (r *Registry) RunSpeedAndDistance(ctx *Context) SpeedAndDistance {
	result := SpeedAndDistance{Multiplier: 1.0}
	for _, h := range r.active(ctx) {
		if h.SpeedAndDistance == nil {
			continue
		}
		sd := h.SpeedAndDistance(ctx)
		if sd.Multiplier > result.Multiplier {
			result.Multiplier = sd.Multiplier
		}
		result.BonusFeet += sd.BonusFeet
	}
	return result
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
