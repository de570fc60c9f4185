// Package engine wires the Visibility Calculator, Feat Engine, Override
// Manager, and Turn Tracker into one facade a host constructs once and
// injects its scene/flag-store collaborators into, as the single owning
// object instead of package-level globals.
package engine

import (
	"context"

	"github.com/duskward/visioner/actions"
	"github.com/duskward/visioner/config"
	"github.com/duskward/visioner/feats"
	"github.com/duskward/visioner/filters"
	"github.com/duskward/visioner/geometry"
	"github.com/duskward/visioner/overrides"
	"github.com/duskward/visioner/sceneapi"
	"github.com/duskward/visioner/senses"
	"github.com/duskward/visioner/turntracker"
	"github.com/duskward/visioner/visibility"
)

// Engine is the top-level facade. Construct one per scene/session; tests
// construct a fresh Engine per scenario.
type Engine struct {
	Scene  sceneapi.Scene
	Flags  sceneapi.FlagStore
	Config config.Options

	Feats     *feats.Registry
	Overrides *overrides.Manager
	Turns     *turntracker.Tracker

	Events sceneapi.EventSink
}

// New builds an Engine with a fresh feat registry and turn tracker wired to
// the given scene/flag-store collaborators.
func New(scene sceneapi.Scene, flags sceneapi.FlagStore, cfg config.Options) *Engine {
	e := &Engine{
		Scene:     scene,
		Flags:     flags,
		Config:    cfg,
		Feats:     feats.NewRegistry(),
		Turns:     turntracker.NewTracker(),
	}
	e.Overrides = overrides.NewManager(flags, scene)
	e.Overrides.Events = &e.Events
	e.Turns.OnDeferredCheckScheduled = func(actorID, observerID string, turnNumber int) {
		e.Events.EmitDeferredCheckScheduled(actorID, observerID)
	}
	e.Turns.OnDeferredCheckResolved = func(actorID, observerID string, turnNumber int, result visibility.State) {
		if err := e.Overrides.Set(observerID, actorID, result, overrides.SourceSneak); err == nil {
			e.Events.EmitVisibilityChanged(observerID, actorID, string(result), string(overrides.SourceSneak))
		}
		e.Events.EmitDeferredCheckResolved(actorID, observerID, string(result))
	}
	return e
}

// Resolve computes the live (non-override) visibility for one observer/
// target pair, building each side's sense Capabilities from the scene on
// demand. Callers wanting override-aware visibility should check
// e.Overrides.Get first and only fall back to Resolve when no override is
// present.
func (e *Engine) Resolve(observerID, targetID string) visibility.Result {
	observerActor, ok := e.Scene.ActorFor(observerID)
	if !ok {
		return visibility.Result{State: visibility.Undetected, Diagnostic: &visibility.Diagnostic{
			Reason: visibility.ReasonMissingCapability,
			Detail: "observer actor not found",
		}}
	}
	observerTok, okTok := e.Scene.TokenAt(observerID)
	targetTok, okTarget := e.Scene.TokenAt(targetID)
	if !okTok || !okTarget {
		return visibility.Result{State: visibility.Undetected, Diagnostic: &visibility.Diagnostic{
			Reason: visibility.ReasonGeometryUnavailable,
			Detail: "token not found in scene",
		}}
	}
	targetActor, _ := e.Scene.ActorFor(targetID)

	caps := senses.Build(observerActor)
	distance := geometryDistance(e, observerTok.Position, targetTok.Position)
	los := e.Scene.HasLineOfSight(observerTok.Position, targetTok.Position)
	lighting := e.Scene.LightLevelAt(targetTok.Position)
	darkness := e.Scene.RayCrossesDarkness(observerTok.Position, targetTok.Position)
	cover := visibility.Cover(e.Scene.CoverAt(observerTok.Position, targetTok.Position))

	in := visibility.Input{
		Observer:           caps,
		DistanceFeet:       distance,
		LineOfSight:        los,
		Lighting:           lighting.Level,
		DarknessCrossesRay: darkness.CrossesDarkness,
		Cover:              cover,
		TargetActor:        targetActor,
		TargetInvisible:    targetActor.ConditionSlugs["invisible"],
		GeometryOK:         true,
	}
	return visibility.Resolve(in)
}

func geometryDistance(e *Engine, a, b sceneapi.Position) int {
	return geometry.RoundDownToSquare(e.Scene.DistanceFeet(a, b))
}

// EffectiveState returns observer's persisted override against target if
// one exists, otherwise the live calculator result.
func (e *Engine) EffectiveState(observerID, targetID string) visibility.State {
	if state, ok := e.Overrides.Get(observerID, targetID); ok {
		return state
	}
	return e.Resolve(observerID, targetID).State
}

// ApplySneak resolves a Sneak action and persists every non-deferred,
// non-AVS result through the Override Manager, emitting VisibilityChanged
// for each one actually written.
func (e *Engine) ApplySneak(turnNumber int, in actions.SneakInput) []actions.SneakObserverResult {
	results := actions.ResolveSneak(e.Feats, e.Turns, turnNumber, in)
	for i := range results {
		r := &results[i]
		if r.Deferred || r.NewState == visibility.AVS {
			continue
		}
		if err := e.Overrides.Set(r.ObserverID, in.ActorID, r.NewState, overrides.SourceSneak); err == nil {
			r.OverrideState = &r.NewState
			e.Events.EmitVisibilityChanged(r.ObserverID, in.ActorID, string(r.NewState), string(overrides.SourceSneak))
		}
	}
	return results
}

// RevertOutcome undoes whatever Override Manager write an earlier Apply*
// call made for one outcome's observer/target pair, restoring its
// OldVisibility (and, when no override existed beforehand, the absence of
// one) exactly. source must match the source the original Apply call used.
func (e *Engine) RevertOutcome(o actions.Outcome, source overrides.Source) error {
	_, hadOverride := e.Overrides.Get(o.ObserverID, o.TargetID)
	if err := e.Overrides.Revert(o.ObserverID, o.TargetID, o.OldVisibility, hadOverride, source); err != nil {
		return err
	}
	e.Events.EmitVisibilityChanged(o.ObserverID, o.TargetID, string(o.OldVisibility), string(source))
	return nil
}

// ApplySeek resolves a Seek action and persists every actionable result
// through the Override Manager.
func (e *Engine) ApplySeek(in actions.SeekInput) []actions.Outcome {
	outcomes := actions.ResolveSeek(e.Feats, in)
	for i := range outcomes {
		o := &outcomes[i]
		if !o.HasActionableChange {
			continue
		}
		if err := e.Overrides.Set(in.SeekerID, o.TargetID, o.NewState, overrides.SourceSeek); err == nil {
			o.OverrideState = &o.NewState
			e.Events.EmitVisibilityChanged(in.SeekerID, o.TargetID, string(o.NewState), string(overrides.SourceSeek))
		}
	}
	return outcomes
}

// ApplyHide resolves a Hide action and persists every actionable result
// through the Override Manager.
func (e *Engine) ApplyHide(in actions.HideInput) []actions.Outcome {
	outcomes := actions.ResolveHide(e.Feats, in)
	for i := range outcomes {
		o := &outcomes[i]
		if !o.HasActionableChange {
			continue
		}
		if err := e.Overrides.Set(o.ObserverID, in.ActorID, o.NewState, overrides.SourceHide); err == nil {
			o.OverrideState = &o.NewState
			e.Events.EmitVisibilityChanged(o.ObserverID, in.ActorID, string(o.NewState), string(overrides.SourceHide))
		}
	}
	return outcomes
}

// ApplyDiversion resolves Create a Diversion and persists every actionable
// result through the Override Manager.
func (e *Engine) ApplyDiversion(in actions.DiversionInput) []actions.DiversionOutcome {
	outcomes := actions.ResolveDiversion(e.Feats, in)
	for i := range outcomes {
		o := &outcomes[i]
		if !o.HasActionableChange {
			continue
		}
		if err := e.Overrides.Set(o.ObserverID, in.ActorID, o.NewState, overrides.SourceDiversion); err == nil {
			o.OverrideState = &o.NewState
			e.Events.EmitVisibilityChanged(o.ObserverID, in.ActorID, string(o.NewState), string(overrides.SourceDiversion))
		}
	}
	return outcomes
}

// ApplyPointOut resolves Point Out and persists the ally's upgraded
// perception of the target through the Override Manager.
func (e *Engine) ApplyPointOut(in actions.PointOutInput) actions.Outcome {
	outcome := actions.ResolvePointOut(in)
	if outcome.HasActionableChange {
		if err := e.Overrides.Set(outcome.ObserverID, outcome.TargetID, outcome.NewState, overrides.SourcePointOut); err == nil {
			outcome.OverrideState = &outcome.NewState
			e.Events.EmitVisibilityChanged(outcome.ObserverID, outcome.TargetID, string(outcome.NewState), string(overrides.SourcePointOut))
		}
	}
	return outcome
}

// ApplyTakeCover resolves Take Cover. It never touches the Override Manager:
// Take Cover raises effective cover, not a persisted AVS visibility state.
func (e *Engine) ApplyTakeCover(actorID string, current visibility.Cover) actions.TakeCoverResult {
	return actions.ResolveTakeCover(actorID, current)
}

// SeekAllOptions narrows the token candidate pool a batch Seek considers,
// mirroring the host config keys governing bulk Seek (defaultEncounterFilter,
// ignoreAllies, limitSeekRange*).
type SeekAllOptions struct {
	SeekerDisposition int
	EncounterRoster   map[string]bool
	InCombat          bool
	Template          *SeekTemplate
}

// SeekTemplate is an aimed Seek's area, applied as an extra filter on top
// of the disposition/encounter/distance ones.
type SeekTemplate struct {
	Center    sceneapi.Position
	RadiusFeet float64
}

// ApplySeekAll runs the filters package's row chain over every token in the
// scene to build a Seek's subject list, then resolves and persists it
// through ApplySeek. The acting seeker is always excluded from its own
// subject list.
func (e *Engine) ApplySeekAll(in actions.SeekInput, opts SeekAllOptions) []actions.Outcome {
	seekerTok, ok := e.Scene.TokenAt(in.SeekerID)
	if !ok {
		return nil
	}

	distanceCap := float64(e.Config.SeekDistanceFeet(opts.InCombat))

	predicates := []filters.Predicate{
		filters.ExcludeSceneHidden(),
		filters.ExcludeDefeated(),
		filters.Encounter(e.Config.DefaultEncounterFilter, opts.EncounterRoster),
		filters.ExcludeAllies(e.Config.IgnoreAllies, opts.SeekerDisposition),
		filters.Distance(distanceCap),
	}
	if opts.Template != nil {
		predicates = append(predicates, filters.Template(opts.Template.Center, opts.Template.RadiusFeet,
			func(a, b sceneapi.Position) float64 { return e.Scene.DistanceFeet(a, b) }))
	}
	chain := filters.Chain(predicates...)

	rows := make([]filters.Row, 0, len(e.Scene.TokensInScene()))
	for _, tok := range e.Scene.TokensInScene() {
		if tok.ID == in.SeekerID {
			continue
		}
		actor, _ := e.Scene.ActorFor(tok.ID)
		dist := e.Scene.DistanceFeet(seekerTok.Position, tok.Position)
		rows = append(rows, filters.Row{Token: tok, Actor: actor, Distance: dist})
	}
	rows = filters.Apply(rows, chain)

	in.Subjects = make([]actions.SeekSubjectInput, 0, len(rows))
	for _, row := range rows {
		currentState := e.EffectiveState(in.SeekerID, row.Token.ID)
		lighting := e.Scene.LightLevelAt(row.Token.Position)
		cover := visibility.Cover(e.Scene.CoverAt(seekerTok.Position, row.Token.Position))
		in.Subjects = append(in.Subjects, actions.SeekSubjectInput{
			TargetID:       row.Token.ID,
			TargetActor:    row.Actor,
			CurrentState:   currentState,
			DistanceFeet:   geometry.RoundDownToSquare(row.Distance),
			Lighting:       lighting.Level,
			Cover:          cover,
			TargetInvisible: row.Actor.ConditionSlugs["invisible"],
			PerceptionDC:   row.Actor.StealthDC,
			RequiredPerceptionRank: row.Actor.MinPerceptionRank,
		})
	}

	return e.ApplySeek(in)
}

// BuildWallSubjects derives one SeekWallSubjectInput per wall in the scene,
// filling in the configured stealth DC, range against seekerID, and
// connected-wall-id grouping from shared endpoints, so a host only has to
// supply the roll itself.
func (e *Engine) BuildWallSubjects(seekerID string, inCombat bool) []actions.SeekWallSubjectInput {
	seekerTok, ok := e.Scene.TokenAt(seekerID)
	if !ok {
		return nil
	}
	walls := e.Scene.WallsInScene()
	rangeCap := e.Config.SeekDistanceFeet(inCombat)

	subjects := make([]actions.SeekWallSubjectInput, 0, len(walls))
	for _, w := range walls {
		mid := sceneapi.Position{
			X: (w.A.X + w.B.X) / 2,
			Y: (w.A.Y + w.B.Y) / 2,
		}
		dist := geometryDistance(e, seekerTok.Position, mid)
		subjects = append(subjects, actions.SeekWallSubjectInput{
			WallID:           w.ID,
			HiddenWall:       w.HiddenWall,
			DefaultStealthDC: e.Config.WallStealthDC,
			CustomStealthDC:  w.CustomStealthDC,
			DistanceFeet:     dist,
			InRange:          rangeCap <= 0 || dist <= rangeCap,
			ConnectedWallIDs: connectedWallIDs(w, walls),
		})
	}
	return subjects
}

// connectedWallIDs returns every other wall's id that shares an endpoint
// with w, modeling a connected run of wall segments that reveal together
// once one is found.
func connectedWallIDs(w sceneapi.Wall, all []sceneapi.Wall) []string {
	var ids []string
	for _, other := range all {
		if other.ID == w.ID {
			continue
		}
		if other.A == w.A || other.A == w.B || other.B == w.A || other.B == w.B {
			ids = append(ids, other.ID)
		}
	}
	return ids
}

// ApplySeekWalls resolves a batch Seek against hidden walls and persists
// every discovered wall (plus its connected run) into the seeker's wall
// map, via the Override Manager's per-seeker flags.pf2e-visioner.walls
// store rather than a token-pair override.
func (e *Engine) ApplySeekWalls(in actions.SeekWallInput) []actions.WallOutcome {
	outcomes := actions.ResolveSeekWalls(e.Feats, in)
	for _, o := range outcomes {
		if o.NotHidden || o.OutOfRange || o.NewState != "observed" {
			continue
		}
		if err := e.Overrides.SetWallState(in.SeekerID, o.WallID, overrides.WallObserved, o.ConnectedWallIDs); err == nil {
			e.Events.EmitVisibilityChanged(in.SeekerID, o.WallID, o.NewState, string(overrides.SourceSeek))
		}
	}
	return outcomes
}

// ProcessEndOfTurn resolves every deferred Sneak check for actorID against
// its live end-of-turn position. It re-derives only the end-qualification
// inputs (concealment, cover) rather than the general visibility calculator,
// so the tracker can restore the original Sneak roll's outcome verbatim when
// the end position still qualifies, instead of substituting an unrelated
// sense-based result.
func (e *Engine) ProcessEndOfTurn(actorID string, turnNumber int) {
	e.Turns.ProcessEndOfTurn(actorID, turnNumber, func(observerID string) (bool, visibility.Cover) {
		observerTok, okObs := e.Scene.TokenAt(observerID)
		actorTok, okActor := e.Scene.TokenAt(actorID)
		if !okObs || !okActor {
			return false, visibility.CoverNone
		}
		endConcealed := e.Scene.LightLevelAt(actorTok.Position).Level == sceneapi.LightDim
		endCover := visibility.Cover(e.Scene.CoverAt(observerTok.Position, actorTok.Position))
		return endConcealed, endCover
	})
}

// ClearAllOverrides removes every override in the scene, recomputing each
// pair in the process so hosts can refresh their UI.
func (e *Engine) ClearAllOverrides(ctx context.Context) error {
	return e.Overrides.ClearAll(ctx, func(observerID, targetID string) {
		e.Resolve(observerID, targetID)
	})
}
