// Package overrides implements the Override Manager: a directional
// persisted-flag layer sitting on top of the pure Visibility Calculator.
// Actions write one observer→target pair's result here instead of letting
// the calculator's live recompute clobber a deliberately achieved Hidden or
// Undetected state.
package overrides

import (
	"context"
	"fmt"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"github.com/duskward/visioner/sceneapi"
	"github.com/duskward/visioner/visibility"
)

// Source names the action that produced an override, which decides its
// write policy (one-way vs symmetric).
type Source string

const (
	SourceSneak      Source = "sneak"
	SourceHide       Source = "hide"
	SourceDiversion  Source = "diversion"
	SourceSeek       Source = "seek"
	SourcePointOut   Source = "point_out"
	SourceTakeCover  Source = "take_cover"
	SourceManual     Source = "manual"
)

// oneWaySources write only observer->target; everything else is symmetric
// (both directions updated with the same state).
var oneWaySources = map[Source]bool{
	SourceSneak:     true,
	SourceHide:      true,
	SourceDiversion: true,
	SourceSeek:      true,
	SourcePointOut:  true,
	SourceTakeCover: true,
	SourceManual:    true,
}

// Flag is one persisted observer->target override.
type Flag struct {
	ObserverID string
	TargetID   string
	State      visibility.State
	Source     Source
}

func flagKey(observerID string) string {
	return fmt.Sprintf("avs-override-from-%s", observerID)
}

func wallFlagKey() string {
	return "walls"
}

// WallState is a seeker's persisted knowledge of one hidden wall, stored
// under that seeker's own `flags.pf2e-visioner.walls` map.
type WallState string

const (
	WallObserved WallState = "observed"
	WallHidden   WallState = "hidden"
)

func (m *Manager) getWalls(seekerID string) (map[string]string, error) {
	raw, ok := m.flags.GetFlag(seekerID, wallFlagKey())
	if !ok {
		return nil, nil
	}
	asMap, ok := raw.(map[string]string)
	if !ok {
		if generic, ok := raw.(map[string]any); ok {
			out := make(map[string]string, len(generic))
			for k, v := range generic {
				if s, ok := v.(string); ok {
					out[k] = s
				}
			}
			return out, nil
		}
		return nil, fmt.Errorf("overrides: unexpected wall flag shape for %s", seekerID)
	}
	return asMap, nil
}

// GetWallState returns seekerID's persisted knowledge of wallID, if any.
func (m *Manager) GetWallState(seekerID, wallID string) (WallState, bool) {
	existing, err := m.getWalls(seekerID)
	if err != nil || existing == nil {
		return "", false
	}
	raw, ok := existing[wallID]
	if !ok {
		return "", false
	}
	return WallState(raw), true
}

// SetWallState persists wallID's state under seekerID's wall map, also
// writing every id in connectedWallIDs to the same state: walls sharing a
// connection group reveal together once one segment is found.
func (m *Manager) SetWallState(seekerID, wallID string, state WallState, connectedWallIDs []string) error {
	existing, err := m.getWalls(seekerID)
	if err != nil {
		return err
	}
	if existing == nil {
		existing = map[string]string{}
	}
	existing[wallID] = string(state)
	for _, id := range connectedWallIDs {
		existing[id] = string(state)
	}
	return m.flags.SetFlag(seekerID, wallFlagKey(), existing)
}

// Manager mediates all override reads/writes through a host FlagStore,
// enforcing the write-eligibility and directionality rules every action
// resolver must respect.
type Manager struct {
	flags sceneapi.FlagStore
	scene sceneapi.Scene

	// RecomputeBatchSize bounds how many tokens ClearAll processes
	// concurrently per batch; each token's worker streams all of that
	// token's pairs. Zero uses the default of 5.
	RecomputeBatchSize int

	// Events receives an OverrideChanged notification on every write/clear,
	// if set. A pointer so the engine can share its own EventSink instance
	// and pick up host callbacks registered after construction.
	Events *sceneapi.EventSink
}

func (m *Manager) emitOverrideChanged(observerID, targetID string, present bool) {
	if m.Events != nil {
		m.Events.EmitOverrideChanged(observerID, targetID, present)
	}
}

// NewManager builds an Override Manager backed by the given flag store and
// scene.
func NewManager(flags sceneapi.FlagStore, scene sceneapi.Scene) *Manager {
	return &Manager{flags: flags, scene: scene}
}

// eligible reports whether either endpoint disqualifies the pair from ever
// carrying an override: hazards, loot, and scene-hidden tokens never
// participate.
func (m *Manager) eligible(observerID, targetID string) bool {
	observer, ok := m.scene.TokenAt(observerID)
	if !ok || observer.Owner.IsHazardOrLoot() || observer.SceneHidden {
		return false
	}
	target, ok := m.scene.TokenAt(targetID)
	if !ok || target.Owner.IsHazardOrLoot() || target.SceneHidden {
		return false
	}
	return true
}

// Set writes an override for observer->target (and target->observer too, if
// source's policy is symmetric). Writing visibility.AVS is rejected: AVS
// means "no override", so it is cleared via Remove instead.
func (m *Manager) Set(observerID, targetID string, state visibility.State, source Source) error {
	if state == visibility.AVS {
		return fmt.Errorf("overrides: refusing to persist AVS as a value; use Remove instead")
	}
	if !m.eligible(observerID, targetID) {
		return nil
	}
	if err := m.write(observerID, targetID, state); err != nil {
		return err
	}
	m.emitOverrideChanged(observerID, targetID, true)
	if !oneWaySources[source] {
		if err := m.write(targetID, observerID, state); err != nil {
			return err
		}
		m.emitOverrideChanged(targetID, observerID, true)
	}
	return nil
}

func (m *Manager) write(observerID, targetID string, state visibility.State) error {
	existing, _ := m.get(observerID)
	if existing == nil {
		existing = map[string]string{}
	}
	existing[targetID] = string(state)
	return m.flags.SetFlag(observerID, flagKey(observerID), existing)
}

func (m *Manager) get(observerID string) (map[string]string, error) {
	raw, ok := m.flags.GetFlag(observerID, flagKey(observerID))
	if !ok {
		return nil, nil
	}
	asMap, ok := raw.(map[string]string)
	if !ok {
		// Flag stores that round-trip through JSON decode into
		// map[string]interface{}; normalize it back to strings.
		if generic, ok := raw.(map[string]any); ok {
			out := make(map[string]string, len(generic))
			for k, v := range generic {
				if s, ok := v.(string); ok {
					out[k] = s
				}
			}
			return out, nil
		}
		return nil, fmt.Errorf("overrides: unexpected flag shape for %s", observerID)
	}
	return asMap, nil
}

// Get returns the persisted override for observer->target, if any. The
// second return is false when no override exists, meaning the caller should
// fall back to a live calculator result.
func (m *Manager) Get(observerID, targetID string) (visibility.State, bool) {
	existing, err := m.get(observerID)
	if err != nil || existing == nil {
		return "", false
	}
	raw, ok := existing[targetID]
	if !ok {
		return "", false
	}
	return visibility.State(raw), true
}

// Remove clears observer->target's override, if any.
func (m *Manager) Remove(observerID, targetID string) error {
	existing, err := m.get(observerID)
	if err != nil || existing == nil {
		return nil
	}
	delete(existing, targetID)
	if err := m.flags.SetFlag(observerID, flagKey(observerID), existing); err != nil {
		return err
	}
	m.emitOverrideChanged(observerID, targetID, false)
	return nil
}

// Revert restores observer->target (and target->observer, for symmetric
// sources) to the state it held before some prior Set call, undoing that
// write exactly. When hadOverride is false, the pair had no persisted
// override beforehand and is restored to that state by clearing the flag
// rather than writing AVS into it.
func (m *Manager) Revert(observerID, targetID string, oldVisibility visibility.State, hadOverride bool, source Source) error {
	if !hadOverride {
		if err := m.Remove(observerID, targetID); err != nil {
			return err
		}
		if !oneWaySources[source] {
			if err := m.Remove(targetID, observerID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := m.write(observerID, targetID, oldVisibility); err != nil {
		return err
	}
	m.emitOverrideChanged(observerID, targetID, true)
	if !oneWaySources[source] {
		if err := m.write(targetID, observerID, oldVisibility); err != nil {
			return err
		}
		m.emitOverrideChanged(targetID, observerID, true)
	}
	return nil
}

// RemoveAllInvolving clears every override where entityID is either the
// observer or a target, used when a token is deleted or leaves the scene.
func (m *Manager) RemoveAllInvolving(entityID string) error {
	if existing, err := m.get(entityID); err == nil {
		for targetID := range existing {
			m.emitOverrideChanged(entityID, targetID, false)
		}
	}
	if err := m.flags.UnsetFlag(entityID, flagKey(entityID)); err != nil {
		return err
	}
	for _, tok := range m.scene.TokensInScene() {
		if tok.ID == entityID {
			continue
		}
		existing, err := m.get(tok.ID)
		if err != nil || existing == nil {
			continue
		}
		if _, ok := existing[entityID]; ok {
			delete(existing, entityID)
			if err := m.flags.SetFlag(tok.ID, flagKey(tok.ID), existing); err != nil {
				return err
			}
			m.emitOverrideChanged(tok.ID, entityID, false)
		}
	}
	return nil
}

// recomputedPair is one observer/target pair a ClearAll worker has freed up
// for recomputation, fanned in through channerics so the draining side runs
// concurrently with the per-token workers instead of after them.
type recomputedPair struct {
	observerID string
	targetID   string
}

// ClearAll recomputes every token's overrides by removing them, batched
// through errgroup so large scenes don't serialize one flag write at a time.
// Each batch's workers stream their recomputed pairs onto their own channel;
// channerics.Merge fans those in and channerics.OrDone (keyed off ctx, the
// same pattern fastview.go uses for its view-update fan-in) drains them so a
// caller cancellation stops the drain without waiting for every worker to
// finish first. compute is called for every pair being cleared purely so
// hosts can log or react; ClearAll does not persist compute's result, it
// only removes flags.
func (m *Manager) ClearAll(ctx context.Context, compute func(observerID, targetID string)) error {
	tokens := m.scene.TokensInScene()
	batchSize := m.RecomputeBatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	for start := 0; start < len(tokens); start += batchSize {
		end := start + batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		g, gctx := errgroup.WithContext(ctx)
		chans := make([]<-chan recomputedPair, 0, len(batch))
		for _, tok := range batch {
			tok := tok
			ch := make(chan recomputedPair)
			chans = append(chans, ch)
			g.Go(func() error {
				defer close(ch)
				existing, _ := m.get(tok.ID)
				for _, other := range tokens {
					if other.ID == tok.ID {
						continue
					}
					select {
					case ch <- recomputedPair{observerID: tok.ID, targetID: other.ID}:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
				if err := m.flags.UnsetFlag(tok.ID, flagKey(tok.ID)); err != nil {
					return err
				}
				for targetID := range existing {
					m.emitOverrideChanged(tok.ID, targetID, false)
				}
				return nil
			})
		}

		for pair := range channerics.OrDone(ctx.Done(), channerics.Merge(chans)) {
			if compute != nil {
				compute(pair.observerID, pair.targetID)
			}
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
