package overrides

import (
	"context"
	"testing"

	"github.com/duskward/visioner/sceneapi"
	"github.com/duskward/visioner/visibility"
)

type memStore struct {
	data map[string]map[string]any
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]map[string]any)}
}

func (s *memStore) GetFlag(entityID, key string) (any, bool) {
	m, ok := s.data[entityID]
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

func (s *memStore) SetFlag(entityID, key string, value any) error {
	if s.data[entityID] == nil {
		s.data[entityID] = make(map[string]any)
	}
	s.data[entityID][key] = value
	return nil
}

func (s *memStore) UnsetFlag(entityID, key string) error {
	if m, ok := s.data[entityID]; ok {
		delete(m, key)
	}
	return nil
}

func fakeScene(tokens []sceneapi.Token) sceneapi.Scene {
	byID := make(map[string]sceneapi.Token, len(tokens))
	for _, t := range tokens {
		byID[t.ID] = t
	}
	return sceneapi.Scene{
		TokensInScene: func() []sceneapi.Token { return tokens },
		TokenAt: func(id string) (sceneapi.Token, bool) {
			t, ok := byID[id]
			return t, ok
		},
	}
}

func TestSetOneWayDoesNotWriteReverse(t *testing.T) {
	store := newMemStore()
	tokens := []sceneapi.Token{{ID: "rogue-1"}, {ID: "guard-1"}}
	m := NewManager(store, fakeScene(tokens))

	if err := m.Set("guard-1", "rogue-1", visibility.Hidden, SourceSneak); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state, ok := m.Get("guard-1", "rogue-1"); !ok || state != visibility.Hidden {
		t.Fatalf("expected guard-1->rogue-1 override, got %v ok=%v", state, ok)
	}
	if _, ok := m.Get("rogue-1", "guard-1"); ok {
		t.Fatal("sneak is one-way; reverse direction must not be written")
	}
}

func TestSetRejectsAVS(t *testing.T) {
	store := newMemStore()
	tokens := []sceneapi.Token{{ID: "a"}, {ID: "b"}}
	m := NewManager(store, fakeScene(tokens))
	if err := m.Set("a", "b", visibility.AVS, SourceManual); err == nil {
		t.Fatal("expected an error when writing AVS as an override value")
	}
}

func TestSetSkipsHazardAndLootEndpoints(t *testing.T) {
	store := newMemStore()
	tokens := []sceneapi.Token{
		{ID: "a"},
		{ID: "chest", Owner: sceneapi.OwnerLoot},
	}
	m := NewManager(store, fakeScene(tokens))
	if err := m.Set("a", "chest", visibility.Hidden, SourceManual); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.Get("a", "chest"); ok {
		t.Fatal("expected no override written against a loot token")
	}
}

func TestRemoveAllInvolvingClearsBothDirections(t *testing.T) {
	store := newMemStore()
	tokens := []sceneapi.Token{{ID: "a"}, {ID: "b"}}
	m := NewManager(store, fakeScene(tokens))

	if err := m.Set("a", "b", visibility.Concealed, SourceManual); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Set("b", "a", visibility.Hidden, SourceManual); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.RemoveAllInvolving("b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.Get("a", "b"); ok {
		t.Fatal("expected override removed after RemoveAllInvolving")
	}
	if _, ok := m.Get("b", "a"); ok {
		t.Fatal("expected b's own override removed after RemoveAllInvolving")
	}
}

func TestClearAllRemovesEveryFlag(t *testing.T) {
	store := newMemStore()
	tokens := []sceneapi.Token{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	m := NewManager(store, fakeScene(tokens))

	if err := m.Set("a", "b", visibility.Hidden, SourceManual); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Set("b", "c", visibility.Concealed, SourceManual); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.ClearAll(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.Get("a", "b"); ok {
		t.Fatal("expected a->b cleared")
	}
	if _, ok := m.Get("b", "c"); ok {
		t.Fatal("expected b->c cleared")
	}
}
