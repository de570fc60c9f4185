// Package fixture loads a demo scene from a YAML file into an
// internal/refscene.Scene, giving the CLI something concrete to run the
// engine against without a real Foundry host.
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/duskward/visioner/internal/refscene"
	"github.com/duskward/visioner/sceneapi"
)

// Sense is one entry in a token's actor.senses list.
type Sense struct {
	Kind      string `yaml:"kind"`
	Precision string `yaml:"precision"`
	RangeFeet int    `yaml:"rangeFeet"`
}

// Actor is the YAML shape of sceneapi.Actor.
type Actor struct {
	Conditions       []string `yaml:"conditions"`
	FeatSlugs        []string `yaml:"feats"`
	Senses           []Sense  `yaml:"senses"`
	PerceptionDC     int      `yaml:"perceptionDC"`
	StealthDC        int      `yaml:"stealthDC"`
	CreatureType     string   `yaml:"creatureType"`
	Traits           []string `yaml:"traits"`
}

// Token is the YAML shape of one scene token and its actor.
type Token struct {
	ID          string `yaml:"id"`
	Owner       string `yaml:"owner"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Disposition int     `yaml:"disposition"`
	Actor       Actor   `yaml:"actor"`
}

// Scene is the root YAML document a fixture file contains.
type Scene struct {
	FeetPerSquare int     `yaml:"feetPerSquare"`
	Tokens        []Token `yaml:"tokens"`
}

// Load reads and parses path into a Scene.
func Load(path string) (Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("fixture: reading %s: %w", path, err)
	}
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Scene{}, fmt.Errorf("fixture: parsing %s: %w", path, err)
	}
	if s.FeetPerSquare <= 0 {
		s.FeetPerSquare = 5
	}
	return s, nil
}

// Build converts a parsed Scene into a sceneapi.Scene via refscene.Builder.
func (s Scene) Build() sceneapi.Scene {
	b := refscene.NewBuilder(s.FeetPerSquare)
	for _, tok := range s.Tokens {
		b.AddToken(toSceneToken(tok), toSceneActor(tok.Actor))
	}
	return b.Build()
}

func toSceneToken(tok Token) sceneapi.Token {
	return sceneapi.Token{
		ID:          tok.ID,
		Owner:       sceneapi.OwnerKind(orDefault(tok.Owner, string(sceneapi.OwnerCharacter))),
		Position:    sceneapi.Position{X: tok.X, Y: tok.Y},
		Disposition: tok.Disposition,
	}
}

func toSceneActor(a Actor) sceneapi.Actor {
	conditions := make(map[string]bool, len(a.Conditions))
	for _, c := range a.Conditions {
		conditions[c] = true
	}
	traits := make(map[string]bool, len(a.Traits))
	for _, t := range a.Traits {
		traits[t] = true
	}
	senses := make([]sceneapi.SenseDescriptorDTO, 0, len(a.Senses))
	for _, s := range a.Senses {
		senses = append(senses, sceneapi.SenseDescriptorDTO{
			Kind:      s.Kind,
			Precision: orDefault(s.Precision, "precise"),
			RangeFeet: s.RangeFeet,
		})
	}
	return sceneapi.Actor{
		ConditionSlugs: conditions,
		FeatSlugs:      a.FeatSlugs,
		Senses:         senses,
		PerceptionDC:   a.PerceptionDC,
		StealthDC:      a.StealthDC,
		CreatureType:   a.CreatureType,
		Traits:         traits,
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
