package actions

import (
	"github.com/duskward/visioner/dice"
	"github.com/duskward/visioner/feats"
)

// SeekWallSubjectInput is one hidden wall segment being searched for.
// Only walls marked HiddenWall are ever discoverable this way.
type SeekWallSubjectInput struct {
	WallID     string
	HiddenWall bool

	// DefaultStealthDC is config.Options.WallStealthDC; CustomStealthDC
	// overrides it when the wall carries one.
	DefaultStealthDC int
	CustomStealthDC  *int

	DistanceFeet int
	InRange      bool

	// ConnectedWallIDs are other wall ids sharing this one's connection
	// group; a successful Seek reveals all of them together.
	ConnectedWallIDs []string
}

// SeekWallInput bundles a seeker's roll against a batch of hidden walls.
type SeekWallInput struct {
	SeekerID           string
	Feats              feats.Set
	Natural            int
	PerceptionModifier int
	Walls              []SeekWallSubjectInput
}

// WallOutcome is one wall's resolved Seek result.
type WallOutcome struct {
	WallID           string
	NewState         string // "observed" | "hidden"
	ConnectedWallIDs []string
	OutOfRange       bool
	NotHidden        bool
	DC               int
	RollTotal        int
	Die              int
}

// ResolveSeekWalls evaluates one Seek action against every hidden wall
// subject in in. Non-hidden walls and walls the seeker's senses can't reach
// are reported but never change state.
func ResolveSeekWalls(registry *feats.Registry, in SeekWallInput) []WallOutcome {
	outcomes := make([]WallOutcome, 0, len(in.Walls))

	for _, w := range in.Walls {
		outcome := WallOutcome{WallID: w.WallID, NewState: "hidden", ConnectedWallIDs: w.ConnectedWallIDs}

		if !w.HiddenWall {
			// Not a hideable wall at all; it's simply visible.
			outcome.NotHidden = true
			outcome.NewState = "observed"
			outcomes = append(outcomes, outcome)
			continue
		}
		if !w.InRange {
			outcome.OutOfRange = true
			outcomes = append(outcomes, outcome)
			continue
		}

		dc := w.DefaultStealthDC
		if w.CustomStealthDC != nil {
			dc = *w.CustomStealthDC
		}

		ctx := &feats.Context{ActorID: in.SeekerID, Feats: in.Feats, Action: "seek"}
		check := dice.EvaluateCheck(in.Natural, in.Natural+in.PerceptionModifier, dc)
		outcome.DC = check.DC
		outcome.RollTotal = check.Total
		outcome.Die = check.Natural
		ctx.OutcomeBand = int(check.Band)
		shift := registry.RunOutcomeShift(ctx)
		band := check.Band.Step(shift)

		if band == dice.Success || band == dice.CriticalSuccess {
			outcome.NewState = "observed"
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes
}
