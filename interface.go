package cfr

import (
	"github.com/pkg/errors"
)

// Game is the contract between the solver and a game implementation.
//
// A Game is a mutable cursor over one concrete state of an extensive-form
// game. The recursion clones the state before every Apply, so Clone must be
// cheap: implementations should keep their state in a compact value
// (fixed-size arrays, no heap indirection) for the small games targeted.
type Game interface {
	// Name identifies the game; it names the directory strategies are
	// persisted under.
	Name() string

	// NumPlayers returns the number of (non-chance) players.
	NumPlayers() int

	// IsTerminal reports whether the game is over.
	IsTerminal() bool

	// IsChance reports whether the chance player is next to act.
	IsChance() bool

	// CurrentPlayer returns the acting player. Undefined at terminal states.
	CurrentPlayer() int

	// NumActions returns the number of actions available to the acting
	// player. At a chance node it is the number of enumerable chance
	// outcomes.
	NumActions() int

	// Apply advances the state by the given action. At a chance node the
	// action selects a concrete chance outcome.
	Apply(action int)

	// ChanceProb returns the probability of the chance outcome selected by
	// the most recent Apply from a chance node. Undefined otherwise.
	ChanceProb() float64

	// Payoff returns the terminal payoff for the given player. It may only
	// be called when IsTerminal() is true.
	Payoff(player int) float64

	// InfoSetKey returns the information set identifier for the acting
	// player: an opaque byte string, identical across two states if and
	// only if they are indistinguishable to that player.
	InfoSetKey() string

	// Reset returns the state to a fresh root. With skipChance=false the
	// chance player is next to act; with skipChance=true a concrete deal
	// has already been sampled.
	Reset(skipChance bool)

	// Clone returns an independent copy of the state.
	Clone() Game
}

// StrategyFunc returns the action distribution a player follows at the
// given state. The evaluator queries it at the acting state.
type StrategyFunc func(Game) []float64

// Mode selects which CFR recursion the Trainer runs.
type Mode int

const (
	// Standard is vanilla CFR: the full tree, chance included, is
	// enumerated every iteration.
	Standard Mode = iota
	// ChanceSampling samples the chance outcome once per learning player's
	// pass and enumerates the rest of the tree.
	ChanceSampling
	// ExternalSampling samples chance and all non-learner actions.
	ExternalSampling
	// OutcomeSampling samples a single terminal history per learning
	// player's pass.
	OutcomeSampling
)

var modeNames = [...]string{
	Standard:         "standard",
	ChanceSampling:   "chance",
	ExternalSampling: "external",
	OutcomeSampling:  "outcome",
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// ParseMode converts a mode name as accepted on the command line.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if s == name {
			return Mode(m), nil
		}
	}
	return 0, errors.Errorf("unknown CFR mode %q", s)
}
