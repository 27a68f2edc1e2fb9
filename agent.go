package cfr

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/AndrewBlackwell/GRASP/internal/sampling"
)

// Agent plays a game according to a fixed average strategy loaded from a
// strategy artifact.
type Agent struct {
	rng        *rand.Rand
	strategies map[string]*Node
}

// NewAgent loads the strategy artifact at the given path.
func NewAgent(rng *rand.Rand, path string) (*Agent, error) {
	nodes, err := LoadStrategyFile(path)
	if err != nil {
		return nil, err
	}

	return &Agent{rng: rng, strategies: nodes}, nil
}

// Strategy returns the loaded average strategy at the acting state. It can
// be used as a StrategyFunc. A state outside the loaded strategy is a hard
// error.
func (a *Agent) Strategy(g Game) []float64 {
	key := g.InfoSetKey()
	node, ok := a.strategies[key]
	if !ok {
		panic(errors.Wrapf(ErrMissingStrategy, "infoset %q", key))
	}
	return node.AverageStrategy()
}

// ChooseAction samples an action from the loaded strategy at the acting
// state.
func (a *Agent) ChooseAction(g Game) int {
	if g.NumActions() == 1 {
		return 0
	}
	return sampling.SampleOne(a.rng, a.Strategy(g))
}
