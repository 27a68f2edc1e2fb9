package cfr

import (
	"github.com/pkg/errors"

	"github.com/AndrewBlackwell/GRASP/internal/sampling"
)

// externalSamplingCFR samples every non-learner action and enumerates the
// learner's. No reach probabilities are threaded: the counterfactual
// weighting is achieved by the sampling itself. Tables are refreshed on
// entry at every visited node.
func (t *Trainer) externalSamplingCFR(g Game, learner int) float64 {
	t.nodesTouched++

	if g.IsTerminal() {
		return g.Payoff(learner)
	}

	numActions := g.NumActions()
	if numActions <= 0 {
		panic(illFormedActions(g, numActions))
	}

	player := g.CurrentPlayer()
	if !t.learn[player] {
		panic(errors.Wrapf(ErrIncompatibleMode, "external sampling reached fixed player %d", player))
	}

	node := t.nodes.GetOrCreate(g.InfoSetKey(), numActions)
	node.RefreshStrategy()
	strategy := node.Strategy()

	if player != learner {
		// Sample one action according to the current strategy, then update
		// the average strategy with the stochastic weighting.
		child := g.Clone()
		child.Apply(sampling.SampleOne(t.rng, strategy))
		util := t.externalSamplingCFR(child, learner)

		node.AccumulateStrategy(strategy, 1.0)
		return util
	}

	utils := t.slicePool.alloc(numActions)
	var nodeUtil float64
	for a := 0; a < numActions; a++ {
		child := g.Clone()
		child.Apply(a)
		utils[a] = t.externalSamplingCFR(child, learner)
		nodeUtil += strategy[a] * utils[a]
	}

	for a := 0; a < numActions; a++ {
		node.AddRegret(a, utils[a]-nodeUtil)
	}

	t.slicePool.free(utils)
	return nodeUtil
}
