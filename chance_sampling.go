package cfr

import (
	"github.com/AndrewBlackwell/GRASP/internal/sampling"
)

// chanceSamplingCFR is the vanilla recursion with chance resolved up
// front: callers Reset(true) so a concrete deal is already sampled and no
// chance node is ever seen. Fixed players sample a single action from
// their average strategy rather than being evaluated in expectation; they
// act as random simulators.
func (t *Trainer) chanceSamplingCFR(g Game, learner int, reachLearner, reachOthers float64) float64 {
	t.nodesTouched++

	if g.IsTerminal() {
		return g.Payoff(learner)
	}

	numActions := g.NumActions()
	if numActions <= 0 {
		panic(illFormedActions(g, numActions))
	}

	player := g.CurrentPlayer()
	key := g.InfoSetKey()

	if !t.learn[player] {
		strategy := t.fixedStrategy(player, key)
		child := g.Clone()
		child.Apply(sampling.SampleOne(t.rng, strategy))
		return t.chanceSamplingCFR(child, learner, reachLearner, reachOthers)
	}

	node := t.nodes.GetOrCreate(key, numActions)
	strategy := node.Strategy()

	utils := t.slicePool.alloc(numActions)
	var nodeUtil float64
	for a := 0; a < numActions; a++ {
		child := g.Clone()
		child.Apply(a)
		if player == learner {
			utils[a] = t.chanceSamplingCFR(child, learner, reachLearner*strategy[a], reachOthers)
		} else {
			utils[a] = t.chanceSamplingCFR(child, learner, reachLearner, reachOthers*strategy[a])
		}
		nodeUtil += strategy[a] * utils[a]
	}

	if player == learner {
		for a := 0; a < numActions; a++ {
			node.AddRegret(a, reachOthers*(utils[a]-nodeUtil))
		}
		node.AccumulateStrategy(strategy, reachLearner)
	}

	t.slicePool.free(utils)
	return nodeUtil
}
