package cfr

import (
	"github.com/pkg/errors"

	"github.com/AndrewBlackwell/GRASP/internal/sampling"
)

// explorationEpsilon is the fraction of uniform exploration mixed into the
// learner's sampling distribution.
const explorationEpsilon = 0.6

// outcomeSamplingCFR samples a single terminal history per call. The
// learner samples from an epsilon-uniform mix of its current strategy;
// everyone else samples on-policy. sampleProb is the product of sampling
// probabilities along the path; the returned tail is the product of the
// acting players' strategy probabilities from this node to the terminal.
//
// The iteration argument is threaded through for future weighting schemes
// and does not affect the update.
func (t *Trainer) outcomeSamplingCFR(g Game, learner, iteration int, reachLearner, reachOthers, sampleProb float64) (util, tail float64) {
	t.nodesTouched++

	if g.IsTerminal() {
		return g.Payoff(learner) / sampleProb, 1.0
	}

	numActions := g.NumActions()
	if numActions <= 0 {
		panic(illFormedActions(g, numActions))
	}

	player := g.CurrentPlayer()
	if !t.learn[player] {
		panic(errors.Wrapf(ErrIncompatibleMode, "outcome sampling reached fixed player %d", player))
	}

	node := t.nodes.GetOrCreate(g.InfoSetKey(), numActions)
	node.RefreshStrategy()
	strategy := node.Strategy()

	probs := t.slicePool.alloc(numActions)
	if player == learner {
		for a := 0; a < numActions; a++ {
			probs[a] = explorationEpsilon/float64(numActions) + (1.0-explorationEpsilon)*strategy[a]
		}
	} else {
		copy(probs, strategy)
	}

	sampled := sampling.SampleOne(t.rng, probs)
	q := probs[sampled]
	t.slicePool.free(probs)

	child := g.Clone()
	child.Apply(sampled)

	newReachLearner := reachLearner
	newReachOthers := reachOthers
	if player == learner {
		newReachLearner *= strategy[sampled]
	} else {
		newReachOthers *= strategy[sampled]
	}
	util, tail = t.outcomeSamplingCFR(child, learner, iteration, newReachLearner, newReachOthers, sampleProb*q)

	if player == learner {
		w := util * reachOthers
		for a := 0; a < numActions; a++ {
			var delta float64
			if a == sampled {
				delta = w * (1.0 - strategy[sampled]) * tail
			} else {
				delta = -w * strategy[sampled] * tail
			}
			node.AddRegret(a, delta)
		}
	} else {
		node.AccumulateStrategy(strategy, reachOthers/sampleProb)
	}

	return util, tail * strategy[sampled]
}
