package cfr

// vanillaCFR walks the full game tree, chance nodes included, and returns
// the expected utility for the learning player under the current strategy
// profile. reachLearner is the product of the learner's own action
// probabilities along the path; reachOthers the product of everyone
// else's, chance included.
//
// Tables are not refreshed here: the Trainer batch-refreshes every table
// after each learning player's pass.
func (t *Trainer) vanillaCFR(g Game, learner int, reachLearner, reachOthers float64) float64 {
	t.nodesTouched++

	if g.IsTerminal() {
		return g.Payoff(learner)
	}

	numActions := g.NumActions()
	if numActions <= 0 {
		panic(illFormedActions(g, numActions))
	}

	if g.IsChance() {
		var nodeUtil float64
		for a := 0; a < numActions; a++ {
			child := g.Clone()
			child.Apply(a)
			p := child.ChanceProb()
			nodeUtil += p * t.vanillaCFR(child, learner, reachLearner, reachOthers*p)
		}
		return nodeUtil
	}

	player := g.CurrentPlayer()
	key := g.InfoSetKey()

	if !t.learn[player] {
		// Fixed players are evaluated in expectation under their loaded
		// average strategy; their tables are never updated.
		strategy := t.fixedStrategy(player, key)
		var nodeUtil float64
		for a := 0; a < numActions; a++ {
			child := g.Clone()
			child.Apply(a)
			nodeUtil += strategy[a] * t.vanillaCFR(child, learner, reachLearner, reachOthers*strategy[a])
		}
		return nodeUtil
	}

	node := t.nodes.GetOrCreate(key, numActions)
	strategy := node.Strategy()

	utils := t.slicePool.alloc(numActions)
	var nodeUtil float64
	for a := 0; a < numActions; a++ {
		child := g.Clone()
		child.Apply(a)
		if player == learner {
			utils[a] = t.vanillaCFR(child, learner, reachLearner*strategy[a], reachOthers)
		} else {
			utils[a] = t.vanillaCFR(child, learner, reachLearner, reachOthers*strategy[a])
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
