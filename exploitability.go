package cfr

// The evaluator works on a fixed strategy profile: an expectation pass for
// the game value and a best-response pass for exploitability. Both
// enumerate the whole tree and are meant for small games.

// weightedState pairs a concrete state with the reach probability of
// everyone except the target player (opponents and chance).
type weightedState struct {
	state Game
	reach float64
}

// InfoSets maps an info-set key to every concrete state consistent with
// it, with the opponents-and-chance reach to each.
type InfoSets map[string][]weightedState

// CalculatePayoff returns the expected payoff of every player when all
// players follow the given strategy profile. The game must be at a root
// with the chance player next to act.
func CalculatePayoff(g Game, strategies []StrategyFunc) []float64 {
	if g.IsTerminal() {
		payoffs := make([]float64, g.NumPlayers())
		for p := range payoffs {
			payoffs[p] = g.Payoff(p)
		}
		return payoffs
	}

	numActions := g.NumActions()
	nodeUtils := make([]float64, g.NumPlayers())

	if g.IsChance() {
		for a := 0; a < numActions; a++ {
			child := g.Clone()
			child.Apply(a)
			p := child.ChanceProb()
			utils := CalculatePayoff(child, strategies)
			for i := range nodeUtils {
				nodeUtils[i] += p * utils[i]
			}
		}
		return nodeUtils
	}

	player := g.CurrentPlayer()
	strategy := strategies[player](g)
	for a := 0; a < numActions; a++ {
		child := g.Clone()
		child.Apply(a)
		utils := CalculatePayoff(child, strategies)
		for i := range nodeUtils {
			nodeUtils[i] += strategy[a] * utils[i]
		}
	}
	return nodeUtils
}

// CalculateExploitability returns the sum over players of each player's
// best-response value against the rest of the profile. The profile's own
// values are not subtracted; in a zero-sum game they sum to zero, so the
// result is the distance from equilibrium.
func CalculateExploitability(g Game, strategies []StrategyFunc) float64 {
	exploitability := 0.0
	for p := 0; p < g.NumPlayers(); p++ {
		exploitability += CalculateBestResponse(g, p, strategies)
	}
	return exploitability
}

// CalculateBestResponse returns the expected payoff of the given player
// when it deviates to a best response while everyone else follows the
// profile. The result depends only on the other players' strategies.
func CalculateBestResponse(g Game, player int, strategies []StrategyFunc) float64 {
	root := g.Clone()
	root.Reset(false)
	infoSets := make(InfoSets)
	createInfoSets(root, player, strategies, 1.0, infoSets)

	root = g.Clone()
	root.Reset(false)
	brStrategies := make(map[string][]float64)
	return bestResponseValue(root, player, strategies, brStrategies, 1.0, infoSets)
}

// createInfoSets enumerates the tree depth-first and records, for every
// state where the target player acts, the state together with the reach
// probability contributed by chance and the other players. The player's
// own actions never scale the reach.
func createInfoSets(g Game, player int, strategies []StrategyFunc, reach float64, infoSets InfoSets) {
	if g.IsTerminal() {
		return
	}

	numActions := g.NumActions()
	if g.IsChance() {
		for a := 0; a < numActions; a++ {
			child := g.Clone()
			child.Apply(a)
			createInfoSets(child, player, strategies, reach*child.ChanceProb(), infoSets)
		}
		return
	}

	actor := g.CurrentPlayer()
	if actor == player {
		key := g.InfoSetKey()
		infoSets[key] = append(infoSets[key], weightedState{state: g.Clone(), reach: reach})
	}

	for a := 0; a < numActions; a++ {
		child := g.Clone()
		child.Apply(a)
		if actor == player {
			createInfoSets(child, player, strategies, reach, infoSets)
		} else {
			actionProb := strategies[actor](g)[a]
			createInfoSets(child, player, strategies, reach*actionProb, infoSets)
		}
	}
}

// bestResponseValue evaluates the deterministic best response of the
// target player against the fixed profile. The best-response action at an
// info set is chosen on first visit by aggregating action values across
// every state in the info set, weighted by its reach; ties break to the
// lowest action index. The choice is memoized in brStrategies.
func bestResponseValue(g Game, player int, strategies []StrategyFunc, brStrategies map[string][]float64, reach float64, infoSets InfoSets) float64 {
	if g.IsTerminal() {
		return g.Payoff(player)
	}

	numActions := g.NumActions()
	if g.IsChance() {
		nodeUtil := 0.0
		for a := 0; a < numActions; a++ {
			child := g.Clone()
			child.Apply(a)
			p := child.ChanceProb()
			nodeUtil += p * bestResponseValue(child, player, strategies, brStrategies, reach*p, infoSets)
		}
		return nodeUtil
	}

	actor := g.CurrentPlayer()
	if actor != player {
		nodeUtil := 0.0
		strategy := strategies[actor](g)
		for a := 0; a < numActions; a++ {
			child := g.Clone()
			child.Apply(a)
			nodeUtil += strategy[a] * bestResponseValue(child, player, strategies, brStrategies, reach*strategy[a], infoSets)
		}
		return nodeUtil
	}

	key := g.InfoSetKey()
	if _, ok := brStrategies[key]; !ok {
		actionValues := make([]float64, numActions)
		for _, ws := range infoSets[key] {
			for a := 0; a < numActions; a++ {
				child := ws.state.Clone()
				child.Apply(a)
				v := bestResponseValue(child, player, strategies, brStrategies, ws.reach, infoSets)
				actionValues[a] += ws.reach * v
			}
		}

		brAction := 0
		for a := 1; a < numActions; a++ {
			if actionValues[a] > actionValues[brAction] {
				brAction = a
			}
		}
		br := make([]float64, numActions)
		br[brAction] = 1.0
		brStrategies[key] = br
	}

	br := brStrategies[key]
	value := 0.0
	for a := 0; a < numActions; a++ {
		if br[a] == 0 {
			continue
		}
		child := g.Clone()
		child.Apply(a)
		value += br[a] * bestResponseValue(child, player, strategies, brStrategies, reach, infoSets)
	}
	return value
}
