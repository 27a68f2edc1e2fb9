package kuhn

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	cfr "github.com/AndrewBlackwell/GRASP"
	"github.com/AndrewBlackwell/GRASP/tree"
)

func TestKuhn_GameTree(t *testing.T) {
	g := NewGame(rand.New(rand.NewSource(1)))
	g.Reset(false)

	if n := tree.CountNodes(g); n != 55 {
		t.Errorf("expected 55 nodes, got %d", n)
	}
	if n := tree.CountTerminalNodes(g); n != 30 {
		t.Errorf("expected 30 terminal nodes, got %d", n)
	}
	if n := tree.CountInfoSets(g); n != 12 {
		t.Errorf("expected 12 infosets, got %d", n)
	}
}

func TestKuhn_ChanceNode(t *testing.T) {
	g := NewGame(rand.New(rand.NewSource(1)))
	g.Reset(false)

	if !g.IsChance() {
		t.Fatal("expected the chance player to act first")
	}
	if n := g.NumActions(); n != 6 {
		t.Fatalf("expected 6 chance outcomes, got %d", n)
	}

	g.Apply(0)
	if g.IsChance() {
		t.Error("still a chance node after the deal")
	}
	if p := g.ChanceProb(); math.Abs(p-1.0/6.0) > 1e-12 {
		t.Errorf("expected chance probability 1/6, got %v", p)
	}
	if g.CurrentPlayer() != 0 {
		t.Errorf("expected player 0 to act, got %d", g.CurrentPlayer())
	}
}

// dealAction finds the chance action that deals the given cards to the two
// players.
func dealAction(t *testing.T, p0Card, p1Card int) int {
	t.Helper()
	for a := 0; a < 6; a++ {
		g := NewGame(nil)
		g.Reset(false)
		g.Apply(a)
		if g.InfoSetKey()[0] != byte(p0Card) {
			continue
		}
		g.Apply(Pass)
		if g.InfoSetKey()[0] == byte(p1Card) {
			return a
		}
	}
	t.Fatalf("no deal gives cards (%d, %d)", p0Card, p1Card)
	return -1
}

func playOut(t *testing.T, p0Card, p1Card int, actions ...int) *Game {
	t.Helper()
	g := NewGame(nil)
	g.Reset(false)
	g.Apply(dealAction(t, p0Card, p1Card))
	for _, a := range actions {
		if g.IsTerminal() {
			t.Fatalf("game over before action %d of %v", a, actions)
		}
		g.Apply(a)
	}
	return g
}

func TestKuhn_Payoffs(t *testing.T) {
	cases := []struct {
		name           string
		p0Card, p1Card int
		actions        []int
		want           [2]float64
	}{
		{"both pass, high card wins ante", 2, 0, []int{Pass, Pass}, [2]float64{1, -1}},
		{"both pass, low card loses ante", 0, 2, []int{Pass, Pass}, [2]float64{-1, 1}},
		{"bet folded to", 2, 0, []int{Bet, Pass}, [2]float64{1, -1}},
		{"weak bet folded to still wins", 0, 2, []int{Bet, Pass}, [2]float64{1, -1}},
		{"bet called, high card wins pot", 2, 0, []int{Bet, Bet}, [2]float64{2, -2}},
		{"bet called, low card loses pot", 0, 2, []int{Bet, Bet}, [2]float64{-2, 2}},
		{"check-raise folded", 0, 2, []int{Pass, Bet, Pass}, [2]float64{-1, 1}},
		{"check-raise called", 2, 0, []int{Pass, Bet, Bet}, [2]float64{2, -2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := playOut(t, tc.p0Card, tc.p1Card, tc.actions...)
			if !g.IsTerminal() {
				t.Fatal("expected a terminal state")
			}
			for p, want := range tc.want {
				if got := g.Payoff(p); got != want {
					t.Errorf("player %d: expected payoff %v, got %v", p, want, got)
				}
			}
		})
	}
}

func TestKuhn_PayoffBeforeTerminalPanics(t *testing.T) {
	g := playOut(t, 2, 0, Pass)
	defer func() {
		if recover() == nil {
			t.Error("expected panic querying payoff before terminal")
		}
	}()
	g.Payoff(0)
}

func uniformStrategy(g cfr.Game) []float64 {
	n := g.NumActions()
	strat := make([]float64, n)
	for i := range strat {
		strat[i] = 1.0 / float64(n)
	}
	return strat
}

// storeStrategy adapts a trained node store into a StrategyFunc, falling
// back to uniform for infosets the training never reached.
func storeStrategy(store cfr.NodeStore) cfr.StrategyFunc {
	return func(g cfr.Game) []float64 {
		if node, ok := store.Get(g.InfoSetKey()); ok {
			return node.AverageStrategy()
		}
		return uniformStrategy(g)
	}
}

func trainKuhn(t *testing.T, mode cfr.Mode, iterations int, seed int64) *cfr.Trainer {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	game := NewGame(rng)
	trainer, err := cfr.NewTrainer(game, mode, rng, cfr.WithOutputDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if err := trainer.Train(iterations); err != nil {
		t.Fatal(err)
	}
	return trainer
}

func evaluate(trainer *cfr.Trainer) (payoffs []float64, exploitability float64) {
	game := NewGame(rand.New(rand.NewSource(99)))
	strat := storeStrategy(trainer.Nodes())
	strategies := []cfr.StrategyFunc{strat, strat}

	game.Reset(false)
	payoffs = cfr.CalculatePayoff(game, strategies)
	exploitability = cfr.CalculateExploitability(game, strategies)
	return payoffs, exploitability
}

const gameValue = -1.0 / 18.0

func TestKuhn_VanillaCFR(t *testing.T) {
	if testing.Short() {
		t.Skip("convergence run")
	}

	trainer := trainKuhn(t, cfr.Standard, 100000, 42)
	payoffs, exploitability := evaluate(trainer)

	if exploitability >= 0.01 {
		t.Errorf("exploitability %v >= 0.01", exploitability)
	}
	if math.Abs(payoffs[0]-gameValue) > 0.02 {
		t.Errorf("player 0 payoff %v not within 0.02 of %v", payoffs[0], gameValue)
	}
	if math.Abs(payoffs[1]+gameValue) > 0.02 {
		t.Errorf("player 1 payoff %v not within 0.02 of %v", payoffs[1], -gameValue)
	}
}

func TestKuhn_ChanceSamplingCFR(t *testing.T) {
	if testing.Short() {
		t.Skip("convergence run")
	}

	trainer := trainKuhn(t, cfr.ChanceSampling, 500000, 7)
	payoffs, exploitability := evaluate(trainer)

	if exploitability >= 0.02 {
		t.Errorf("exploitability %v >= 0.02", exploitability)
	}
	if math.Abs(payoffs[0]-gameValue) > 0.03 {
		t.Errorf("player 0 payoff %v not within 0.03 of %v", payoffs[0], gameValue)
	}
}

func TestKuhn_ExternalSamplingCFR(t *testing.T) {
	if testing.Short() {
		t.Skip("convergence run")
	}

	trainer := trainKuhn(t, cfr.ExternalSampling, 200000, 1)
	_, exploitability := evaluate(trainer)

	if exploitability >= 0.05 {
		t.Errorf("exploitability %v >= 0.05", exploitability)
	}
}

func TestKuhn_OutcomeSamplingCFR(t *testing.T) {
	if testing.Short() {
		t.Skip("convergence run")
	}

	trainer := trainKuhn(t, cfr.OutcomeSampling, 1000000, 1)
	_, exploitability := evaluate(trainer)

	if exploitability >= 0.1 {
		t.Errorf("exploitability %v >= 0.1", exploitability)
	}

	trainer.Nodes().ForEach(func(key string, node *cfr.Node) {
		for a := 0; a < node.NumActions(); a++ {
			if node.StrategySum(a) < 0 {
				t.Errorf("infoset %q action %d: negative strategy sum %v", key, a, node.StrategySum(a))
			}
		}
	})
}

func TestKuhn_ExploitabilityOfUniform(t *testing.T) {
	game := NewGame(rand.New(rand.NewSource(1)))
	strategies := []cfr.StrategyFunc{uniformStrategy, uniformStrategy}

	game.Reset(false)
	exploitability := cfr.CalculateExploitability(game, strategies)
	if exploitability <= 0.1 {
		t.Errorf("uniform play should be clearly exploitable, got %v", exploitability)
	}

	// Each player's best response is worth at least its on-profile payoff.
	payoffs := cfr.CalculatePayoff(game, strategies)
	for p := range payoffs {
		br := cfr.CalculateBestResponse(game, p, strategies)
		if br < payoffs[p]-1e-9 {
			t.Errorf("player %d: best response %v below profile payoff %v", p, br, payoffs[p])
		}
	}
}

func TestKuhn_FixedStrategyTraining(t *testing.T) {
	if testing.Short() {
		t.Skip("convergence run")
	}

	dir := t.TempDir()
	rng := rand.New(rand.NewSource(5))
	game := NewGame(rng)
	pretrainer, err := cfr.NewTrainer(game, cfr.Standard, rng, cfr.WithOutputDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	if err := pretrainer.Train(50000); err != nil {
		t.Fatal(err)
	}

	fixed, err := cfr.LoadStrategyFile(filepath.Join(dir, "strategy_standard.bin"))
	if err != nil {
		t.Fatal(err)
	}
	fixedStrat := func(g cfr.Game) []float64 {
		node, ok := fixed[g.InfoSetKey()]
		if !ok {
			t.Fatalf("fixed strategy missing infoset %q", g.InfoSetKey())
		}
		return node.AverageStrategy()
	}

	rng = rand.New(rand.NewSource(6))
	game = NewGame(rng)
	trainer, err := cfr.NewTrainer(game, cfr.Standard, rng,
		cfr.WithFixedStrategy(1, fixed),
		cfr.WithOutputDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if err := trainer.Train(50000); err != nil {
		t.Fatal(err)
	}

	eval := NewGame(rand.New(rand.NewSource(9)))
	eval.Reset(false)

	brValue := cfr.CalculateBestResponse(eval, 0, []cfr.StrategyFunc{uniformStrategy, fixedStrat})
	trained := cfr.CalculatePayoff(eval, []cfr.StrategyFunc{storeStrategy(trainer.Nodes()), fixedStrat})[0]
	baseline := cfr.CalculatePayoff(eval, []cfr.StrategyFunc{uniformStrategy, fixedStrat})[0]

	gapTrained := brValue - trained
	gapUniform := brValue - baseline
	if gapUniform <= 0 {
		t.Fatalf("uniform play is already a best response (gap %v)", gapUniform)
	}
	if gapTrained > 0.1*gapUniform {
		t.Errorf("best-response gap only dropped from %v to %v", gapUniform, gapTrained)
	}
}

func TestKuhn_StrategyPersistence(t *testing.T) {
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(11))
	game := NewGame(rng)
	trainer, err := cfr.NewTrainer(game, cfr.Standard, rng, cfr.WithOutputDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	if err := trainer.Train(1000); err != nil {
		t.Fatal(err)
	}

	loaded, err := cfr.LoadStrategyFile(filepath.Join(dir, "strategy_standard.bin"))
	if err != nil {
		t.Fatal(err)
	}

	if len(loaded) != trainer.Nodes().Len() {
		t.Fatalf("expected %d strategies, got %d", trainer.Nodes().Len(), len(loaded))
	}

	trainer.Nodes().ForEach(func(key string, node *cfr.Node) {
		got, ok := loaded[key]
		if !ok {
			t.Fatalf("missing infoset %q", key)
		}
		if got.NumActions() != node.NumActions() {
			t.Fatalf("infoset %q: expected %d actions, got %d", key, node.NumActions(), got.NumActions())
		}
		want := node.AverageStrategy()
		for a, p := range got.AverageStrategy() {
			if p != want[a] {
				t.Errorf("infoset %q action %d: expected %v, got %v", key, a, want[a], p)
			}
		}
	})
}

func TestKuhn_DeterministicForFixedSeed(t *testing.T) {
	first := trainKuhn(t, cfr.ExternalSampling, 10000, 3)
	second := trainKuhn(t, cfr.ExternalSampling, 10000, 3)

	if first.Nodes().Len() != second.Nodes().Len() {
		t.Fatalf("infoset counts differ: %d vs %d", first.Nodes().Len(), second.Nodes().Len())
	}

	first.Nodes().ForEach(func(key string, node *cfr.Node) {
		other, ok := second.Nodes().Get(key)
		if !ok {
			t.Fatalf("missing infoset %q in second run", key)
		}
		want := node.AverageStrategy()
		for a, p := range other.AverageStrategy() {
			if p != want[a] {
				t.Errorf("infoset %q action %d: %v != %v", key, a, p, want[a])
			}
		}
	})
}

func TestKuhn_CrossModeAgreement(t *testing.T) {
	if testing.Short() {
		t.Skip("extended convergence run")
	}

	trainers := map[cfr.Mode]*cfr.Trainer{
		cfr.Standard:         trainKuhn(t, cfr.Standard, 1000000, 21),
		cfr.ChanceSampling:   trainKuhn(t, cfr.ChanceSampling, 1000000, 22),
		cfr.ExternalSampling: trainKuhn(t, cfr.ExternalSampling, 1000000, 23),
		cfr.OutcomeSampling:  trainKuhn(t, cfr.OutcomeSampling, 2000000, 24),
	}

	for mode, trainer := range trainers {
		if _, exploitability := evaluate(trainer); exploitability >= 0.05 {
			t.Errorf("%v: exploitability %v >= 0.05", mode, exploitability)
		}
	}

	// Kuhn poker has a one-parameter family of equilibria for the first
	// player, so average strategies are compared only on the second
	// player's information sets, where the equilibrium is unique.
	root := NewGame(rand.New(rand.NewSource(1)))
	root.Reset(false)
	var keys []string
	tree.VisitInfoSets(root, func(player int, key string) {
		if player == 1 {
			keys = append(keys, key)
		}
	})
	if len(keys) != 6 {
		t.Fatalf("expected 6 second-player infosets, got %d", len(keys))
	}

	modes := []cfr.Mode{cfr.Standard, cfr.ChanceSampling, cfr.ExternalSampling, cfr.OutcomeSampling}
	for i, a := range modes {
		for _, b := range modes[i+1:] {
			for _, key := range keys {
				sa := trainers[a].GetStrategy(key)
				sb := trainers[b].GetStrategy(key)
				if sa == nil || sb == nil {
					t.Fatalf("infoset %q missing from %v or %v", key, a, b)
				}
				var l1 float64
				for x := range sa {
					l1 += math.Abs(sa[x] - sb[x])
				}
				if l1 > 0.05 {
					t.Errorf("%v vs %v at %q: L1 distance %v > 0.05 (%v vs %v)",
						a, b, key, l1, sa, sb)
				}
			}
		}
	}
}
