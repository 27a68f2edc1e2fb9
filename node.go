package cfr

import (
	"bytes"
	"encoding/gob"

	"github.com/pkg/errors"

	"github.com/AndrewBlackwell/GRASP/internal/f64"
)

// Node holds the accumulated training state of one information set:
// cumulative counterfactual regrets, the current regret-matched strategy,
// the reach-weighted strategy sum, and the average strategy derived from
// it. The average strategy is the object that converges to equilibrium.
//
// Nodes loaded from a strategy artifact are frozen: only the average
// strategy and the action count are meaningful, and any mutating call
// panics.
type Node struct {
	regretSum   []float64
	strategy    []float64
	strategySum []float64
	avgStrategy []float64

	strategyStale bool // regrets changed since the last regret matching
	averageStale  bool // strategySum changed since the last normalization

	frozen bool
}

// NewNode returns a Node for an information set with the given number of
// actions. The current strategy starts uniform.
func NewNode(numActions int) *Node {
	if numActions <= 0 {
		panic(errors.Wrapf(ErrIllFormed, "node with %d actions", numActions))
	}

	return &Node{
		regretSum:    make([]float64, numActions),
		strategy:     uniformDist(numActions),
		strategySum:  make([]float64, numActions),
		avgStrategy:  make([]float64, numActions),
		averageStale: true,
	}
}

func newFrozenNode(avgStrategy []float64) *Node {
	return &Node{
		avgStrategy: avgStrategy,
		frozen:      true,
	}
}

// NumActions returns the number of actions at this information set.
func (n *Node) NumActions() int {
	if n.frozen {
		return len(n.avgStrategy)
	}
	return len(n.regretSum)
}

// Strategy returns the current strategy. It does not re-derive it from the
// regrets; see RefreshStrategy.
func (n *Node) Strategy() []float64 {
	n.mutable("Strategy")
	return n.strategy
}

// RefreshStrategy recomputes the current strategy by regret matching if the
// regrets have changed since the last derivation: each action's probability
// is its positive regret share, or uniform if no regret is positive.
func (n *Node) RefreshStrategy() {
	n.mutable("RefreshStrategy")
	if !n.strategyStale {
		return
	}

	n.calcStrategy()
	n.strategyStale = false
}

func (n *Node) calcStrategy() {
	copy(n.strategy, n.regretSum)
	makePositive(n.strategy)
	total := f64.Sum(n.strategy)
	if total > 0 {
		f64.ScalUnitary(1.0/total, n.strategy)
	} else {
		for i := range n.strategy {
			n.strategy[i] = 1.0 / float64(len(n.strategy))
		}
	}
}

// AddRegret accumulates an instantaneous counterfactual regret for the
// given action and marks the current strategy stale.
func (n *Node) AddRegret(action int, delta float64) {
	n.mutable("AddRegret")
	n.regretSum[action] += delta
	n.strategyStale = true
}

// Regret returns the cumulative regret for the given action.
func (n *Node) Regret(action int) float64 {
	return n.regretSum[action]
}

// AccumulateStrategy adds weight * strategy into the cumulative strategy
// sum. The weight is a reach probability and must not be negative; zero is
// a no-op.
func (n *Node) AccumulateStrategy(strategy []float64, weight float64) {
	n.mutable("AccumulateStrategy")
	if weight < 0 {
		panic(errors.Wrapf(ErrIllFormed, "negative strategy weight %v", weight))
	}
	if weight == 0 {
		return
	}

	f64.AxpyUnitary(weight, strategy, n.strategySum)
	n.averageStale = true
}

// StrategySum returns the cumulative reach-weighted strategy sum for the
// given action.
func (n *Node) StrategySum(action int) float64 {
	return n.strategySum[action]
}

// AverageStrategy returns the normalized strategy sum, recomputing it if
// the sum has changed since the last call. If the sum is all zero the
// average is uniform.
func (n *Node) AverageStrategy() []float64 {
	if n.frozen {
		return n.avgStrategy
	}
	if !n.averageStale {
		return n.avgStrategy
	}

	total := f64.Sum(n.strategySum)
	if total > 0 {
		f64.ScalUnitaryTo(n.avgStrategy, 1.0/total, n.strategySum)
	} else {
		for i := range n.avgStrategy {
			n.avgStrategy[i] = 1.0 / float64(len(n.avgStrategy))
		}
	}
	n.averageStale = false
	return n.avgStrategy
}

func (n *Node) mutable(op string) {
	if n.frozen {
		panic(errors.Wrapf(ErrIllFormed, "%s on a node loaded from a strategy artifact", op))
	}
}

// GobEncode implements gob.GobEncoder. Only the accumulated sums are
// encoded; the current strategy is re-derived on decode.
func (n *Node) GobEncode() ([]byte, error) {
	if n.frozen {
		return nil, errors.Wrap(ErrIllFormed, "encode of a frozen node")
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(n.NumActions()); err != nil {
		return nil, err
	}

	if err := enc.Encode(n.regretSum); err != nil {
		return nil, err
	}

	if err := enc.Encode(n.strategySum); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (n *Node) GobDecode(buf []byte) error {
	r := bytes.NewReader(buf)
	dec := gob.NewDecoder(r)

	var numActions int
	if err := dec.Decode(&numActions); err != nil {
		return err
	}

	regretSum := make([]float64, 0, numActions)
	if err := dec.Decode(&regretSum); err != nil {
		return err
	}

	strategySum := make([]float64, 0, numActions)
	if err := dec.Decode(&strategySum); err != nil {
		return err
	}

	n.regretSum = regretSum
	n.strategySum = strategySum
	n.strategy = make([]float64, numActions)
	n.avgStrategy = make([]float64, numActions)
	n.calcStrategy()
	n.averageStale = true
	return nil
}

func uniformDist(n int) []float64 {
	result := make([]float64, n)
	p := 1.0 / float64(n)
	f64.AddConst(p, result)
	return result
}

func makePositive(v []float64) {
	for i := range v {
		if v[i] < 0 {
			v[i] = 0.0
		}
	}
}
