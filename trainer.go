package cfr

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Trainer drives one of the CFR recursions over a game, alternating the
// learning player each iteration and accumulating regrets and strategy
// sums in a NodeStore. Players with a pre-loaded fixed strategy are never
// updated; they act according to their loaded average strategy.
//
// Training is single-threaded: the store is mutated only from within the
// recursion, and a single RNG is consumed in a fixed order, so runs are
// deterministic for a fixed seed.
type Trainer struct {
	game Game
	mode Mode
	rng  *rand.Rand

	nodes NodeStore
	fixed []map[string]*Node // per player; nil means the player learns
	learn []bool

	nodesTouched uint64
	outDir       string

	slicePool *floatSlicePool
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithFixedStrategy marks the given player as fixed, acting according to
// the loaded average-strategy table instead of learning.
func WithFixedStrategy(player int, nodes map[string]*Node) TrainerOption {
	return func(t *Trainer) {
		t.fixed[player] = nodes
		t.learn[player] = false
	}
}

// WithStore replaces the default in-memory NodeStore.
func WithStore(store NodeStore) TrainerOption {
	return func(t *Trainer) {
		t.nodes = store
	}
}

// WithOutputDir overrides the directory strategy artifacts are written to.
func WithOutputDir(dir string) TrainerOption {
	return func(t *Trainer) {
		t.outDir = dir
	}
}

// NewTrainer creates a Trainer for the given game and mode. The RNG is
// shared with the game so that chance deals and action samples are drawn
// in a fixed order.
func NewTrainer(game Game, mode Mode, rng *rand.Rand, opts ...TrainerOption) (*Trainer, error) {
	numPlayers := game.NumPlayers()
	t := &Trainer{
		game:      game,
		mode:      mode,
		rng:       rng,
		nodes:     NewMapStore(),
		fixed:     make([]map[string]*Node, numPlayers),
		learn:     make([]bool, numPlayers),
		outDir:    filepath.Join("..", "strategies", game.Name()),
		slicePool: &floatSlicePool{},
	}
	for p := 0; p < numPlayers; p++ {
		t.learn[p] = true
	}

	for _, opt := range opts {
		opt(t)
	}

	if mode == ExternalSampling || mode == OutcomeSampling {
		for p, learn := range t.learn {
			if !learn {
				return nil, errors.Wrapf(ErrIncompatibleMode,
					"%v sampling with fixed player %d", mode, p)
			}
		}
	}

	return t, nil
}

// Train runs the configured number of outer iterations and writes the
// final average strategies to the output directory. Intermediate snapshots
// are written every 10,000,000 iterations; a write failure aborts training.
func (t *Trainer) Train(iterations int) error {
	utils := make([]float64, t.game.NumPlayers())

	for i := 0; i < iterations; i++ {
		for p := range utils {
			if !t.learn[p] {
				continue
			}

			switch t.mode {
			case Standard:
				t.game.Reset(false)
				utils[p] = t.vanillaCFR(t.game, p, 1.0, 1.0)
				t.refreshAll()
			case ChanceSampling:
				t.game.Reset(true)
				utils[p] = t.chanceSamplingCFR(t.game, p, 1.0, 1.0)
				t.refreshAll()
			case ExternalSampling:
				t.game.Reset(true)
				utils[p] = t.externalSamplingCFR(t.game, p)
			case OutcomeSampling:
				t.game.Reset(true)
				utils[p], _ = t.outcomeSamplingCFR(t.game, p, i, 1.0, 1.0, 1.0)
			}
		}

		if err := t.nodes.Flush(); err != nil {
			return errors.Wrap(err, "flushing node store")
		}

		if i%1000 == 0 {
			glog.Infof("iteration %d: %d nodes touched, %d infosets, expected payoffs %v",
				i, t.nodesTouched, t.nodes.Len(), utils)
		}

		if i != 0 && i%10000000 == 0 {
			if err := t.WriteStrategy(i); err != nil {
				return err
			}
		}
	}

	return t.WriteStrategy(0)
}

// refreshAll performs regret matching on every table. The vanilla and
// chance-sampling recursions do not refresh inline; Train calls this after
// each learning player's pass.
func (t *Trainer) refreshAll() {
	t.nodes.ForEach(func(_ string, node *Node) {
		node.RefreshStrategy()
	})
}

// Nodes returns the store of learned tables.
func (t *Trainer) Nodes() NodeStore {
	return t.nodes
}

// NodesTouched returns the cumulative number of recursion entries.
func (t *Trainer) NodesTouched() uint64 {
	return t.nodesTouched
}

// GetStrategy returns the average strategy for the given info-set key, or
// nil if it was never visited.
func (t *Trainer) GetStrategy(key string) []float64 {
	node, ok := t.nodes.Get(key)
	if !ok {
		return nil
	}
	return node.AverageStrategy()
}

// WriteStrategy dumps the average strategies to
// <outDir>/strategy[_<iter>]_<mode>.bin, creating the directory if needed.
// Pass iteration 0 for the final, unnumbered artifact.
func (t *Trainer) WriteStrategy(iteration int) error {
	if err := os.MkdirAll(t.outDir, 0755); err != nil {
		return errors.Wrapf(err, "creating %v", t.outDir)
	}

	name := "strategy"
	if iteration > 0 {
		name = fmt.Sprintf("strategy_%d", iteration)
	}
	name += fmt.Sprintf("_%v.bin", t.mode)
	path := filepath.Join(t.outDir, name)

	if glog.V(1) {
		t.nodes.ForEach(func(key string, node *Node) {
			glog.Infof("%x: %v", key, node.AverageStrategy())
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %v", path)
	}

	if err := WriteStrategies(f, t.nodes); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %v", path)
	}

	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %v", path)
	}

	glog.Infof("wrote %d strategies to %v", t.nodes.Len(), path)
	return nil
}

// fixedStrategy looks up the loaded table of a fixed player, failing hard
// if the info set is not covered.
func (t *Trainer) fixedStrategy(player int, key string) []float64 {
	node, ok := t.fixed[player][key]
	if !ok {
		panic(errors.Wrapf(ErrMissingStrategy, "player %d infoset %q", player, key))
	}
	return node.AverageStrategy()
}
