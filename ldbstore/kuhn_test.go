package ldbstore

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	cfr "github.com/AndrewBlackwell/GRASP"
	"github.com/AndrewBlackwell/GRASP/kuhn"
)

// Training through the disk-backed store must reproduce the in-memory
// result exactly: the store never consumes randomness and round-trips the
// accumulated sums without loss.
func TestStore_KuhnTrainingMatchesMapStore(t *testing.T) {
	train := func(store cfr.NodeStore) *cfr.Trainer {
		rng := rand.New(rand.NewSource(17))
		game := kuhn.NewGame(rng)
		trainer, err := cfr.NewTrainer(game, cfr.ChanceSampling, rng,
			cfr.WithStore(store),
			cfr.WithOutputDir(t.TempDir()))
		require.NoError(t, err)
		require.NoError(t, trainer.Train(2000))
		return trainer
	}

	mem := train(cfr.NewMapStore())

	// A cache smaller than the game's infoset count forces database
	// round-trips during training.
	disk, err := New(filepath.Join(t.TempDir(), "nodes"), nil, 4)
	require.NoError(t, err)
	defer disk.Close()
	ldb := train(disk)

	require.Equal(t, mem.Nodes().Len(), ldb.Nodes().Len())
	mem.Nodes().ForEach(func(key string, node *cfr.Node) {
		other, ok := ldb.Nodes().Get(key)
		require.True(t, ok, "missing infoset %q", key)
		require.InDeltaSlice(t, node.AverageStrategy(), other.AverageStrategy(), 1e-12)
	})
}
