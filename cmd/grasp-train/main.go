// grasp-train computes an approximate Nash equilibrium for Kuhn poker with
// one of the CFR variants and writes the average strategies to
// ../strategies/kuhn/.
package main

import (
	"crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	mrand "math/rand"
	"os"

	"github.com/golang/glog"

	cfr "github.com/AndrewBlackwell/GRASP"
	"github.com/AndrewBlackwell/GRASP/kuhn"
)

func main() {
	var algorithm string
	flag.StringVar(&algorithm, "algorithm", "standard",
		"CFR variant computing the equilibrium: standard, chance, external or outcome")
	flag.StringVar(&algorithm, "a", "standard", "shorthand for -algorithm")

	var iterations uint64
	flag.Uint64Var(&iterations, "iteration", 0, "number of CFR iterations (required)")
	flag.Uint64Var(&iterations, "i", 0, "shorthand for -iteration")

	var seed uint
	flag.UintVar(&seed, "seed", 0, "random seed (default from OS entropy)")
	flag.UintVar(&seed, "s", 0, "shorthand for -seed")

	numPlayers := kuhn.NewGame(nil).NumPlayers()
	strategyPaths := make([]*string, numPlayers)
	for p := range strategyPaths {
		strategyPaths[p] = flag.String(fmt.Sprintf("strategy-path-%d", p), "",
			fmt.Sprintf("average strategy to fix player %d to instead of training it", p))
	}

	flag.Parse()

	if iterations == 0 {
		fmt.Println("a positive -iteration count is required")
		flag.Usage()
		os.Exit(2)
	}

	mode, err := cfr.ParseMode(algorithm)
	if err != nil {
		glog.Exitf("invalid -algorithm: %v", err)
	}

	rng := mrand.New(mrand.NewSource(int64(seedValue(seed))))
	game := kuhn.NewGame(rng)

	var opts []cfr.TrainerOption
	for p, path := range strategyPaths {
		if *path == "" {
			continue
		}
		glog.Infof("loading strategy %q as fixed player %d", *path, p)
		nodes, err := cfr.LoadStrategyFile(*path)
		if err != nil {
			glog.Exit(err)
		}
		opts = append(opts, cfr.WithFixedStrategy(p, nodes))
	}

	trainer, err := cfr.NewTrainer(game, mode, rng, opts...)
	if err != nil {
		glog.Exit(err)
	}

	if err := trainer.Train(int(iterations)); err != nil {
		glog.Exit(err)
	}
}

// seedValue returns the flag value, or a seed drawn from OS entropy when
// none was given.
func seedValue(flagSeed uint) uint32 {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" || f.Name == "s" {
			set = true
		}
	})
	if set {
		return uint32(flagSeed)
	}

	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		glog.Exit(err)
	}
	return binary.LittleEndian.Uint32(buf[:])
}
