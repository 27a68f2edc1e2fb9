// grasp-eval loads one average strategy per player and prints the expected
// payoff tuple and the exploitability of the profile.
package main

import (
	"crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	mrand "math/rand"
	"os"
	"strings"

	"github.com/golang/glog"

	cfr "github.com/AndrewBlackwell/GRASP"
	"github.com/AndrewBlackwell/GRASP/kuhn"
)

func main() {
	var seed uint
	flag.UintVar(&seed, "seed", 0, "random seed (default from OS entropy)")
	flag.UintVar(&seed, "s", 0, "shorthand for -seed")

	numPlayers := kuhn.NewGame(nil).NumPlayers()
	strategyPaths := make([]*string, numPlayers)
	for p := range strategyPaths {
		strategyPaths[p] = flag.String(fmt.Sprintf("strategy-path-%d", p), "",
			fmt.Sprintf("average strategy for player %d (required)", p))
	}

	flag.Parse()

	for p, path := range strategyPaths {
		if *path == "" {
			fmt.Printf("-strategy-path-%d is required\n", p)
			flag.Usage()
			os.Exit(2)
		}
	}

	rng := mrand.New(mrand.NewSource(int64(seedValue(seed))))
	game := kuhn.NewGame(rng)

	strategies := make([]cfr.StrategyFunc, numPlayers)
	for p, path := range strategyPaths {
		agent, err := cfr.NewAgent(rng, *path)
		if err != nil {
			glog.Exit(err)
		}
		strategies[p] = agent.Strategy
	}

	game.Reset(false)
	payoffs := cfr.CalculatePayoff(game, strategies)
	formatted := make([]string, len(payoffs))
	for p, v := range payoffs {
		formatted[p] = fmt.Sprintf("%v", v)
	}
	fmt.Printf("expected player payoffs: (%s)\n", strings.Join(formatted, ","))

	game.Reset(false)
	exploitability := cfr.CalculateExploitability(game, strategies)
	fmt.Printf("strategy exploitability: %v\n", exploitability)
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
