// Package kuhn implements Kuhn poker: each player antes one chip and is
// dealt one of three cards, followed by a single round of pass/bet. It is
// the reference game for the solver, small enough to enumerate exactly.
//
// The rules are written for any fixed player count with playerCount+1
// cards; the package compiles for two players.
package kuhn

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"

	cfr "github.com/AndrewBlackwell/GRASP"
)

// Player actions once the cards are dealt.
const (
	Pass = 0
	Bet  = 1
)

const (
	playerCount  = 2
	cardCount    = playerCount + 1
	playerAction = 2

	// The chance player resolves the whole deal as one action: an index
	// into the permutations of the deck, decoded factoradically.
	chancePlayer = playerCount + 1
	noPlayer     = -1

	maxHistory = 10
)

var chanceOutcomes = factorial(cardCount)

func factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

// Game implements cfr.Game. The state is a compact value; Clone copies it
// wholesale and shares the RNG.
type Game struct {
	rng *rand.Rand

	cards      [cardCount]int
	payoffs    [playerCount]float64
	current    int
	chanceProb float64
	firstBet   int
	betCount   int
	turn       int
	over       bool

	// Per-player observation bytes: the player's card followed by every
	// action taken. infoSets[p][:turn+1] is the info-set key for p.
	infoSets [playerCount][maxHistory]uint8
}

// NewGame returns a Kuhn poker game drawing its deals from rng. Call Reset
// before use.
func NewGame(rng *rand.Rand) *Game {
	return &Game{rng: rng, current: noPlayer}
}

// Name implements cfr.Game.
func (g *Game) Name() string {
	return "kuhn"
}

// NumPlayers implements cfr.Game.
func (g *Game) NumPlayers() int {
	return playerCount
}

// Reset implements cfr.Game. With skipChance=true the deal is drawn from
// the RNG immediately; otherwise the chance player acts first and the deal
// is selected by its action.
func (g *Game) Reset(skipChance bool) {
	if !skipChance {
		g.current = chancePlayer
		g.over = false
		return
	}

	for i := range g.cards {
		g.cards[i] = i
	}
	for c1 := len(g.cards) - 1; c1 > 0; c1-- {
		c2 := g.rng.Intn(c1 + 1)
		g.cards[c1], g.cards[c2] = g.cards[c2], g.cards[c1]
	}

	g.afterDeal()
}

func (g *Game) afterDeal() {
	for i := 0; i < playerCount; i++ {
		g.infoSets[i][0] = uint8(g.cards[i])
	}
	g.turn = 0
	g.current = 0
	g.firstBet = -1
	g.betCount = 0
	g.over = false
}

// Apply implements cfr.Game.
func (g *Game) Apply(action int) {
	if g.current == chancePlayer {
		g.chanceProb = 1.0 / float64(chanceOutcomes)
		for i := range g.cards {
			g.cards[i] = i
		}

		x := action
		for c1 := len(g.cards) - 1; c1 > 0; c1-- {
			c2 := x % (c1 + 1)
			g.cards[c1], g.cards[c2] = g.cards[c2], g.cards[c1]
			x /= c1 + 1
		}

		g.afterDeal()
		return
	}

	g.turn++
	g.betCount += action
	for i := range g.infoSets {
		g.infoSets[i][g.turn] = uint8(action)
	}
	if g.firstBet == -1 && action == Bet {
		g.firstBet = g.turn
	}

	player := g.turn % playerCount
	if g.turn > 1 {
		// The round ends when everyone has answered the first bet, or when
		// every player passed.
		terminalPass := (g.firstBet > 0 && g.turn-g.firstBet == playerCount-1) ||
			(g.turn == playerCount && g.firstBet == -1 && g.infoSets[0][g.turn] == Pass)

		switch {
		case g.betCount == playerCount:
			// Everyone bet: showdown for all antes and bets.
			winner := maxIndex(g.cards[:playerCount])
			for i := range g.payoffs {
				if i == winner {
					g.payoffs[i] = float64(2 * (playerCount - 1))
				} else {
					g.payoffs[i] = -2
				}
			}
			g.over = true

		case terminalPass && g.betCount == 0:
			// All passed: showdown for the antes.
			winner := maxIndex(g.cards[:playerCount])
			for i := range g.payoffs {
				if i == winner {
					g.payoffs[i] = float64(playerCount - 1)
				} else {
					g.payoffs[i] = -1
				}
			}
			g.over = true

		case terminalPass && g.betCount == 1:
			// A single bet that everyone folded to.
			for i := range g.payoffs {
				if i == player {
					g.payoffs[i] = float64(playerCount - 1)
				} else {
					g.payoffs[i] = -1
				}
			}
			g.over = true

		case terminalPass:
			// Showdown among the players who matched the bet.
			var cards [playerCount]int
			var bet [playerCount]bool
			for i := range cards {
				cards[i] = -1
			}
			for i := 0; i < g.turn; i++ {
				if g.infoSets[0][i+1] == Bet {
					cards[i%playerCount] = g.cards[i%playerCount]
					bet[i%playerCount] = true
				}
			}

			winner := maxIndex(cards[:])
			g.payoffs[winner] = float64(2*(g.betCount-1) + (playerCount - g.betCount))
			for i := range g.payoffs {
				if !bet[i] {
					g.payoffs[i] = -1
				} else if i != winner {
					g.payoffs[i] = -2
				}
			}
			g.over = true
		}
	}

	g.current = player
}

// IsTerminal implements cfr.Game.
func (g *Game) IsTerminal() bool {
	return g.over
}

// IsChance implements cfr.Game.
func (g *Game) IsChance() bool {
	return g.current == chancePlayer
}

// CurrentPlayer implements cfr.Game.
func (g *Game) CurrentPlayer() int {
	return g.current
}

// NumActions implements cfr.Game.
func (g *Game) NumActions() int {
	if g.current == chancePlayer {
		return chanceOutcomes
	}
	return playerAction
}

// ChanceProb implements cfr.Game.
func (g *Game) ChanceProb() float64 {
	return g.chanceProb
}

// Payoff implements cfr.Game.
func (g *Game) Payoff(player int) float64 {
	if !g.over {
		panic(errors.Wrap(cfr.ErrIllFormed, "payoff queried before the game is over"))
	}
	return g.payoffs[player]
}

// InfoSetKey implements cfr.Game: the acting player's card followed by the
// action history, as raw bytes.
func (g *Game) InfoSetKey() string {
	return string(g.infoSets[g.current][:g.turn+1])
}

// Clone implements cfr.Game.
func (g *Game) Clone() cfr.Game {
	cp := *g
	return &cp
}

// String implements fmt.Stringer.
func (g *Game) String() string {
	return fmt.Sprintf("player %v's turn (turn %d, bets %d, cards %v)",
		g.current, g.turn, g.betCount, g.cards)
}

func maxIndex(v []int) int {
	best := 0
	for i, x := range v {
		if x > v[best] {
			best = i
		}
	}
	return best
}
