package cfr

import (
	"github.com/pkg/errors"
)

// Error kinds raised by the solver. All three signal bugs in the caller's
// wiring or game implementation rather than transient conditions, so the
// recursion panics with them at the point of detection. NewTrainer returns
// ErrIncompatibleMode as an error when it detects the misconfiguration
// before training.
var (
	// ErrIllFormed indicates the Game violated its contract, e.g. a
	// non-positive action count at a decision node or a payoff queried
	// before the game is over.
	ErrIllFormed = errors.New("game violated its contract")

	// ErrIncompatibleMode indicates a fixed-strategy player was configured
	// under external or outcome sampling. Stochastically-weighted averaging
	// cannot treat a player whose table is never updated.
	ErrIncompatibleMode = errors.New("fixed-strategy player is incompatible with this sampling mode")

	// ErrMissingStrategy indicates a fixed-strategy table has no entry for
	// an info set reached during the recursion.
	ErrMissingStrategy = errors.New("no strategy for info set")
)

func illFormedActions(g Game, n int) error {
	return errors.Wrapf(ErrIllFormed, "%d actions at a decision node of %s", n, g.Name())
}
