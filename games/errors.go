package games

import "errors"

var (
	ErrGameInProgress   = errors.New("a game is already in progress")
	ErrNoGame           = errors.New("no active game")
	ErrInvalidWager     = errors.New("wager must be positive")
	ErrWagerTooLarge    = errors.New("wager exceeds the maximum")
	ErrStakeMismatch    = errors.New("wager does not match the game")
	ErrSelfJoin         = errors.New("cannot join your own game")
	ErrGameFull         = errors.New("game already has two players")
	ErrNothingToCashOut = errors.New("guess correctly at least once before cashing out")
	ErrInvalidChoice    = errors.New("invalid choice")
)

// IsUserError reports whether err is a game rule the player broke
func IsUserError(err error) bool {
	for _, target := range []error{
		ErrGameInProgress, ErrNoGame, ErrInvalidWager, ErrWagerTooLarge, ErrStakeMismatch,
		ErrSelfJoin, ErrGameFull, ErrNothingToCashOut, ErrInvalidChoice,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
