package game

import "errors"

var (
	// ErrClaimPending is returned when a player submits a claim while its
	// previous claim is still waiting for a verdict.
	ErrClaimPending = errors.New("claim already pending")
	// ErrTerminated is returned for requests made after the game ended.
	ErrTerminated = errors.New("game terminated")
	// ErrUnknownPlayer is returned for a player ID not in the game.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrComputerPlayer is returned when routing input to a computer player.
	ErrComputerPlayer = errors.New("player is not human")
	// ErrInvalidSlot is returned for a slot outside the board.
	ErrInvalidSlot = errors.New("invalid slot")
)

func IsClaimPending(err error) bool {
	return errors.Is(err, ErrClaimPending)
}

func IsTerminated(err error) bool {
	return errors.Is(err, ErrTerminated)
}

func IsUnknownPlayer(err error) bool {
	return errors.Is(err, ErrUnknownPlayer)
}
