package tracker

import "errors"

// Domain errors surfaced to the conversation layer. Every one of these is
// recoverable: the handler reports it to the user and leaves state unchanged.
var (
	// ErrInvalidState means an action was attempted out of sequence, such as
	// picking a table before choosing what to do with it.
	ErrInvalidState = errors.New("choose an action first")

	// ErrTableLocked means a game start was attempted on a table that
	// already has an active game.
	ErrTableLocked = errors.New("table already has an active game")

	// ErrTargetOccupied means a table move targeted a table with a game.
	ErrTargetOccupied = errors.New("target table is occupied")

	// ErrInvalidInput means a count was not a positive integer.
	ErrInvalidInput = errors.New("a positive number is required")

	// ErrInvalidAdjustment means a player removal would drive occupancy to
	// zero or below while the game is still active.
	ErrInvalidAdjustment = errors.New("removal exceeds current occupancy")

	// ErrTableNotFound means the referenced table has no matching record.
	ErrTableNotFound = errors.New("no active record for table")

	// ErrItemNotFound means an order edit referenced an item that is not in
	// the order.
	ErrItemNotFound = errors.New("item not found in order")

	// ErrInvalidSelection means the selected item does not belong to the
	// category currently being browsed.
	ErrInvalidSelection = errors.New("item does not belong to the selected category")

	// ErrEmptyOrder means an order was submitted without any items.
	ErrEmptyOrder = errors.New("no items selected")

	// ErrSameTable means a table move named the same source and target.
	ErrSameTable = errors.New("source and target table are the same")

	// ErrGameNotEnded means billing was requested for a game that is still
	// running.
	ErrGameNotEnded = errors.New("game has not ended")
)
