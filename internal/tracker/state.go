package tracker

import "time"

// Mode identifies where a user is in the multi-step menu flow.
type Mode string

const (
	ModeIdle         Mode = "idle"
	ModeGameStart    Mode = "game_start"
	ModeGameEnd      Mode = "game_end"
	ModeOrderStart   Mode = "order_start"
	ModeOrderEdit    Mode = "order_edit"
	ModeOrderAdd     Mode = "order_add"
	ModePlayerAdd    Mode = "player_add"
	ModePlayerRemove Mode = "player_remove"
	ModeMoveTable    Mode = "move_table"
	ModeCheckout     Mode = "checkout"
)

// OrderRelated reports whether pending items and the browsed category are
// meaningful in this mode.
func (m Mode) OrderRelated() bool {
	switch m {
	case ModeOrderStart, ModeOrderAdd, ModeOrderEdit:
		return true
	}
	return false
}

// DialogueState tracks one user's position in the menu flow. PendingItems and
// CurrentCategory are only meaningful while Mode is order-related and are
// cleared on mode exit.
type DialogueState struct {
	Mode            Mode
	Table           string
	PendingItems    []string
	CurrentCategory string
	LastTouched     time.Time
}

// PlayerGroup records one arrival (positive count) or departure (negative
// count) at a table. The full sequence is kept as an audit trail.
type PlayerGroup struct {
	Count int
	At    time.Time
	Actor string
}

// Game is an in-progress or ended-but-unsettled play session on a table.
type Game struct {
	StartedAt time.Time
	EndedAt   time.Time // zero while the game is running
	Groups    []PlayerGroup
}

// Ended reports whether the game is awaiting checkout.
func (g Game) Ended() bool {
	return !g.EndedAt.IsZero()
}

// Occupancy is the net number of players currently at the table: the sum of
// signed group counts.
func (g Game) Occupancy() int {
	n := 0
	for _, grp := range g.Groups {
		n += grp.Count
	}
	return n
}

// TotalPlayers is the net player count over the whole session, used by
// billing. With only arrivals recorded it equals the headcount.
func (g Game) TotalPlayers() int {
	return g.Occupancy()
}

// Order is the open set of food and drink items on a table. Items holds one
// entry per unit ordered, duplicates allowed.
type Order struct {
	Items     []string
	UpdatedAt time.Time
	Actor     string
}
