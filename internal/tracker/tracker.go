// Package tracker maintains the per-user dialogue state machine and the
// per-table active-game and active-order registries. It is the sole mutator
// of both; handlers never touch the records directly.
package tracker

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// ItemChecker validates that an item belongs to a menu category. Satisfied by
// *menu.Catalog.
type ItemChecker interface {
	HasItem(categoryKey, itemName string) bool
}

// Tracker owns all conversational and table state. A single mutex guards the
// table registries so player adjustments, moves, and settlements cannot lose
// updates when the dispatch loop handles users in parallel.
type Tracker struct {
	mu     sync.Mutex
	logger *slog.Logger
	items  ItemChecker
	now    func() time.Time

	dialogues map[int64]*DialogueState
	games     map[string]*Game
	orders    map[string]*Order
}

// New creates an empty tracker. items may be nil when the menu catalog failed
// to load; order item selection is then rejected.
func New(logger *slog.Logger, items ItemChecker) *Tracker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tracker{
		logger:    logger.With("component", "tracker"),
		items:     items,
		now:       time.Now,
		dialogues: make(map[int64]*DialogueState),
		games:     make(map[string]*Game),
		orders:    make(map[string]*Order),
	}
}

// BeginMode resets the user's dialogue to the given mode, discarding any
// half-finished flow. Idempotent overwrite.
func (t *Tracker) BeginMode(userID int64, mode Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.dialogues[userID] = &DialogueState{Mode: mode, LastTouched: t.now()}
}

// Dialogue returns a copy of the user's current dialogue state.
func (t *Tracker) Dialogue(userID int64) (DialogueState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.dialogues[userID]
	if !ok {
		return DialogueState{Mode: ModeIdle}, false
	}
	return copyState(st), true
}

// ClearDialogue returns the user to idle, dropping pending selections.
func (t *Tracker) ClearDialogue(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.dialogues, userID)
}

// SelectTable records the table the user is acting on. Starting a game on a
// table that already has one is rejected before any state changes.
func (t *Tracker) SelectTable(userID int64, table string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.dialogues[userID]
	if !ok || st.Mode == ModeIdle {
		return ErrInvalidState
	}
	if st.Mode == ModeGameStart {
		if _, occupied := t.games[table]; occupied {
			return ErrTableLocked
		}
	}

	st.Table = table
	st.LastTouched = t.now()
	return nil
}

// RecordPlayerCount creates the active game for the table selected in the
// user's game-start dialogue, with one initial player group of n. The
// dialogue is cleared on success. Returns the table the game started on.
func (t *Tracker) RecordPlayerCount(userID int64, n int, actor string) (string, error) {
	if n <= 0 {
		return "", ErrInvalidInput
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.dialogues[userID]
	if !ok || st.Mode != ModeGameStart || st.Table == "" {
		return "", ErrInvalidState
	}
	if _, occupied := t.games[st.Table]; occupied {
		return "", ErrTableLocked
	}

	now := t.now()
	t.games[st.Table] = &Game{
		StartedAt: now,
		Groups:    []PlayerGroup{{Count: n, At: now, Actor: actor}},
	}
	table := st.Table
	delete(t.dialogues, userID)

	t.logger.Info("Game started", "table", table, "players", n, "actor", actor)
	return table, nil
}

// AdjustPlayers appends an arrival (positive delta) or departure (negative
// delta) to the table's game. The group history is never collapsed; it is the
// audit trail. Returns the new occupancy.
func (t *Tracker) AdjustPlayers(table string, delta int, actor string) (int, error) {
	if delta == 0 {
		return 0, ErrInvalidInput
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	game, ok := t.games[table]
	if !ok {
		return 0, ErrTableNotFound
	}

	occupancy := game.Occupancy()
	if delta < 0 && -delta >= occupancy {
		return occupancy, ErrInvalidAdjustment
	}

	game.Groups = append(game.Groups, PlayerGroup{Count: delta, At: t.now(), Actor: actor})
	occupancy += delta

	t.logger.Info("Players adjusted", "table", table, "delta", delta, "occupancy", occupancy, "actor", actor)
	return occupancy, nil
}

// EndGame marks the table's game as ended. The record stays in place,
// awaiting checkout, so its data remains available for billing.
func (t *Tracker) EndGame(table string) (Game, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	game, ok := t.games[table]
	if !ok || game.Ended() {
		return Game{}, ErrTableNotFound
	}

	game.EndedAt = t.now()

	t.logger.Info("Game ended", "table", table, "duration", game.EndedAt.Sub(game.StartedAt))
	return copyGame(game), nil
}

// SelectCategory records the category the user is browsing.
func (t *Tracker) SelectCategory(userID int64, categoryKey string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.dialogues[userID]
	if !ok || !st.Mode.OrderRelated() || st.Table == "" {
		return ErrInvalidState
	}

	st.CurrentCategory = categoryKey
	st.LastTouched = t.now()
	return nil
}

// SelectItem appends an item to the user's pending order if it belongs to
// the category currently being browsed; otherwise nothing changes. In the
// edit flow an item tap outside browsing removes a unit, so each addition
// steps back out of the category.
func (t *Tracker) SelectItem(userID int64, itemName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.dialogues[userID]
	if !ok || !st.Mode.OrderRelated() || st.CurrentCategory == "" {
		return ErrInvalidState
	}
	if t.items == nil || !t.items.HasItem(st.CurrentCategory, itemName) {
		return ErrInvalidSelection
	}

	st.PendingItems = append(st.PendingItems, itemName)
	if st.Mode == ModeOrderEdit {
		st.CurrentCategory = ""
	}
	st.LastTouched = t.now()
	return nil
}

// SubmitOrder commits the user's pending items to the table's order,
// appending when one already exists. The dialogue is cleared on success.
// Returns the table, the submitted items, and whether the order is new.
func (t *Tracker) SubmitOrder(userID int64, actor string) (string, []string, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.dialogues[userID]
	if !ok || !st.Mode.OrderRelated() || st.Table == "" {
		return "", nil, false, ErrInvalidState
	}
	if len(st.PendingItems) == 0 {
		return "", nil, false, ErrEmptyOrder
	}

	table := st.Table
	items := append([]string(nil), st.PendingItems...)
	now := t.now()

	order, exists := t.orders[table]
	if exists {
		order.Items = append(order.Items, items...)
		order.UpdatedAt = now
		order.Actor = actor
	} else {
		t.orders[table] = &Order{Items: items, UpdatedAt: now, Actor: actor}
	}
	delete(t.dialogues, userID)

	t.logger.Info("Order submitted", "table", table, "items", len(items), "new", !exists, "actor", actor)
	return table, items, !exists, nil
}

// EditOrder removes at most one occurrence of removeItem (when non-empty)
// and appends addItems to the table's order. An order whose item list
// becomes empty is deleted. Returns the remaining items.
func (t *Tracker) EditOrder(table, removeItem string, addItems []string, actor string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	order, ok := t.orders[table]
	if !ok {
		return nil, ErrTableNotFound
	}

	if removeItem != "" {
		idx := -1
		for i, item := range order.Items {
			if item == removeItem {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrItemNotFound
		}
		order.Items = append(order.Items[:idx], order.Items[idx+1:]...)
	}

	order.Items = append(order.Items, addItems...)
	order.UpdatedAt = t.now()
	order.Actor = actor

	if len(order.Items) == 0 {
		delete(t.orders, table)
		t.logger.Info("Order emptied and removed", "table", table, "actor", actor)
		return nil, nil
	}

	remaining := append([]string(nil), order.Items...)
	t.logger.Info("Order edited", "table", table, "removed", removeItem, "added", len(addItems), "actor", actor)
	return remaining, nil
}

// MoveTable transfers the game and order records from source to target.
// The move is atomic: on any failure neither record changes. A target with a
// game of its own, running or awaiting checkout, rejects the move.
func (t *Tracker) MoveTable(source, target string) error {
	if source == target {
		return ErrSameTable
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	game, hasGame := t.games[source]
	order, hasOrder := t.orders[source]
	if !hasGame && !hasOrder {
		return ErrTableNotFound
	}
	if _, occupied := t.games[target]; occupied {
		return ErrTargetOccupied
	}

	if hasGame {
		t.games[target] = game
		delete(t.games, source)
	}
	if hasOrder {
		if existing, ok := t.orders[target]; ok {
			existing.Items = append(existing.Items, order.Items...)
			existing.UpdatedAt = t.now()
		} else {
			t.orders[target] = order
		}
		delete(t.orders, source)
	}

	t.logger.Info("Table moved", "source", source, "target", target, "game", hasGame, "order", hasOrder)
	return nil
}

// Settle removes the table's game and order records. Idempotent; settling a
// table with no records is a no-op. Returns copies of whatever was removed.
func (t *Tracker) Settle(table string) (*Game, *Order) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var game *Game
	var order *Order

	if g, ok := t.games[table]; ok {
		cp := copyGame(g)
		game = &cp
		delete(t.games, table)
	}
	if o, ok := t.orders[table]; ok {
		cp := copyOrder(o)
		order = &cp
		delete(t.orders, table)
	}

	if game != nil || order != nil {
		t.logger.Info("Table settled", "table", table, "had_game", game != nil, "had_order", order != nil)
	}
	return game, order
}

// Game returns a copy of the table's game record.
func (t *Tracker) Game(table string) (Game, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	game, ok := t.games[table]
	if !ok {
		return Game{}, false
	}
	return copyGame(game), true
}

// Order returns a copy of the table's order record.
func (t *Tracker) Order(table string) (Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	order, ok := t.orders[table]
	if !ok {
		return Order{}, false
	}
	return copyOrder(order), true
}

// SweepStale drops dialogue states untouched for longer than maxAge. The
// original design let abandoned dialogues linger forever; a periodic sweep
// keeps the registry bounded. Returns the number of states removed.
func (t *Tracker) SweepStale(maxAge time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-maxAge)
	removed := 0
	for userID, st := range t.dialogues {
		if st.LastTouched.Before(cutoff) {
			delete(t.dialogues, userID)
			removed++
		}
	}

	if removed > 0 {
		t.logger.Info("Swept stale dialogue states", "removed", removed, "max_age", maxAge)
	}
	return removed
}

func copyState(st *DialogueState) DialogueState {
	cp := *st
	cp.PendingItems = append([]string(nil), st.PendingItems...)
	return cp
}

func copyGame(g *Game) Game {
	cp := *g
	cp.Groups = append([]PlayerGroup(nil), g.Groups...)
	return cp
}

func copyOrder(o *Order) Order {
	cp := *o
	cp.Items = append([]string(nil), o.Items...)
	return cp
}
