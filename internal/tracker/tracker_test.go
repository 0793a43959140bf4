// Package tracker_test tests the dialogue and table state tracker.
package tracker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dicelounge/loungebot/internal/tracker"
)

// stubMenu satisfies tracker.ItemChecker with a fixed category -> items map.
type stubMenu map[string][]string

func (m stubMenu) HasItem(categoryKey, itemName string) bool {
	for _, name := range m[categoryKey] {
		if name == itemName {
			return true
		}
	}
	return false
}

func newTracker() *tracker.Tracker {
	return tracker.New(nil, stubMenu{
		"drinks": {"Espresso", "Green Tea"},
		"food":   {"Club Sandwich"},
	})
}

// startGame drives the game-start dialogue to completion for the given table.
func startGame(t *testing.T, trk *tracker.Tracker, userID int64, table string, players int) {
	t.Helper()

	trk.BeginMode(userID, tracker.ModeGameStart)
	if err := trk.SelectTable(userID, table); err != nil {
		t.Fatalf("SelectTable(%q): %v", table, err)
	}
	got, err := trk.RecordPlayerCount(userID, players, "@staff")
	if err != nil {
		t.Fatalf("RecordPlayerCount: %v", err)
	}
	if got != table {
		t.Fatalf("RecordPlayerCount returned table %q, want %q", got, table)
	}
}

// placeOrder drives the order dialogue to completion, submitting items from
// the drinks category.
func placeOrder(t *testing.T, trk *tracker.Tracker, userID int64, table string, items ...string) {
	t.Helper()

	trk.BeginMode(userID, tracker.ModeOrderStart)
	if err := trk.SelectTable(userID, table); err != nil {
		t.Fatalf("SelectTable(%q): %v", table, err)
	}
	if err := trk.SelectCategory(userID, "drinks"); err != nil {
		t.Fatalf("SelectCategory: %v", err)
	}
	for _, item := range items {
		if err := trk.SelectItem(userID, item); err != nil {
			t.Fatalf("SelectItem(%q): %v", item, err)
		}
	}
	if _, _, _, err := trk.SubmitOrder(userID, "@staff"); err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
}

func TestGameLifecycle(t *testing.T) {
	t.Parallel()

	trk := newTracker()
	startGame(t, trk, 1, "Table 3", 4)

	game, ok := trk.Game("Table 3")
	if !ok {
		t.Fatal("expected an active game on Table 3")
	}
	if game.Occupancy() != 4 {
		t.Errorf("Occupancy() = %d, want 4", game.Occupancy())
	}
	if game.Ended() {
		t.Error("freshly started game reports Ended()")
	}

	// The dialogue is consumed by a successful start.
	if _, ok := trk.Dialogue(1); ok {
		t.Error("dialogue state survived a completed game start")
	}

	// A second game on the same table is rejected at table selection.
	trk.BeginMode(2, tracker.ModeGameStart)
	if err := trk.SelectTable(2, "Table 3"); !errors.Is(err, tracker.ErrTableLocked) {
		t.Errorf("SelectTable on occupied table: err = %v, want ErrTableLocked", err)
	}

	ended, err := trk.EndGame("Table 3")
	if err != nil {
		t.Fatalf("EndGame: %v", err)
	}
	if !ended.Ended() {
		t.Error("EndGame returned a game without an end timestamp")
	}

	// The record stays in place awaiting checkout.
	if _, ok := trk.Game("Table 3"); !ok {
		t.Error("ended game was removed before settlement")
	}

	// Ending twice is rejected.
	if _, err := trk.EndGame("Table 3"); !errors.Is(err, tracker.ErrTableNotFound) {
		t.Errorf("second EndGame: err = %v, want ErrTableNotFound", err)
	}
}

func TestSelectTableRequiresMode(t *testing.T) {
	t.Parallel()

	trk := newTracker()
	if err := trk.SelectTable(1, "Table 1"); !errors.Is(err, tracker.ErrInvalidState) {
		t.Errorf("SelectTable without a mode: err = %v, want ErrInvalidState", err)
	}
}

func TestRecordPlayerCountValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(trk *tracker.Tracker)
		players int
		wantErr error
	}{
		{
			name:    "zero players",
			prepare: func(trk *tracker.Tracker) { trk.BeginMode(1, tracker.ModeGameStart) },
			players: 0,
			wantErr: tracker.ErrInvalidInput,
		},
		{
			name:    "negative players",
			prepare: func(trk *tracker.Tracker) { trk.BeginMode(1, tracker.ModeGameStart) },
			players: -2,
			wantErr: tracker.ErrInvalidInput,
		},
		{
			name:    "no table selected",
			prepare: func(trk *tracker.Tracker) { trk.BeginMode(1, tracker.ModeGameStart) },
			players: 3,
			wantErr: tracker.ErrInvalidState,
		},
		{
			name:    "wrong mode",
			prepare: func(trk *tracker.Tracker) { trk.BeginMode(1, tracker.ModeGameEnd) },
			players: 3,
			wantErr: tracker.ErrInvalidState,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			trk := newTracker()
			tc.prepare(trk)
			if _, err := trk.RecordPlayerCount(1, tc.players, "@staff"); !errors.Is(err, tc.wantErr) {
				t.Errorf("RecordPlayerCount: err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestAdjustPlayers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		deltas        []int
		wantOccupancy int
		wantErr       error
	}{
		{name: "arrival", deltas: []int{2}, wantOccupancy: 6},
		{name: "departure", deltas: []int{-3}, wantOccupancy: 1},
		{name: "arrival then departure", deltas: []int{2, -4}, wantOccupancy: 2},
		{name: "zero delta rejected", deltas: []int{0}, wantOccupancy: 4, wantErr: tracker.ErrInvalidInput},
		{name: "departure to zero rejected", deltas: []int{-4}, wantOccupancy: 4, wantErr: tracker.ErrInvalidAdjustment},
		{name: "departure below zero rejected", deltas: []int{-9}, wantOccupancy: 4, wantErr: tracker.ErrInvalidAdjustment},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			trk := newTracker()
			startGame(t, trk, 1, "Table 5", 4)

			var lastErr error
			for _, delta := range tc.deltas {
				_, lastErr = trk.AdjustPlayers("Table 5", delta, "@staff")
			}
			if !errors.Is(lastErr, tc.wantErr) {
				t.Fatalf("AdjustPlayers: err = %v, want %v", lastErr, tc.wantErr)
			}

			game, _ := trk.Game("Table 5")
			if game.Occupancy() != tc.wantOccupancy {
				t.Errorf("Occupancy() = %d, want %d", game.Occupancy(), tc.wantOccupancy)
			}
		})
	}

	t.Run("no game on table", func(t *testing.T) {
		t.Parallel()

		trk := newTracker()
		if _, err := trk.AdjustPlayers("Table 9", 2, "@staff"); !errors.Is(err, tracker.ErrTableNotFound) {
			t.Errorf("AdjustPlayers: err = %v, want ErrTableNotFound", err)
		}
	})
}

func TestOrderFlow(t *testing.T) {
	t.Parallel()

	trk := newTracker()

	trk.BeginMode(1, tracker.ModeOrderStart)
	if err := trk.SelectTable(1, "Table 2"); err != nil {
		t.Fatalf("SelectTable: %v", err)
	}

	// Submitting with nothing picked is rejected.
	if _, _, _, err := trk.SubmitOrder(1, "@staff"); !errors.Is(err, tracker.ErrEmptyOrder) {
		t.Fatalf("SubmitOrder with no items: err = %v, want ErrEmptyOrder", err)
	}

	// Item selection needs a browsed category first.
	if err := trk.SelectItem(1, "Espresso"); !errors.Is(err, tracker.ErrInvalidState) {
		t.Fatalf("SelectItem before category: err = %v, want ErrInvalidState", err)
	}
	if err := trk.SelectCategory(1, "drinks"); err != nil {
		t.Fatalf("SelectCategory: %v", err)
	}

	// Items from another category are rejected.
	if err := trk.SelectItem(1, "Club Sandwich"); !errors.Is(err, tracker.ErrInvalidSelection) {
		t.Fatalf("SelectItem from wrong category: err = %v, want ErrInvalidSelection", err)
	}

	if err := trk.SelectItem(1, "Espresso"); err != nil {
		t.Fatalf("SelectItem: %v", err)
	}
	if err := trk.SelectItem(1, "Espresso"); err != nil {
		t.Fatalf("SelectItem duplicate: %v", err)
	}

	table, items, created, err := trk.SubmitOrder(1, "@staff")
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if table != "Table 2" || !created || len(items) != 2 {
		t.Fatalf("SubmitOrder = (%q, %v, %v), want (Table 2, 2 items, created)", table, items, created)
	}

	// A second submission extends the existing order.
	placeOrder(t, trk, 1, "Table 2", "Green Tea")
	order, ok := trk.Order("Table 2")
	if !ok {
		t.Fatal("expected an open order on Table 2")
	}
	if len(order.Items) != 3 {
		t.Fatalf("order has %d items, want 3: %v", len(order.Items), order.Items)
	}
}

func TestEditOrder(t *testing.T) {
	t.Parallel()

	t.Run("remove one occurrence", func(t *testing.T) {
		t.Parallel()

		trk := newTracker()
		placeOrder(t, trk, 1, "Table 4", "Espresso", "Espresso", "Green Tea")

		remaining, err := trk.EditOrder("Table 4", "Espresso", nil, "@staff")
		if err != nil {
			t.Fatalf("EditOrder: %v", err)
		}
		if len(remaining) != 2 {
			t.Fatalf("remaining = %v, want 2 items", remaining)
		}
	})

	t.Run("remove and add round trip", func(t *testing.T) {
		t.Parallel()

		trk := newTracker()
		placeOrder(t, trk, 1, "Table 4", "Espresso")

		remaining, err := trk.EditOrder("Table 4", "Espresso", []string{"Green Tea", "Green Tea"}, "@staff")
		if err != nil {
			t.Fatalf("EditOrder: %v", err)
		}
		if len(remaining) != 2 || remaining[0] != "Green Tea" {
			t.Fatalf("remaining = %v, want two Green Tea", remaining)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		t.Parallel()

		trk := newTracker()
		placeOrder(t, trk, 1, "Table 4", "Espresso")

		if _, err := trk.EditOrder("Table 4", "Latte", nil, "@staff"); !errors.Is(err, tracker.ErrItemNotFound) {
			t.Errorf("EditOrder: err = %v, want ErrItemNotFound", err)
		}
	})

	t.Run("emptied order is removed", func(t *testing.T) {
		t.Parallel()

		trk := newTracker()
		placeOrder(t, trk, 1, "Table 4", "Espresso")

		remaining, err := trk.EditOrder("Table 4", "Espresso", nil, "@staff")
		if err != nil {
			t.Fatalf("EditOrder: %v", err)
		}
		if remaining != nil {
			t.Errorf("remaining = %v, want nil", remaining)
		}
		if _, ok := trk.Order("Table 4"); ok {
			t.Error("emptied order still present")
		}
	})

	t.Run("no order on table", func(t *testing.T) {
		t.Parallel()

		trk := newTracker()
		if _, err := trk.EditOrder("Table 4", "Espresso", nil, "@staff"); !errors.Is(err, tracker.ErrTableNotFound) {
			t.Errorf("EditOrder: err = %v, want ErrTableNotFound", err)
		}
	})
}

func TestEditModeAdditionLeavesCategory(t *testing.T) {
	t.Parallel()

	trk := newTracker()
	placeOrder(t, trk, 1, "Table 4", "Espresso")

	trk.BeginMode(1, tracker.ModeOrderEdit)
	if err := trk.SelectTable(1, "Table 4"); err != nil {
		t.Fatalf("SelectTable: %v", err)
	}
	if err := trk.SelectCategory(1, "drinks"); err != nil {
		t.Fatalf("SelectCategory: %v", err)
	}
	if err := trk.SelectItem(1, "Green Tea"); err != nil {
		t.Fatalf("SelectItem: %v", err)
	}

	// The addition stepped back out of the category, so the next item tap is
	// a removal, not another addition.
	st, ok := trk.Dialogue(1)
	if !ok || st.CurrentCategory != "" {
		t.Errorf("CurrentCategory = %q after edit-mode addition, want empty", st.CurrentCategory)
	}
	if len(st.PendingItems) != 1 || st.PendingItems[0] != "Green Tea" {
		t.Errorf("PendingItems = %v, want [Green Tea]", st.PendingItems)
	}
	if err := trk.SelectItem(1, "Espresso"); !errors.Is(err, tracker.ErrInvalidState) {
		t.Errorf("SelectItem outside browsing: err = %v, want ErrInvalidState", err)
	}

	// The plain order flow keeps the category open for repeated additions.
	trk.BeginMode(2, tracker.ModeOrderStart)
	if err := trk.SelectTable(2, "Table 6"); err != nil {
		t.Fatalf("SelectTable: %v", err)
	}
	if err := trk.SelectCategory(2, "drinks"); err != nil {
		t.Fatalf("SelectCategory: %v", err)
	}
	if err := trk.SelectItem(2, "Espresso"); err != nil {
		t.Fatalf("SelectItem: %v", err)
	}
	if st, _ := trk.Dialogue(2); st.CurrentCategory != "drinks" {
		t.Errorf("CurrentCategory = %q after order-flow addition, want drinks", st.CurrentCategory)
	}
}

func TestMoveTable(t *testing.T) {
	t.Parallel()

	t.Run("same table rejected", func(t *testing.T) {
		t.Parallel()

		trk := newTracker()
		if err := trk.MoveTable("Table 1", "Table 1"); !errors.Is(err, tracker.ErrSameTable) {
			t.Errorf("MoveTable: err = %v, want ErrSameTable", err)
		}
	})

	t.Run("empty source rejected", func(t *testing.T) {
		t.Parallel()

		trk := newTracker()
		if err := trk.MoveTable("Table 1", "Table 2"); !errors.Is(err, tracker.ErrTableNotFound) {
			t.Errorf("MoveTable: err = %v, want ErrTableNotFound", err)
		}
	})

	t.Run("occupied target leaves both tables unchanged", func(t *testing.T) {
		t.Parallel()

		trk := newTracker()
		startGame(t, trk, 1, "Table 1", 2)
		startGame(t, trk, 1, "Table 2", 5)

		if err := trk.MoveTable("Table 1", "Table 2"); !errors.Is(err, tracker.ErrTargetOccupied) {
			t.Fatalf("MoveTable: err = %v, want ErrTargetOccupied", err)
		}

		src, _ := trk.Game("Table 1")
		dst, _ := trk.Game("Table 2")
		if src.Occupancy() != 2 || dst.Occupancy() != 5 {
			t.Errorf("occupancies = %d/%d after rejected move, want 2/5", src.Occupancy(), dst.Occupancy())
		}
	})

	t.Run("game and order transfer together", func(t *testing.T) {
		t.Parallel()

		trk := newTracker()
		startGame(t, trk, 1, "Table 1", 3)
		placeOrder(t, trk, 1, "Table 1", "Espresso")

		if err := trk.MoveTable("Table 1", "Table 7"); err != nil {
			t.Fatalf("MoveTable: %v", err)
		}

		if _, ok := trk.Game("Table 1"); ok {
			t.Error("game still on the source table")
		}
		if _, ok := trk.Order("Table 1"); ok {
			t.Error("order still on the source table")
		}
		game, ok := trk.Game("Table 7")
		if !ok || game.Occupancy() != 3 {
			t.Errorf("target game occupancy = %d, want 3", game.Occupancy())
		}
		order, ok := trk.Order("Table 7")
		if !ok || len(order.Items) != 1 {
			t.Errorf("target order = %v, want one item", order.Items)
		}
	})

	t.Run("orders merge on a target without a game", func(t *testing.T) {
		t.Parallel()

		trk := newTracker()
		placeOrder(t, trk, 1, "Table 1", "Espresso")
		placeOrder(t, trk, 1, "Table 2", "Green Tea")

		if err := trk.MoveTable("Table 1", "Table 2"); err != nil {
			t.Fatalf("MoveTable: %v", err)
		}

		order, ok := trk.Order("Table 2")
		if !ok || len(order.Items) != 2 {
			t.Errorf("merged order = %v, want 2 items", order.Items)
		}
	})
}

func TestSettle(t *testing.T) {
	t.Parallel()

	trk := newTracker()
	startGame(t, trk, 1, "PS", 2)
	placeOrder(t, trk, 1, "PS", "Espresso")
	if _, err := trk.EndGame("PS"); err != nil {
		t.Fatalf("EndGame: %v", err)
	}

	game, order := trk.Settle("PS")
	if game == nil || order == nil {
		t.Fatal("Settle returned nil records for an occupied table")
	}
	if !game.Ended() {
		t.Error("settled game has no end timestamp")
	}
	if len(order.Items) != 1 {
		t.Errorf("settled order = %v, want one item", order.Items)
	}

	if _, ok := trk.Game("PS"); ok {
		t.Error("game record survived settlement")
	}
	if _, ok := trk.Order("PS"); ok {
		t.Error("order record survived settlement")
	}

	// Settling again is a no-op.
	game, order = trk.Settle("PS")
	if game != nil || order != nil {
		t.Error("second Settle returned records")
	}
}

func TestSweepStale(t *testing.T) {
	t.Parallel()

	trk := newTracker()
	trk.BeginMode(1, tracker.ModeGameStart)
	trk.BeginMode(2, tracker.ModeOrderStart)

	if removed := trk.SweepStale(time.Hour); removed != 0 {
		t.Errorf("SweepStale(1h) removed %d fresh states", removed)
	}
	if removed := trk.SweepStale(-time.Second); removed != 2 {
		t.Errorf("SweepStale removed %d, want 2", removed)
	}
	if _, ok := trk.Dialogue(1); ok {
		t.Error("swept dialogue still present")
	}
}
