// Package billing_test tests the bill calculation.
package billing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dicelounge/loungebot/internal/billing"
	"github.com/dicelounge/loungebot/internal/tracker"
)

// stubPrices satisfies billing.PriceLookup with a fixed price list.
type stubPrices map[string]int64

func (p stubPrices) Price(name string) (int64, bool) {
	price, ok := p[name]
	return price, ok
}

var testParams = billing.Params{
	GracePeriodMinutes:  10,
	BlockMinutes:        30,
	HourlyRatePerPlayer: 75000,
}

// endedGame builds a game that started at 18:00 and ran for the given
// duration with a single initial group of players.
func endedGame(duration time.Duration, players int) tracker.Game {
	start := time.Date(2026, time.August, 30, 18, 0, 0, 0, time.UTC)
	return tracker.Game{
		StartedAt: start,
		EndedAt:   start.Add(duration),
		Groups:    []tracker.PlayerGroup{{Count: players, At: start}},
	}
}

func TestCalculateGameCost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		duration     time.Duration
		players      int
		wantMinutes  int
		wantBlocks   int
		wantGameCost int64
	}{
		{
			name:         "65 minutes for four players",
			duration:     65 * time.Minute,
			players:      4,
			wantMinutes:  65,
			wantBlocks:   2,
			wantGameCost: 300000,
		},
		{
			name:         "within grace still bills one block",
			duration:     5 * time.Minute,
			players:      2,
			wantMinutes:  5,
			wantBlocks:   1,
			wantGameCost: 75000,
		},
		{
			name:         "grace plus one block exactly",
			duration:     40 * time.Minute,
			players:      3,
			wantMinutes:  40,
			wantBlocks:   1,
			wantGameCost: 112500,
		},
		{
			name:         "one minute past the block boundary",
			duration:     41 * time.Minute,
			players:      3,
			wantMinutes:  41,
			wantBlocks:   2,
			wantGameCost: 225000,
		},
		{
			name:         "zero duration",
			duration:     0,
			players:      1,
			wantMinutes:  0,
			wantBlocks:   1,
			wantGameCost: 37500,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			bd, err := billing.Calculate(endedGame(tc.duration, tc.players), nil, stubPrices{}, testParams)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if bd.DurationMinutes != tc.wantMinutes {
				t.Errorf("DurationMinutes = %d, want %d", bd.DurationMinutes, tc.wantMinutes)
			}
			if bd.ChargeableBlocks != tc.wantBlocks {
				t.Errorf("ChargeableBlocks = %d, want %d", bd.ChargeableBlocks, tc.wantBlocks)
			}
			if bd.GameCost != tc.wantGameCost {
				t.Errorf("GameCost = %d, want %d", bd.GameCost, tc.wantGameCost)
			}
			if bd.TotalCost != tc.wantGameCost {
				t.Errorf("TotalCost = %d, want %d with no order", bd.TotalCost, tc.wantGameCost)
			}
		})
	}
}

func TestCalculateOddRateRoundsUp(t *testing.T) {
	t.Parallel()

	params := billing.Params{
		GracePeriodMinutes:  10,
		BlockMinutes:        30,
		HourlyRatePerPlayer: 75001,
	}

	// 1 block * 75001 * 1 player halves to 37500.5; whole units round up.
	bd, err := billing.Calculate(endedGame(20*time.Minute, 1), nil, stubPrices{}, params)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if bd.GameCost != 37501 {
		t.Errorf("GameCost = %d, want 37501", bd.GameCost)
	}

	// Even products are unaffected.
	bd, err = billing.Calculate(endedGame(20*time.Minute, 2), nil, stubPrices{}, params)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if bd.GameCost != 75001 {
		t.Errorf("GameCost = %d, want 75001", bd.GameCost)
	}
}

func TestCalculateUsesNetOccupancy(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.August, 30, 18, 0, 0, 0, time.UTC)
	game := tracker.Game{
		StartedAt: start,
		EndedAt:   start.Add(65 * time.Minute),
		Groups: []tracker.PlayerGroup{
			{Count: 4, At: start},
			{Count: 2, At: start.Add(10 * time.Minute)},
			{Count: -3, At: start.Add(30 * time.Minute)},
		},
	}

	bd, err := billing.Calculate(game, nil, stubPrices{}, testParams)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if bd.TotalPlayers != 3 {
		t.Errorf("TotalPlayers = %d, want 3", bd.TotalPlayers)
	}
	// 2 blocks * 75000/2 * 3 players.
	if bd.GameCost != 225000 {
		t.Errorf("GameCost = %d, want 225000", bd.GameCost)
	}
}

func TestCalculateWithOrder(t *testing.T) {
	t.Parallel()

	prices := stubPrices{"Club Sandwich": 50000, "Espresso": 30000}
	items := []string{"Club Sandwich", "Espresso", "Mystery Special"}

	bd, err := billing.Calculate(endedGame(65*time.Minute, 4), items, prices, testParams)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if bd.OrderCost != 80000 {
		t.Errorf("OrderCost = %d, want 80000", bd.OrderCost)
	}
	if bd.TotalCost != 380000 {
		t.Errorf("TotalCost = %d, want 380000", bd.TotalCost)
	}
	// Unknown items are billed zero but still itemised.
	if bd.Items["Mystery Special"] != 1 {
		t.Errorf("Items = %v, want Mystery Special listed once", bd.Items)
	}
}

func TestCalculateIsPure(t *testing.T) {
	t.Parallel()

	game := endedGame(65*time.Minute, 4)
	first, err := billing.Calculate(game, nil, stubPrices{}, testParams)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	second, err := billing.Calculate(game, nil, stubPrices{}, testParams)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if first.TotalCost != second.TotalCost || first.ChargeableBlocks != second.ChargeableBlocks {
		t.Errorf("repeated calculation differs: %+v vs %+v", first, second)
	}
}

func TestCalculateRejectsRunningGame(t *testing.T) {
	t.Parallel()

	game := tracker.Game{
		StartedAt: time.Now(),
		Groups:    []tracker.PlayerGroup{{Count: 2, At: time.Now()}},
	}
	if _, err := billing.Calculate(game, nil, stubPrices{}, testParams); !errors.Is(err, tracker.ErrGameNotEnded) {
		t.Errorf("Calculate on running game: err = %v, want ErrGameNotEnded", err)
	}
}

func TestCalculateCrossesMidnight(t *testing.T) {
	t.Parallel()

	// A wall-clock source where the end reads earlier than the start.
	game := tracker.Game{
		StartedAt: time.Date(2026, time.August, 30, 23, 30, 0, 0, time.UTC),
		EndedAt:   time.Date(2026, time.August, 30, 0, 5, 0, 0, time.UTC),
		Groups:    []tracker.PlayerGroup{{Count: 2, At: time.Date(2026, time.August, 30, 23, 30, 0, 0, time.UTC)}},
	}

	bd, err := billing.Calculate(game, nil, stubPrices{}, testParams)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if bd.DurationMinutes != 35 {
		t.Errorf("DurationMinutes = %d, want 35", bd.DurationMinutes)
	}
}

func TestOrderOnly(t *testing.T) {
	t.Parallel()

	prices := stubPrices{"Espresso": 30000}
	bd := billing.OrderOnly([]string{"Espresso", "Espresso", "Mystery Special"}, prices)

	if bd.OrderCost != 60000 || bd.TotalCost != 60000 {
		t.Errorf("costs = %d/%d, want 60000/60000", bd.OrderCost, bd.TotalCost)
	}
	if bd.GameCost != 0 || bd.ChargeableBlocks != 0 {
		t.Errorf("game fields = %d/%d, want zero", bd.GameCost, bd.ChargeableBlocks)
	}
	if bd.Items["Espresso"] != 2 {
		t.Errorf("Items = %v, want two Espresso", bd.Items)
	}
}
