// Package billing derives a cost breakdown from an ended game session and
// the table's open order. Pure computation, no side effects.
package billing

import (
	"time"

	"github.com/dicelounge/loungebot/internal/tracker"
)

// PriceLookup resolves an item name to its unit price. Satisfied by
// *menu.Catalog. Items the catalog does not know are billed as zero.
type PriceLookup interface {
	Price(itemName string) (int64, bool)
}

// Params are the pricing constants. Rates are whole currency units. A block
// is billed at half the hourly rate; when that half-unit is fractional (odd
// rate, odd block-player product) the game cost rounds up to the next whole
// unit.
type Params struct {
	GracePeriodMinutes  int
	BlockMinutes        int
	HourlyRatePerPlayer int64
}

// Breakdown is the result of a billing calculation.
type Breakdown struct {
	GameCost         int64
	OrderCost        int64
	TotalCost        int64
	TotalPlayers     int
	DurationMinutes  int
	ChargeableBlocks int
	Items            map[string]int // item name -> units ordered
}

// OrderOnly computes the bill for a table that has an open order but no
// game session.
func OrderOnly(orderItems []string, prices PriceLookup) Breakdown {
	var orderCost int64
	items := make(map[string]int, len(orderItems))
	for _, name := range orderItems {
		items[name]++
		if price, ok := prices.Price(name); ok {
			orderCost += price
		}
	}
	return Breakdown{
		OrderCost: orderCost,
		TotalCost: orderCost,
		Items:     items,
	}
}

// Calculate computes the bill for an ended game plus the order items on its
// table. orderItems may be nil when the table has no open order.
//
// Chargeable time is the duration past the grace period, rounded up to
// half-hour blocks with a minimum of one block once a game has started.
// Game cost is blocks * half the hourly rate * net players.
func Calculate(game tracker.Game, orderItems []string, prices PriceLookup, p Params) (Breakdown, error) {
	if !game.Ended() {
		return Breakdown{}, tracker.ErrGameNotEnded
	}

	duration := game.EndedAt.Sub(game.StartedAt)
	if duration < 0 {
		// End clock behind start clock means the session crossed midnight
		// on a wall-clock source.
		duration += 24 * time.Hour
	}
	durationMinutes := int(duration.Minutes())

	effectiveMinutes := durationMinutes - p.GracePeriodMinutes
	if effectiveMinutes < 0 {
		effectiveMinutes = 0
	}

	blocks := (effectiveMinutes + p.BlockMinutes - 1) / p.BlockMinutes
	if blocks < 1 {
		blocks = 1
	}

	players := game.TotalPlayers()
	gameCost := (int64(blocks)*p.HourlyRatePerPlayer*int64(players) + 1) / 2

	var orderCost int64
	items := make(map[string]int, len(orderItems))
	for _, name := range orderItems {
		items[name]++
		if price, ok := prices.Price(name); ok {
			orderCost += price
		}
		// Unknown items contribute zero but still show in the summary.
	}

	return Breakdown{
		GameCost:         gameCost,
		OrderCost:        orderCost,
		TotalCost:        gameCost + orderCost,
		TotalPlayers:     players,
		DurationMinutes:  durationMinutes,
		ChargeableBlocks: blocks,
		Items:            items,
	}, nil
}
