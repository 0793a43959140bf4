// Package notify renders the staff-channel message templates and delivers
// them through the Telegram broadcast sink.
package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dicelounge/loungebot/internal/billing"
)

const clockLayout = "15:04"

// FormatGameStarted renders the game-start announcement.
func FormatGameStarted(table string, players int, at time.Time, actor string) string {
	return fmt.Sprintf("🎲 Game started\n🪑 Table: %s\n👥 Players: %d\n⏰ Time: %s\n👤 %s",
		table, players, at.Format(clockLayout), actor)
}

// FormatGameEnded renders the game-end announcement. The game stays on the
// table awaiting checkout.
func FormatGameEnded(table string, occupancy int, started, ended time.Time) string {
	return fmt.Sprintf("🏁 Game ended\n🪑 Table: %s\n👥 Players: %d\n⏰ %s – %s\n💰 Awaiting checkout",
		table, occupancy, started.Format(clockLayout), ended.Format(clockLayout))
}

// FormatPlayersAdjusted renders an arrival or departure.
func FormatPlayersAdjusted(table string, delta, occupancy int, actor string) string {
	verb := "joined"
	n := delta
	if delta < 0 {
		verb = "left"
		n = -delta
	}
	return fmt.Sprintf("👥 %d player(s) %s\n🪑 Table: %s\n👥 Now seated: %d\n👤 %s",
		n, verb, table, occupancy, actor)
}

// FormatOrderSubmitted renders a new or extended order.
func FormatOrderSubmitted(table string, items []string, created bool, actor string) string {
	header := "📦 New order"
	if !created {
		header = "➕ Order extended"
	}
	return fmt.Sprintf("%s\n🪑 Table: %s\n🍽 %s\n👤 %s",
		header, table, strings.Join(items, ", "), actor)
}

// FormatOrderEdited renders the state of an order after an edit. An empty
// remaining list means the order was removed entirely.
func FormatOrderEdited(table string, remaining []string, actor string) string {
	if len(remaining) == 0 {
		return fmt.Sprintf("✏️ Order cleared\n🪑 Table: %s\n👤 %s", table, actor)
	}
	return fmt.Sprintf("✏️ Order edited\n🪑 Table: %s\n🍽 %s\n👤 %s",
		table, strings.Join(remaining, ", "), actor)
}

// FormatTableMoved renders a table transfer.
func FormatTableMoved(source, target, actor string) string {
	return fmt.Sprintf("🔀 Table moved\n🪑 %s → %s\n👤 %s", source, target, actor)
}

// FormatSettlement renders the final bill posted at checkout.
func FormatSettlement(table string, bd billing.Breakdown, actor string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 Settlement\n🪑 Table: %s\n", table)
	fmt.Fprintf(&b, "⏱ Duration: %d min (%d block(s))\n", bd.DurationMinutes, bd.ChargeableBlocks)
	fmt.Fprintf(&b, "👥 Players: %d\n", bd.TotalPlayers)
	fmt.Fprintf(&b, "🎲 Game: %d\n", bd.GameCost)

	if len(bd.Items) > 0 {
		b.WriteString("🍽 Order:\n")
		for _, line := range itemLines(bd.Items) {
			b.WriteString("  " + line + "\n")
		}
		fmt.Fprintf(&b, "☕ Order total: %d\n", bd.OrderCost)
	}

	fmt.Fprintf(&b, "Σ Total: %d\n👤 %s", bd.TotalCost, actor)
	return b.String()
}

// itemLines renders a name→count summary in stable order.
func itemLines(items map[string]int) []string {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s ×%d", name, items[name]))
	}
	return lines
}
