// Package handlers contains the Telegram message handlers that drive the
// menu flows, along with their registration logic and middleware.
package handlers

import (
	"log/slog"

	"github.com/dicelounge/loungebot/internal/config"
	"github.com/dicelounge/loungebot/internal/database"
	"github.com/dicelounge/loungebot/internal/menu"
	"github.com/dicelounge/loungebot/internal/notify"
	"github.com/dicelounge/loungebot/internal/tables"
	"github.com/dicelounge/loungebot/internal/tracker"
)

// HandlerDeps provides dependencies for Telegram handlers.
//
// Catalog is nil when the menu file failed to load; order flows are then
// disabled while game tracking keeps working. Store is nil when the database
// is unavailable; the audit log is then skipped.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Tracker  *tracker.Tracker
	Catalog  *menu.Catalog
	Tables   *tables.Registry
	Store    database.Store
	Notifier *notify.Notifier
}
