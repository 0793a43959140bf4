// Package tasks implements the scheduled background tasks: dialogue-state
// expiry and database maintenance.
package tasks

import (
	"log/slog"

	"github.com/dicelounge/loungebot/internal/config"
	"github.com/dicelounge/loungebot/internal/database"
	"github.com/dicelounge/loungebot/internal/tracker"
)

// TaskDeps contains all dependencies required by scheduled tasks.
// Store is nil when the database is unavailable.
type TaskDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Tracker *tracker.Tracker
	Store   database.Store
}
