package config

import "time"

// Default values applied before the config file and environment are read.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultDBPath   = "lounge.db"
	DefaultMenuPath = "menu.json"

	DefaultTableCount = 16

	DefaultGracePeriodMinutes  = 10
	DefaultBlockMinutes        = 30
	DefaultHourlyRatePerPlayer = 75000

	DefaultDialogueTTL = 30 * time.Minute
)

// DefaultTableSpecials are the named tables that exist alongside the
// numbered ones.
var DefaultTableSpecials = []string{"Free Table", "PS", "Wheel"}

// DefaultMessages are the stock reply texts.
var DefaultMessages = MessagesConfig{
	ChooseAction:   "Choose an option:",
	NotAuthorized:  "⛔ You are not authorized to use this bot.",
	ChooseTable:    "Which table?",
	AskPlayerCount: "How many players?",
	ChooseCategory: "Choose a category:",
	ChooseItem:     "Choose an item:",
	GeneralError:   "Something went wrong. Please try again.",
	OrdersDisabled: "Order taking is unavailable right now.",
}

// DefaultSchedulerTasks enables the stock background tasks.
var DefaultSchedulerTasks = map[string]TaskConfig{
	"dialogue_sweep":  {Enabled: true, Schedule: "*/5 * * * *"},
	"sql_maintenance": {Enabled: true, Schedule: "0 4 * * *"},
}
