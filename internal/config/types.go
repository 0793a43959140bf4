// Package config manages application configuration from config.yaml,
// BOT_* environment variables, and default values.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config defines the application configuration parameters for all components
// of the lounge bot: logging, Telegram access, menu catalog, table layout,
// billing, persistence, and scheduled tasks.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Menu      MenuConfig      `mapstructure:"menu"`
	Tables    TablesConfig    `mapstructure:"tables"`
	Billing   BillingConfig   `mapstructure:"billing"`
	Dialogue  DialogueConfig  `mapstructure:"dialogue"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds bot credentials and the staff channel used for
// broadcast notifications. AllowedUserIDs is the staff allow-list; every
// update from anyone else is rejected before any state is touched.
type TelegramConfig struct {
	Token          string  `mapstructure:"token"            validate:"required"`
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids" validate:"required,min=1"`
	ChannelID      int64   `mapstructure:"channel_id"       validate:"required"`
}

// DatabaseConfig holds the SQLite audit-log location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// MenuConfig points at the JSON menu catalog.
type MenuConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TablesConfig defines the fixed table layout: numbered tables 1..Count plus
// named special tables (console stations, free seating).
type TablesConfig struct {
	Count    int      `mapstructure:"count"    validate:"min=1,max=99"`
	Specials []string `mapstructure:"specials"`
}

// BillingConfig holds the game-time pricing parameters.
type BillingConfig struct {
	GracePeriodMinutes  int   `mapstructure:"grace_period_minutes"   validate:"min=0"`
	BlockMinutes        int   `mapstructure:"block_minutes"          validate:"min=1"`
	HourlyRatePerPlayer int64 `mapstructure:"hourly_rate_per_player" validate:"min=0"`
}

// DialogueConfig controls expiry of abandoned dialogue states.
type DialogueConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"min=1m"`
}

// SchedulerConfig holds the background task schedules keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named scheduled task with a cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds user-facing reply texts so operators can reword them
// without a rebuild.
type MessagesConfig struct {
	ChooseAction   string `mapstructure:"choose_action"`
	NotAuthorized  string `mapstructure:"not_authorized"`
	ChooseTable    string `mapstructure:"choose_table"`
	AskPlayerCount string `mapstructure:"ask_player_count"`
	ChooseCategory string `mapstructure:"choose_category"`
	ChooseItem     string `mapstructure:"choose_item"`
	GeneralError   string `mapstructure:"general_error"`
	OrdersDisabled string `mapstructure:"orders_disabled"`
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
