package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The YAML file at path
// 3. BOT_* environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Missing config file is fine, defaults plus environment still apply.
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values for optional configuration parameters.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("menu.path", DefaultMenuPath)

	v.SetDefault("tables.count", DefaultTableCount)
	v.SetDefault("tables.specials", DefaultTableSpecials)

	v.SetDefault("billing.grace_period_minutes", DefaultGracePeriodMinutes)
	v.SetDefault("billing.block_minutes", DefaultBlockMinutes)
	v.SetDefault("billing.hourly_rate_per_player", DefaultHourlyRatePerPlayer)

	v.SetDefault("dialogue.ttl", DefaultDialogueTTL)

	v.SetDefault("scheduler.tasks", DefaultSchedulerTasks)

	v.SetDefault("messages.choose_action", DefaultMessages.ChooseAction)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.choose_table", DefaultMessages.ChooseTable)
	v.SetDefault("messages.ask_player_count", DefaultMessages.AskPlayerCount)
	v.SetDefault("messages.choose_category", DefaultMessages.ChooseCategory)
	v.SetDefault("messages.choose_item", DefaultMessages.ChooseItem)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.orders_disabled", DefaultMessages.OrdersDisabled)
}
