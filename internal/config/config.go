// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN,required,notEmpty"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`
	StoragePath   string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	OwnerID  string   `env:"OWNER_ID"`
	OwnerIDs []string `env:"OWNER_IDS" envSeparator:","`

	SlashSync        bool     `env:"SLASH_SYNC" envDefault:"true"`
	SlashGuilds      []string `env:"SLASH_GUILDS" envSeparator:","`
	SlashDevGuild    string   `env:"SLASH_DEV_GUILD"`
	SlashClearOnExit bool     `env:"SLASH_CLEAR_ON_EXIT" envDefault:"false"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.CommandPrefix == "" {
		return nil, errors.New("COMMAND_PREFIX must not be empty")
	}
	return &cfg, nil
}

// Owners returns the configured bot owners. OWNER_ID alone wins when set;
// otherwise OWNER_IDS, sorted and deduplicated.
func (c *Config) Owners() []string {
	if c.OwnerID != "" {
		return []string{c.OwnerID}
	}
	var out []string
	for _, id := range c.OwnerIDs {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
