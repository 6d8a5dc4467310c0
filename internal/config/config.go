package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "development"
	EnvProd  = "production"

	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Env             string
	Token           string
	GuildID         string
	StreamChannelID string
	GameChannelID   string
	SuperUserIDs    []string
	SquadMemberIDs  []string
	DatabaseURL     string
	StorageDriver   string
	Timezone        string
	Locale          string
	TickInterval    time.Duration
	ConfirmTimeout  time.Duration
	CatchUp         bool
	MetricsAddr     string
	RedisAddr       string
}

// Load reads the optional env file, then the process environment, and
// validates the result. Variables already set in the environment win over
// the file.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	cfg := &Config{
		Env:             getenv("ENV", EnvLocal),
		Token:           os.Getenv("TOKEN"),
		GuildID:         os.Getenv("GUILD_ID"),
		StreamChannelID: os.Getenv("STREAM_CHANNEL_ID"),
		GameChannelID:   os.Getenv("GAME_CHANNEL_ID"),
		SuperUserIDs:    splitList(os.Getenv("SUPER_USER_IDS")),
		SquadMemberIDs:  splitList(os.Getenv("SQUAD_MEMBER_IDS")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		StorageDriver:   getenv("STORAGE_DRIVER", StoragePostgres),
		Timezone:        getenv("TIMEZONE", "Europe/Berlin"),
		Locale:          getenv("LOCALE", "de"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
	}

	var err error
	if cfg.TickInterval, err = durationEnv("TICK_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ConfirmTimeout, err = durationEnv("CONFIRM_TIMEOUT", 180*time.Second); err != nil {
		return nil, err
	}
	if cfg.CatchUp, err = boolEnv("SCHEDULER_CATCH_UP", true); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: TOKEN is required")
	}

	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("config: ENV must be one of %s, %s, %s (got %q)", EnvLocal, EnvDev, EnvProd, c.Env)
	}

	for name, id := range map[string]string{
		"GUILD_ID":          c.GuildID,
		"STREAM_CHANNEL_ID": c.StreamChannelID,
		"GAME_CHANNEL_ID":   c.GameChannelID,
	} {
		if id != "" && !isSnowflake(id) {
			return fmt.Errorf("config: %s must be a Discord id (digits only)", name)
		}
	}
	for _, id := range c.SuperUserIDs {
		if !isSnowflake(id) {
			return fmt.Errorf("config: SUPER_USER_IDS contains %q, which is not a Discord user id", id)
		}
	}
	for _, id := range c.SquadMemberIDs {
		if !isSnowflake(id) {
			return fmt.Errorf("config: SQUAD_MEMBER_IDS contains %q, which is not a Discord user id", id)
		}
	}

	if c.TickInterval <= 0 {
		return fmt.Errorf("config: TICK_INTERVAL must be positive")
	}
	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("config: CONFIRM_TIMEOUT must be positive")
	}

	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			// Handy default for local development.
			c.DatabaseURL = "postgres://localhost:5432/moevius?sslmode=disable"
		}
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
		}
	default:
		return fmt.Errorf("config: STORAGE_DRIVER must be %s or %s (got %q)", StoragePostgres, StorageMemory, c.StorageDriver)
	}

	return nil
}

// IsSuperUser reports whether userID may create and announce events.
func (c *Config) IsSuperUser(userID string) bool {
	for _, id := range c.SuperUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ChannelIDs maps output channel keys to Discord channel ids. Unset
// channels are left out.
func (c *Config) ChannelIDs() map[string]string {
	out := make(map[string]string, 2)
	if c.StreamChannelID != "" {
		out["stream"] = c.StreamChannelID
	}
	if c.GameChannelID != "" {
		out["game"] = c.GameChannelID
	}
	return out
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s (%q): %w", key, v, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s (%q): %w", key, v, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
