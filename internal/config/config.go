package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/julianstephens/habitlit/internal/constants"
)

// XP holds the reward tunables of the progression engine.
type XP struct {
	PerCompletion    int `mapstructure:"per_completion"`
	StreakBonus      int `mapstructure:"streak_bonus"`
	StreakBonusEvery int `mapstructure:"streak_bonus_every"`
	DailyCap         int `mapstructure:"daily_cap"`
}

type HTTP struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type Redis struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

type Log struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Config is the deployment configuration. Per-store settings such as the
// timezone live in the store's settings table instead.
type Config struct {
	User  string `mapstructure:"user"`
	XP    XP     `mapstructure:"xp"`
	HTTP  HTTP   `mapstructure:"http"`
	Redis Redis  `mapstructure:"redis"`
	Log   Log    `mapstructure:"log"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() Config {
	return Config{
		User: constants.DefaultUserID,
		XP: XP{
			PerCompletion:    constants.DefaultXPPerCompletion,
			StreakBonus:      constants.DefaultStreakBonusXP,
			StreakBonusEvery: constants.DefaultStreakBonusEvery,
			DailyCap:         constants.DefaultDailyXPCap,
		},
		HTTP: HTTP{
			Addr: constants.DefaultHTTPAddr,
		},
		Redis: Redis{
			TTL: constants.DefaultCacheTTL,
		},
	}
}

// Load reads config.yaml from dir (if present), a .env file in the working
// directory (if present) and HABITLIT_* environment variables, in increasing
// order of precedence.
func Load(dir string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	def := Default()
	v.SetDefault("user", def.User)
	v.SetDefault("xp.per_completion", def.XP.PerCompletion)
	v.SetDefault("xp.streak_bonus", def.XP.StreakBonus)
	v.SetDefault("xp.streak_bonus_every", def.XP.StreakBonusEvery)
	v.SetDefault("xp.daily_cap", def.XP.DailyCap)
	v.SetDefault("http.addr", def.HTTP.Addr)
	v.SetDefault("http.cors_origins", []string{})
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", def.Redis.TTL)
	v.SetDefault("log.level", "")
	v.SetDefault("log.json", false)

	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetConfigName(constants.ConfigFileName)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.User) == "" {
		return fmt.Errorf("user must not be empty")
	}
	if c.XP.PerCompletion < 0 || c.XP.StreakBonus < 0 {
		return fmt.Errorf("xp rewards must not be negative")
	}
	if c.XP.StreakBonusEvery < 1 {
		return fmt.Errorf("xp.streak_bonus_every must be at least 1")
	}
	if c.XP.DailyCap < 1 {
		return fmt.Errorf("xp.daily_cap must be at least 1")
	}
	return nil
}

// Dir returns the directory holding the database, config file and logs for
// the given database path. Connection strings, and the "postgresql" identifier
// the PostgreSQL store reports as its path, fall back to the user config dir.
func Dir(dbPath string) string {
	if dbPath == "postgresql" || strings.HasPrefix(dbPath, "postgres://") || strings.HasPrefix(dbPath, "postgresql://") || strings.Contains(dbPath, "host=") {
		base, err := os.UserConfigDir()
		if err != nil {
			base = os.TempDir()
		}
		return filepath.Join(base, constants.AppName)
	}
	return filepath.Dir(dbPath)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
