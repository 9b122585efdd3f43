package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/hiit-timer/internal/workout"
)

// EnvPrefix is prepended to every environment override, e.g. HIIT_TIMER_WORK
const EnvPrefix = "HIIT"

const (
	appName         = "hiit-timer"
	defaultTickRate = 60
	maxTickRate     = 1000
	defaultListen   = "127.0.0.1:8089"
)

// Config is the fully resolved runtime configuration
type Config struct {
	Workout   workout.Config
	Name      string
	TickRate  int
	DataDir   string
	AssetsDir string
	Listen    string // Empty disables the HTTP API
	Lang      string // Empty or "auto" detects from the system locale
	NoUI      bool
	Log       LogConfig

	// File is the config file that was read, empty when none was found
	File string
}

type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// HistoryPath is where the workout history database lives
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// flagKeys binds command line flags to config keys
var flagKeys = map[string]string{
	"work":        "timer.work",
	"rest":        "timer.rest",
	"rounds":      "timer.rounds",
	"round-reset": "timer.round_reset",
	"exercises":   "timer.exercises",
	"get-ready":   "timer.get_ready",
	"name":        "timer.name",
	"tick-rate":   "tick_rate",
	"data-dir":    "data_dir",
	"assets-dir":  "assets_dir",
	"listen":      "listen",
	"lang":        "lang",
	"log-file":    "log.file",
	"no-ui":       "no_ui",
}

// NewFlagSet declares every command line flag
func NewFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.Int("work", workout.DefaultWorkSeconds, "work interval in seconds")
	fs.Int("rest", workout.DefaultRestSeconds, "rest between exercises in seconds")
	fs.Int("rounds", workout.DefaultRounds, "number of rounds")
	fs.Int("round-reset", workout.DefaultRoundResetSeconds, "rest between rounds in seconds")
	fs.Int("exercises", workout.DefaultExercises, "exercises per round")
	fs.Int("get-ready", workout.DefaultGetReadySeconds, "countdown before each round in seconds")
	fs.String("name", "", "name recorded with finished workouts")
	fs.Int("tick-rate", defaultTickRate, "clock updates per second while running")
	fs.String("data-dir", "", "directory for the history database and log file")
	fs.String("assets-dir", "assets", "directory holding the alert sounds")
	fs.String("listen", defaultListen, "HTTP API address, empty to disable")
	fs.String("lang", "auto", "display language (en, pt, es, ru or auto)")
	fs.String("log-file", "", "log file path, defaults to <data-dir>/hiit-timer.log")
	fs.Bool("no-ui", false, "run headless with only the HTTP API")
	return fs
}

// Load resolves configuration from, in order of precedence: command line
// flags, HIIT_* environment variables, a YAML config file and defaults.
func Load(args []string) (*Config, error) {
	fs := NewFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}

	file, err := readConfigFile(v, fs)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Workout: workout.Config{
			WorkSeconds:       v.GetInt("timer.work"),
			RestSeconds:       v.GetInt("timer.rest"),
			Rounds:            v.GetInt("timer.rounds"),
			RoundResetSeconds: v.GetInt("timer.round_reset"),
			Exercises:         v.GetInt("timer.exercises"),
			GetReadySeconds:   v.GetInt("timer.get_ready"),
		}.Clamp(),
		Name:      v.GetString("timer.name"),
		TickRate:  v.GetInt("tick_rate"),
		DataDir:   v.GetString("data_dir"),
		AssetsDir: v.GetString("assets_dir"),
		Listen:    v.GetString("listen"),
		Lang:      v.GetString("lang"),
		NoUI:      v.GetBool("no_ui"),
		Log: LogConfig{
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
		},
		File: file,
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.DataDir, appName+".log")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := workout.DefaultConfig()
	v.SetDefault("timer.work", defaults.WorkSeconds)
	v.SetDefault("timer.rest", defaults.RestSeconds)
	v.SetDefault("timer.rounds", defaults.Rounds)
	v.SetDefault("timer.round_reset", defaults.RoundResetSeconds)
	v.SetDefault("timer.exercises", defaults.Exercises)
	v.SetDefault("timer.get_ready", defaults.GetReadySeconds)
	v.SetDefault("timer.name", "")
	v.SetDefault("tick_rate", defaultTickRate)
	v.SetDefault("data_dir", "")
	v.SetDefault("assets_dir", "assets")
	v.SetDefault("listen", defaultListen)
	v.SetDefault("lang", "auto")
	v.SetDefault("no_ui", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
}

// readConfigFile reads an explicit --config (or HIIT_CONFIG) path, which must
// exist, or else looks for hiit-timer.yaml in the working and user config
// directories.
func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) (string, error) {
	path, _ := fs.GetString("config")
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("reading config file %s: %w", path, err)
		}
		return v.ConfigFileUsed(), nil
	}

	v.SetConfigName(appName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, appName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return "."
}

func (c *Config) validate() error {
	if c.TickRate < 1 || c.TickRate > maxTickRate {
		return fmt.Errorf("tick_rate must be between 1 and %d, got %d", maxTickRate, c.TickRate)
	}
	if c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log.max_size_mb must be positive")
	}
	if c.NoUI && c.Listen == "" {
		return fmt.Errorf("no_ui needs a listen address, otherwise nothing can drive the timer")
	}
	return nil
}
