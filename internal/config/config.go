package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	LogLevel   string        `mapstructure:"log_level"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`
	Secret     string        `mapstructure:"secret"`

	StrictRoom   bool    `mapstructure:"strict_room"`
	RateLimit    float64 `mapstructure:"rate_limit"`
	RateBurst    int     `mapstructure:"rate_burst"`
	Backpressure string  `mapstructure:"backpressure"`

	ICEServers []ICEServer `mapstructure:"ice_servers"`

	v    *viper.Viper
	file string
}

// Load resolves configuration from, in increasing priority: defaults, the
// yaml file, RELAY_* environment variables and command-line flags.
// The file is --config if given, else config/config.$CONFIG_ENV.yaml.
func Load(args []string) (*Config, error) {
	fset := pflag.NewFlagSet("relay", pflag.ContinueOnError)
	configFile := fset.String("config", "", "config file path")
	fset.Int("port", 8080, "listen port")
	fset.String("mode", "release", "gin mode: debug, release or test")
	fset.String("log-level", "info", "log level")
	fset.Bool("strict-room", true, "reject joins whose room differs from the URL room")
	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("secret", "relay-dev-secret")
	v.SetDefault("strict_room", true)
	v.SetDefault("rate_limit", 50)
	v.SetDefault("rate_burst", 100)
	v.SetDefault("backpressure", "drop")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"port":        "port",
		"mode":        "mode",
		"log_level":   "log-level",
		"strict_room": "strict-room",
	} {
		if err := v.BindPFlag(key, fset.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	fileName := *configFile
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	loaded := true
	if err := v.ReadInConfig(); err != nil {
		if *configFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		loaded = false
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.v = v
	if loaded {
		cfg.file = fileName
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Bool("strict_room", cfg.StrictRoom).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.Port)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	if c.ReadLimit <= 0 {
		return fmt.Errorf("%w: read_limit must be positive", ErrInvalid)
	}
	if c.PingPeriod <= 0 || c.PongWait <= c.PingPeriod {
		return fmt.Errorf("%w: ping_period (%s) must be positive and below pong_wait (%s)", ErrInvalid, c.PingPeriod, c.PongWait)
	}
	if c.WriteWait <= 0 {
		return fmt.Errorf("%w: write_wait must be positive", ErrInvalid)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("%w: send_buffer must be positive", ErrInvalid)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("%w: rate_limit and rate_burst must not be negative", ErrInvalid)
	}
	switch c.Backpressure {
	case "drop", "kick":
	default:
		return fmt.Errorf("%w: backpressure %q (want drop or kick)", ErrInvalid, c.Backpressure)
	}
	for i, s := range c.ICEServers {
		if err := s.validate(); err != nil {
			return fmt.Errorf("%w: ice_servers[%d]: %v", ErrInvalid, i, err)
		}
	}
	return nil
}

// Watch calls onChange with the re-read config every time the loaded file
// changes. Invalid edits are logged and skipped. No-op without a file.
func (c *Config) Watch(onChange func(*Config)) {
	if c.v == nil || c.file == "" {
		return
	}
	v, file := c.v, c.file
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("module", "config").Str("file", e.Name).Str("op", e.Op.String()).Msg("config changed")
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			log.Error().Err(err).Str("module", "config").Msg("reload parse")
			return
		}
		if err := next.Validate(); err != nil {
			log.Error().Err(err).Str("module", "config").Msg("reload rejected")
			return
		}
		next.v, next.file = v, file
		onChange(&next)
	})
	v.WatchConfig()
}

// File returns the config file in use, empty when running on defaults.
func (c *Config) File() string { return c.file }
