package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/ini.v1"

	"github.com/matst80/logrelay/internal/mirror"
	"github.com/matst80/logrelay/internal/relay"
)

// sourceHost is fixed: the relay only follows loggers on this machine.
const sourceHost = "localhost"

// Config holds runtime configuration from flags, an optional INI file and env.
type Config struct {
	ConfigFile  string        `ini:"-"`
	Port        int           `ini:"port"`
	RetryDelay  time.Duration `ini:"retry_delay"`
	ReadTimeout time.Duration `ini:"read_timeout"`
	DialTimeout time.Duration `ini:"dial_timeout"`
	MetricsAddr string        `ini:"metrics"`
	LogLevel    string        `ini:"log_level"`
	Debug       bool          `ini:"debug"`

	RedisAddr     string `ini:"redis_addr"`
	RedisPassword string `ini:"redis_password"`
	RedisDB       int    `ini:"redis_db"`
	RedisChannel  string `ini:"redis_channel"`
}

// Addr is the log source to dial.
func (c Config) Addr() string { return net.JoinHostPort(sourceHost, strconv.Itoa(c.Port)) }

func defaultConfig() Config {
	return Config{
		Port:         relay.DefaultPort,
		RetryDelay:   relay.DefaultRetryDelay,
		DialTimeout:  relay.DefaultDialTimeout,
		LogLevel:     "info",
		RedisChannel: mirror.DefaultChannel,
	}
}

func newFlagSet(cfg *Config, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("logrelay", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: logrelay [flags] [port]\n\nFollows the line-oriented log stream on %s:<port> (default %d) and prints it to stdout.\n\n", sourceHost, relay.DefaultPort)
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.ConfigFile, "config", "", "INI file with the same keys as the flags (explicit flags win)")
	fs.DurationVar(&cfg.RetryDelay, "retry-delay", cfg.RetryDelay, "pause between a disconnect and the next connection attempt")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "reconnect if no line arrives within this long (0 = wait forever)")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "time limit for a single connection attempt")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "metrics, status and health listen address (empty = disabled)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "diagnostic log level on stderr: debug, info, warn, error")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logs (same as -log-level debug)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "mirror every line to this Redis server via PUBLISH (empty = disabled)")
	fs.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password (env LOGRELAY_REDIS_PASSWORD overrides)")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database number")
	fs.StringVar(&cfg.RedisChannel, "redis-channel", cfg.RedisChannel, "Redis pub/sub channel for mirrored lines")
	return fs
}

// parseConfig resolves defaults, then the INI file, then explicit flags, then
// the environment. The single optional positional argument is the port.
func parseConfig(args []string, output io.Writer) (Config, error) {
	cfg := defaultConfig()
	fs := newFlagSet(&cfg, output)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.ConfigFile != "" {
		file := cfg.ConfigFile
		if err := loadIni(&cfg, file); err != nil {
			return cfg, err
		}
		// Parse again so flags given on the command line beat the file.
		fs = newFlagSet(&cfg, output)
		if err := fs.Parse(args); err != nil {
			return cfg, err
		}
		cfg.ConfigFile = file
	}
	overrideFromEnv(&cfg.RedisPassword, "LOGRELAY_REDIS_PASSWORD")

	switch fs.NArg() {
	case 0:
	case 1:
		port, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return cfg, fmt.Errorf("invalid port %q: %w", fs.Arg(0), err)
		}
		cfg.Port = port
	default:
		return cfg, fmt.Errorf("expected at most one argument (port), got %d", fs.NArg())
	}
	return cfg, cfg.validate()
}

func loadIni(cfg *Config, fileName string) error {
	iniFile, err := ini.Load(fileName)
	if err != nil {
		return fmt.Errorf("load config %s: %w", fileName, err)
	}
	if err := iniFile.Section("").MapTo(cfg); err != nil {
		return fmt.Errorf("map config %s: %w", fileName, err)
	}
	return nil
}

func overrideFromEnv(target *string, envName string) {
	if v := os.Getenv(envName); v != "" {
		*target = v
	}
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", c.Port)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry-delay must not be negative")
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("read-timeout must not be negative")
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial-timeout must be positive")
	}
	return nil
}
