// Package config loads the MCP server configuration from flags, environment
// variables (prefix FGH_) and an optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ModeStdio = "stdio"
	ModeHTTP  = "http"

	EnvPrefix = "FGH"
)

// Config is the resolved server configuration.
type Config struct {
	Mode            string        `mapstructure:"mode"`
	ListenAddress   string        `mapstructure:"listen-address"`
	MetricsAddress  string        `mapstructure:"metrics-address"`
	LogLevel        string        `mapstructure:"log-level"`
	LogFormat       string        `mapstructure:"log-format"`
	MaxDimension    int           `mapstructure:"max-dimension"`
	MaxDetOrder     int           `mapstructure:"max-det-order"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Mode:            ModeStdio,
		ListenAddress:   ":8080",
		MetricsAddress:  "",
		LogLevel:        "info",
		LogFormat:       "text",
		MaxDimension:    64,
		MaxDetOrder:     8,
		ShutdownTimeout: 5 * time.Second,
	}
}

// BindFlags registers every option on fs with its default value.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "Path to a YAML configuration file")
	fs.String("mode", d.Mode, "Transport: stdio or http")
	fs.String("listen-address", d.ListenAddress, "Address of the streamable HTTP endpoint (http mode)")
	fs.String("metrics-address", d.MetricsAddress, "Address of the Prometheus /metrics endpoint; empty disables it")
	fs.String("log-level", d.LogLevel, "Log level: trace, debug, info, warn, error")
	fs.String("log-format", d.LogFormat, "Log format: text or json")
	fs.Int("max-dimension", d.MaxDimension, "Largest number of variables accepted by a tool call")
	fs.Int("max-det-order", d.MaxDetOrder, "Largest matrix order accepted by fgh_det")
	fs.Duration("shutdown-timeout", d.ShutdownTimeout, "Grace period for HTTP shutdown")
}

// NewViper returns a viper instance with defaults, FGH_ environment
// overrides and fs bound. fs may be nil.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("mode", d.Mode)
	v.SetDefault("listen-address", d.ListenAddress)
	v.SetDefault("metrics-address", d.MetricsAddress)
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("max-dimension", d.MaxDimension)
	v.SetDefault("max-det-order", d.MaxDetOrder)
	v.SetDefault("shutdown-timeout", d.ShutdownTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, errors.Wrap(err, "binding flags")
		}
	}
	return v, nil
}

// Load reads the optional config file named by the "config" key and
// unmarshals the layered settings into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading config file %s", path)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding configuration")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown modes, formats and levels and non-positive limits.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeStdio, ModeHTTP:
	default:
		return fmt.Errorf("unsupported mode: %s", c.Mode)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.LogFormat)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.WithMessage(err, "log-level")
	}
	if c.MaxDimension <= 0 {
		return fmt.Errorf("max-dimension must be positive, got %d", c.MaxDimension)
	}
	if c.MaxDetOrder <= 0 || c.MaxDetOrder > 10 {
		return fmt.Errorf("max-det-order must be in [1, 10], got %d", c.MaxDetOrder)
	}
	if c.Mode == ModeHTTP && c.ListenAddress == "" {
		return fmt.Errorf("listen-address is required in http mode")
	}
	return nil
}

// NewLogger builds a logrus logger for c. Logs go to stderr so that stdio
// mode keeps stdout for the protocol.
func NewLogger(c Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.WithMessage(err, "log-level")
	}
	log := logrus.New()
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}
