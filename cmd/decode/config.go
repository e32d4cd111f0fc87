package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/decodeproject/decode/internal/appstate"
	"github.com/decodeproject/decode/internal/logging"
	"github.com/decodeproject/decode/internal/model"
	"github.com/decodeproject/decode/internal/socketrpc"
	"github.com/spf13/viper"
)

const (
	sourceSocket = "socket"
	sourceHTTP   = "http"

	defaultIssuerURL = "http://127.0.0.1:3000"
)

// cliConfig holds only client-relevant configuration.
type cliConfig struct {
	UpdateInterval time.Duration       `mapstructure:"update-interval"`
	StatsSource    string              `mapstructure:"stats-source"`
	SocketPath     string              `mapstructure:"socket-path"`
	IssuerURL      string              `mapstructure:"issuer-url"`
	RequestTimeout time.Duration       `mapstructure:"request-timeout"`
	LogLevel       string              `mapstructure:"log-level"`
	LogPath        string              `mapstructure:"log-path"`
	Tooltips       map[string][]string `mapstructure:"tooltips"`
	TooltipText    map[string]string   `mapstructure:"tooltip-text"`
	HistorySize    int                 `mapstructure:"history-size"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("DECODE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("update-interval", model.DefaultUpdateInterval)
	v.SetDefault("stats-source", sourceSocket)
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("issuer-url", defaultIssuerURL)
	v.SetDefault("request-timeout", model.DefaultRequestTimeout)
	v.SetDefault("log-level", model.DefaultLogLevel)
	v.SetDefault("log-path", logging.DefaultPath("decode"))
	v.SetDefault("history-size", model.DefaultHistorySize)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "decode", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	cfg.StatsSource = strings.ToLower(strings.TrimSpace(cfg.StatsSource))
	if cfg.StatsSource != sourceSocket && cfg.StatsSource != sourceHTTP {
		return cfg, fmt.Errorf("invalid stats-source %q (want %s or %s)", cfg.StatsSource, sourceSocket, sourceHTTP)
	}
	if cfg.UpdateInterval <= 0 {
		return cfg, fmt.Errorf("invalid update-interval: %s", cfg.UpdateInterval)
	}
	if cfg.HistorySize <= 0 {
		return cfg, fmt.Errorf("invalid history-size: %d", cfg.HistorySize)
	}
	if strings.HasPrefix(cfg.SocketPath, "~/") {
		cfg.SocketPath = filepath.Join(home, cfg.SocketPath[2:])
	}
	if strings.HasPrefix(cfg.LogPath, "~/") {
		cfg.LogPath = filepath.Join(home, cfg.LogPath[2:])
	}

	return cfg, nil
}

// sequencer builds the tooltip walkthrough, falling back to the built-in
// sequences when none are configured. Config keys arrive lowercased, so
// built-in screen names are matched case-insensitively.
func (c cliConfig) sequencer() (*appstate.Sequencer, error) {
	if len(c.Tooltips) == 0 {
		return appstate.NewSequencer(appstate.DefaultSequences())
	}
	known := map[string]string{
		strings.ToLower(appstate.ScreenDummy):     appstate.ScreenDummy,
		strings.ToLower(appstate.ScreenDummyNext): appstate.ScreenDummyNext,
	}
	m := make(map[string][]string, len(c.Tooltips))
	for screen, ids := range c.Tooltips {
		if canonical, ok := known[strings.ToLower(screen)]; ok {
			screen = canonical
		}
		m[screen] = ids
	}
	return appstate.NewSequencer(appstate.SequencesFromMap(m))
}
