package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/decodeproject/decode/internal/logging"
	"github.com/decodeproject/decode/internal/model"
	"github.com/decodeproject/decode/internal/socketrpc"

	"github.com/spf13/viper"
)

const (
	defaultBindHost     = "127.0.0.1"
	defaultAPIPort      = 3000
	defaultQueryTimeout = 30 * time.Second
	defaultBackupEvery  = 6 * time.Hour
	defaultBackupKeep   = 24
)

var defaultSeedAttributes = []string{"email", "age-over-18", "nationality"}

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the entrypoint.
type appConfig struct {
	DBPath         string        `mapstructure:"db-path"`
	APIEnabled     bool          `mapstructure:"api-enabled"`
	APIPort        int           `mapstructure:"api-port"`
	APIAddr        string        `mapstructure:"api-addr"`
	SocketPath     string        `mapstructure:"socket-path"`
	QueryTimeout   time.Duration `mapstructure:"query-timeout"`
	LogLevel       string        `mapstructure:"log-level"`
	LogPath        string        `mapstructure:"log-path"`
	Seed           int           `mapstructure:"seed"`
	SeedAttributes []string      `mapstructure:"seed-attributes"`
	BackupEnabled  bool          `mapstructure:"backup-enabled"`
	BackupInterval time.Duration `mapstructure:"backup-interval"`
	BackupDir      string        `mapstructure:"backup-dir"`
	BackupKeep     int           `mapstructure:"backup-keep"`
	ConfigPath     string        `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("DECODE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("db-path", filepath.Join(home, ".local", "share", "decode", "issuer.duckdb"))
	v.SetDefault("api-enabled", true)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("log-level", model.DefaultLogLevel)
	v.SetDefault("log-path", logging.DefaultPath("decode-issuer"))
	v.SetDefault("seed", 0)
	v.SetDefault("seed-attributes", defaultSeedAttributes)
	v.SetDefault("backup-enabled", false)
	v.SetDefault("backup-interval", defaultBackupEvery)
	v.SetDefault("backup-dir", filepath.Join(home, ".local", "share", "decode", "backups"))
	v.SetDefault("backup-keep", defaultBackupKeep)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "decode", "issuer.yml"))
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
	cfg.ConfigPath = v.ConfigFileUsed()
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	if cfg.Seed < 0 {
		return cfg, fmt.Errorf("invalid seed: %d", cfg.Seed)
	}

	cfg.DBPath = expandHome(home, cfg.DBPath)
	cfg.SocketPath = expandHome(home, cfg.SocketPath)
	cfg.LogPath = expandHome(home, cfg.LogPath)
	cfg.BackupDir = expandHome(home, cfg.BackupDir)

	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}

func expandHome(home, path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
