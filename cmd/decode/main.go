package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/decodeproject/decode/internal/appstate"
	"github.com/decodeproject/decode/internal/issuerclient"
	"github.com/decodeproject/decode/internal/logging"
	"github.com/decodeproject/decode/internal/model"
	"github.com/decodeproject/decode/internal/socketrpc"
	"github.com/decodeproject/decode/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var socketPath string
	var issuerURL string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/decode/config.yml)")
	flag.StringVar(&socketPath, "socket", "", "override socket path of the issuer (implies stats-source=socket)")
	flag.StringVar(&issuerURL, "url", "", "override issuer HTTP URL (implies stats-source=http)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("decode - Issuance Stats Client\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if socketPath != "" {
		cfg.SocketPath = socketPath
		cfg.StatsSource = sourceSocket
	}
	if issuerURL != "" {
		cfg.IssuerURL = issuerURL
		cfg.StatsSource = sourceHTTP
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// statsClient is the issuer connection the TUI polls.
type statsClient interface {
	model.StatsClient
	io.Closer
}

type httpStatsClient struct{ *issuerclient.Client }

func (httpStatsClient) Close() error { return nil }

func dialStatsClient(cfg cliConfig) (statsClient, error) {
	switch cfg.StatsSource {
	case sourceHTTP:
		c, err := issuerclient.New(cfg.IssuerURL, issuerclient.WithTimeout(cfg.RequestTimeout))
		if err != nil {
			return nil, err
		}
		return httpStatsClient{c}, nil
	default:
		c, err := socketrpc.Dial(cfg.SocketPath)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to issuer at %s: %w\nIs the issuer running? Start it with: decode-issuer", cfg.SocketPath, err)
		}
		return c, nil
	}
}

func runTUI(cfg cliConfig) error {
	logger, syncLogger, err := logging.New(logging.Config{
		Name:  "decode",
		Path:  cfg.LogPath,
		Level: cfg.LogLevel,
	})
	if err != nil {
		return err
	}
	defer syncLogger()

	seq, err := cfg.sequencer()
	if err != nil {
		return fmt.Errorf("invalid tooltips config: %w", err)
	}

	client, err := dialStatsClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	logger.Info("starting",
		zap.String("version", version),
		zap.String("source", cfg.StatsSource),
		zap.Duration("update_interval", cfg.UpdateInterval),
		zap.Strings("screens", seq.Screens()),
	)

	store := appstate.NewStore(appstate.NewReducer(seq), appstate.InitialState(seq))
	app := tui.NewApp(tui.Options{
		Store:          store,
		Client:         client,
		UpdateInterval: cfg.UpdateInterval,
		RequestTimeout: cfg.RequestTimeout,
		TooltipText:    cfg.TooltipText,
		HistorySize:    cfg.HistorySize,
		Logger:         logger,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
