package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/decodeproject/decode/internal/backup"
	"github.com/decodeproject/decode/internal/duckdb"
	"github.com/decodeproject/decode/internal/httpserver"
	"github.com/decodeproject/decode/internal/logging"
	"github.com/decodeproject/decode/internal/socketrpc"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// listenInfo reports the addresses the issuer actually bound.
type listenInfo struct {
	APIAddr    string
	SocketPath string
}

// serveAPI blocks serving the HTTP API. Tests replace it to simulate a failing listener.
var serveAPI = (*httpserver.Server).Serve

// runServer runs the issuer until ctx is canceled or SIGINT/SIGTERM arrives.
// ready, when non-nil, is called once every listener is up.
func runServer(ctx context.Context, cfg appConfig, ready func(listenInfo)) error {
	logger, syncLogger, err := logging.New(logging.Config{
		Name:  "decode-issuer",
		Path:  cfg.LogPath,
		Level: cfg.LogLevel,
	})
	if err != nil {
		return err
	}
	defer syncLogger()

	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	if cfg.Seed > 0 {
		if err := store.Seed(ctx, cfg.Seed, cfg.SeedAttributes); err != nil {
			return fmt.Errorf("failed to seed credentials: %w", err)
		}
		logger.Info("seeded demo credentials", zap.Int("count", cfg.Seed), zap.Strings("attributes", cfg.SeedAttributes))
	}

	backupManager, err := backup.NewManager(store, backup.Config{
		Enabled:  cfg.BackupEnabled,
		Interval: cfg.BackupInterval,
		LocalDir: cfg.BackupDir,
		KeepLast: cfg.BackupKeep,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize backups: %w", err)
	}
	if backupManager != nil {
		defer backupManager.Stop()
	}

	info := listenInfo{SocketPath: cfg.SocketPath}

	var apiServer *httpserver.Server
	if cfg.APIEnabled {
		apiServer = httpserver.NewServer(cfg.APIAddr, store, logger)
		if err := apiServer.Listen(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
		info.APIAddr = apiServer.Addr()
	}

	sockServer := socketrpc.NewServer(cfg.SocketPath, store, logger)
	if err := sockServer.Start(); err != nil {
		logger.Warn("failed to start socket server", zap.String("path", cfg.SocketPath), zap.Error(err))
		info.SocketPath = ""
	} else {
		defer sockServer.Stop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		logger.Info("shutdown requested")
		cancel()

		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		cleanupSocket(cfg.SocketPath)
		os.Exit(1)
	}()

	printStartupBanner(os.Stdout, cfg, info)
	logger.Info("issuer started",
		zap.String("api", info.APIAddr),
		zap.String("socket", info.SocketPath),
		zap.String("db", cfg.DBPath),
	)
	if ready != nil {
		ready(info)
	}

	g, gctx := errgroup.WithContext(ctx)

	// A failing API listener cancels gctx and brings the issuer down.
	if apiServer != nil {
		g.Go(func() error { return serveAPI(apiServer) })
	}

	g.Go(func() error {
		<-gctx.Done()
		if apiServer != nil {
			if err := apiServer.Stop(); err != nil {
				logger.Warn("API shutdown incomplete", zap.Error(err))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("issuer stopped with error", zap.Error(err))
		return err
	}
	logger.Info("issuer stopped")
	return nil
}

func cleanupSocket(path string) {
	if path != "" {
		os.Remove(path)
	}
}

func printStartupBanner(w io.Writer, cfg appConfig, info listenInfo) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔╦╗╔═╗╔═╗╔═╗╔╦╗╔═╗
     ║║║╣ ║  ║ ║ ║║║╣
    ═╩╝╚═╝╚═╝╚═╝═╩╝╚═╝`)

	var lines []string
	lines = append(lines, "", logo, "    "+dim.Render("v"+version), "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator, "")

	lines = append(lines, bold.Render("    Gateway"), "")
	if info.APIAddr != "" {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(info.APIAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", dot, dim.Render("disabled")))
	}
	if info.SocketPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Unix Socket    %s", check, cyan.Render(shortenPath(info.SocketPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Unix Socket    %s", dot, dim.Render("unavailable")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Storage"), "")
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "in-memory"
	}
	lines = append(lines, fmt.Sprintf("    %s  Credentials    %s", check, dim.Render(shortenPath(dbPath))))
	if cfg.BackupEnabled {
		lines = append(lines, fmt.Sprintf("    %s  Snapshots      %s", check, dim.Render(shortenPath(cfg.BackupDir))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Snapshots      %s", dot, dim.Render("disabled")))
	}
	if cfg.Seed > 0 {
		lines = append(lines, fmt.Sprintf("    %s  Demo Seed      %s", check, dim.Render(fmt.Sprintf("%d credentials", cfg.Seed))))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"), "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}
	lines = append(lines, fmt.Sprintf("    %s  Log File       %s", check, dim.Render(shortenPath(cfg.LogPath))))

	lines = append(lines, "", separator, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"), "")

	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
