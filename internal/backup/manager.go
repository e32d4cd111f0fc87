// Package backup takes periodic file snapshots of the issuer's DuckDB ledger.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultInterval = 6 * time.Hour
	defaultKeepLast = 24

	filePrefix = "credentials-"
	fileSuffix = ".duckdb"
	// Fixed-width stamp so lexical order is chronological.
	stampLayout = "20060102-150405.000000000"
)

// Manager runs periodic local snapshots and prunes old copies.
type Manager struct {
	store  Snapshotter
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager validates cfg, takes a startup snapshot and starts the periodic
// loop. It returns nil when backups are disabled.
func NewManager(store Snapshotter, cfg Config, logger *zap.Logger) (*Manager, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if store == nil {
		return nil, fmt.Errorf("backup: nil snapshotter")
	}
	if strings.TrimSpace(store.Path()) == "" {
		return nil, fmt.Errorf("backup: db-path is empty (in-memory store)")
	}
	if strings.TrimSpace(cfg.LocalDir) == "" {
		return nil, fmt.Errorf("backup: backup-dir is required when backups are enabled")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.KeepLast <= 0 {
		cfg.KeepLast = defaultKeepLast
	}
	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: create backup-dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := newManager(store, cfg, logger.Named("backup"))

	if err := m.RunOnce(m.ctx); err != nil {
		m.logger.Warn("startup snapshot failed", zap.Error(err))
	}

	m.wg.Add(1)
	go m.loop()
	return m, nil
}

func newManager(store Snapshotter, cfg Config, logger *zap.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (m *Manager) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.RunOnce(m.ctx); err != nil && m.ctx.Err() == nil {
				m.logger.Warn("periodic snapshot failed", zap.Error(err))
			}
		case <-m.ctx.Done():
			return
		}
	}
}

// RunOnce creates one local snapshot and prunes old copies.
func (m *Manager) RunOnce(ctx context.Context) error {
	name := filePrefix + m.now().UTC().Format(stampLayout) + fileSuffix
	localPath := filepath.Join(m.cfg.LocalDir, name)

	if err := m.store.SnapshotTo(ctx, localPath); err != nil {
		return fmt.Errorf("backup: snapshot: %w", err)
	}
	m.logger.Info("created snapshot", zap.String("path", localPath))

	if err := pruneLocalBackups(m.cfg.LocalDir, m.cfg.KeepLast); err != nil {
		return fmt.Errorf("backup: prune: %w", err)
	}
	return nil
}

// Stop cancels any in-flight snapshot and terminates the periodic loop.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
}

func pruneLocalBackups(localDir string, keepLast int) error {
	if keepLast <= 0 {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(localDir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return err
	}
	if len(matches) <= keepLast {
		return nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	for _, oldPath := range matches[keepLast:] {
		if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
