package backup

import (
	"context"
	"time"
)

// Config controls periodic snapshots of the credential ledger.
type Config struct {
	Enabled  bool
	Interval time.Duration
	LocalDir string
	KeepLast int
}

// Snapshotter is the minimal ledger snapshot contract used by Manager.
type Snapshotter interface {
	Path() string
	SnapshotTo(ctx context.Context, dstPath string) error
}
