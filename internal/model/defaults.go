package model

import "time"

// Shared defaults used by both the issuer service and the app client.
const (
	DefaultUpdateInterval = 30 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultHistorySize    = 30
	DefaultLogLevel       = "info"
)
