package model

import "context"

// StatsClient fetches the current issuance statistic. Implementations may
// fail with any error.
type StatsClient interface {
	GetStats(ctx context.Context) (Stats, error)
}

// StatsSource is the read side of the issuer's credential store.
type StatsSource interface {
	Stats(ctx context.Context) (Stats, error)
	IssuedByAttribute(ctx context.Context) ([]AttributeCount, error)
}

// IssuanceWriter records newly issued credentials.
type IssuanceWriter interface {
	RecordIssuance(ctx context.Context, attributeID string) (Credential, error)
}

// IssuerAPI is the contract served by the issuer's read/write surfaces
// (HTTP and socket RPC).
type IssuerAPI interface {
	StatsSource
	IssuanceWriter
}
