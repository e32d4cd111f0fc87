package model

import "time"

// Stats is the issuance statistic served by the credential issuer.
// Total is a display-ready decimal count.
type Stats struct {
	Total string `json:"total"`
}

// Credential is one issued credential.
type Credential struct {
	ID          string    `json:"id"`
	AttributeID string    `json:"attribute_id"`
	IssuedAt    time.Time `json:"issued_at"`
}

// AttributeCount is the number of credentials issued for one attribute.
type AttributeCount struct {
	AttributeID string `json:"attribute_id"`
	Count       int64  `json:"count"`
}
