package types

import "time"

// CurrentSchemaVersion is the schema version written by this code. Older
// documents are migrated on load.
const CurrentSchemaVersion = 2

// Document is the JSON envelope both collections are persisted in. Item
// order in storage carries no meaning; display order comes from each
// record's Order field.
type Document[T any] struct {
	SchemaVersion int       `json:"schemaVersion"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Items         []T       `json:"items"`
}

// NewDocument returns an empty envelope at the current schema version.
func NewDocument[T any]() *Document[T] {
	return &Document[T]{
		SchemaVersion: CurrentSchemaVersion,
		Items:         []T{},
	}
}

// Status controls whether a record is published.
type Status string

// Record statuses.
const (
	StatusActive Status = "active"
	StatusHidden Status = "hidden"
)

// ParseStatus validates s as a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusHidden:
		return Status(s), nil
	}
	return "", invalidStatus(s)
}

// NormalizeStatus maps anything other than "hidden" to active, the way the
// admin forms submit it.
func NormalizeStatus(s Status) Status {
	if s == StatusHidden {
		return StatusHidden
	}
	return StatusActive
}
