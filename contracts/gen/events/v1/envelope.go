package v1

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const CurrentSchemaVersion = 1

var ErrInvalidEnvelope = errors.New("invalid event envelope")

// Envelope is the canonical, versioned event envelope for SoundTik events.
// Fields are append-only; consumers must ignore what they do not know.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Validate checks the fields every consumer relies on.
func (e Envelope) Validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errors.Join(ErrInvalidEnvelope, errors.New("event_id is required"))
	case strings.TrimSpace(e.EventType) == "":
		return errors.Join(ErrInvalidEnvelope, errors.New("event_type is required"))
	case e.SchemaVersion < 1 || e.SchemaVersion > CurrentSchemaVersion:
		return errors.Join(ErrInvalidEnvelope, errors.New("unsupported schema_version"))
	case len(e.Data) > 0 && !json.Valid(e.Data):
		return errors.Join(ErrInvalidEnvelope, errors.New("data is not valid json"))
	}
	return nil
}
