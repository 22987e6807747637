package detector

import (
	"time"

	"solana-token-detector/internal/domain"
)

// EventType distinguishes emitted detection events.
type EventType string

const (
	// EventSaved fires when a LOW-risk token was appended to the store.
	EventSaved EventType = "saved"
	// EventWarned fires for MEDIUM-risk tokens.
	EventWarned EventType = "warned"
	// EventDanger fires for HIGH-risk tokens.
	EventDanger EventType = "danger"
	// EventDecision is a debug event emitted for every classification.
	EventDecision EventType = "decision"
)

// Event is one detection outcome delivered to the sink.
type Event struct {
	Type           EventType           `json:"type"`
	Mint           string              `json:"mint"`
	Name           string              `json:"name,omitempty"`
	Symbol         string              `json:"symbol,omitempty"`
	Creator        string              `json:"creator,omitempty"`
	DetectedAt     time.Time           `json:"detectedAt"`
	Score          int                 `json:"score"`
	Threshold      int                 `json:"threshold,omitempty"`
	Tier           domain.Tier         `json:"tier"`
	Recommendation string              `json:"recommendation"`
	Reasons        []domain.RiskFactor `json:"reasons,omitempty"`
}

// EventSink receives detection events. Publish is called from the loop
// goroutine and should return quickly.
type EventSink interface {
	Publish(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

// Publish calls f(e).
func (f SinkFunc) Publish(e Event) { f(e) }
