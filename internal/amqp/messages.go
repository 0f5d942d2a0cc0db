package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"quickspese/internal/core"
)

// CommandEvent announces that a state-changing command was applied.
// Consumers get enough data to react without reading the state store.
type CommandEvent struct {
	Kind      core.CommandKind `json:"kind"`
	Input     string           `json:"input,omitempty"`
	Message   string           `json:"message"`
	Expense   *core.Expense    `json:"expense,omitempty"`
	Budget    *core.BudgetRule `json:"budget,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewCommandEvent stamps an event with the current time.
func NewCommandEvent(kind core.CommandKind, input, message string) *CommandEvent {
	return &CommandEvent{
		Kind:      kind,
		Input:     input,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CommandEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CommandEventFromJSON decodes an event and rejects ones without a kind.
func CommandEventFromJSON(data []byte) (*CommandEvent, error) {
	var msg CommandEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		return nil, fmt.Errorf("command event without kind")
	}
	return &msg, nil
}
