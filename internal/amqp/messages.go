package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names a committed ledger movement.
type EventType string

const (
	EventExpenseRecorded EventType = "expense.recorded"
	EventExpenseReversed EventType = "expense.reversed"
)

// LedgerEvent is published after a ledger transaction commits. It carries
// enough to locate the touched wallet; consumers re-read the store for
// anything else.
type LedgerEvent struct {
	EventID      string    `json:"event_id"`
	Type         EventType `json:"type"`
	ExpenseID    int64     `json:"expense_id"`
	WalletID     int64     `json:"wallet_id"`
	AmountCents  int64     `json:"amount_cents"`
	BalanceCents int64     `json:"balance_cents"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewLedgerEvent(eventType EventType, expenseID, walletID, amountCents, balanceCents int64) *LedgerEvent {
	return &LedgerEvent{
		EventID:      uuid.NewString(),
		Type:         eventType,
		ExpenseID:    expenseID,
		WalletID:     walletID,
		AmountCents:  amountCents,
		BalanceCents: balanceCents,
		Timestamp:    time.Now().UTC(),
	}
}

// Validate rejects events no consumer can act on.
func (m *LedgerEvent) Validate() error {
	if _, err := uuid.Parse(m.EventID); err != nil {
		return fmt.Errorf("invalid event id %q: %w", m.EventID, err)
	}
	switch m.Type {
	case EventExpenseRecorded, EventExpenseReversed:
	default:
		return fmt.Errorf("unknown event type %q", m.Type)
	}
	if m.WalletID <= 0 || m.ExpenseID <= 0 {
		return fmt.Errorf("event %s has no wallet or expense", m.EventID)
	}
	return nil
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and validates a message body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
