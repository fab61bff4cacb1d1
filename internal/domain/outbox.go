package domain

import "time"

type OutboxKind string

const (
	OutboxKindEmail    OutboxKind = "email"
	OutboxKindTelegram OutboxKind = "telegram"
)

// OutboxEntry is one durably recorded notification attempt. Entries are written
// before the first delivery attempt and retried by the sweep job until sent or
// the attempt budget runs out. Delivery is at-least-once, not exactly-once.
type OutboxEntry struct {
	ID        int64      `json:"id"`
	Kind      OutboxKind `json:"kind"`
	Recipient string     `json:"recipient"` // email address or Telegram chat id
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Sent      bool       `json:"sent"`
	Attempts  int        `json:"attempts"`
	LastError string     `json:"last_error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// OutboxMaxAttempts bounds the sweep retries per entry.
const OutboxMaxAttempts = 5
