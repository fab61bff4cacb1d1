package domain

import "time"

// Ticket is a user-submitted support message. Tickets are never deleted; an
// owner reply flips Replied.
type Ticket struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	ChatID    int64     `json:"chat_id"`
	Message   string    `json:"message"`
	Replied   bool      `json:"replied"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSetting is the per-chat assistant toggle, upserted by /oracle.
type ChatSetting struct {
	ChatID           int64     `json:"chat_id"`
	AssistantEnabled bool      `json:"assistant_enabled"`
	EnabledBy        int64     `json:"enabled_by"`
	UpdatedAt        time.Time `json:"updated_at"`
}
