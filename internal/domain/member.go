package domain

import "time"

// Member is per-(chat, user) moderation state. Rows are created lazily on the
// first warning or join-event observation.
type Member struct {
	ChatID    int64      `json:"chat_id"`
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username"`
	FirstName string     `json:"first_name"`
	JoinedAt  time.Time  `json:"joined_at"`
	WarnCount int        `json:"warn_count"`
	Banned    bool       `json:"banned"`
	BanReason string     `json:"ban_reason,omitempty"`
	BannedAt  *time.Time `json:"banned_at,omitempty"`
}

// Warning is one append-only entry in the warning log. Entries are never
// mutated; deletion happens only through the clear-warnings operation.
type Warning struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id"`
	IssuedBy  int64     `json:"issued_by"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// WarnThreshold is the warning count at which the auto-ban fires.
const WarnThreshold = 5
