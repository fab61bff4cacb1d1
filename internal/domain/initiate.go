package domain

import "time"

type InitiateStatus string

const (
	InitiateStatusPending  InitiateStatus = "pending"
	InitiateStatusApproved InitiateStatus = "approved"
	InitiateStatusRejected InitiateStatus = "rejected"
)

// Initiate is one initiation request submitted through the Shadow Portal.
// OAT is the unique human-readable tag assigned at submission time; the
// uniqueness constraint lives in the store.
type Initiate struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Age        int            `json:"age"`
	Gender     string         `json:"gender"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email"`
	Telegram   string         `json:"telegram"`
	Moniker    string         `json:"moniker"`
	Role       string         `json:"role"`
	Skills     string         `json:"skills"`
	OAT        string         `json:"oat"`
	Status     InitiateStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	ReviewedAt *time.Time     `json:"reviewed_at,omitempty"`
	ReviewedBy *string        `json:"reviewed_by,omitempty"`

	// ChatID is bound lazily once the applicant's Telegram handle is seen in a
	// live chat session; it targets later DMs and broadcasts.
	ChatID *int64 `json:"chat_id,omitempty"`
}

// Resolved reports whether the record has left the pending state.
func (i *Initiate) Resolved() bool {
	return i.Status != InitiateStatusPending
}

// Stats is the aggregate counts behind /stats.
type Stats struct {
	Pending     int `json:"pending"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
	Warnings    int `json:"warnings"`
	OpenTickets int `json:"open_tickets"`
}
