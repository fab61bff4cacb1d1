package domain

import "time"

const (
	RankElder      = "elder"
	RankVeilKeeper = "veil_keeper"
)

// Elder maps a Telegram user to an elevated rank. One row per user; overwritten
// on re-promotion, removed on demotion. Independent of the initiates table.
type Elder struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Rank      string    `json:"rank"`
	GrantedBy int64     `json:"granted_by"`
	AddedAt   time.Time `json:"added_at"`
}

// Actor identifies the user behind a bot command or callback, with the chat
// facts the authorization predicates need.
type Actor struct {
	ID        int64
	Username  string
	FirstName string
	Bot       bool
	ChatAdmin bool
}

func (a Actor) DisplayName() string {
	if a.Username != "" {
		return "@" + a.Username
	}
	return a.FirstName
}
