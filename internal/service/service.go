package service

import (
	"context"
	"time"

	"shadowlurkers-backend/internal/domain"
)

// NotifyReport tells the caller which best-effort side effects of a lifecycle
// transition were durably recorded. A false field is reported as degraded
// success, never rolled back into the state change.
type NotifyReport struct {
	EmailOK   bool
	DMOK      bool
	DMSkipped bool // applicant has no bound chat session yet
}

// WarnResult carries the authoritative post-increment count and whether the
// auto-ban threshold fired.
type WarnResult struct {
	Count      int
	AutoBanned bool
}

type InitiateService interface {
	Submit(ctx context.Context, in *domain.Initiate) (*NotifyReport, error)
	Review(ctx context.Context, id int64, decision domain.InitiateStatus, actor domain.Actor) (*domain.Initiate, *NotifyReport, error)
	Get(ctx context.Context, id int64) (*domain.Initiate, error)
	ListAll(ctx context.Context) ([]domain.Initiate, error)
	ListPending(ctx context.Context) ([]domain.Initiate, error)
	ListApproved(ctx context.Context, actor domain.Actor) ([]domain.Initiate, error)
	Erase(ctx context.Context, id int64, actor domain.Actor) error
	Stats(ctx context.Context, actor domain.Actor) (*domain.Stats, error)
	BindChat(ctx context.Context, handle string, chatID int64) error
	StatusFor(ctx context.Context, handle, name string) (*domain.Initiate, error)
	ApprovedChatIDs(ctx context.Context, actor domain.Actor) ([]int64, error)
}

type ModerationService interface {
	Warn(ctx context.Context, chatID int64, target, issuer domain.Actor, reason string) (*WarnResult, error)
	Warnings(ctx context.Context, chatID, userID int64) ([]domain.Warning, error)
	ClearWarnings(ctx context.Context, chatID int64, target, issuer domain.Actor) error
	Mute(ctx context.Context, chatID int64, target, issuer domain.Actor, minutes int) (time.Time, error)
	Unmute(ctx context.Context, chatID int64, target, issuer domain.Actor) error
	Kick(ctx context.Context, chatID int64, target, issuer domain.Actor) error
	Ban(ctx context.Context, chatID int64, target, issuer domain.Actor, reason string) error
	Unban(ctx context.Context, chatID int64, ref string, issuer domain.Actor) (int64, error)
	Promote(ctx context.Context, chatID int64, target, issuer domain.Actor) error
	Demote(ctx context.Context, chatID int64, target, issuer domain.Actor) error
	MemberInfo(ctx context.Context, chatID, userID int64) (*domain.Member, error)
	TrackMember(ctx context.Context, chatID int64, user domain.Actor) error
	Resolve(ctx context.Context, chatID int64, handle string) (domain.Actor, error)
	IsElder(ctx context.Context, actor domain.Actor) bool
}

type SupportService interface {
	Create(ctx context.Context, t *domain.Ticket) error
	ListOpen(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error)
	Reply(ctx context.Context, id int64, text string, actor domain.Actor) (*domain.Ticket, error)
}

type NotifierService interface {
	// QueueEmail and QueueDM durably record the notification, then attempt one
	// immediate delivery. The returned error covers recording only; delivery
	// failures are left to the sweep.
	QueueEmail(ctx context.Context, to, subject, body string) error
	QueueDM(ctx context.Context, chatID int64, text string) error
	Sweep(ctx context.Context) (sent, failed int, err error)
	Broadcast(ctx context.Context, chatIDs []int64, text string) (delivered, failed int)
}

type AssistantService interface {
	SetEnabled(ctx context.Context, chatID int64, enabled bool, actor domain.Actor) error
	Enabled(ctx context.Context, chatID int64) (bool, error)
	Ask(ctx context.Context, prompt string) (string, error)
	Forge(ctx context.Context, prompt string) (string, error)
}

// EmailSender is the outbound email transport behind the outbox.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// DMSender delivers a Telegram direct message. The bot client satisfies this
// through a thin adapter so services never import the Telegram library.
type DMSender interface {
	SendDM(ctx context.Context, chatID int64, text string) error
}

// ChatModerator wraps the chat platform's moderation primitives.
type ChatModerator interface {
	BanMember(ctx context.Context, chatID, userID int64) error
	UnbanMember(ctx context.Context, chatID, userID int64) error
	RestrictMember(ctx context.Context, chatID, userID int64, canSend bool, until time.Time) error
	PromoteMember(ctx context.Context, chatID, userID int64, promote bool) error
}

// EmailValidator answers whether an address looks deliverable. Implementations
// must default to valid on any upstream ambiguity.
type EmailValidator interface {
	Validate(ctx context.Context, email string) (valid bool, reason string)
}
