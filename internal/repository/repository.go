package repository

import (
	"context"
	"time"

	"shadowlurkers-backend/internal/domain"
)

type InitiateRepository interface {
	Create(ctx context.Context, in *domain.Initiate) error
	GetByID(ctx context.Context, id int64) (*domain.Initiate, error)
	GetByTelegram(ctx context.Context, handle, name string) (*domain.Initiate, error)
	List(ctx context.Context) ([]domain.Initiate, error)
	ListByStatus(ctx context.Context, status domain.InitiateStatus, oldestFirst bool) ([]domain.Initiate, error)
	SetReview(ctx context.Context, id int64, status domain.InitiateStatus, reviewedBy string) error
	BindChat(ctx context.Context, handle string, chatID int64) error
	ApprovedChatIDs(ctx context.Context) ([]int64, error)
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (pending, approved, rejected int, err error)
}

type ElderRepository interface {
	Upsert(ctx context.Context, e *domain.Elder) error
	Get(ctx context.Context, userID int64) (*domain.Elder, error)
	Delete(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]domain.Elder, error)
}

type MemberRepository interface {
	Ensure(ctx context.Context, chatID, userID int64, username, firstName string) error
	Get(ctx context.Context, chatID, userID int64) (*domain.Member, error)
	GetByUsername(ctx context.Context, chatID int64, username string) (*domain.Member, error)
	// IncrementWarnCount bumps and returns the fresh count in one statement so
	// the auto-ban threshold is decided from an authoritative value.
	IncrementWarnCount(ctx context.Context, chatID, userID int64) (int, error)
	ResetWarnCount(ctx context.Context, chatID, userID int64) error
	SetBanned(ctx context.Context, chatID, userID int64, banned bool, reason string) error
}

type WarningRepository interface {
	Create(ctx context.Context, w *domain.Warning) error
	ListByUser(ctx context.Context, chatID, userID int64) ([]domain.Warning, error)
	DeleteByUser(ctx context.Context, chatID, userID int64) error
	Count(ctx context.Context) (int, error)
}

type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListOpen(ctx context.Context) ([]domain.Ticket, error)
	MarkReplied(ctx context.Context, id int64) error
	CountOpen(ctx context.Context) (int, error)
}

type ChatSettingRepository interface {
	Upsert(ctx context.Context, s *domain.ChatSetting) error
	Get(ctx context.Context, chatID int64) (*domain.ChatSetting, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, e *domain.OutboxEntry) error
	ListUnsent(ctx context.Context, maxAttempts, limit int) ([]domain.OutboxEntry, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, lastError string) error
	PruneSent(ctx context.Context, before time.Time) (int64, error)
}
