package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/repository"
)

type chatSettingRepository struct {
	db *sql.DB
}

func NewChatSettingRepository(db *sql.DB) repository.ChatSettingRepository {
	return &chatSettingRepository{db: db}
}

func (r *chatSettingRepository) Upsert(ctx context.Context, s *domain.ChatSetting) error {
	query := `INSERT INTO chat_settings (chat_id, assistant_enabled, enabled_by, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (chat_id) DO UPDATE SET assistant_enabled = $2, enabled_by = $3, updated_at = $4`
	_, err := r.db.ExecContext(ctx, query, s.ChatID, s.AssistantEnabled, s.EnabledBy, time.Now())
	return err
}

// Get returns a disabled default when no row exists; chats opt in explicitly.
func (r *chatSettingRepository) Get(ctx context.Context, chatID int64) (*domain.ChatSetting, error) {
	s := &domain.ChatSetting{}
	query := `SELECT chat_id, assistant_enabled, enabled_by, updated_at FROM chat_settings WHERE chat_id = $1`
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(&s.ChatID, &s.AssistantEnabled, &s.EnabledBy, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.ChatSetting{ChatID: chatID}, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
