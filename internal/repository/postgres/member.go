package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/repository"
)

type memberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) repository.MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Ensure(ctx context.Context, chatID, userID int64, username, firstName string) error {
	query := `INSERT INTO members (chat_id, user_id, username, first_name, joined_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (chat_id, user_id) DO UPDATE SET username = $3, first_name = $4`
	_, err := r.db.ExecContext(ctx, query, chatID, userID, username, firstName, time.Now())
	return err
}

const memberColumns = `chat_id, user_id, username, first_name, joined_at, warn_count, banned, ban_reason, banned_at`

func (r *memberRepository) Get(ctx context.Context, chatID, userID int64) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE chat_id = $1 AND user_id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, chatID, userID))
}

func (r *memberRepository) GetByUsername(ctx context.Context, chatID int64, username string) (*domain.Member, error) {
	username = strings.TrimPrefix(username, "@")
	query := `SELECT ` + memberColumns + ` FROM members WHERE chat_id = $1 AND LOWER(username) = LOWER($2)`
	return r.scanOne(r.db.QueryRowContext(ctx, query, chatID, username))
}

func (r *memberRepository) scanOne(row *sql.Row) (*domain.Member, error) {
	m := &domain.Member{}
	var reason sql.NullString
	err := row.Scan(&m.ChatID, &m.UserID, &m.Username, &m.FirstName, &m.JoinedAt,
		&m.WarnCount, &m.Banned, &reason, &m.BannedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	m.BanReason = reason.String
	return m, nil
}

// IncrementWarnCount is a single update-and-return statement. The auto-ban
// threshold must be decided from the returned value, never a cached count.
func (r *memberRepository) IncrementWarnCount(ctx context.Context, chatID, userID int64) (int, error) {
	query := `UPDATE members SET warn_count = warn_count + 1
	          WHERE chat_id = $1 AND user_id = $2 RETURNING warn_count`
	var count int
	err := r.db.QueryRowContext(ctx, query, chatID, userID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("member: %w", domain.ErrNotFound)
	}
	return count, err
}

func (r *memberRepository) ResetWarnCount(ctx context.Context, chatID, userID int64) error {
	query := `UPDATE members SET warn_count = 0 WHERE chat_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, chatID, userID)
	return err
}

func (r *memberRepository) SetBanned(ctx context.Context, chatID, userID int64, banned bool, reason string) error {
	var bannedAt any
	if banned {
		bannedAt = time.Now()
	}
	query := `UPDATE members SET banned = $1, ban_reason = $2, banned_at = $3
	          WHERE chat_id = $4 AND user_id = $5`
	_, err := r.db.ExecContext(ctx, query, banned, reason, bannedAt, chatID, userID)
	return err
}
