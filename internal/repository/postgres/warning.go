package postgres

import (
	"context"
	"database/sql"
	"time"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/repository"
)

type warningRepository struct {
	db *sql.DB
}

func NewWarningRepository(db *sql.DB) repository.WarningRepository {
	return &warningRepository{db: db}
}

func (r *warningRepository) Create(ctx context.Context, w *domain.Warning) error {
	query := `INSERT INTO warnings (chat_id, user_id, issued_by, reason, created_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, w.ChatID, w.UserID, w.IssuedBy, w.Reason, time.Now()).Scan(&w.ID)
}

func (r *warningRepository) ListByUser(ctx context.Context, chatID, userID int64) ([]domain.Warning, error) {
	query := `SELECT id, chat_id, user_id, issued_by, reason, created_at FROM warnings
	          WHERE chat_id = $1 AND user_id = $2 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, chatID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []domain.Warning
	for rows.Next() {
		var w domain.Warning
		if err := rows.Scan(&w.ID, &w.ChatID, &w.UserID, &w.IssuedBy, &w.Reason, &w.CreatedAt); err != nil {
			return nil, err
		}
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

func (r *warningRepository) DeleteByUser(ctx context.Context, chatID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM warnings WHERE chat_id = $1 AND user_id = $2`, chatID, userID)
	return err
}

func (r *warningRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM warnings`).Scan(&count)
	return count, err
}
