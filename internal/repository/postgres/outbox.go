package postgres

import (
	"context"
	"database/sql"
	"time"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/repository"
)

type outboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Create(ctx context.Context, e *domain.OutboxEntry) error {
	query := `INSERT INTO outbox (kind, recipient, subject, body, sent, attempts, created_at)
	          VALUES ($1, $2, $3, $4, false, 0, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, e.Kind, e.Recipient, e.Subject, e.Body, time.Now()).Scan(&e.ID)
}

func (r *outboxRepository) ListUnsent(ctx context.Context, maxAttempts, limit int) ([]domain.OutboxEntry, error) {
	query := `SELECT id, kind, recipient, subject, body, sent, attempts, COALESCE(last_error, ''), created_at, sent_at
	          FROM outbox WHERE sent = false AND attempts < $1
	          ORDER BY created_at ASC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.OutboxEntry
	for rows.Next() {
		var e domain.OutboxEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Recipient, &e.Subject, &e.Body,
			&e.Sent, &e.Attempts, &e.LastError, &e.CreatedAt, &e.SentAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id int64) error {
	query := `UPDATE outbox SET sent = true, attempts = attempts + 1, last_error = NULL, sent_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id int64, lastError string) error {
	query := `UPDATE outbox SET attempts = attempts + 1, last_error = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, lastError, id)
	return err
}

func (r *outboxRepository) PruneSent(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM outbox WHERE sent = true AND sent_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
