package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/repository"
)

type ticketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) repository.TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	query := `INSERT INTO tickets (user_id, username, chat_id, message, replied, created_at)
	          VALUES ($1, $2, $3, $4, false, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, t.UserID, t.Username, t.ChatID, t.Message, time.Now()).Scan(&t.ID)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	query := `SELECT id, user_id, username, chat_id, message, replied, created_at FROM tickets WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.UserID, &t.Username, &t.ChatID, &t.Message, &t.Replied, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ticket %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT id, user_id, username, chat_id, message, replied, created_at FROM tickets
	          WHERE replied = false ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Username, &t.ChatID, &t.Message, &t.Replied, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) MarkReplied(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tickets SET replied = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ticket %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *ticketRepository) CountOpen(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE replied = false`).Scan(&count)
	return count, err
}
