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

type elderRepository struct {
	db *sql.DB
}

func NewElderRepository(db *sql.DB) repository.ElderRepository {
	return &elderRepository{db: db}
}

func (r *elderRepository) Upsert(ctx context.Context, e *domain.Elder) error {
	query := `INSERT INTO elders (user_id, username, rank, granted_by, added_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (user_id) DO UPDATE SET username = $2, rank = $3, granted_by = $4`
	_, err := r.db.ExecContext(ctx, query, e.UserID, e.Username, e.Rank, e.GrantedBy, time.Now())
	return err
}

func (r *elderRepository) Get(ctx context.Context, userID int64) (*domain.Elder, error) {
	e := &domain.Elder{}
	query := `SELECT user_id, username, rank, granted_by, added_at FROM elders WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&e.UserID, &e.Username, &e.Rank, &e.GrantedBy, &e.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("elder %d: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *elderRepository) Delete(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM elders WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("elder %d: %w", userID, domain.ErrNotFound)
	}
	return nil
}

func (r *elderRepository) List(ctx context.Context) ([]domain.Elder, error) {
	query := `SELECT user_id, username, rank, granted_by, added_at FROM elders ORDER BY added_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var elders []domain.Elder
	for rows.Next() {
		var e domain.Elder
		if err := rows.Scan(&e.UserID, &e.Username, &e.Rank, &e.GrantedBy, &e.AddedAt); err != nil {
			return nil, err
		}
		elders = append(elders, e)
	}
	return elders, rows.Err()
}
