package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/repository"
)

type initiateRepository struct {
	db *sql.DB
}

func NewInitiateRepository(db *sql.DB) repository.InitiateRepository {
	return &initiateRepository{db: db}
}

const initiateColumns = `id, name, age, gender, phone, email, telegram, moniker, role, skills, oat, status, created_at, reviewed_at, reviewed_by, chat_id`

func (r *initiateRepository) Create(ctx context.Context, in *domain.Initiate) error {
	query := `INSERT INTO initiates (name, age, gender, phone, email, telegram, moniker, role, skills, oat, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		in.Name, in.Age, in.Gender, in.Phone, in.Email, in.Telegram,
		in.Moniker, in.Role, in.Skills, in.OAT, in.Status, time.Now(),
	).Scan(&in.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("oat %q: %w", in.OAT, domain.ErrDuplicateTag)
		}
		return err
	}
	return nil
}

func scanInitiate(row interface{ Scan(...any) error }) (*domain.Initiate, error) {
	in := &domain.Initiate{}
	err := row.Scan(&in.ID, &in.Name, &in.Age, &in.Gender, &in.Phone, &in.Email,
		&in.Telegram, &in.Moniker, &in.Role, &in.Skills, &in.OAT, &in.Status,
		&in.CreatedAt, &in.ReviewedAt, &in.ReviewedBy, &in.ChatID)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (r *initiateRepository) GetByID(ctx context.Context, id int64) (*domain.Initiate, error) {
	query := `SELECT ` + initiateColumns + ` FROM initiates WHERE id = $1`
	in, err := scanInitiate(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("initiate %d: %w", id, domain.ErrNotFound)
	}
	return in, err
}

// GetByTelegram matches the record whose stored handle contains the given
// handle, falling back to a name match. Handles are stored as the applicant
// typed them, with or without a leading @.
func (r *initiateRepository) GetByTelegram(ctx context.Context, handle, name string) (*domain.Initiate, error) {
	query := `SELECT ` + initiateColumns + ` FROM initiates
	          WHERE ($1 <> '' AND telegram ILIKE '%' || $1 || '%')
	             OR ($2 <> '' AND name ILIKE $2)
	          ORDER BY created_at DESC LIMIT 1`
	in, err := scanInitiate(r.db.QueryRowContext(ctx, query, handle, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("initiate %q: %w", handle, domain.ErrNotFound)
	}
	return in, err
}

func (r *initiateRepository) List(ctx context.Context) ([]domain.Initiate, error) {
	query := `SELECT ` + initiateColumns + ` FROM initiates ORDER BY created_at DESC`
	return r.queryMany(ctx, query)
}

func (r *initiateRepository) ListByStatus(ctx context.Context, status domain.InitiateStatus, oldestFirst bool) ([]domain.Initiate, error) {
	order := "DESC"
	if oldestFirst {
		order = "ASC"
	}
	query := `SELECT ` + initiateColumns + ` FROM initiates WHERE status = $1 ORDER BY created_at ` + order
	return r.queryMany(ctx, query, status)
}

func (r *initiateRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.Initiate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Initiate
	for rows.Next() {
		in, err := scanInitiate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

func (r *initiateRepository) SetReview(ctx context.Context, id int64, status domain.InitiateStatus, reviewedBy string) error {
	query := `UPDATE initiates SET status = $1, reviewed_at = $2, reviewed_by = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), reviewedBy, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("initiate %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *initiateRepository) BindChat(ctx context.Context, handle string, chatID int64) error {
	query := `UPDATE initiates SET chat_id = $1 WHERE telegram ILIKE '%' || $2 || '%' AND chat_id IS NULL`
	_, err := r.db.ExecContext(ctx, query, chatID, handle)
	return err
}

func (r *initiateRepository) ApprovedChatIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT chat_id FROM initiates WHERE status = $1 AND chat_id IS NOT NULL`
	rows, err := r.db.QueryContext(ctx, query, domain.InitiateStatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *initiateRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM initiates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("initiate %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *initiateRepository) CountByStatus(ctx context.Context) (pending, approved, rejected int, err error) {
	query := `SELECT
	            COUNT(*) FILTER (WHERE status = 'pending'),
	            COUNT(*) FILTER (WHERE status = 'approved'),
	            COUNT(*) FILTER (WHERE status = 'rejected')
	          FROM initiates`
	err = r.db.QueryRowContext(ctx, query).Scan(&pending, &approved, &rejected)
	return pending, approved, rejected, err
}
