package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/repository/postgres"
)

var initiateCols = []string{"id", "name", "age", "gender", "phone", "email", "telegram", "moniker", "role", "skills", "oat", "status", "created_at", "reviewed_at", "reviewed_by", "chat_id"}

func TestInitiateRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewInitiateRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		in := &domain.Initiate{Name: "Kael", Email: "kael@test.com", Telegram: "@kael", OAT: "OAT-7", Status: domain.InitiateStatusPending}

		mock.ExpectQuery("INSERT INTO initiates").
			WithArgs(in.Name, in.Age, in.Gender, in.Phone, in.Email, in.Telegram,
				in.Moniker, in.Role, in.Skills, in.OAT, in.Status, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

		err := repo.Create(ctx, in)
		assert.NoError(t, err)
		assert.Equal(t, int64(42), in.ID)
	})

	t.Run("DuplicateOAT", func(t *testing.T) {
		in := &domain.Initiate{Name: "Kael", Email: "kael@test.com", Telegram: "@kael", OAT: "OAT-7"}

		mock.ExpectQuery("INSERT INTO initiates").
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrDuplicateTag)
	})
}

func TestInitiateRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewInitiateRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(initiateCols).
			AddRow(42, "Kael", 25, "m", "123", "kael@test.com", "@kael", "Nightblade", "scout", "stealth", "OAT-7", "pending", time.Now(), nil, nil, nil)

		mock.ExpectQuery("SELECT (.+) FROM initiates WHERE id = \\$1").
			WithArgs(int64(42)).
			WillReturnRows(rows)

		in, err := repo.GetByID(ctx, 42)
		assert.NoError(t, err)
		assert.Equal(t, "OAT-7", in.OAT)
		assert.Nil(t, in.ChatID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM initiates WHERE id = \\$1").
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows(initiateCols))

		in, err := repo.GetByID(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, in)
	})
}

func TestInitiateRepository_ListByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewInitiateRepository(db)
	ctx := context.Background()

	t.Run("PendingOldestFirst", func(t *testing.T) {
		rows := sqlmock.NewRows(initiateCols).
			AddRow(1, "A", 0, "", "", "a@test.com", "@a", "", "", "", "OAT-1", "pending", time.Now().Add(-time.Hour), nil, nil, nil).
			AddRow(2, "B", 0, "", "", "b@test.com", "@b", "", "", "", "OAT-2", "pending", time.Now(), nil, nil, nil)

		mock.ExpectQuery("SELECT (.+) FROM initiates WHERE status = \\$1 ORDER BY created_at ASC").
			WithArgs(domain.InitiateStatusPending).
			WillReturnRows(rows)

		out, err := repo.ListByStatus(ctx, domain.InitiateStatusPending, true)
		assert.NoError(t, err)
		assert.Len(t, out, 2)
		assert.Equal(t, int64(1), out[0].ID)
	})

	t.Run("ApprovedNewestFirst", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM initiates WHERE status = \\$1 ORDER BY created_at DESC").
			WithArgs(domain.InitiateStatusApproved).
			WillReturnRows(sqlmock.NewRows(initiateCols))

		out, err := repo.ListByStatus(ctx, domain.InitiateStatusApproved, false)
		assert.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestInitiateRepository_SetReview(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewInitiateRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE initiates SET status = \\$1, reviewed_at = \\$2, reviewed_by = \\$3").
			WithArgs(domain.InitiateStatusApproved, sqlmock.AnyArg(), "@veilkeeper", int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetReview(ctx, 42, domain.InitiateStatusApproved, "@veilkeeper")
		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE initiates SET status = \\$1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetReview(ctx, 404, domain.InitiateStatusRejected, "@veilkeeper")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInitiateRepository_CountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewInitiateRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM initiates").
		WillReturnRows(sqlmock.NewRows([]string{"pending", "approved", "rejected"}).AddRow(3, 10, 2))

	pending, approved, rejected, err := repo.CountByStatus(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, pending)
	assert.Equal(t, 10, approved)
	assert.Equal(t, 2, rejected)
}

func TestInitiateRepository_ApprovedChatIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewInitiateRepository(db)

	mock.ExpectQuery("SELECT chat_id FROM initiates WHERE status = \\$1 AND chat_id IS NOT NULL").
		WithArgs(domain.InitiateStatusApproved).
		WillReturnRows(sqlmock.NewRows([]string{"chat_id"}).AddRow(111).AddRow(222))

	ids, err := repo.ApprovedChatIDs(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []int64{111, 222}, ids)
}
