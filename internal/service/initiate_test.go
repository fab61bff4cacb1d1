package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/service"
)

const ownerID int64 = 999

func newInitiateFixture() (*MockInitiateRepo, *MockWarningRepo, *MockTicketRepo, *MockNotifier, service.InitiateService) {
	initRepo := new(MockInitiateRepo)
	warnRepo := new(MockWarningRepo)
	ticketRepo := new(MockTicketRepo)
	notifier := new(MockNotifier)
	svc := service.NewInitiateService(initRepo, warnRepo, ticketRepo, notifier, ownerID)
	return initRepo, warnRepo, ticketRepo, notifier, svc
}

func TestInitiateService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		initRepo, _, _, notifier, svc := newInitiateFixture()
		in := &domain.Initiate{Name: "Kael", Email: "kael@test.com", Telegram: "@kael", Moniker: "Nightblade", OAT: "OAT-7"}

		initRepo.On("Create", ctx, in).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Initiate).ID = 42
		}).Return(nil).Once()
		notifier.On("QueueEmail", ctx, "kael@test.com", mock.Anything, mock.Anything).Return(nil).Once()
		notifier.On("QueueDM", ctx, ownerID, mock.MatchedBy(func(text string) bool {
			return strings.Contains(text, "#42")
		})).Return(nil).Once()

		report, err := svc.Submit(ctx, in)
		assert.NoError(t, err)
		assert.Equal(t, domain.InitiateStatusPending, in.Status)
		assert.True(t, report.EmailOK)
		assert.True(t, report.DMSkipped)
		initRepo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("MissingFields", func(t *testing.T) {
		initRepo, _, _, _, svc := newInitiateFixture()
		in := &domain.Initiate{Name: "Kael", Telegram: "@kael"}

		report, err := svc.Submit(ctx, in)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Nil(t, report)
		initRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("DuplicateOAT", func(t *testing.T) {
		initRepo, _, _, notifier, svc := newInitiateFixture()
		in := &domain.Initiate{Name: "Kael", Email: "kael@test.com", Telegram: "@kael", OAT: "OAT-7"}

		initRepo.On("Create", ctx, in).Return(fmt.Errorf("oat taken: %w", domain.ErrDuplicateTag)).Once()

		report, err := svc.Submit(ctx, in)
		assert.ErrorIs(t, err, domain.ErrDuplicateTag)
		assert.Nil(t, report)
		notifier.AssertNotCalled(t, "QueueEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmailFailureDoesNotFailSubmit", func(t *testing.T) {
		initRepo, _, _, notifier, svc := newInitiateFixture()
		in := &domain.Initiate{Name: "Kael", Email: "kael@test.com", Telegram: "@kael", OAT: "OAT-8"}

		initRepo.On("Create", ctx, in).Return(nil).Once()
		notifier.On("QueueEmail", ctx, "kael@test.com", mock.Anything, mock.Anything).Return(assert.AnError).Once()
		notifier.On("QueueDM", ctx, ownerID, mock.Anything).Return(nil).Once()

		report, err := svc.Submit(ctx, in)
		assert.NoError(t, err)
		assert.False(t, report.EmailOK)
	})
}

func TestInitiateService_Review(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{ID: ownerID, Username: "veilkeeper"}

	t.Run("NonOwnerDeniedWithoutMutation", func(t *testing.T) {
		initRepo, _, _, notifier, svc := newInitiateFixture()

		in, report, err := svc.Review(ctx, 42, domain.InitiateStatusApproved, domain.Actor{ID: 12})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Nil(t, in)
		assert.Nil(t, report)
		initRepo.AssertNotCalled(t, "SetReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "QueueEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ApproveWithBoundChat", func(t *testing.T) {
		initRepo, _, _, notifier, svc := newInitiateFixture()
		chatID := int64(555)
		pending := &domain.Initiate{ID: 42, Name: "Kael", Email: "kael@test.com", OAT: "OAT-7", Status: domain.InitiateStatusPending, ChatID: &chatID}

		initRepo.On("GetByID", ctx, int64(42)).Return(pending, nil).Once()
		initRepo.On("SetReview", ctx, int64(42), domain.InitiateStatusApproved, "@veilkeeper").Return(nil).Once()
		notifier.On("QueueEmail", ctx, "kael@test.com", "☬ Shadow Lurkers - Initiation APPROVED", mock.Anything).Return(nil).Once()
		notifier.On("QueueDM", ctx, chatID, mock.Anything).Return(nil).Once()

		in, report, err := svc.Review(ctx, 42, domain.InitiateStatusApproved, owner)
		assert.NoError(t, err)
		assert.Equal(t, domain.InitiateStatusApproved, in.Status)
		assert.True(t, report.EmailOK)
		assert.True(t, report.DMOK)
		assert.False(t, report.DMSkipped)
		initRepo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("RejectWithoutChatSkipsDM", func(t *testing.T) {
		initRepo, _, _, notifier, svc := newInitiateFixture()
		pending := &domain.Initiate{ID: 43, Name: "Mira", Email: "mira@test.com", OAT: "OAT-9", Status: domain.InitiateStatusPending}

		initRepo.On("GetByID", ctx, int64(43)).Return(pending, nil).Once()
		initRepo.On("SetReview", ctx, int64(43), domain.InitiateStatusRejected, "@veilkeeper").Return(nil).Once()
		notifier.On("QueueEmail", ctx, "mira@test.com", "☠ Shadow Lurkers - Initiation REJECTED", mock.Anything).Return(nil).Once()

		_, report, err := svc.Review(ctx, 43, domain.InitiateStatusRejected, owner)
		assert.NoError(t, err)
		assert.True(t, report.DMSkipped)
		notifier.AssertNotCalled(t, "QueueDM", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ReReviewOverwritesDecision", func(t *testing.T) {
		initRepo, _, _, notifier, svc := newInitiateFixture()
		resolved := &domain.Initiate{ID: 44, Name: "Kael", Email: "kael@test.com", OAT: "OAT-7", Status: domain.InitiateStatusApproved}

		initRepo.On("GetByID", ctx, int64(44)).Return(resolved, nil).Once()
		initRepo.On("SetReview", ctx, int64(44), domain.InitiateStatusRejected, "@veilkeeper").Return(nil).Once()
		notifier.On("QueueEmail", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		in, _, err := svc.Review(ctx, 44, domain.InitiateStatusRejected, owner)
		assert.NoError(t, err)
		assert.Equal(t, domain.InitiateStatusRejected, in.Status)
	})

	t.Run("InvalidDecision", func(t *testing.T) {
		_, _, _, _, svc := newInitiateFixture()
		_, _, err := svc.Review(ctx, 42, domain.InitiateStatusPending, owner)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestInitiateService_OwnerGates(t *testing.T) {
	ctx := context.Background()
	stranger := domain.Actor{ID: 12}

	t.Run("ListApproved", func(t *testing.T) {
		_, _, _, _, svc := newInitiateFixture()
		_, err := svc.ListApproved(ctx, stranger)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Erase", func(t *testing.T) {
		initRepo, _, _, _, svc := newInitiateFixture()
		err := svc.Erase(ctx, 42, stranger)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		initRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Stats", func(t *testing.T) {
		_, _, _, _, svc := newInitiateFixture()
		_, err := svc.Stats(ctx, stranger)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Broadcast", func(t *testing.T) {
		_, _, _, _, svc := newInitiateFixture()
		_, err := svc.ApprovedChatIDs(ctx, stranger)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestInitiateService_Stats(t *testing.T) {
	ctx := context.Background()
	initRepo, warnRepo, ticketRepo, _, svc := newInitiateFixture()

	initRepo.On("CountByStatus", ctx).Return(3, 10, 2, nil).Once()
	warnRepo.On("Count", ctx).Return(7, nil).Once()
	ticketRepo.On("CountOpen", ctx).Return(1, nil).Once()

	stats, err := svc.Stats(ctx, domain.Actor{ID: ownerID})
	assert.NoError(t, err)
	assert.Equal(t, &domain.Stats{Pending: 3, Approved: 10, Rejected: 2, Warnings: 7, OpenTickets: 1}, stats)
}

func TestInitiateService_BindChat(t *testing.T) {
	ctx := context.Background()

	t.Run("StripsHandlePrefix", func(t *testing.T) {
		initRepo, _, _, _, svc := newInitiateFixture()
		initRepo.On("BindChat", ctx, "kael", int64(555)).Return(nil).Once()

		err := svc.BindChat(ctx, "@kael", 555)
		assert.NoError(t, err)
		initRepo.AssertExpectations(t)
	})

	t.Run("EmptyHandleIsNoop", func(t *testing.T) {
		initRepo, _, _, _, svc := newInitiateFixture()
		err := svc.BindChat(ctx, "  ", 555)
		assert.NoError(t, err)
		initRepo.AssertNotCalled(t, "BindChat", mock.Anything, mock.Anything, mock.Anything)
	})
}
