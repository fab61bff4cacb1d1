package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/service"
)

func newModerationFixture() (*MockMemberRepo, *MockWarningRepo, *MockElderRepo, *MockModerator, service.ModerationService) {
	memberRepo := new(MockMemberRepo)
	warnRepo := new(MockWarningRepo)
	elderRepo := new(MockElderRepo)
	moderator := new(MockModerator)
	svc := service.NewModerationService(memberRepo, warnRepo, elderRepo, moderator, ownerID)
	return memberRepo, warnRepo, elderRepo, moderator, svc
}

var (
	chatID = int64(-100200)
	issuer = domain.Actor{ID: ownerID, Username: "veilkeeper"}
	target = domain.Actor{ID: 77, Username: "lurker", FirstName: "Lurker"}
)

func TestModerationService_Warn(t *testing.T) {
	ctx := context.Background()

	t.Run("FourthWarningDoesNotBan", func(t *testing.T) {
		memberRepo, warnRepo, elderRepo, moderator, svc := newModerationFixture()
		elderRepo.On("Get", ctx, target.ID).Return(nil, domain.ErrNotFound)
		memberRepo.On("Ensure", ctx, chatID, target.ID, "lurker", "Lurker").Return(nil).Once()
		warnRepo.On("Create", ctx, mock.MatchedBy(func(w *domain.Warning) bool {
			return w.UserID == target.ID && w.IssuedBy == issuer.ID && w.Reason == "spam"
		})).Return(nil).Once()
		memberRepo.On("IncrementWarnCount", ctx, chatID, target.ID).Return(4, nil).Once()

		res, err := svc.Warn(ctx, chatID, target, issuer, "spam")
		assert.NoError(t, err)
		assert.Equal(t, 4, res.Count)
		assert.False(t, res.AutoBanned)
		moderator.AssertNotCalled(t, "BanMember", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("FifthWarningAutoBans", func(t *testing.T) {
		memberRepo, warnRepo, elderRepo, moderator, svc := newModerationFixture()
		elderRepo.On("Get", ctx, target.ID).Return(nil, domain.ErrNotFound)
		memberRepo.On("Ensure", ctx, chatID, target.ID, "lurker", "Lurker").Return(nil).Once()
		warnRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		memberRepo.On("IncrementWarnCount", ctx, chatID, target.ID).Return(5, nil).Once()
		memberRepo.On("SetBanned", ctx, chatID, target.ID, true, "Accumulated 5 warnings").Return(nil).Once()
		moderator.On("BanMember", ctx, chatID, target.ID).Return(nil).Once()

		res, err := svc.Warn(ctx, chatID, target, issuer, "spam again")
		assert.NoError(t, err)
		assert.Equal(t, 5, res.Count)
		assert.True(t, res.AutoBanned)
		memberRepo.AssertExpectations(t)
		moderator.AssertExpectations(t)
	})

	t.Run("NonElderDeniedWithoutMutation", func(t *testing.T) {
		memberRepo, warnRepo, elderRepo, _, svc := newModerationFixture()
		stranger := domain.Actor{ID: 12}
		elderRepo.On("Get", ctx, stranger.ID).Return(nil, domain.ErrNotFound)

		res, err := svc.Warn(ctx, chatID, target, stranger, "spam")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Nil(t, res)
		memberRepo.AssertNotCalled(t, "IncrementWarnCount", mock.Anything, mock.Anything, mock.Anything)
		warnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("ProtectedTarget", func(t *testing.T) {
		memberRepo, _, _, _, svc := newModerationFixture()
		admin := domain.Actor{ID: 55, ChatAdmin: true}

		res, err := svc.Warn(ctx, chatID, admin, issuer, "spam")
		assert.ErrorIs(t, err, domain.ErrProtectedTarget)
		assert.Nil(t, res)
		memberRepo.AssertNotCalled(t, "Ensure", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("OwnerIsProtected", func(t *testing.T) {
		_, _, elderRepo, _, svc := newModerationFixture()
		elder := domain.Actor{ID: 33}
		elderRepo.On("Get", ctx, elder.ID).Return(&domain.Elder{UserID: elder.ID}, nil)

		_, err := svc.Warn(ctx, chatID, domain.Actor{ID: ownerID}, elder, "spam")
		assert.ErrorIs(t, err, domain.ErrProtectedTarget)
	})

	t.Run("BotIsProtected", func(t *testing.T) {
		_, _, _, _, svc := newModerationFixture()
		_, err := svc.Warn(ctx, chatID, domain.Actor{ID: 88, Bot: true}, issuer, "spam")
		assert.ErrorIs(t, err, domain.ErrProtectedTarget)
	})

	t.Run("EmptyReasonDefaults", func(t *testing.T) {
		memberRepo, warnRepo, elderRepo, _, svc := newModerationFixture()
		elderRepo.On("Get", ctx, target.ID).Return(nil, domain.ErrNotFound)
		memberRepo.On("Ensure", ctx, chatID, target.ID, "lurker", "Lurker").Return(nil).Once()
		warnRepo.On("Create", ctx, mock.MatchedBy(func(w *domain.Warning) bool {
			return w.Reason == "No reason given"
		})).Return(nil).Once()
		memberRepo.On("IncrementWarnCount", ctx, chatID, target.ID).Return(1, nil).Once()

		_, err := svc.Warn(ctx, chatID, target, issuer, "   ")
		assert.NoError(t, err)
		warnRepo.AssertExpectations(t)
	})
}

func TestModerationService_ClearWarnings(t *testing.T) {
	ctx := context.Background()

	t.Run("ResetsCountAndLog", func(t *testing.T) {
		memberRepo, warnRepo, _, _, svc := newModerationFixture()
		warnRepo.On("DeleteByUser", ctx, chatID, target.ID).Return(nil).Once()
		memberRepo.On("ResetWarnCount", ctx, chatID, target.ID).Return(nil).Once()

		err := svc.ClearWarnings(ctx, chatID, target, issuer)
		assert.NoError(t, err)
		warnRepo.AssertExpectations(t)
		memberRepo.AssertExpectations(t)
		// ban state is untouched
		memberRepo.AssertNotCalled(t, "SetBanned", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NonElderDenied", func(t *testing.T) {
		_, warnRepo, elderRepo, _, svc := newModerationFixture()
		stranger := domain.Actor{ID: 12}
		elderRepo.On("Get", ctx, stranger.ID).Return(nil, domain.ErrNotFound)

		err := svc.ClearWarnings(ctx, chatID, target, stranger)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		warnRepo.AssertNotCalled(t, "DeleteByUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestModerationService_Mute(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultDuration", func(t *testing.T) {
		_, _, elderRepo, moderator, svc := newModerationFixture()
		elderRepo.On("Get", ctx, target.ID).Return(nil, domain.ErrNotFound)
		moderator.On("RestrictMember", ctx, chatID, target.ID, false, mock.Anything).Return(nil).Once()

		until, err := svc.Mute(ctx, chatID, target, issuer, 0)
		assert.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(60*time.Minute), until, 5*time.Second)
	})

	t.Run("ClampsToDayMaximum", func(t *testing.T) {
		_, _, elderRepo, moderator, svc := newModerationFixture()
		elderRepo.On("Get", ctx, target.ID).Return(nil, domain.ErrNotFound)
		moderator.On("RestrictMember", ctx, chatID, target.ID, false, mock.Anything).Return(nil).Once()

		until, err := svc.Mute(ctx, chatID, target, issuer, 99999)
		assert.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(1440*time.Minute), until, 5*time.Second)
	})
}

func TestModerationService_Kick(t *testing.T) {
	ctx := context.Background()
	_, _, elderRepo, moderator, svc := newModerationFixture()
	elderRepo.On("Get", ctx, target.ID).Return(nil, domain.ErrNotFound)
	moderator.On("BanMember", ctx, chatID, target.ID).Return(nil).Once()
	moderator.On("UnbanMember", ctx, chatID, target.ID).Return(nil).Once()

	err := svc.Kick(ctx, chatID, target, issuer)
	assert.NoError(t, err)
	moderator.AssertExpectations(t)
}

func TestModerationService_Unban(t *testing.T) {
	ctx := context.Background()

	t.Run("NumericRef", func(t *testing.T) {
		memberRepo, _, _, moderator, svc := newModerationFixture()
		moderator.On("UnbanMember", ctx, chatID, int64(77)).Return(nil).Once()
		memberRepo.On("SetBanned", ctx, chatID, int64(77), false, "").Return(nil).Once()

		userID, err := svc.Unban(ctx, chatID, "77", issuer)
		assert.NoError(t, err)
		assert.Equal(t, int64(77), userID)
	})

	t.Run("HandleRef", func(t *testing.T) {
		memberRepo, _, _, moderator, svc := newModerationFixture()
		memberRepo.On("GetByUsername", ctx, chatID, "lurker").Return(&domain.Member{ChatID: chatID, UserID: 77, Username: "lurker"}, nil).Once()
		moderator.On("UnbanMember", ctx, chatID, int64(77)).Return(nil).Once()
		memberRepo.On("SetBanned", ctx, chatID, int64(77), false, "").Return(nil).Once()

		userID, err := svc.Unban(ctx, chatID, "lurker", issuer)
		assert.NoError(t, err)
		assert.Equal(t, int64(77), userID)
	})

	t.Run("UnknownHandle", func(t *testing.T) {
		memberRepo, _, _, _, svc := newModerationFixture()
		memberRepo.On("GetByUsername", ctx, chatID, "ghost").Return(nil, domain.ErrNotFound).Once()

		_, err := svc.Unban(ctx, chatID, "ghost", issuer)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestModerationService_PromoteDemote(t *testing.T) {
	ctx := context.Background()

	t.Run("PromoteRecordsElder", func(t *testing.T) {
		_, _, elderRepo, moderator, svc := newModerationFixture()
		elderRepo.On("Get", ctx, target.ID).Return(nil, domain.ErrNotFound)
		moderator.On("PromoteMember", ctx, chatID, target.ID, true).Return(nil).Once()
		elderRepo.On("Upsert", ctx, mock.MatchedBy(func(e *domain.Elder) bool {
			return e.UserID == target.ID && e.Rank == domain.RankElder && e.GrantedBy == issuer.ID
		})).Return(nil).Once()

		err := svc.Promote(ctx, chatID, target, issuer)
		assert.NoError(t, err)
		elderRepo.AssertExpectations(t)
	})

	t.Run("DemoteRemovesElder", func(t *testing.T) {
		_, _, elderRepo, moderator, svc := newModerationFixture()
		moderator.On("PromoteMember", ctx, chatID, target.ID, false).Return(nil).Once()
		elderRepo.On("Delete", ctx, target.ID).Return(nil).Once()

		err := svc.Demote(ctx, chatID, target, issuer)
		assert.NoError(t, err)
		elderRepo.AssertExpectations(t)
	})

	t.Run("DemoteOwnerRefused", func(t *testing.T) {
		_, _, _, moderator, svc := newModerationFixture()
		err := svc.Demote(ctx, chatID, domain.Actor{ID: ownerID}, issuer)
		assert.ErrorIs(t, err, domain.ErrProtectedTarget)
		moderator.AssertNotCalled(t, "PromoteMember", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestModerationService_IsElder(t *testing.T) {
	ctx := context.Background()
	_, _, elderRepo, _, svc := newModerationFixture()

	assert.True(t, svc.IsElder(ctx, domain.Actor{ID: ownerID}))
	assert.True(t, svc.IsElder(ctx, domain.Actor{ID: 55, ChatAdmin: true}))

	elderRepo.On("Get", ctx, int64(33)).Return(&domain.Elder{UserID: 33}, nil).Once()
	assert.True(t, svc.IsElder(ctx, domain.Actor{ID: 33}))

	elderRepo.On("Get", ctx, int64(12)).Return(nil, domain.ErrNotFound).Once()
	assert.False(t, svc.IsElder(ctx, domain.Actor{ID: 12}))
}

func TestModerationService_Resolve(t *testing.T) {
	ctx := context.Background()
	memberRepo, _, _, _, svc := newModerationFixture()
	memberRepo.On("GetByUsername", ctx, chatID, "lurker").Return(&domain.Member{ChatID: chatID, UserID: 77, Username: "lurker", FirstName: "Lurker"}, nil).Once()

	actor, err := svc.Resolve(ctx, chatID, "lurker")
	assert.NoError(t, err)
	assert.Equal(t, int64(77), actor.ID)
	assert.Equal(t, "lurker", actor.Username)
}
