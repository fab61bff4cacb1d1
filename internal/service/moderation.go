package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/logger"
	"shadowlurkers-backend/internal/repository"
)

const (
	defaultMuteMinutes = 60
	maxMuteMinutes     = 1440
)

type moderationService struct {
	memberRepo repository.MemberRepository
	warnRepo   repository.WarningRepository
	elderRepo  repository.ElderRepository
	moderator  ChatModerator
	ownerID    int64
}

func NewModerationService(
	memberRepo repository.MemberRepository,
	warnRepo repository.WarningRepository,
	elderRepo repository.ElderRepository,
	moderator ChatModerator,
	ownerID int64,
) ModerationService {
	return &moderationService{
		memberRepo: memberRepo,
		warnRepo:   warnRepo,
		elderRepo:  elderRepo,
		moderator:  moderator,
		ownerID:    ownerID,
	}
}

// IsElder reports whether the actor may issue moderation commands: the owner,
// a live chat admin, or a holder of an elder record.
func (s *moderationService) IsElder(ctx context.Context, actor domain.Actor) bool {
	if actor.ID == s.ownerID || actor.ChatAdmin {
		return true
	}
	_, err := s.elderRepo.Get(ctx, actor.ID)
	return err == nil
}

// protected reports whether the target is shielded from moderation: the owner,
// bot accounts, chat admins and existing elders.
func (s *moderationService) protected(ctx context.Context, target domain.Actor) bool {
	if target.Bot || target.ID == s.ownerID || target.ChatAdmin {
		return true
	}
	_, err := s.elderRepo.Get(ctx, target.ID)
	return err == nil
}

// authorize runs the shared preamble of every moderation mutation. Nothing may
// change state before both checks pass.
func (s *moderationService) authorize(ctx context.Context, target, issuer domain.Actor) error {
	if !s.IsElder(ctx, issuer) {
		return fmt.Errorf("issuer %d is not an elder: %w", issuer.ID, domain.ErrUnauthorized)
	}
	if s.protected(ctx, target) {
		return fmt.Errorf("target %d is shielded: %w", target.ID, domain.ErrProtectedTarget)
	}
	return nil
}

func (s *moderationService) Warn(ctx context.Context, chatID int64, target, issuer domain.Actor, reason string) (*WarnResult, error) {
	if err := s.authorize(ctx, target, issuer); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		reason = "No reason given"
	}

	if err := s.memberRepo.Ensure(ctx, chatID, target.ID, target.Username, target.FirstName); err != nil {
		return nil, err
	}
	if err := s.warnRepo.Create(ctx, &domain.Warning{
		ChatID:   chatID,
		UserID:   target.ID,
		IssuedBy: issuer.ID,
		Reason:   reason,
	}); err != nil {
		return nil, err
	}

	// Single increment-and-return statement; the threshold is decided from the
	// value the store handed back, which stays correct under concurrent warns.
	count, err := s.memberRepo.IncrementWarnCount(ctx, chatID, target.ID)
	if err != nil {
		return nil, err
	}

	result := &WarnResult{Count: count}
	if count >= domain.WarnThreshold {
		result.AutoBanned = true
		banReason := fmt.Sprintf("Accumulated %d warnings", count)
		if err := s.memberRepo.SetBanned(ctx, chatID, target.ID, true, banReason); err != nil {
			return result, err
		}
		if err := s.moderator.BanMember(ctx, chatID, target.ID); err != nil {
			logger.Error("Platform ban failed after warn threshold", "chat_id", chatID, "user_id", target.ID, "error", err)
			return result, fmt.Errorf("ban primitive failed: %w", domain.ErrUpstream)
		}
		logger.Info("Auto-ban triggered", "chat_id", chatID, "user_id", target.ID, "warnings", count)
	}
	return result, nil
}

func (s *moderationService) Warnings(ctx context.Context, chatID, userID int64) ([]domain.Warning, error) {
	return s.warnRepo.ListByUser(ctx, chatID, userID)
}

// ClearWarnings removes the log entries and resets the counter. Ban and mute
// state are left untouched.
func (s *moderationService) ClearWarnings(ctx context.Context, chatID int64, target, issuer domain.Actor) error {
	if !s.IsElder(ctx, issuer) {
		return fmt.Errorf("issuer %d is not an elder: %w", issuer.ID, domain.ErrUnauthorized)
	}
	if err := s.warnRepo.DeleteByUser(ctx, chatID, target.ID); err != nil {
		return err
	}
	return s.memberRepo.ResetWarnCount(ctx, chatID, target.ID)
}

func (s *moderationService) Mute(ctx context.Context, chatID int64, target, issuer domain.Actor, minutes int) (time.Time, error) {
	if err := s.authorize(ctx, target, issuer); err != nil {
		return time.Time{}, err
	}
	if minutes <= 0 {
		minutes = defaultMuteMinutes
	}
	if minutes > maxMuteMinutes {
		minutes = maxMuteMinutes
	}
	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := s.moderator.RestrictMember(ctx, chatID, target.ID, false, until); err != nil {
		return time.Time{}, fmt.Errorf("restrict primitive failed: %w", domain.ErrUpstream)
	}
	return until, nil
}

func (s *moderationService) Unmute(ctx context.Context, chatID int64, target, issuer domain.Actor) error {
	if err := s.authorize(ctx, target, issuer); err != nil {
		return err
	}
	if err := s.moderator.RestrictMember(ctx, chatID, target.ID, true, time.Time{}); err != nil {
		return fmt.Errorf("restrict primitive failed: %w", domain.ErrUpstream)
	}
	return nil
}

// Kick removes then immediately un-bans, the platform idiom that lets the
// target rejoin.
func (s *moderationService) Kick(ctx context.Context, chatID int64, target, issuer domain.Actor) error {
	if err := s.authorize(ctx, target, issuer); err != nil {
		return err
	}
	if err := s.moderator.BanMember(ctx, chatID, target.ID); err != nil {
		return fmt.Errorf("kick primitive failed: %w", domain.ErrUpstream)
	}
	if err := s.moderator.UnbanMember(ctx, chatID, target.ID); err != nil {
		return fmt.Errorf("kick unban failed: %w", domain.ErrUpstream)
	}
	return nil
}

func (s *moderationService) Ban(ctx context.Context, chatID int64, target, issuer domain.Actor, reason string) error {
	if err := s.authorize(ctx, target, issuer); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		reason = "Judged by the Elders"
	}
	if err := s.moderator.BanMember(ctx, chatID, target.ID); err != nil {
		return fmt.Errorf("ban primitive failed: %w", domain.ErrUpstream)
	}
	if err := s.memberRepo.Ensure(ctx, chatID, target.ID, target.Username, target.FirstName); err != nil {
		return err
	}
	return s.memberRepo.SetBanned(ctx, chatID, target.ID, true, reason)
}

// Unban accepts a numeric user id or a @handle needing resolution against the
// member roll.
func (s *moderationService) Unban(ctx context.Context, chatID int64, ref string, issuer domain.Actor) (int64, error) {
	if !s.IsElder(ctx, issuer) {
		return 0, fmt.Errorf("issuer %d is not an elder: %w", issuer.ID, domain.ErrUnauthorized)
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("target id or handle required: %w", domain.ErrValidation)
	}

	userID, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		member, lookupErr := s.memberRepo.GetByUsername(ctx, chatID, ref)
		if lookupErr != nil {
			return 0, lookupErr
		}
		userID = member.UserID
	}

	if err := s.moderator.UnbanMember(ctx, chatID, userID); err != nil {
		return 0, fmt.Errorf("unban primitive failed: %w", domain.ErrUpstream)
	}
	if err := s.memberRepo.SetBanned(ctx, chatID, userID, false, ""); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	return userID, nil
}

func (s *moderationService) Promote(ctx context.Context, chatID int64, target, issuer domain.Actor) error {
	if err := s.authorize(ctx, target, issuer); err != nil {
		return err
	}
	if err := s.moderator.PromoteMember(ctx, chatID, target.ID, true); err != nil {
		return fmt.Errorf("promote primitive failed: %w", domain.ErrUpstream)
	}
	return s.elderRepo.Upsert(ctx, &domain.Elder{
		UserID:    target.ID,
		Username:  target.Username,
		Rank:      domain.RankElder,
		GrantedBy: issuer.ID,
	})
}

func (s *moderationService) Demote(ctx context.Context, chatID int64, target, issuer domain.Actor) error {
	if !s.IsElder(ctx, issuer) {
		return fmt.Errorf("issuer %d is not an elder: %w", issuer.ID, domain.ErrUnauthorized)
	}
	if target.Bot || target.ID == s.ownerID {
		return fmt.Errorf("target %d is shielded: %w", target.ID, domain.ErrProtectedTarget)
	}
	if err := s.moderator.PromoteMember(ctx, chatID, target.ID, false); err != nil {
		return fmt.Errorf("demote primitive failed: %w", domain.ErrUpstream)
	}
	if err := s.elderRepo.Delete(ctx, target.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *moderationService) MemberInfo(ctx context.Context, chatID, userID int64) (*domain.Member, error) {
	return s.memberRepo.Get(ctx, chatID, userID)
}

// TrackMember records a join-event observation so later moderation has a row
// to work against.
func (s *moderationService) TrackMember(ctx context.Context, chatID int64, user domain.Actor) error {
	return s.memberRepo.Ensure(ctx, chatID, user.ID, user.Username, user.FirstName)
}

// Resolve turns a @handle argument into an actor using the member roll; the
// Bot API offers no handle-to-id lookup.
func (s *moderationService) Resolve(ctx context.Context, chatID int64, handle string) (domain.Actor, error) {
	member, err := s.memberRepo.GetByUsername(ctx, chatID, handle)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.Actor{
		ID:        member.UserID,
		Username:  member.Username,
		FirstName: member.FirstName,
	}, nil
}
