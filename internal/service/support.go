package service

import (
	"context"
	"fmt"
	"strings"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/logger"
	"shadowlurkers-backend/internal/repository"
)

type supportService struct {
	ticketRepo repository.TicketRepository
	notifier   NotifierService
	ownerID    int64
}

func NewSupportService(ticketRepo repository.TicketRepository, notifier NotifierService, ownerID int64) SupportService {
	return &supportService{
		ticketRepo: ticketRepo,
		notifier:   notifier,
		ownerID:    ownerID,
	}
}

func (s *supportService) Create(ctx context.Context, t *domain.Ticket) error {
	if strings.TrimSpace(t.Message) == "" {
		return fmt.Errorf("support message is empty: %w", domain.ErrValidation)
	}
	if err := s.ticketRepo.Create(ctx, t); err != nil {
		return err
	}

	note := fmt.Sprintf("📨 Support ticket #%d from %s:\n\n%s\n\nReply with /reply %d <text>", t.ID, t.Username, t.Message, t.ID)
	if err := s.notifier.QueueDM(ctx, s.ownerID, note); err != nil {
		logger.Warn("Failed to queue support alert", "ticket_id", t.ID, "error", err)
	}
	return nil
}

func (s *supportService) ListOpen(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	if actor.ID != s.ownerID {
		return nil, fmt.Errorf("ticket list is owner-only: %w", domain.ErrUnauthorized)
	}
	return s.ticketRepo.ListOpen(ctx)
}

// Reply closes the ticket and DMs the author. The replied flag commits first;
// a failed DM stays in the outbox for the sweep.
func (s *supportService) Reply(ctx context.Context, id int64, text string, actor domain.Actor) (*domain.Ticket, error) {
	if actor.ID != s.ownerID {
		return nil, fmt.Errorf("ticket reply is owner-only: %w", domain.ErrUnauthorized)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("reply text is empty: %w", domain.ErrValidation)
	}

	t, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ticketRepo.MarkReplied(ctx, id); err != nil {
		return nil, err
	}
	t.Replied = true

	dm := fmt.Sprintf("☬ The Veil Keeper answers your plea:\n\n%s", text)
	if err := s.notifier.QueueDM(ctx, t.ChatID, dm); err != nil {
		logger.Warn("Failed to queue ticket reply", "ticket_id", id, "error", err)
	}
	return t, nil
}
