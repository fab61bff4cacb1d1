package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/logger"
	"shadowlurkers-backend/internal/repository"
)

// deliveryTimeout bounds a single delivery attempt so a slow upstream never
// hangs the triggering handler.
const deliveryTimeout = 8 * time.Second

type notifierService struct {
	outboxRepo  repository.OutboxRepository
	email       EmailSender
	dm          DMSender
	maxAttempts int
	batchSize   int
}

func NewNotifierService(outboxRepo repository.OutboxRepository, email EmailSender, dm DMSender, maxAttempts, batchSize int) NotifierService {
	if maxAttempts <= 0 {
		maxAttempts = domain.OutboxMaxAttempts
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &notifierService{
		outboxRepo:  outboxRepo,
		email:       email,
		dm:          dm,
		maxAttempts: maxAttempts,
		batchSize:   batchSize,
	}
}

func (s *notifierService) QueueEmail(ctx context.Context, to, subject, body string) error {
	entry := &domain.OutboxEntry{
		Kind:      domain.OutboxKindEmail,
		Recipient: to,
		Subject:   subject,
		Body:      body,
	}
	if err := s.outboxRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record email notification: %w", err)
	}
	s.attempt(ctx, entry)
	return nil
}

func (s *notifierService) QueueDM(ctx context.Context, chatID int64, text string) error {
	entry := &domain.OutboxEntry{
		Kind:      domain.OutboxKindTelegram,
		Recipient: strconv.FormatInt(chatID, 10),
		Body:      text,
	}
	if err := s.outboxRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record chat notification: %w", err)
	}
	s.attempt(ctx, entry)
	return nil
}

// attempt performs one bounded delivery try and records the outcome. Failures
// stay in the outbox for the sweep.
func (s *notifierService) attempt(ctx context.Context, entry *domain.OutboxEntry) bool {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	var err error
	switch entry.Kind {
	case domain.OutboxKindEmail:
		err = s.email.Send(ctx, entry.Recipient, entry.Subject, entry.Body)
	case domain.OutboxKindTelegram:
		var chatID int64
		chatID, err = strconv.ParseInt(entry.Recipient, 10, 64)
		if err == nil {
			err = s.dm.SendDM(ctx, chatID, entry.Body)
		}
	default:
		err = fmt.Errorf("unknown outbox kind %q", entry.Kind)
	}

	if err != nil {
		logger.Warn("Notification delivery failed, left for sweep",
			"outbox_id", entry.ID, "kind", entry.Kind, "error", err)
		if markErr := s.outboxRepo.MarkFailed(context.WithoutCancel(ctx), entry.ID, err.Error()); markErr != nil {
			logger.Error("Failed to record notification failure", "outbox_id", entry.ID, "error", markErr)
		}
		return false
	}
	if markErr := s.outboxRepo.MarkSent(context.WithoutCancel(ctx), entry.ID); markErr != nil {
		logger.Error("Failed to mark notification sent", "outbox_id", entry.ID, "error", markErr)
	}
	return true
}

func (s *notifierService) Sweep(ctx context.Context) (sent, failed int, err error) {
	entries, err := s.outboxRepo.ListUnsent(ctx, s.maxAttempts, s.batchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load unsent notifications: %w", err)
	}
	for i := range entries {
		if s.attempt(ctx, &entries[i]) {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed, nil
}

// Broadcast fans out one DM per chat concurrently and reports the aggregate
// only after every send has settled.
func (s *notifierService) Broadcast(ctx context.Context, chatIDs []int64, text string) (delivered, failed int) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, chatID := range chatIDs {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
			defer cancel()
			err := s.dm.SendDM(sendCtx, chatID, text)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("Broadcast delivery failed", "chat_id", chatID, "error", err)
				failed++
			} else {
				delivered++
			}
		}(chatID)
	}
	wg.Wait()
	return delivered, failed
}
