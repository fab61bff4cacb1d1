package service

import (
	"context"
	"fmt"
	"strings"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/logger"
	"shadowlurkers-backend/internal/repository"
)

type initiateService struct {
	initRepo   repository.InitiateRepository
	warnRepo   repository.WarningRepository
	ticketRepo repository.TicketRepository
	notifier   NotifierService
	ownerID    int64
}

func NewInitiateService(
	initRepo repository.InitiateRepository,
	warnRepo repository.WarningRepository,
	ticketRepo repository.TicketRepository,
	notifier NotifierService,
	ownerID int64,
) InitiateService {
	return &initiateService{
		initRepo:   initRepo,
		warnRepo:   warnRepo,
		ticketRepo: ticketRepo,
		notifier:   notifier,
		ownerID:    ownerID,
	}
}

// Submit creates a pending record and fires the best-effort confirmations: an
// email to the applicant and a DM to the owner. Neither failure fails Submit.
func (s *initiateService) Submit(ctx context.Context, in *domain.Initiate) (*NotifyReport, error) {
	var missing []string
	for field, value := range map[string]string{
		"name": in.Name, "email": in.Email, "telegram": in.Telegram, "oat": in.OAT,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required fields %v: %w", missing, domain.ErrValidation)
	}

	in.Status = domain.InitiateStatusPending
	if err := s.initRepo.Create(ctx, in); err != nil {
		return nil, err
	}

	report := &NotifyReport{DMSkipped: true}
	subject := "𓃼 Shadow Lurkers - Initiation Received"
	body := fmt.Sprintf("Your application has been received by the Veil.\n\nOAT: %s\nMoniker: %s\n\nThe Elders will review your submission shortly.", in.OAT, in.Moniker)
	if err := s.notifier.QueueEmail(ctx, in.Email, subject, body); err != nil {
		logger.Warn("Failed to queue submission confirmation", "initiate_id", in.ID, "error", err)
	} else {
		report.EmailOK = true
	}

	ownerNote := fmt.Sprintf("𓃼 New initiate #%d: %s (%s)\nUse /review to view.", in.ID, in.Name, in.Role)
	if err := s.notifier.QueueDM(ctx, s.ownerID, ownerNote); err != nil {
		logger.Warn("Failed to queue owner alert", "initiate_id", in.ID, "error", err)
	}

	return report, nil
}

// Review settles (or re-settles) a record. Re-reviewing a resolved record is
// allowed so the owner can correct a prior decision. The status update commits
// before any notification is attempted and is never rolled back by one.
func (s *initiateService) Review(ctx context.Context, id int64, decision domain.InitiateStatus, actor domain.Actor) (*domain.Initiate, *NotifyReport, error) {
	if actor.ID != s.ownerID {
		return nil, nil, fmt.Errorf("only the Veil Keeper may judge souls: %w", domain.ErrUnauthorized)
	}
	if decision != domain.InitiateStatusApproved && decision != domain.InitiateStatusRejected {
		return nil, nil, fmt.Errorf("decision must be approved or rejected: %w", domain.ErrValidation)
	}

	in, err := s.initRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	reviewer := actor.DisplayName()
	if reviewer == "" {
		reviewer = "Elder"
	}
	if err := s.initRepo.SetReview(ctx, id, decision, reviewer); err != nil {
		return nil, nil, err
	}
	in.Status = decision
	in.ReviewedBy = &reviewer

	report := &NotifyReport{}
	subject := "☬ Shadow Lurkers - Initiation APPROVED"
	verdict := "☬ You are a shadow of the Veil ☬"
	if decision == domain.InitiateStatusRejected {
		subject = "☠ Shadow Lurkers - Initiation REJECTED"
		verdict = "☠ The Veil has denied you ☠"
	}
	body := fmt.Sprintf("Your initiation has been %s.\n\nOAT: %s\nMoniker: %s\n\n%s", strings.ToUpper(string(decision)), in.OAT, in.Moniker, verdict)
	if err := s.notifier.QueueEmail(ctx, in.Email, subject, body); err != nil {
		logger.Warn("Failed to queue decision email", "initiate_id", id, "error", err)
	} else {
		report.EmailOK = true
	}

	if in.ChatID != nil {
		dm := fmt.Sprintf("%s\n\nOAT: %s", verdict, in.OAT)
		if err := s.notifier.QueueDM(ctx, *in.ChatID, dm); err != nil {
			logger.Warn("Failed to queue decision DM", "initiate_id", id, "error", err)
		} else {
			report.DMOK = true
		}
	} else {
		report.DMSkipped = true
	}

	logger.Info("Initiate reviewed", "initiate_id", id, "decision", decision, "reviewed_by", reviewer)
	return in, report, nil
}

func (s *initiateService) Get(ctx context.Context, id int64) (*domain.Initiate, error) {
	return s.initRepo.GetByID(ctx, id)
}

func (s *initiateService) ListAll(ctx context.Context) ([]domain.Initiate, error) {
	return s.initRepo.List(ctx)
}

// ListPending returns oldest first so review happens in submission order.
func (s *initiateService) ListPending(ctx context.Context) ([]domain.Initiate, error) {
	return s.initRepo.ListByStatus(ctx, domain.InitiateStatusPending, true)
}

func (s *initiateService) ListApproved(ctx context.Context, actor domain.Actor) ([]domain.Initiate, error) {
	if actor.ID != s.ownerID {
		return nil, fmt.Errorf("member roll is owner-only: %w", domain.ErrUnauthorized)
	}
	return s.initRepo.ListByStatus(ctx, domain.InitiateStatusApproved, false)
}

func (s *initiateService) Erase(ctx context.Context, id int64, actor domain.Actor) error {
	if actor.ID != s.ownerID {
		return fmt.Errorf("erasure is owner-only: %w", domain.ErrUnauthorized)
	}
	if err := s.initRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Initiate erased", "initiate_id", id, "by", actor.ID)
	return nil
}

func (s *initiateService) Stats(ctx context.Context, actor domain.Actor) (*domain.Stats, error) {
	if actor.ID != s.ownerID {
		return nil, fmt.Errorf("stats are owner-only: %w", domain.ErrUnauthorized)
	}
	pending, approved, rejected, err := s.initRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	warnings, err := s.warnRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	openTickets, err := s.ticketRepo.CountOpen(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Stats{
		Pending:     pending,
		Approved:    approved,
		Rejected:    rejected,
		Warnings:    warnings,
		OpenTickets: openTickets,
	}, nil
}

// BindChat links a live chat session to any still-unbound record matching the
// handle. Called whenever a known handle talks to the bot.
func (s *initiateService) BindChat(ctx context.Context, handle string, chatID int64) error {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil
	}
	return s.initRepo.BindChat(ctx, handle, chatID)
}

func (s *initiateService) StatusFor(ctx context.Context, handle, name string) (*domain.Initiate, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	return s.initRepo.GetByTelegram(ctx, handle, name)
}

// ApprovedChatIDs lists broadcast targets: approved initiates with a bound
// chat session.
func (s *initiateService) ApprovedChatIDs(ctx context.Context, actor domain.Actor) ([]int64, error) {
	if actor.ID != s.ownerID {
		return nil, fmt.Errorf("broadcast is owner-only: %w", domain.ErrUnauthorized)
	}
	return s.initRepo.ApprovedChatIDs(ctx)
}
