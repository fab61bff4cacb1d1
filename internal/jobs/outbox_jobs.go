package jobs

import (
	"context"
	"fmt"
	"time"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/logger"
)

const jobTimeout = 2 * time.Minute

// SweepOutbox retries every unsent notification that still has delivery
// attempts left. Entries that exhaust their attempts stay in the table for
// inspection; they are never retried again.
func (jr *JobRunner) SweepOutbox() {
	jr.runWithRecovery("sweep_outbox", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		sent, failed, err := jr.notifier.Sweep(ctx)
		if err != nil {
			logger.Error("Outbox sweep failed", "error", err)
			return
		}
		if sent == 0 && failed == 0 {
			return
		}
		logger.Info("Outbox sweep finished", "sent", sent, "failed", failed)
	})
}

// SendPendingDigest DMs the owner a morning summary of initiates still
// awaiting judgment. Quiet days produce no message.
func (jr *JobRunner) SendPendingDigest() {
	jr.runWithRecovery("pending_digest", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		pending, err := jr.store.ListByStatus(ctx, domain.InitiateStatusPending, true)
		if err != nil {
			logger.Error("Pending digest query failed", "error", err)
			return
		}
		if len(pending) == 0 {
			return
		}

		oldest := time.Since(pending[0].CreatedAt).Round(time.Hour)
		text := fmt.Sprintf("𓃼 MORNING LEDGER 𓃼\n\n%d initiate(s) await your judgment.\nThe oldest has waited %s.\nUse /review to judge them.",
			len(pending), oldest)
		if err := jr.notifier.QueueDM(ctx, jr.config.Telegram.OwnerID, text); err != nil {
			logger.Error("Pending digest delivery failed", "error", err)
		}
	})
}

// PruneOutbox deletes delivered outbox rows past the retention window.
func (jr *JobRunner) PruneOutbox() {
	jr.runWithRecovery("prune_outbox", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		cutoff := time.Now().AddDate(0, 0, -jr.config.Outbox.PruneAfterDays)
		n, err := jr.store.PruneSent(ctx, cutoff)
		if err != nil {
			logger.Error("Outbox prune failed", "error", err)
			return
		}
		logger.Info("Outbox pruned", "deleted", n, "cutoff", cutoff.Format(time.RFC3339))
	})
}
