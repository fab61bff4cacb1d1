package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/logger"
	"shadowlurkers-backend/internal/service"
)

func (h *BotHandler) cmdInitiate(msg *tgbotapi.Message) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, initiateText(h.frontendURL))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("𓃼 OPEN SHADOW PORTAL 𓃼", h.frontendURL),
		),
	)
	if _, err := h.api.Send(reply); err != nil {
		logger.Warn("Reply delivery failed", "chat_id", msg.Chat.ID, "error", err)
	}
}

func (h *BotHandler) cmdMyStatus(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	in, err := h.initiates.StatusFor(ctx, actor.Username, actor.FirstName)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.reply(msg.Chat.ID, "☬ You are not yet recorded in the Silent Ledger. Use /initiate to begin.")
	case err != nil:
		logger.Error("Status lookup failed", "user_id", actor.ID, "error", err)
		h.reply(msg.Chat.ID, msgLedgerDown)
	default:
		h.reply(msg.Chat.ID, statusText(in))
	}
}

// cmdReview posts one card per pending initiate, oldest first, each with
// inline approve/reject buttons.
func (h *BotHandler) cmdReview(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	if actor.ID != h.ownerID {
		h.reply(msg.Chat.ID, msgOwnerOnly)
		return
	}
	pending, err := h.initiates.ListPending(ctx)
	if err != nil {
		logger.Error("Pending list failed", "error", err)
		h.reply(msg.Chat.ID, msgLedgerDown)
		return
	}
	if len(pending) == 0 {
		h.reply(msg.Chat.ID, msgNothingPending)
		return
	}

	h.reply(msg.Chat.ID, fmt.Sprintf("☬ Found %d pending initiate(s):", len(pending)))
	for i := range pending {
		in := &pending[i]
		card := tgbotapi.NewMessage(msg.Chat.ID, pendingCardText(in))
		card.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("☬ APPROVE ☬", fmt.Sprintf("approve_%d", in.ID)),
				tgbotapi.NewInlineKeyboardButtonData("☠ REJECT ☠", fmt.Sprintf("reject_%d", in.ID)),
			),
		)
		if _, err := h.api.Send(card); err != nil {
			logger.Warn("Review card delivery failed", "initiate_id", in.ID, "error", err)
		}
	}
}

func (h *BotHandler) cmdDecide(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor, decision domain.InitiateStatus) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.reply(msg.Chat.ID, fmt.Sprintf("Usage: /%s [initiate_id]", msg.Command()))
		return
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		h.reply(msg.Chat.ID, fmt.Sprintf("Usage: /%s [initiate_id]", msg.Command()))
		return
	}

	in, report, err := h.initiates.Review(ctx, id, decision, actor)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		h.reply(msg.Chat.ID, msgOwnerOnly)
	case errors.Is(err, domain.ErrNotFound):
		h.reply(msg.Chat.ID, "Initiate not found.")
	case err != nil:
		logger.Error("Review failed", "initiate_id", id, "error", err)
		h.reply(msg.Chat.ID, msgLedgerDown)
	default:
		h.reply(msg.Chat.ID, verdictLine(in, report))
	}
}

// verdictLine reports the settled decision plus any degraded side effects;
// notification failure never undoes the decision.
func verdictLine(in *domain.Initiate, report *service.NotifyReport) string {
	mark := "☬"
	if in.Status == domain.InitiateStatusRejected {
		mark = "☠"
	}
	line := fmt.Sprintf("%s Initiate #%d (%s) has been %s.", mark, in.ID, in.Name, strings.ToUpper(string(in.Status)))
	if !report.EmailOK {
		line += "\n⚠ The raven to their email could not be recorded."
	}
	if report.DMSkipped {
		line += "\n⚠ No bound chat session; no DM sent."
	} else if !report.DMOK {
		line += "\n⚠ The whisper to their chat could not be recorded."
	}
	return line
}

func (h *BotHandler) cmdMembers(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	approved, err := h.initiates.ListApproved(ctx, actor)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		h.reply(msg.Chat.ID, msgOwnerOnly)
		return
	case err != nil:
		logger.Error("Members list failed", "error", err)
		h.reply(msg.Chat.ID, msgLedgerDown)
		return
	}
	if len(approved) == 0 {
		h.reply(msg.Chat.ID, "☬ No approved initiates yet.")
		return
	}

	text := fmt.Sprintf("☬ SHADOWS OF THE VEIL (%d)\n\n", len(approved))
	for i, in := range approved {
		text += fmt.Sprintf("%d. %s (%s)\n   OAT: %s\n   Since: %s\n\n",
			i+1, in.Moniker, in.Role, in.OAT, in.CreatedAt.Format("2006-01-02"))
		// Telegram caps messages at 4096 chars; flush before we hit it.
		if len(text) > 3500 {
			h.reply(msg.Chat.ID, text)
			text = ""
		}
	}
	if text != "" {
		h.reply(msg.Chat.ID, text)
	}
}

func (h *BotHandler) cmdDelete(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	arg := strings.TrimSpace(msg.CommandArguments())
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		h.reply(msg.Chat.ID, "Usage: /delete [initiate_id]")
		return
	}
	err = h.initiates.Erase(ctx, id, actor)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		h.reply(msg.Chat.ID, msgOwnerOnly)
	case errors.Is(err, domain.ErrNotFound):
		h.reply(msg.Chat.ID, "Initiate not found.")
	case err != nil:
		logger.Error("Erase failed", "initiate_id", id, "error", err)
		h.reply(msg.Chat.ID, msgLedgerDown)
	default:
		h.reply(msg.Chat.ID, fmt.Sprintf("☠ Initiate #%d has been erased from the Silent Ledger.", id))
	}
}

func (h *BotHandler) cmdStats(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	stats, err := h.initiates.Stats(ctx, actor)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		h.reply(msg.Chat.ID, msgOwnerOnly)
		return
	case err != nil:
		logger.Error("Stats failed", "error", err)
		h.reply(msg.Chat.ID, msgLedgerDown)
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf(`𓃼 STATE OF THE VEIL 𓃼

⏳ Pending: %d
☬ Approved: %d
☠ Rejected: %d
⚠ Warnings issued: %d
📨 Open tickets: %d`,
		stats.Pending, stats.Approved, stats.Rejected, stats.Warnings, stats.OpenTickets))
}

// handleCallback settles review-card button presses.
func (h *BotHandler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.From == nil || q.Message == nil {
		return
	}
	actor := actorFromUser(q.From)

	action, idStr, found := strings.Cut(q.Data, "_")
	if !found {
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}

	var decision domain.InitiateStatus
	switch action {
	case "approve":
		decision = domain.InitiateStatusApproved
	case "reject":
		decision = domain.InitiateStatusRejected
	default:
		return
	}

	in, _, err := h.initiates.Review(ctx, id, decision, actor)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		h.answerCallback(q, "☠ Only Elders can judge souls.")
	case errors.Is(err, domain.ErrNotFound):
		h.answerCallback(q, "Initiate not found in the Silent Ledger.")
	case err != nil:
		logger.Error("Callback review failed", "initiate_id", id, "error", err)
		h.answerCallback(q, msgLedgerDown)
	default:
		edit := tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID,
			fmt.Sprintf("Initiate #%d (%s) has been %s.", in.ID, in.Name, in.Status))
		if _, err := h.api.Send(edit); err != nil {
			logger.Warn("Review card edit failed", "initiate_id", id, "error", err)
		}
		h.answerCallback(q, fmt.Sprintf("✅ %s", in.Status))
	}
}

func (h *BotHandler) answerCallback(q *tgbotapi.CallbackQuery, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallback(q.ID, text)); err != nil {
		logger.Warn("Callback answer failed", "error", err)
	}
}
