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
)

func (h *BotHandler) cmdSupport(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		h.reply(msg.Chat.ID, "Usage: /support [your message to the Veil Keeper]")
		return
	}
	if strings.EqualFold(text, "list") {
		h.listTickets(ctx, msg, actor)
		return
	}

	t := &domain.Ticket{
		UserID:   actor.ID,
		Username: actor.Username,
		ChatID:   msg.Chat.ID,
		Message:  text,
	}
	if err := h.support.Create(ctx, t); err != nil {
		logger.Error("Ticket creation failed", "user_id", actor.ID, "error", err)
		h.reply(msg.Chat.ID, msgLedgerDown)
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("📨 Your plea #%d has been carried to the Veil Keeper. Await the answer.", t.ID))
}

func (h *BotHandler) listTickets(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	tickets, err := h.support.ListOpen(ctx, actor)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		h.reply(msg.Chat.ID, msgOwnerOnly)
		return
	case err != nil:
		logger.Error("Ticket list failed", "error", err)
		h.reply(msg.Chat.ID, msgLedgerDown)
		return
	}
	if len(tickets) == 0 {
		h.reply(msg.Chat.ID, "☬ No open pleas. The Veil is at peace.")
		return
	}

	text := fmt.Sprintf("📨 OPEN PLEAS (%d)\n\n", len(tickets))
	for _, t := range tickets {
		text += fmt.Sprintf("#%d from @%s — %s\n%s\n\n", t.ID, t.Username, t.CreatedAt.Format("2006-01-02 15:04"), t.Message)
	}
	text += "Answer with /reply [id] [text]."
	h.reply(msg.Chat.ID, text)
}

func (h *BotHandler) cmdReply(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		h.reply(msg.Chat.ID, "Usage: /reply [ticket_id] [answer]")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.reply(msg.Chat.ID, "Usage: /reply [ticket_id] [answer]")
		return
	}

	t, err := h.support.Reply(ctx, id, strings.Join(args[1:], " "), actor)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		h.reply(msg.Chat.ID, msgOwnerOnly)
	case errors.Is(err, domain.ErrNotFound):
		h.reply(msg.Chat.ID, "Ticket not found.")
	case err != nil:
		logger.Error("Ticket reply failed", "ticket_id", id, "error", err)
		h.reply(msg.Chat.ID, msgLedgerDown)
	default:
		h.reply(msg.Chat.ID, fmt.Sprintf("☬ Answer delivered to @%s (ticket #%d).", t.Username, t.ID))
	}
}

func (h *BotHandler) cmdBroadcast(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		h.reply(msg.Chat.ID, "Usage: /broadcast [message to all approved shadows]")
		return
	}

	chatIDs, err := h.initiates.ApprovedChatIDs(ctx, actor)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		h.reply(msg.Chat.ID, msgOwnerOnly)
		return
	case err != nil:
		logger.Error("Broadcast recipient lookup failed", "error", err)
		h.reply(msg.Chat.ID, msgLedgerDown)
		return
	}
	if len(chatIDs) == 0 {
		h.reply(msg.Chat.ID, "☬ No approved shadows with bound chat sessions to reach.")
		return
	}

	delivered, failed := h.notifier.Broadcast(ctx, chatIDs, "𓃼 A DECREE FROM THE VEIL 𓃼\n\n"+text)
	h.reply(msg.Chat.ID, fmt.Sprintf("☬ The decree has gone forth. Delivered: %d, lost to the void: %d.", delivered, failed))
}

func (h *BotHandler) cmdOracle(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	if !h.moderation.IsElder(ctx, h.withAdminFlag(actor, msg.Chat.ID)) {
		h.reply(msg.Chat.ID, msgElderOnly)
		return
	}

	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	switch arg {
	case "on":
		if err := h.assistant.SetEnabled(ctx, msg.Chat.ID, true, actor); err != nil {
			logger.Error("Oracle enable failed", "chat_id", msg.Chat.ID, "error", err)
			h.reply(msg.Chat.ID, msgLedgerDown)
			return
		}
		h.reply(msg.Chat.ID, "🔮 The Oracle awakens. Speak, and it shall answer.")
	case "off":
		if err := h.assistant.SetEnabled(ctx, msg.Chat.ID, false, actor); err != nil {
			logger.Error("Oracle disable failed", "chat_id", msg.Chat.ID, "error", err)
			h.reply(msg.Chat.ID, msgLedgerDown)
			return
		}
		h.reply(msg.Chat.ID, "🔮 The Oracle returns to its slumber.")
	default:
		h.reply(msg.Chat.ID, "Usage: /oracle [on|off]")
	}
}

func (h *BotHandler) cmdForge(ctx context.Context, msg *tgbotapi.Message) {
	prompt := strings.TrimSpace(msg.CommandArguments())
	if prompt == "" {
		h.reply(msg.Chat.ID, "Usage: /forge [what the Oracle shall craft]")
		return
	}

	out, err := h.assistant.Forge(ctx, prompt)
	if err != nil {
		logger.Warn("Forge request failed", "chat_id", msg.Chat.ID, "error", err)
		h.reply(msg.Chat.ID, msgOracleSilent)
		return
	}
	h.reply(msg.Chat.ID, out)
}
