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

// replyModErr maps the moderation error taxonomy to themed replies. It
// returns false when err is nil so callers can fall through to the success
// message.
func (h *BotHandler) replyModErr(chatID int64, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrUnauthorized):
		h.reply(chatID, msgElderOnly)
	case errors.Is(err, domain.ErrProtectedTarget):
		h.reply(chatID, msgProtected)
	case errors.Is(err, domain.ErrNotFound):
		h.reply(chatID, msgUnknownSoul)
	case errors.Is(err, domain.ErrValidation):
		h.reply(chatID, msgNoTarget)
	default:
		logger.Error("Moderation command failed", "chat_id", chatID, "error", err)
		h.reply(chatID, msgGenericError)
	}
	return true
}

func (h *BotHandler) cmdWarn(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	target, rest, err := h.resolveTarget(ctx, msg, actor)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	reason := strings.Join(rest, " ")
	if reason == "" {
		reason = "No reason given"
	}

	issuer := h.withAdminFlag(actor, msg.Chat.ID)
	res, err := h.moderation.Warn(ctx, msg.Chat.ID, h.withAdminFlag(target, msg.Chat.ID), issuer, reason)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	if res.AutoBanned {
		h.reply(msg.Chat.ID, fmt.Sprintf("☠ %s has gathered %d warnings and is cast beyond the Veil. BANNED.",
			target.DisplayName(), res.Count))
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("⚠ %s has been warned (%d/%d).\nReason: %s",
		target.DisplayName(), res.Count, domain.WarnThreshold, reason))
}

func (h *BotHandler) cmdWarnings(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	target, _, err := h.resolveTarget(ctx, msg, actor)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	// Anyone may inspect their own record; someone else's needs elder rank.
	if target.ID != actor.ID && !h.moderation.IsElder(ctx, h.withAdminFlag(actor, msg.Chat.ID)) {
		h.reply(msg.Chat.ID, msgElderOnly)
		return
	}

	warnings, err := h.moderation.Warnings(ctx, msg.Chat.ID, target.ID)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	if len(warnings) == 0 {
		h.reply(msg.Chat.ID, fmt.Sprintf("☬ %s carries no warnings. Their slate is clean.", target.DisplayName()))
		return
	}

	text := fmt.Sprintf("⚠ Warnings for %s (%d/%d):\n\n", target.DisplayName(), len(warnings), domain.WarnThreshold)
	for i, w := range warnings {
		text += fmt.Sprintf("%d. %s — %s\n", i+1, w.CreatedAt.Format("2006-01-02 15:04"), w.Reason)
	}
	h.reply(msg.Chat.ID, text)
}

func (h *BotHandler) cmdClearWarn(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	target, _, err := h.resolveTarget(ctx, msg, actor)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	if err := h.moderation.ClearWarnings(ctx, msg.Chat.ID, target, h.withAdminFlag(actor, msg.Chat.ID)); h.replyModErr(msg.Chat.ID, err) {
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("☬ The slate of %s has been wiped clean.", target.DisplayName()))
}

func (h *BotHandler) cmdMute(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	target, rest, err := h.resolveTarget(ctx, msg, actor)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	minutes := 0
	if len(rest) > 0 {
		if n, err := strconv.Atoi(rest[0]); err == nil {
			minutes = n
		}
	}

	until, err := h.moderation.Mute(ctx, msg.Chat.ID, h.withAdminFlag(target, msg.Chat.ID), h.withAdminFlag(actor, msg.Chat.ID), minutes)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("🤐 %s has been silenced until %s.",
		target.DisplayName(), until.Format("15:04 MST")))
}

func (h *BotHandler) cmdUnmute(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	target, _, err := h.resolveTarget(ctx, msg, actor)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	if err := h.moderation.Unmute(ctx, msg.Chat.ID, h.withAdminFlag(target, msg.Chat.ID), h.withAdminFlag(actor, msg.Chat.ID)); h.replyModErr(msg.Chat.ID, err) {
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("🗣 The voice of %s returns to the Veil.", target.DisplayName()))
}

func (h *BotHandler) cmdKick(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	target, _, err := h.resolveTarget(ctx, msg, actor)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	if err := h.moderation.Kick(ctx, msg.Chat.ID, h.withAdminFlag(target, msg.Chat.ID), h.withAdminFlag(actor, msg.Chat.ID)); h.replyModErr(msg.Chat.ID, err) {
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("👢 %s has been cast out of the Veil. The gate remains open.", target.DisplayName()))
}

func (h *BotHandler) cmdBan(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	target, rest, err := h.resolveTarget(ctx, msg, actor)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	reason := strings.Join(rest, " ")
	if reason == "" {
		reason = "No reason given"
	}
	if err := h.moderation.Ban(ctx, msg.Chat.ID, h.withAdminFlag(target, msg.Chat.ID), h.withAdminFlag(actor, msg.Chat.ID), reason); h.replyModErr(msg.Chat.ID, err) {
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("☠ %s has been banished beyond the Veil.\nReason: %s", target.DisplayName(), reason))
}

func (h *BotHandler) cmdUnban(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		h.reply(msg.Chat.ID, "Usage: /unban [@username or user_id]")
		return
	}

	userID, err := h.moderation.Unban(ctx, msg.Chat.ID, ref, h.withAdminFlag(actor, msg.Chat.ID))
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("☬ The banishment of %s (%d) is lifted. They may seek the Veil again.", ref, userID))
}

func (h *BotHandler) cmdPromote(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	target, _, err := h.resolveTarget(ctx, msg, actor)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	err = h.moderation.Promote(ctx, msg.Chat.ID, target, h.withAdminFlag(actor, msg.Chat.ID))
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("☬ %s rises. They now stand among the Elders of the Veil.", target.DisplayName()))
}

func (h *BotHandler) cmdDemote(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	target, _, err := h.resolveTarget(ctx, msg, actor)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	err = h.moderation.Demote(ctx, msg.Chat.ID, target, h.withAdminFlag(actor, msg.Chat.ID))
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("𓃼 %s descends. Their elder rank is stripped.", target.DisplayName()))
}

func (h *BotHandler) cmdInfo(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	target, _, err := h.resolveTarget(ctx, msg, actor)
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}
	if target.ID != actor.ID && !h.moderation.IsElder(ctx, h.withAdminFlag(actor, msg.Chat.ID)) {
		h.reply(msg.Chat.ID, msgElderOnly)
		return
	}

	m, err := h.moderation.MemberInfo(ctx, msg.Chat.ID, target.ID)
	if errors.Is(err, domain.ErrNotFound) {
		h.reply(msg.Chat.ID, fmt.Sprintf("☬ %s leaves no trace in this chat's records.", target.DisplayName()))
		return
	}
	if h.replyModErr(msg.Chat.ID, err) {
		return
	}

	state := "☬ In good standing"
	if m.Banned {
		state = "☠ BANNED — " + m.BanReason
	}
	elder := ""
	if h.moderation.IsElder(ctx, h.withAdminFlag(target, msg.Chat.ID)) {
		elder = "\nRank: Elder of the Veil"
	}
	h.reply(msg.Chat.ID, fmt.Sprintf(`𓃼 SOUL RECORD 𓃼

Name: %s
ID: %d
Joined: %s
Warnings: %d/%d
Standing: %s%s`,
		target.DisplayName(), m.UserID, m.JoinedAt.Format("2006-01-02"),
		m.WarnCount, domain.WarnThreshold, state, elder))
}
