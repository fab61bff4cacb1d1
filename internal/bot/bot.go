package bot

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/logger"
	"shadowlurkers-backend/internal/service"
)

// handlerTimeout bounds the work done for a single update.
const handlerTimeout = 30 * time.Second

type BotHandler struct {
	api         API
	initiates   service.InitiateService
	moderation  service.ModerationService
	support     service.SupportService
	notifier    service.NotifierService
	assistant   service.AssistantService
	ownerID     int64
	frontendURL string
}

func NewBotHandler(
	api API,
	initiates service.InitiateService,
	moderation service.ModerationService,
	support service.SupportService,
	notifier service.NotifierService,
	assistant service.AssistantService,
	ownerID int64,
	frontendURL string,
) *BotHandler {
	return &BotHandler{
		api:         api,
		initiates:   initiates,
		moderation:  moderation,
		support:     support,
		notifier:    notifier,
		assistant:   assistant,
		ownerID:     ownerID,
		frontendURL: frontendURL,
	}
}

// Run consumes the long-polling update channel until it closes.
func (h *BotHandler) Run(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		h.HandleUpdate(update)
	}
}

// HandleUpdate dispatches one update. The recover keeps a malformed update
// from killing the whole loop; the user sees a themed failure instead.
func (h *BotHandler) HandleUpdate(update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Update handler panicked", "panic", r, "update_id", update.UpdateID)
			if update.Message != nil {
				h.reply(update.Message.Chat.ID, msgGenericError)
			}
		}
	}()

	switch {
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	actor := actorFromUser(msg.From)

	// Lazy chat binding: any message from a known handle links their record to
	// a live session for later DMs and broadcasts.
	if actor.Username != "" {
		if err := h.initiates.BindChat(ctx, actor.Username, msg.Chat.ID); err != nil {
			logger.Warn("Chat binding failed", "username", actor.Username, "error", err)
		}
	}
	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		if err := h.moderation.TrackMember(ctx, msg.Chat.ID, actor); err != nil {
			logger.Warn("Member tracking failed", "user_id", actor.ID, "error", err)
		}
		for _, joined := range msg.NewChatMembers {
			if err := h.moderation.TrackMember(ctx, msg.Chat.ID, actorFromUser(&joined)); err != nil {
				logger.Warn("Member tracking failed", "user_id", joined.ID, "error", err)
			}
		}
	}

	if msg.IsCommand() {
		h.handleCommand(ctx, msg, actor)
		return
	}
	h.handleFreeText(ctx, msg)
}

func (h *BotHandler) handleCommand(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) {
	switch msg.Command() {
	case "start":
		h.reply(msg.Chat.ID, welcomeText(actor.FirstName, actor.ID == h.ownerID))
	case "codex":
		h.reply(msg.Chat.ID, codexText)
	case "quote":
		h.reply(msg.Chat.ID, randomQuote())
	case "initiate":
		h.cmdInitiate(msg)
	case "mystatus":
		h.cmdMyStatus(ctx, msg, actor)
	case "review":
		h.cmdReview(ctx, msg, actor)
	case "approve":
		h.cmdDecide(ctx, msg, actor, domain.InitiateStatusApproved)
	case "reject":
		h.cmdDecide(ctx, msg, actor, domain.InitiateStatusRejected)
	case "members":
		h.cmdMembers(ctx, msg, actor)
	case "delete":
		h.cmdDelete(ctx, msg, actor)
	case "stats":
		h.cmdStats(ctx, msg, actor)
	case "support":
		h.cmdSupport(ctx, msg, actor)
	case "reply":
		h.cmdReply(ctx, msg, actor)
	case "broadcast":
		h.cmdBroadcast(ctx, msg, actor)
	case "warn":
		h.cmdWarn(ctx, msg, actor)
	case "warnings":
		h.cmdWarnings(ctx, msg, actor)
	case "clearwarn":
		h.cmdClearWarn(ctx, msg, actor)
	case "mute":
		h.cmdMute(ctx, msg, actor)
	case "unmute":
		h.cmdUnmute(ctx, msg, actor)
	case "kick":
		h.cmdKick(ctx, msg, actor)
	case "ban":
		h.cmdBan(ctx, msg, actor)
	case "unban":
		h.cmdUnban(ctx, msg, actor)
	case "promote":
		h.cmdPromote(ctx, msg, actor)
	case "demote":
		h.cmdDemote(ctx, msg, actor)
	case "info":
		h.cmdInfo(ctx, msg, actor)
	case "oracle":
		h.cmdOracle(ctx, msg, actor)
	case "forge":
		h.cmdForge(ctx, msg)
	}
}

// handleFreeText is the fallback for non-command messages: the chat's
// assistant toggle decides whether the Oracle answers.
func (h *BotHandler) handleFreeText(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	enabled, err := h.assistant.Enabled(ctx, msg.Chat.ID)
	if err != nil {
		logger.Warn("Assistant toggle lookup failed", "chat_id", msg.Chat.ID, "error", err)
		return
	}
	if !enabled {
		return
	}
	answer, err := h.assistant.Ask(ctx, text)
	if err != nil {
		h.reply(msg.Chat.ID, msgOracleSilent)
		return
	}
	h.reply(msg.Chat.ID, answer)
}

func (h *BotHandler) reply(chatID int64, text string) {
	if _, err := h.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Warn("Reply delivery failed", "chat_id", chatID, "error", err)
	}
}

func actorFromUser(u *tgbotapi.User) domain.Actor {
	return domain.Actor{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		Bot:       u.IsBot,
	}
}

// withAdminFlag fills in the live chat-admin status used by the authorization
// predicates and the protected-target check.
func (h *BotHandler) withAdminFlag(actor domain.Actor, chatID int64) domain.Actor {
	member, err := h.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: actor.ID},
	})
	if err != nil {
		logger.Warn("Chat member lookup failed", "chat_id", chatID, "user_id", actor.ID, "error", err)
		return actor
	}
	actor.ChatAdmin = member.IsCreator() || member.IsAdministrator()
	return actor
}

// resolveTarget applies the uniform target resolution order: the replied-to
// user, then an explicit @handle argument, then the invoker themself. It
// returns the remaining arguments.
func (h *BotHandler) resolveTarget(ctx context.Context, msg *tgbotapi.Message, actor domain.Actor) (domain.Actor, []string, error) {
	args := strings.Fields(msg.CommandArguments())

	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		return actorFromUser(msg.ReplyToMessage.From), args, nil
	}
	if len(args) > 0 && strings.HasPrefix(args[0], "@") {
		target, err := h.moderation.Resolve(ctx, msg.Chat.ID, args[0])
		if err != nil {
			return domain.Actor{}, nil, err
		}
		return target, args[1:], nil
	}
	return actor, args, nil
}
