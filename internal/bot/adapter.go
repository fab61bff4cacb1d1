package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shadowlurkers-backend/internal/service"
)

// API is the slice of the Telegram client the bot layer uses. *tgbotapi.BotAPI
// satisfies it; tests inject a fake.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// telegramAdapter exposes the platform primitives the services need without
// letting them import the Telegram library.
type telegramAdapter struct {
	api API
}

func NewTelegramAdapter(api API) *telegramAdapter {
	return &telegramAdapter{api: api}
}

var _ service.DMSender = (*telegramAdapter)(nil)
var _ service.ChatModerator = (*telegramAdapter)(nil)

func (a *telegramAdapter) SendDM(ctx context.Context, chatID int64, text string) error {
	_, err := a.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (a *telegramAdapter) BanMember(ctx context.Context, chatID, userID int64) error {
	_, err := a.api.Request(tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
	})
	return err
}

func (a *telegramAdapter) UnbanMember(ctx context.Context, chatID, userID int64) error {
	_, err := a.api.Request(tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		OnlyIfBanned:     false,
	})
	return err
}

func (a *telegramAdapter) RestrictMember(ctx context.Context, chatID, userID int64, canSend bool, until time.Time) error {
	var untilDate int64
	if !until.IsZero() {
		untilDate = until.Unix()
	}
	_, err := a.api.Request(tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		UntilDate:        untilDate,
		Permissions: &tgbotapi.ChatPermissions{
			CanSendMessages:       canSend,
			CanSendMediaMessages:  canSend,
			CanSendOtherMessages:  canSend,
			CanAddWebPagePreviews: canSend,
		},
	})
	return err
}

func (a *telegramAdapter) PromoteMember(ctx context.Context, chatID, userID int64, promote bool) error {
	_, err := a.api.Request(tgbotapi.PromoteChatMemberConfig{
		ChatMemberConfig:   tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		CanDeleteMessages:  promote,
		CanRestrictMembers: promote,
		CanInviteUsers:     promote,
		CanPinMessages:     promote,
	})
	return err
}
