package transport

import (
	"context"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram implements Transport over the Bot API.
type Telegram struct {
	api *tgbotapi.BotAPI
}

// NewTelegram connects to the Bot API with the given token.
func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{api: api}, nil
}

// API exposes the underlying client for the update poller.
func (t *Telegram) API() *tgbotapi.BotAPI {
	return t.api
}

// Username returns the bot's username.
func (t *Telegram) Username() string {
	return t.api.Self.UserName
}

// SendMessage delivers text with an optional inline keyboard.
func (t *Telegram) SendMessage(ctx context.Context, chatID int64, text string, kb Keyboard) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(kb) > 0 {
		msg.ReplyMarkup = buildMarkup(kb)
	}
	_, err := t.api.Send(msg)
	return err
}

// SendFile forwards transport-held content and returns the message position.
func (t *Telegram) SendFile(ctx context.Context, chatID int64, ref FileRef, caption string) (int, error) {
	var cfg tgbotapi.Chattable
	file := tgbotapi.FileID(ref.FileID)
	switch ref.Kind {
	case "photo":
		c := tgbotapi.NewPhoto(chatID, file)
		c.Caption = caption
		cfg = c
	case "video":
		c := tgbotapi.NewVideo(chatID, file)
		c.Caption = caption
		cfg = c
	case "audio":
		c := tgbotapi.NewAudio(chatID, file)
		c.Caption = caption
		cfg = c
	case "voice":
		c := tgbotapi.NewVoice(chatID, file)
		c.Caption = caption
		cfg = c
	case "video_note":
		cfg = tgbotapi.NewVideoNote(chatID, 0, file)
	default:
		c := tgbotapi.NewDocument(chatID, file)
		c.Caption = caption
		cfg = c
	}
	sent, err := t.api.Send(cfg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendDocumentReader uploads raw bytes as a document.
func (t *Telegram) SendDocumentReader(ctx context.Context, chatID int64, name string, size int64, r io.Reader) (int, error) {
	cfg := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: name, Reader: r})
	sent, err := t.api.Send(cfg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// CopyMessage re-delivers a stored message by position.
func (t *Telegram) CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	_, err := t.api.CopyMessage(tgbotapi.NewCopyMessage(toChatID, fromChatID, messageID))
	return err
}

// ChatMemberStatus reports a user's membership state in a channel.
func (t *Telegram) ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	member, err := t.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

func buildMarkup(kb Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
