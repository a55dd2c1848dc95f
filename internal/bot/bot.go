// Package bot runs the long-poll loop and routes updates into the
// conversation flows.
package bot

import (
	"TeleVault/config"
	"TeleVault/internal/flow"
	"TeleVault/internal/i18n"
	"TeleVault/internal/service"
	"TeleVault/internal/session"
	"TeleVault/internal/transport"
	"TeleVault/model"
	"TeleVault/utils"
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const broadcastFlowName = "broadcast"

// broadcastState marks an admin waiting to type the broadcast text.
type broadcastState struct {
	Pending bool `json:"pending"`
}

type Bot struct {
	Telegram *transport.Telegram
	Sessions session.Store
	Upload   *flow.UploadFlow
	Download *flow.DownloadFlow
	Search   *flow.SearchFlow
	Queue    service.Publisher
}

// Run consumes updates until ctx is cancelled. Each update is handled on
// its own goroutine; per-user ordering comes from the session store, not
// from serialized handling.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = config.AppConfig.PollTimeout
	updates := b.Telegram.API().GetUpdatesChan(cfg)

	log.Printf("bot: @%s polling for updates", b.Telegram.Username())
	for {
		select {
		case <-ctx.Done():
			b.Telegram.API().StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bot: panic handling update %d: %v", update.UpdateID, r)
		}
	}()

	switch {
	case update.Message != nil && update.Message.Chat.IsPrivate():
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) resolveUser(from *tgbotapi.User) (*model.User, error) {
	return service.GetOrCreateUser(service.UserIdentity{
		TelegramID:   from.ID,
		Username:     from.UserName,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		LanguageCode: from.LanguageCode,
	})
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	user, err := b.resolveUser(msg.From)
	if err != nil {
		log.Printf("bot: user resolve failed: %v", err)
		return
	}
	if user.IsBanned {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, user, msg)
		return
	}

	if ref, name, size, ok := extractFile(msg); ok {
		ev := flow.FileReceived{
			FileID:       ref.FileID,
			FileUniqueID: fileUniqueID(msg),
			Name:         name,
			Kind:         ref.Kind,
			Size:         size,
		}
		if b.Upload.Active(ctx, user) {
			b.report(b.Upload.Handle(ctx, user, ev))
		} else {
			b.send(ctx, user, i18n.T(user.LanguageCode, "help"))
		}
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	b.routeText(ctx, user, text)
}

// routeText sends plain text to whichever conversation is waiting for it.
func (b *Bot) routeText(ctx context.Context, user *model.User, text string) {
	switch {
	case b.broadcastPending(ctx, user):
		b.finishBroadcast(ctx, user, text)
	case b.Upload.Active(ctx, user):
		b.report(b.Upload.Handle(ctx, user, flow.TextInput{Text: text}))
	case b.Download.Active(ctx, user):
		b.report(b.Download.Handle(ctx, user, flow.TextInput{Text: text}))
	case b.Search.Active(ctx, user):
		b.report(b.Search.Handle(ctx, user, flow.TextInput{Text: text}))
	default:
		b.send(ctx, user, i18n.T(user.LanguageCode, "help"))
	}
}

func (b *Bot) handleCommand(ctx context.Context, user *model.User, msg *tgbotapi.Message) {
	lang := user.LanguageCode
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, user, msg.CommandArguments())
	case "help":
		b.send(ctx, user, i18n.T(lang, "help"))
	case "upload":
		b.report(b.Upload.Start(ctx, user))
	case "myfiles":
		b.sendMyFiles(ctx, user)
	case "search":
		b.report(b.Search.Start(ctx, user))
	case "language":
		b.sendLanguagePrompt(ctx, user)
	case "myref":
		b.sendReferral(ctx, user)
	case "cancel":
		b.handleCancel(ctx, user)
	case "stats":
		b.sendStats(ctx, user)
	case "broadcast":
		b.startBroadcast(ctx, user)
	case "backup":
		b.runBackup(ctx, user)
	default:
		b.send(ctx, user, i18n.T(lang, "help"))
	}
}

// handleStart handles the deep-link payloads: file_<code> redeems a share
// code, ref_* credits a referral.
func (b *Bot) handleStart(ctx context.Context, user *model.User, payload string) {
	payload = strings.TrimSpace(payload)
	if code := utils.ExtractShareCode(payload); code != "" {
		b.report(b.Download.Redeem(ctx, user, code))
		return
	}
	if strings.HasPrefix(payload, "ref_") {
		if err := service.RegisterReferral(user, payload); err != nil {
			log.Printf("bot: referral for user %d failed: %v", user.ID, err)
		}
	}
	b.send(ctx, user, i18n.T(user.LanguageCode, "welcome"))
}

func (b *Bot) handleCancel(ctx context.Context, user *model.User) {
	switch {
	case b.Upload.Active(ctx, user):
		b.report(b.Upload.Handle(ctx, user, flow.Cancel{}))
	case b.Download.Active(ctx, user):
		b.report(b.Download.Handle(ctx, user, flow.Cancel{}))
	case b.Search.Active(ctx, user):
		b.report(b.Search.Handle(ctx, user, flow.Cancel{}))
	case b.broadcastPending(ctx, user):
		_ = b.Sessions.Clear(ctx, user.TelegramID, broadcastFlowName)
		b.send(ctx, user, i18n.T(user.LanguageCode, "cancelled"))
	default:
		b.send(ctx, user, i18n.T(user.LanguageCode, "nothing_to_cancel"))
	}
}

func (b *Bot) sendMyFiles(ctx context.Context, user *model.User) {
	lang := user.LanguageCode
	files, _, err := service.GetUserFiles(user.ID, 0, 10)
	if err != nil {
		b.send(ctx, user, i18n.T(lang, "error_occurred"))
		return
	}
	if len(files) == 0 {
		b.send(ctx, user, i18n.T(lang, "my_files_empty"))
		return
	}
	var sb strings.Builder
	sb.WriteString(i18n.T(lang, "my_files_header"))
	for _, f := range files {
		sb.WriteString("\n• ")
		sb.WriteString(f.FileName)
		sb.WriteString(" (")
		sb.WriteString(utils.FileSizeStr(f.FileSize))
		sb.WriteString(", ⬇")
		sb.WriteString(utils.FormatID(uint64(f.DownloadCount)))
		sb.WriteString(")\n  ")
		sb.WriteString(f.ShareLink)
	}
	b.send(ctx, user, sb.String())
}

func (b *Bot) sendLanguagePrompt(ctx context.Context, user *model.User) {
	kb := transport.Keyboard{{
		{Text: "English", Data: "lang_en"},
		{Text: "العربية", Data: "lang_ar"},
	}}
	_ = b.Telegram.SendMessage(ctx, user.TelegramID,
		i18n.T(user.LanguageCode, "language_prompt"), kb)
}

func (b *Bot) sendReferral(ctx context.Context, user *model.User) {
	lang := user.LanguageCode
	count, err := service.CountReferrals(user.ID)
	if err != nil {
		b.send(ctx, user, i18n.T(lang, "error_occurred"))
		return
	}
	link := "https://t.me/" + b.Telegram.Username() + "?start=" + user.ReferralCode
	b.send(ctx, user, i18n.T(lang, "referral", link, count))
}

func (b *Bot) sendStats(ctx context.Context, user *model.User) {
	lang := user.LanguageCode
	if !user.IsAdmin {
		b.send(ctx, user, i18n.T(lang, "admin_only"))
		return
	}
	totals, err := service.GetTotals()
	if err != nil {
		b.send(ctx, user, i18n.T(lang, "error_occurred"))
		return
	}
	b.send(ctx, user, i18n.T(lang, "stats",
		totals.Users, totals.Files, totals.Downloads, utils.FileSizeStr(totals.StorageBytes)))
}

func (b *Bot) startBroadcast(ctx context.Context, user *model.User) {
	lang := user.LanguageCode
	if !user.IsAdmin {
		b.send(ctx, user, i18n.T(lang, "admin_only"))
		return
	}
	if err := b.Sessions.Set(ctx, user.TelegramID, broadcastFlowName, broadcastState{Pending: true}); err != nil {
		b.send(ctx, user, i18n.T(lang, "error_occurred"))
		return
	}
	b.send(ctx, user, i18n.T(lang, "broadcast_prompt"))
}

func (b *Bot) broadcastPending(ctx context.Context, user *model.User) bool {
	if !user.IsAdmin {
		return false
	}
	var st broadcastState
	ok, err := b.Sessions.Get(ctx, user.TelegramID, broadcastFlowName, &st)
	return err == nil && ok && st.Pending
}

func (b *Bot) finishBroadcast(ctx context.Context, user *model.User, text string) {
	lang := user.LanguageCode
	_ = b.Sessions.Clear(ctx, user.TelegramID, broadcastFlowName)
	sent, err := service.Broadcast(ctx, b.Telegram, b.Queue, text, 0)
	if err != nil {
		b.send(ctx, user, i18n.T(lang, "error_occurred"))
		return
	}
	b.send(ctx, user, i18n.T(lang, "broadcast_queued", sent))
}

func (b *Bot) runBackup(ctx context.Context, user *model.User) {
	lang := user.LanguageCode
	if !user.IsAdmin {
		b.send(ctx, user, i18n.T(lang, "admin_only"))
		return
	}
	backup, err := service.CreateBackup(ctx, b.Telegram, b.Queue, false)
	if err != nil {
		b.send(ctx, user, i18n.T(lang, "backup_failed", err.Error()))
		return
	}
	b.send(ctx, user, i18n.T(lang, "backup_done", backup.Filename, utils.FileSizeStr(backup.Size)))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// clear the button spinner regardless of the outcome
	defer func() {
		if _, err := b.Telegram.API().Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			log.Printf("bot: callback ack failed: %v", err)
		}
	}()

	user, err := b.resolveUser(cb.From)
	if err != nil {
		log.Printf("bot: user resolve failed: %v", err)
		return
	}
	if user.IsBanned {
		return
	}

	data := cb.Data
	switch {
	case data == "cancel":
		b.handleCancel(ctx, user)
	case data == "skip":
		b.routeFlowEvent(ctx, user, flow.Skip{})
	case data == "pw_yes":
		b.report(b.Upload.Handle(ctx, user, flow.PasswordYes{}))
	case data == "pw_no":
		b.report(b.Upload.Handle(ctx, user, flow.PasswordNo{}))
	case data == "verify_sub":
		b.report(b.Upload.Start(ctx, user))
	case data == "lang_en" || data == "lang_ar":
		lang := strings.TrimPrefix(data, "lang_")
		if err := service.SetLanguage(user.ID, lang); err == nil {
			user.LanguageCode = lang
		}
		b.send(ctx, user, i18n.T(user.LanguageCode, "language_set"))
	case strings.HasPrefix(data, "category_"):
		if id, err := utils.ParseID(strings.TrimPrefix(data, "category_")); err == nil {
			b.report(b.Upload.Handle(ctx, user, flow.CategoryChosen{ID: id}))
		}
	case strings.HasPrefix(data, "subcategory_"):
		if id, err := utils.ParseID(strings.TrimPrefix(data, "subcategory_")); err == nil {
			b.report(b.Upload.Handle(ctx, user, flow.SubcategoryChosen{ID: id}))
		}
	case strings.HasPrefix(data, "format_"):
		if id, err := utils.ParseID(strings.TrimPrefix(data, "format_")); err == nil {
			b.report(b.Upload.Handle(ctx, user, flow.FormatChosen{ID: id}))
		}
	case strings.HasPrefix(data, "search_"):
		b.report(b.Search.ChooseMode(ctx, user, strings.TrimPrefix(data, "search_")))
	case strings.HasPrefix(data, "pick_category_"):
		if id, err := utils.ParseID(strings.TrimPrefix(data, "pick_category_")); err == nil {
			b.report(b.Search.PickCategory(ctx, user, id))
		}
	case strings.HasPrefix(data, "pick_format_"):
		if id, err := utils.ParseID(strings.TrimPrefix(data, "pick_format_")); err == nil {
			b.report(b.Search.PickFormat(ctx, user, id))
		}
	}
}

// routeFlowEvent delivers a shared event to whichever flow is active.
func (b *Bot) routeFlowEvent(ctx context.Context, user *model.User, ev flow.Event) {
	switch {
	case b.Upload.Active(ctx, user):
		b.report(b.Upload.Handle(ctx, user, ev))
	case b.Download.Active(ctx, user):
		b.report(b.Download.Handle(ctx, user, ev))
	case b.Search.Active(ctx, user):
		b.report(b.Search.Handle(ctx, user, ev))
	}
}

func (b *Bot) send(ctx context.Context, user *model.User, text string) {
	if err := b.Telegram.SendMessage(ctx, user.TelegramID, text, nil); err != nil {
		log.Printf("bot: send to %d failed: %v", user.TelegramID, err)
	}
}

func (b *Bot) report(err error) {
	if err != nil {
		log.Printf("bot: %v", err)
	}
}

// extractFile pulls the shareable attachment out of a message.
func extractFile(msg *tgbotapi.Message) (transport.FileRef, string, int64, bool) {
	switch {
	case msg.Document != nil:
		return transport.FileRef{FileID: msg.Document.FileID, Kind: "document"},
			msg.Document.FileName, int64(msg.Document.FileSize), true
	case len(msg.Photo) > 0:
		best := msg.Photo[len(msg.Photo)-1]
		return transport.FileRef{FileID: best.FileID, Kind: "photo"},
			"photo.jpg", int64(best.FileSize), true
	case msg.Video != nil:
		name := msg.Video.FileName
		if name == "" {
			name = "video.mp4"
		}
		return transport.FileRef{FileID: msg.Video.FileID, Kind: "video"},
			name, int64(msg.Video.FileSize), true
	case msg.Audio != nil:
		name := msg.Audio.FileName
		if name == "" {
			name = "audio.mp3"
		}
		return transport.FileRef{FileID: msg.Audio.FileID, Kind: "audio"},
			name, int64(msg.Audio.FileSize), true
	case msg.Voice != nil:
		return transport.FileRef{FileID: msg.Voice.FileID, Kind: "voice"},
			"voice.ogg", int64(msg.Voice.FileSize), true
	case msg.VideoNote != nil:
		return transport.FileRef{FileID: msg.VideoNote.FileID, Kind: "video_note"},
			"video_note.mp4", int64(msg.VideoNote.FileSize), true
	default:
		return transport.FileRef{}, "", 0, false
	}
}

func fileUniqueID(msg *tgbotapi.Message) string {
	switch {
	case msg.Document != nil:
		return msg.Document.FileUniqueID
	case len(msg.Photo) > 0:
		return msg.Photo[len(msg.Photo)-1].FileUniqueID
	case msg.Video != nil:
		return msg.Video.FileUniqueID
	case msg.Audio != nil:
		return msg.Audio.FileUniqueID
	case msg.Voice != nil:
		return msg.Voice.FileUniqueID
	case msg.VideoNote != nil:
		return msg.VideoNote.FileUniqueID
	default:
		return ""
	}
}
