package flow

import (
	"TeleVault/config"
	"TeleVault/internal/i18n"
	"TeleVault/internal/service"
	"TeleVault/internal/session"
	"TeleVault/internal/transport"
	"TeleVault/model"
	"TeleVault/utils"
	"context"
	"log"
)

const uploadFlowName = "upload"

// Upload steps, in conversation order. Optional steps can be skipped;
// cancel is accepted at every step and discards the whole draft.
const (
	stepAwaitingFile         = "awaiting_file"
	stepSelectingCategory    = "selecting_category"
	stepSelectingSubcategory = "selecting_subcategory"
	stepSelectingFormat      = "selecting_format"
	stepEnteringSource       = "entering_source"
	stepEnteringFilename     = "entering_filename"
	stepEnteringTags         = "entering_tags"
	stepAskingPassword       = "asking_password"
	stepEnteringPassword     = "entering_password"
)

// UploadState is the persisted draft of one upload conversation. Nothing
// here is visible to anyone until commit writes the file row.
type UploadState struct {
	Step string `json:"step"`

	TelegramFileID string  `json:"telegram_file_id"`
	FileUniqueID   string  `json:"file_unique_id"`
	FileName       string  `json:"file_name"`
	FileSize       int64   `json:"file_size"`
	FileType       string  `json:"file_type"`
	CategoryID     *uint64 `json:"category_id,omitempty"`
	FormatID       *uint64 `json:"format_id,omitempty"`
	SourceURL      string  `json:"source_url,omitempty"`
	TagNames       []string `json:"tag_names,omitempty"`
}

// UploadFlow drives the upload conversation.
type UploadFlow struct {
	Sessions  session.Store
	Transport transport.Transport
	Queue     service.Publisher
}

// Active reports whether the user has an upload in progress.
func (f *UploadFlow) Active(ctx context.Context, user *model.User) bool {
	var st UploadState
	ok, err := f.Sessions.Get(ctx, user.TelegramID, uploadFlowName, &st)
	return err == nil && ok
}

// Start gates entry and opens the conversation. Denied users get a reason;
// unsubscribed users get the join-then-verify keyboard.
func (f *UploadFlow) Start(ctx context.Context, user *model.User) error {
	lang := user.LanguageCode
	if !service.CanUpload(user) {
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "upload_denied"), nil)
	}
	subscribed, err := service.IsSubscribed(ctx, f.Transport, user)
	if err != nil {
		return err
	}
	if !subscribed {
		return f.sendSubscribePrompt(ctx, user)
	}
	st := UploadState{Step: stepAwaitingFile}
	if err := f.Sessions.Set(ctx, user.TelegramID, uploadFlowName, st); err != nil {
		return err
	}
	return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "send_file"), cancelKeyboard(lang))
}

// Handle feeds one event into the conversation.
func (f *UploadFlow) Handle(ctx context.Context, user *model.User, ev Event) error {
	lang := user.LanguageCode

	var st UploadState
	ok, err := f.Sessions.Get(ctx, user.TelegramID, uploadFlowName, &st)
	if err != nil {
		return err
	}
	if !ok {
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "nothing_to_cancel"), nil)
	}

	if _, isCancel := ev.(Cancel); isCancel {
		if err := f.Sessions.Clear(ctx, user.TelegramID, uploadFlowName); err != nil {
			return err
		}
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "upload_cancelled"), nil)
	}

	switch st.Step {
	case stepAwaitingFile:
		return f.handleFile(ctx, user, &st, ev)
	case stepSelectingCategory:
		return f.handleCategory(ctx, user, &st, ev)
	case stepSelectingSubcategory:
		return f.handleSubcategory(ctx, user, &st, ev)
	case stepSelectingFormat:
		return f.handleFormat(ctx, user, &st, ev)
	case stepEnteringSource:
		return f.handleSource(ctx, user, &st, ev)
	case stepEnteringFilename:
		return f.handleFilename(ctx, user, &st, ev)
	case stepEnteringTags:
		return f.handleTags(ctx, user, &st, ev)
	case stepAskingPassword:
		return f.handlePasswordChoice(ctx, user, &st, ev)
	case stepEnteringPassword:
		return f.handlePassword(ctx, user, &st, ev)
	default:
		return f.fail(ctx, user)
	}
}

func (f *UploadFlow) handleFile(ctx context.Context, user *model.User, st *UploadState, ev Event) error {
	lang := user.LanguageCode
	file, ok := ev.(FileReceived)
	if !ok {
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "invalid_file"), cancelKeyboard(lang))
	}

	maxBytes := service.MaxFileSizeBytes()
	if file.Size > maxBytes {
		return f.Transport.SendMessage(ctx, user.TelegramID,
			i18n.T(lang, "file_too_large", maxBytes/(1024*1024)), cancelKeyboard(lang))
	}

	st.TelegramFileID = file.FileID
	st.FileUniqueID = file.FileUniqueID
	st.FileName = file.Name
	st.FileSize = file.Size
	st.FileType = file.Kind
	st.Step = stepSelectingCategory
	if err := f.Sessions.Set(ctx, user.TelegramID, uploadFlowName, st); err != nil {
		return err
	}

	categories, err := service.RootCategories()
	if err != nil {
		return f.fail(ctx, user)
	}
	if len(categories) == 0 {
		// nothing to classify under, move straight on
		return f.askSource(ctx, user, st)
	}
	kb := categoryKeyboard(lang, categories, "category_", false)
	return f.Transport.SendMessage(ctx, user.TelegramID,
		i18n.T(lang, "file_received", file.Name, utils.FileSizeStr(file.Size))+"\n"+i18n.T(lang, "select_category"), kb)
}

func (f *UploadFlow) handleCategory(ctx context.Context, user *model.User, st *UploadState, ev Event) error {
	lang := user.LanguageCode
	chosen, ok := ev.(CategoryChosen)
	if !ok {
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "select_category"), nil)
	}
	id := chosen.ID
	st.CategoryID = &id

	children, err := service.Subcategories(id)
	if err != nil {
		return f.fail(ctx, user)
	}
	if len(children) > 0 {
		st.Step = stepSelectingSubcategory
		if err := f.Sessions.Set(ctx, user.TelegramID, uploadFlowName, st); err != nil {
			return err
		}
		kb := categoryKeyboard(lang, children, "subcategory_", true)
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "select_subcategory"), kb)
	}
	return f.askFormat(ctx, user, st, id)
}

func (f *UploadFlow) handleSubcategory(ctx context.Context, user *model.User, st *UploadState, ev Event) error {
	lang := user.LanguageCode
	switch e := ev.(type) {
	case SubcategoryChosen:
		id := e.ID
		st.CategoryID = &id
		return f.askFormat(ctx, user, st, id)
	case Skip:
		return f.askFormat(ctx, user, st, *st.CategoryID)
	default:
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "select_subcategory"), nil)
	}
}

func (f *UploadFlow) askFormat(ctx context.Context, user *model.User, st *UploadState, categoryID uint64) error {
	lang := user.LanguageCode
	formats, err := service.FormatsForCategory(categoryID)
	if err != nil {
		return f.fail(ctx, user)
	}
	if len(formats) == 0 {
		return f.askSource(ctx, user, st)
	}
	st.Step = stepSelectingFormat
	if err := f.Sessions.Set(ctx, user.TelegramID, uploadFlowName, st); err != nil {
		return err
	}
	kb := formatKeyboard(lang, formats)
	return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "select_format"), kb)
}

func (f *UploadFlow) handleFormat(ctx context.Context, user *model.User, st *UploadState, ev Event) error {
	lang := user.LanguageCode
	switch e := ev.(type) {
	case FormatChosen:
		id := e.ID
		st.FormatID = &id
		return f.askSource(ctx, user, st)
	case Skip:
		return f.askSource(ctx, user, st)
	default:
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "select_format"), nil)
	}
}

func (f *UploadFlow) askSource(ctx context.Context, user *model.User, st *UploadState) error {
	lang := user.LanguageCode
	st.Step = stepEnteringSource
	if err := f.Sessions.Set(ctx, user.TelegramID, uploadFlowName, st); err != nil {
		return err
	}
	return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_source"), skipCancelKeyboard(lang))
}

func (f *UploadFlow) handleSource(ctx context.Context, user *model.User, st *UploadState, ev Event) error {
	lang := user.LanguageCode
	switch e := ev.(type) {
	case TextInput:
		st.SourceURL = e.Text
	case Skip:
	default:
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_source"), skipCancelKeyboard(lang))
	}
	st.Step = stepEnteringFilename
	if err := f.Sessions.Set(ctx, user.TelegramID, uploadFlowName, st); err != nil {
		return err
	}
	return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_filename"), skipCancelKeyboard(lang))
}

func (f *UploadFlow) handleFilename(ctx context.Context, user *model.User, st *UploadState, ev Event) error {
	lang := user.LanguageCode
	switch e := ev.(type) {
	case TextInput:
		if name := utils.SanitizeFilename(e.Text); name != "" {
			st.FileName = name
		}
	case Skip:
	default:
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_filename"), skipCancelKeyboard(lang))
	}
	st.Step = stepEnteringTags
	if err := f.Sessions.Set(ctx, user.TelegramID, uploadFlowName, st); err != nil {
		return err
	}
	return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_tags"), skipCancelKeyboard(lang))
}

func (f *UploadFlow) handleTags(ctx context.Context, user *model.User, st *UploadState, ev Event) error {
	lang := user.LanguageCode
	switch e := ev.(type) {
	case TextInput:
		st.TagNames = service.ParseTagInput(e.Text)
	case Skip:
	default:
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_tags"), skipCancelKeyboard(lang))
	}

	if !service.GetSettingBool(service.SettingPasswordProtection, true) {
		return f.commit(ctx, user, st, "")
	}
	st.Step = stepAskingPassword
	if err := f.Sessions.Set(ctx, user.TelegramID, uploadFlowName, st); err != nil {
		return err
	}
	kb := transport.Keyboard{{
		{Text: i18n.T(lang, "yes_button"), Data: "pw_yes"},
		{Text: i18n.T(lang, "no_button"), Data: "pw_no"},
	}}
	return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "set_password"), kb)
}

func (f *UploadFlow) handlePasswordChoice(ctx context.Context, user *model.User, st *UploadState, ev Event) error {
	lang := user.LanguageCode
	switch ev.(type) {
	case PasswordYes:
		st.Step = stepEnteringPassword
		if err := f.Sessions.Set(ctx, user.TelegramID, uploadFlowName, st); err != nil {
			return err
		}
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_password"), cancelKeyboard(lang))
	case PasswordNo, Skip:
		return f.commit(ctx, user, st, "")
	default:
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "set_password"), nil)
	}
}

func (f *UploadFlow) handlePassword(ctx context.Context, user *model.User, st *UploadState, ev Event) error {
	lang := user.LanguageCode
	text, ok := ev.(TextInput)
	if !ok || text.Text == "" {
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_password"), cancelKeyboard(lang))
	}
	return f.commit(ctx, user, st, text.Text)
}

// commit writes the file row, clears the draft and announces the share
// link. Any failure discards the draft entirely.
func (f *UploadFlow) commit(ctx context.Context, user *model.User, st *UploadState, password string) error {
	lang := user.LanguageCode
	_ = f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "processing_file"), nil)

	// the bytes reach the relay channel only now; a cancelled or abandoned
	// draft leaves nothing behind in the storage channel
	msgID, err := f.Transport.SendFile(ctx, config.AppConfig.StorageChannelID,
		transport.FileRef{FileID: st.TelegramFileID, Kind: st.FileType}, st.FileName)
	if err != nil {
		log.Printf("upload: relay forward failed for user %d: %v", user.ID, err)
		return f.fail(ctx, user)
	}

	draft := service.UploadDraft{
		TelegramFileID: st.TelegramFileID,
		FileUniqueID:   st.FileUniqueID,
		MessageID:      msgID,
		FileName:       st.FileName,
		FileSize:       st.FileSize,
		FileType:       st.FileType,
		CategoryID:     st.CategoryID,
		FormatID:       st.FormatID,
		TagNames:       st.TagNames,
	}
	if st.SourceURL != "" {
		draft.SourceURL = &st.SourceURL
	}
	if password != "" {
		draft.Password = &password
	}

	file, err := service.CommitUpload(user, draft)
	if err != nil {
		log.Printf("upload: commit failed for user %d: %v", user.ID, err)
		return f.fail(ctx, user)
	}
	if err := f.Sessions.Clear(ctx, user.TelegramID, uploadFlowName); err != nil {
		return err
	}
	msg := i18n.T(lang, "file_uploaded") + "\n" + i18n.T(lang, "share_link", file.ShareLink)
	return f.Transport.SendMessage(ctx, user.TelegramID, msg, nil)
}

// fail clears state and reports a generic error.
func (f *UploadFlow) fail(ctx context.Context, user *model.User) error {
	_ = f.Sessions.Clear(ctx, user.TelegramID, uploadFlowName)
	return f.Transport.SendMessage(ctx, user.TelegramID,
		i18n.T(user.LanguageCode, "error_occurred"), nil)
}

func (f *UploadFlow) sendSubscribePrompt(ctx context.Context, user *model.User) error {
	lang := user.LanguageCode
	channels, err := service.RequiredChannels()
	if err != nil {
		return err
	}
	var kb transport.Keyboard
	for _, ch := range channels {
		kb = append(kb, []transport.Button{{Text: ch.ChannelName, URL: ch.ChannelLink}})
	}
	kb = append(kb, []transport.Button{{Text: i18n.T(lang, "check_subscription"), Data: "verify_sub"}})
	return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "not_subscribed"), kb)
}

func cancelKeyboard(lang string) transport.Keyboard {
	return transport.Keyboard{{{Text: i18n.T(lang, "cancel_button"), Data: "cancel"}}}
}

func skipCancelKeyboard(lang string) transport.Keyboard {
	return transport.Keyboard{{
		{Text: i18n.T(lang, "skip_button"), Data: "skip"},
		{Text: i18n.T(lang, "cancel_button"), Data: "cancel"},
	}}
}

func categoryKeyboard(lang string, categories []model.Category, prefix string, skippable bool) transport.Keyboard {
	var kb transport.Keyboard
	row := []transport.Button{}
	for _, c := range categories {
		row = append(row, transport.Button{Text: c.Name(lang), Data: prefix + utils.FormatID(c.ID)})
		if len(row) == 2 {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	last := []transport.Button{}
	if skippable {
		last = append(last, transport.Button{Text: i18n.T(lang, "skip_button"), Data: "skip"})
	}
	last = append(last, transport.Button{Text: i18n.T(lang, "cancel_button"), Data: "cancel"})
	kb = append(kb, last)
	return kb
}

func formatKeyboard(lang string, formats []model.Format) transport.Keyboard {
	var kb transport.Keyboard
	for _, f := range formats {
		label := f.Name
		if d := f.Description(lang); d != "" {
			label = f.Name + " - " + d
		}
		kb = append(kb, []transport.Button{{Text: label, Data: "format_" + utils.FormatID(f.ID)}})
	}
	kb = append(kb, []transport.Button{
		{Text: i18n.T(lang, "skip_button"), Data: "skip"},
		{Text: i18n.T(lang, "cancel_button"), Data: "cancel"},
	})
	return kb
}
