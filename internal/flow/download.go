package flow

import (
	"TeleVault/config"
	"TeleVault/internal/i18n"
	"TeleVault/internal/service"
	"TeleVault/internal/session"
	"TeleVault/internal/storage"
	"TeleVault/internal/transport"
	"TeleVault/model"
	"TeleVault/utils"
	"bytes"
	"context"
	"io"
	"log"
)

const downloadFlowName = "download"

// DownloadState exists only while a password challenge is open. Attempts
// counts wrong guesses for this redemption.
type DownloadState struct {
	FileID   uint64 `json:"file_id"`
	Attempts int    `json:"attempts"`
}

// DownloadFlow drives share-code redemption.
type DownloadFlow struct {
	Sessions  session.Store
	Transport transport.Transport
	Store     storage.Store
	Queue     service.Publisher
}

// Active reports whether the user has an open password challenge.
func (f *DownloadFlow) Active(ctx context.Context, user *model.User) bool {
	var st DownloadState
	ok, err := f.Sessions.Get(ctx, user.TelegramID, downloadFlowName, &st)
	return err == nil && ok
}

// Redeem resolves a share code. Unprotected files are delivered at once;
// protected ones open a password challenge. Unknown and expired codes look
// identical to the caller.
func (f *DownloadFlow) Redeem(ctx context.Context, user *model.User, code string) error {
	lang := user.LanguageCode

	file, err := service.GetFileByShareCode(code)
	if err != nil {
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "file_not_found"), nil)
	}

	if file.Password == nil || *file.Password == "" {
		return f.deliver(ctx, user, file, "")
	}

	st := DownloadState{FileID: file.ID}
	if err := f.Sessions.Set(ctx, user.TelegramID, downloadFlowName, st); err != nil {
		return err
	}
	return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_dl_password"), cancelKeyboard(lang))
}

// Handle feeds one event into an open password challenge.
func (f *DownloadFlow) Handle(ctx context.Context, user *model.User, ev Event) error {
	lang := user.LanguageCode

	var st DownloadState
	ok, err := f.Sessions.Get(ctx, user.TelegramID, downloadFlowName, &st)
	if err != nil {
		return err
	}
	if !ok {
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "nothing_to_cancel"), nil)
	}

	switch e := ev.(type) {
	case Cancel:
		if err := f.Sessions.Clear(ctx, user.TelegramID, downloadFlowName); err != nil {
			return err
		}
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "cancelled"), nil)
	case TextInput:
		return f.handlePassword(ctx, user, &st, e.Text)
	default:
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "enter_dl_password"), cancelKeyboard(lang))
	}
}

func (f *DownloadFlow) handlePassword(ctx context.Context, user *model.User, st *DownloadState, attempt string) error {
	lang := user.LanguageCode

	file, err := service.GetFileByID(st.FileID)
	if err != nil {
		_ = f.Sessions.Clear(ctx, user.TelegramID, downloadFlowName)
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "file_not_found"), nil)
	}

	if file.Password != nil && utils.CheckPwd(attempt, *file.Password) {
		if err := f.Sessions.Clear(ctx, user.TelegramID, downloadFlowName); err != nil {
			return err
		}
		return f.deliver(ctx, user, file, attempt)
	}

	st.Attempts++
	max := service.GetSettingInt(service.SettingMaxPasswordAttempts, 5)
	if st.Attempts >= max {
		if err := f.Sessions.Clear(ctx, user.TelegramID, downloadFlowName); err != nil {
			return err
		}
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "too_many_attempts"), nil)
	}
	if err := f.Sessions.Set(ctx, user.TelegramID, downloadFlowName, st); err != nil {
		return err
	}
	return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "incorrect_password"), cancelKeyboard(lang))
}

// deliver moves the bytes to the user, then records the download and
// notifies the owner. Counters move only after the transfer succeeded.
func (f *DownloadFlow) deliver(ctx context.Context, user *model.User, file *model.File, password string) error {
	lang := user.LanguageCode
	_ = f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "downloading_file"), nil)

	var err error
	if file.StorageObject != "" {
		err = f.deliverObject(ctx, user, file, password)
	} else {
		err = f.Transport.CopyMessage(ctx, user.TelegramID, config.AppConfig.StorageChannelID, file.MessageID)
	}
	if err != nil {
		log.Printf("download: delivery of file %d to user %d failed: %v", file.ID, user.ID, err)
		return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "error_occurred"), nil)
	}

	if err := service.RegisterDownload(file.ID, user.ID); err != nil {
		log.Printf("download: stats for file %d failed: %v", file.ID, err)
	}
	go func() {
		service.NotifyFileDownloaded(context.Background(), f.Transport, f.Queue, file, user)
	}()
	return f.Transport.SendMessage(ctx, user.TelegramID, i18n.T(lang, "file_sent"), nil)
}

// deliverObject fetches REST-uploaded bytes from object storage, decrypting
// with the redeemed password when the object was stored encrypted.
func (f *DownloadFlow) deliverObject(ctx context.Context, user *model.User, file *model.File, password string) error {
	if f.Store == nil {
		return storage.ErrObjectNotFound
	}
	obj, info, err := f.Store.GetObject(ctx, file.StorageObject)
	if err != nil {
		return err
	}
	defer obj.Close()

	var r io.Reader = obj
	size := info.Size
	if file.IsEncrypted {
		data, err := io.ReadAll(obj)
		if err != nil {
			return err
		}
		plain, err := utils.DecryptBytes(data, password)
		if err != nil {
			return err
		}
		r = bytes.NewReader(plain)
		size = int64(len(plain))
	}
	_, err = f.Transport.SendDocumentReader(ctx, user.TelegramID, file.FileName, size, r)
	return err
}
