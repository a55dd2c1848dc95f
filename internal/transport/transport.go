// Package transport abstracts the messaging relay that moves file bytes.
// The relay retains the authoritative copy of every uploaded file; this
// service only ever references bytes by (channel, message position).
package transport

import (
	"context"
	"io"
)

// Button is one inline keyboard button; exactly one of Data or URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard is rows of buttons.
type Keyboard [][]Button

// FileRef identifies transport-held file content.
type FileRef struct {
	FileID string
	Kind   string // document, photo, video, audio, voice, video_note
}

// Transport is the messaging relay boundary. Failures carry no meaning
// beyond succeeded/failed; callers surface a generic delivery error.
type Transport interface {
	// SendMessage delivers text (with an optional keyboard) to a chat.
	SendMessage(ctx context.Context, chatID int64, text string, kb Keyboard) error
	// SendFile forwards transport-held content to a chat and returns the
	// new message position.
	SendFile(ctx context.Context, chatID int64, ref FileRef, caption string) (int, error)
	// SendDocumentReader uploads raw bytes as a document and returns the
	// new message position. Used for files that entered via the REST API.
	SendDocumentReader(ctx context.Context, chatID int64, name string, size int64, r io.Reader) (int, error)
	// CopyMessage re-delivers a stored message by position without moving
	// the bytes through this process.
	CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error
	// ChatMemberStatus reports a user's membership state in a channel
	// ("member", "left", "kicked", ...).
	ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error)
	// Username is the bot identity used to build share links.
	Username() string
}
