package flow

import (
	"TeleVault/internal/transport"
	"context"
	"io"
	"strings"
	"sync"
)

// fakeTransport records outgoing traffic and answers membership checks from
// a fixed table.
type fakeTransport struct {
	mu         sync.Mutex
	messages   []string
	keyboards  []transport.Keyboard
	sentFiles  []transport.FileRef
	copied     []int
	members    map[int64]string
	nextMsgID  int
	sendErr    error
	copyErr    error
	docUploads []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{members: map[int64]string{}, nextMsgID: 100}
}

func (f *fakeTransport) SendMessage(ctx context.Context, chatID int64, text string, kb transport.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	f.keyboards = append(f.keyboards, kb)
	return nil
}

func (f *fakeTransport) SendFile(ctx context.Context, chatID int64, ref transport.FileRef, caption string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.sentFiles = append(f.sentFiles, ref)
	f.nextMsgID++
	return f.nextMsgID, nil
}

func (f *fakeTransport) SendDocumentReader(ctx context.Context, chatID int64, name string, size int64, r io.Reader) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docUploads = append(f.docUploads, name)
	f.nextMsgID++
	return f.nextMsgID, nil
}

func (f *fakeTransport) CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.copyErr != nil {
		return f.copyErr
	}
	f.copied = append(f.copied, messageID)
	return nil
}

func (f *fakeTransport) ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.members[chatID]
	if !ok {
		return "left", nil
	}
	return status, nil
}

func (f *fakeTransport) Username() string {
	return "test_bot"
}

func (f *fakeTransport) lastMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

func (f *fakeTransport) sawMessageContaining(sub string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}
