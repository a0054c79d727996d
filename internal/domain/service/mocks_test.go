package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- mock ControlSender ---

type mockControl struct {
	mu      sync.Mutex
	sent    []sentMessage
	sendErr error
}

type sentMessage struct {
	ChatID string
	Text   string
}

func (m *mockControl) SendMessage(_ context.Context, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (m *mockControl) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

var _ outbound.ControlSender = (*mockControl)(nil)

// --- mock Messenger ---

type mockMessenger struct {
	mu sync.Mutex

	authorized    bool
	authorizedErr error

	codeHash       string
	requestCodeErr error
	codeRequests   []string

	signInErr   error
	signInCalls []signInCall

	resolvePeers map[string]model.ChannelPeer
	resolveErr   error
	joinErr      error
	joined       []string

	registry outbound.HandlerRegistry

	sentTexts   []sentText
	sendTextErr map[int]error // call index -> error
	sentFiles   []sentFile
	sendFileErr error
}

type signInCall struct{ Phone, Code, CodeHash string }
type sentText struct{ Handle, Text string }
type sentFile struct{ Handle, Path, Caption string }

func (m *mockMessenger) Run(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}

func (m *mockMessenger) IsAuthorized(_ context.Context) (bool, error) {
	return m.authorized, m.authorizedErr
}

func (m *mockMessenger) RequestCode(_ context.Context, phone string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codeRequests = append(m.codeRequests, phone)
	return m.codeHash, m.requestCodeErr
}

func (m *mockMessenger) SignIn(_ context.Context, phone, code, codeHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signInCalls = append(m.signInCalls, signInCall{phone, code, codeHash})
	return m.signInErr
}

func (m *mockMessenger) ResolveChannel(_ context.Context, identifier string) (model.ChannelPeer, error) {
	if m.resolveErr != nil {
		return model.ChannelPeer{}, m.resolveErr
	}
	if p, ok := m.resolvePeers[identifier]; ok {
		return p, nil
	}
	return model.ChannelPeer{Identifier: identifier, ChannelID: int64(len(identifier))}, nil
}

func (m *mockMessenger) JoinChannel(_ context.Context, peer model.ChannelPeer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, peer.Identifier)
	return nil
}

func (m *mockMessenger) Subscribe(registry outbound.HandlerRegistry) {
	m.registry = registry
}

func (m *mockMessenger) SendText(_ context.Context, handle, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.sendTextErr[len(m.sentTexts)]; ok {
		return err
	}
	m.sentTexts = append(m.sentTexts, sentText{Handle: handle, Text: text})
	return nil
}

func (m *mockMessenger) SendFile(_ context.Context, handle, path, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendFileErr != nil {
		return m.sendFileErr
	}
	m.sentFiles = append(m.sentFiles, sentFile{Handle: handle, Path: path, Caption: caption})
	return nil
}

var _ outbound.Messenger = (*mockMessenger)(nil)

// --- mock ReplyGenerator ---

type mockGenerator struct {
	reply string
	err   error
	calls int
}

func (m *mockGenerator) Generate(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.reply, m.err
}

var _ outbound.ReplyGenerator = (*mockGenerator)(nil)

// --- mock DeliveryRepository ---

type mockDeliveryRepo struct {
	mu      sync.Mutex
	created []model.Delivery
}

func (m *mockDeliveryRepo) Create(_ context.Context, d model.Delivery) (model.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, d)
	return d, nil
}

func (m *mockDeliveryRepo) ListRecent(_ context.Context, limit int) ([]model.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.created) {
		limit = len(m.created)
	}
	out := make([]model.Delivery, limit)
	copy(out, m.created[len(m.created)-limit:])
	return out, nil
}

var _ outbound.DeliveryRepository = (*mockDeliveryRepo)(nil)
