package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pressxtohonk/pressxtohonk-bot/pkg/gateway"
)

// Messenger is a gateway.Messenger that records outbound traffic as
// printable transcript lines. The local chat UI drains it after each
// dispatch; tests use it as a plain fake.
type Messenger struct {
	mu       sync.Mutex
	lines    []string
	presence gateway.Presence
}

func New() *Messenger {
	return &Messenger{}
}

func (m *Messenger) SendText(_ context.Context, _ int64, text string) error {
	m.append(text)
	return nil
}

func (m *Messenger) SendMarkdown(_ context.Context, _ int64, text string) error {
	m.append(text)
	return nil
}

func (m *Messenger) SendVoice(_ context.Context, _ int64, voice []byte, durationHint int) error {
	m.append(fmt.Sprintf("[voice clip: %d bytes, ~%ds]", len(voice), durationHint))
	return nil
}

func (m *Messenger) SendDocument(_ context.Context, _ int64, document []byte, filename string) error {
	m.append(fmt.Sprintf("[document %s: %d bytes]", filename, len(document)))
	return nil
}

func (m *Messenger) SendPresence(_ context.Context, _ int64, presence gateway.Presence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presence = presence
	return nil
}

func (m *Messenger) RegisterWebhook(context.Context, string) error {
	return errors.New("console messenger has no webhook to register")
}

func (m *Messenger) DecodeUpdate([]byte) (*gateway.Event, error) {
	return nil, errors.New("console messenger does not decode webhook payloads")
}

// Presence returns the most recent presence indication.
func (m *Messenger) Presence() gateway.Presence {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presence
}

// Drain returns all recorded lines and clears the transcript buffer.
func (m *Messenger) Drain() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := m.lines
	m.lines = nil
	return lines
}

func (m *Messenger) append(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
}
