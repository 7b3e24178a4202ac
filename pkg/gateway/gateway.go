package gateway

import "context"

// Kind classifies a normalized inbound event.
type Kind string

const (
	KindCommand Kind = "command"
	KindVoice   Kind = "voice"
	KindMedia   Kind = "media"
	KindText    Kind = "text"
)

// Presence is a transient chat status shown while a reply is prepared.
type Presence string

const (
	PresenceTyping      Presence = "typing"
	PresenceRecordVoice Presence = "record_voice"
	PresenceUploadPhoto Presence = "upload_photo"
)

// Event is the normalized representation of one platform update. It is
// immutable once constructed from the raw webhook payload.
type Event struct {
	Kind      Kind
	Command   string
	Text      string
	ChatID    int64
	MessageID int
}

// Messenger sends chat messages, commands, and media through one messaging
// platform and decodes its webhook payloads.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMarkdown(ctx context.Context, chatID int64, text string) error
	SendVoice(ctx context.Context, chatID int64, voice []byte, durationHint int) error
	SendDocument(ctx context.Context, chatID int64, document []byte, filename string) error
	SendPresence(ctx context.Context, chatID int64, presence Presence) error
	RegisterWebhook(ctx context.Context, url string) error

	// DecodeUpdate normalizes a raw webhook payload. A nil event with a nil
	// error means the update carries nothing this bot reacts to.
	DecodeUpdate(payload []byte) (*Event, error)
}
