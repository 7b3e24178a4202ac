package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pressxtohonk/pressxtohonk-bot/pkg/gateway"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/router"

	"github.com/stretchr/testify/require"
)

const testEndpoint = "https://bot.example.com/webhook"

type scriptedMessenger struct {
	webhooks []string
	texts    []string

	decodeEvent *gateway.Event
	decodeErr   error
	decoded     [][]byte

	registerErr error
}

func (m *scriptedMessenger) SendText(_ context.Context, _ int64, text string) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *scriptedMessenger) SendMarkdown(context.Context, int64, string) error {
	return nil
}

func (m *scriptedMessenger) SendVoice(context.Context, int64, []byte, int) error {
	return nil
}

func (m *scriptedMessenger) SendDocument(context.Context, int64, []byte, string) error {
	return nil
}

func (m *scriptedMessenger) SendPresence(context.Context, int64, gateway.Presence) error {
	return nil
}

func (m *scriptedMessenger) RegisterWebhook(_ context.Context, url string) error {
	if m.registerErr != nil {
		return m.registerErr
	}
	m.webhooks = append(m.webhooks, url)
	return nil
}

func (m *scriptedMessenger) DecodeUpdate(payload []byte) (*gateway.Event, error) {
	m.decoded = append(m.decoded, payload)
	if m.decodeErr != nil {
		return nil, m.decodeErr
	}
	return m.decodeEvent, nil
}

type harness struct {
	dispatcher *Dispatcher
	messenger  *scriptedMessenger
	bindCalls  int
	dispatched []gateway.Event
}

func newHarness(t *testing.T, messenger *scriptedMessenger) *harness {
	t.Helper()

	h := &harness{messenger: messenger}

	factory := func(context.Context) (*Binding, error) {
		h.bindCalls++

		r := router.New(slog.Default())
		r.Handle(router.Command("honk"), func(_ context.Context, event gateway.Event) error {
			h.dispatched = append(h.dispatched, event)
			return nil
		})

		return &Binding{Messenger: messenger, Router: r}, nil
	}

	dispatcher, err := NewDispatcher(testEndpoint, factory, slog.Default())
	require.NoError(t, err)
	h.dispatcher = dispatcher
	return h
}

func (h *harness) do(method string, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, "https://bot.example.com/webhook", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	h.dispatcher.ServeHTTP(recorder, request)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var response errorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response
}

func TestGetRegistersWebhook(t *testing.T) {
	h := newHarness(t, &scriptedMessenger{})

	recorder := h.do(http.MethodGet, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "Set webhook", recorder.Body.String())
	require.Equal(t, []string{testEndpoint}, h.messenger.webhooks)
}

func TestGetRegistrationIsRepeatable(t *testing.T) {
	h := newHarness(t, &scriptedMessenger{})

	first := h.do(http.MethodGet, "")
	second := h.do(http.MethodGet, "")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, []string{testEndpoint, testEndpoint}, h.messenger.webhooks, "same URL both times, nothing accumulates")
	require.Equal(t, 2, h.bindCalls, "bindings are rebuilt per invocation")
}

func TestGetRegistrationFailureIsAborted(t *testing.T) {
	h := newHarness(t, &scriptedMessenger{registerErr: errors.New("platform unavailable")})

	recorder := h.do(http.MethodGet, "")
	require.Equal(t, http.StatusConflict, recorder.Code)

	response := decodeError(t, recorder)
	require.Equal(t, "ABORTED", response.Code)
	require.Equal(t, "error in register_webhook: platform unavailable", response.Message)
}

func TestPostDispatchesDecodedEvent(t *testing.T) {
	event := &gateway.Event{Kind: gateway.KindCommand, Command: "honk", ChatID: 42}
	h := newHarness(t, &scriptedMessenger{decodeEvent: event})

	recorder := h.do(http.MethodPost, `{"update_id":1}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "ok", recorder.Body.String())
	require.Len(t, h.dispatched, 1)
	require.Equal(t, *event, h.dispatched[0])
}

func TestPostUnmatchedEventStillOK(t *testing.T) {
	event := &gateway.Event{Kind: gateway.KindText, Text: "hello", ChatID: 42}
	h := newHarness(t, &scriptedMessenger{decodeEvent: event})

	recorder := h.do(http.MethodPost, `{"update_id":1}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "ok", recorder.Body.String())
	require.Empty(t, h.dispatched)
}

func TestPostNilEventStillOK(t *testing.T) {
	h := newHarness(t, &scriptedMessenger{decodeEvent: nil})

	recorder := h.do(http.MethodPost, `{"update_id":99}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "ok", recorder.Body.String())
}

func TestPostInvalidJSONIsAbortedBeforeDecode(t *testing.T) {
	h := newHarness(t, &scriptedMessenger{})

	recorder := h.do(http.MethodPost, "{not json")
	require.Equal(t, http.StatusConflict, recorder.Code)

	response := decodeError(t, recorder)
	require.Equal(t, "ABORTED", response.Code)
	require.True(t, strings.HasPrefix(response.Message, "error in extract_json:"), response.Message)
	require.Empty(t, h.messenger.decoded, "decode must not run after extraction fails")
	require.Empty(t, h.dispatched, "router must not run after extraction fails")
}

func TestPostUndecodableUpdateIsAborted(t *testing.T) {
	h := newHarness(t, &scriptedMessenger{decodeErr: errors.New("unknown payload shape")})

	recorder := h.do(http.MethodPost, `{"update_id":1}`)
	require.Equal(t, http.StatusConflict, recorder.Code)

	response := decodeError(t, recorder)
	require.Equal(t, "error in decode_update: unknown payload shape", response.Message)
	require.Empty(t, h.dispatched)
}

func TestUnsupportedMethodIsUnimplemented(t *testing.T) {
	h := newHarness(t, &scriptedMessenger{})

	recorder := h.do(http.MethodPut, "")
	require.Equal(t, http.StatusNotImplemented, recorder.Code)

	response := decodeError(t, recorder)
	require.Equal(t, "UNIMPLEMENTED", response.Code)
	require.Equal(t, "PUT not supported", response.Message)
	require.Zero(t, h.bindCalls, "no bindings, no pipeline, no gateway calls")
	require.Empty(t, h.messenger.webhooks)
	require.Empty(t, h.messenger.decoded)
}

func TestBindingFailureIsAborted(t *testing.T) {
	factory := func(context.Context) (*Binding, error) {
		return nil, errors.New("credential missing")
	}

	dispatcher, err := NewDispatcher(testEndpoint, factory, slog.Default())
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, testEndpoint, strings.NewReader(""))
	recorder := httptest.NewRecorder()
	dispatcher.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusConflict, recorder.Code)
	response := decodeError(t, recorder)
	require.Equal(t, "error in build_bindings: credential missing", response.Message)
}

func TestNewDispatcherValidation(t *testing.T) {
	_, err := NewDispatcher("", func(context.Context) (*Binding, error) { return nil, nil }, slog.Default())
	require.Error(t, err)

	_, err = NewDispatcher(testEndpoint, nil, slog.Default())
	require.Error(t, err)
}
