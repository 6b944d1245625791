package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gh-nvat/pr-lifecycle-bot/src/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "s3cret"

type fakeDispatcher struct {
	err        error
	eventType  string
	deliveryID string
	payload    string
	calls      int
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, eventType, deliveryID string, payload []byte) error {
	d.calls++
	d.eventType = eventType
	d.deliveryID = deliveryID
	d.payload = string(payload)
	return d.err
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func webhookRequest(event, delivery, body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if event != "" {
		req.Header.Set(HeaderEvent, event)
	}
	if delivery != "" {
		req.Header.Set(HeaderDelivery, delivery)
	}
	if signature != "" {
		req.Header.Set(HeaderSignature, signature)
	}
	return req
}

func newTestServer(d Dispatcher) *Server {
	return New(d, Options{WebhookSecret: secret, RequestTimeout: 5 * time.Second})
}

func TestWebhook(t *testing.T) {
	body := `{"action":"opened"}`

	tests := []struct {
		name       string
		event      string
		signature  string
		dispatch   error
		wantStatus int
		wantCalls  int
		wantOK     bool
	}{
		{
			name:       "valid delivery",
			event:      "pull_request",
			signature:  sign(body),
			wantStatus: http.StatusOK,
			wantCalls:  1,
			wantOK:     true,
		},
		{
			name:       "bad signature",
			event:      "pull_request",
			signature:  "sha256=" + strings.Repeat("0", 64),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing signature",
			event:      "pull_request",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing event header",
			signature:  sign(body),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "handler failure",
			event:      "pull_request",
			signature:  sign(body),
			dispatch:   errors.New("github down"),
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
		{
			name:       "malformed payload",
			event:      "pull_request",
			signature:  sign(body),
			dispatch:   fmt.Errorf("%w: bad json", runner.ErrMalformedPayload),
			wantStatus: http.StatusBadRequest,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDispatcher{err: tt.dispatch}
			srv := newTestServer(d)

			resp, err := srv.App().Test(webhookRequest(tt.event, "delivery-1", body, tt.signature))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, d.calls)

			var got response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.wantOK, got.OK)
			if !tt.wantOK {
				assert.NotEmpty(t, got.Error)
			}
		})
	}
}

func TestWebhook_PassesDeliveryThrough(t *testing.T) {
	body := `{"zen":"hi"}`
	d := &fakeDispatcher{}

	resp, err := newTestServer(d).App().Test(webhookRequest("ping", "abc-123", body, sign(body)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ping", d.eventType)
	assert.Equal(t, "abc-123", d.deliveryID)
	assert.Equal(t, body, d.payload)
}

func TestWebhook_GeneratesDeliveryID(t *testing.T) {
	body := `{}`
	d := &fakeDispatcher{}

	resp, err := newTestServer(d).App().Test(webhookRequest("ping", "", body, sign(body)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, d.deliveryID, 36)
}

func TestHealthz(t *testing.T) {
	resp, err := newTestServer(&fakeDispatcher{}).App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := New(&fakeDispatcher{}, Options{Addr: "127.0.0.1:0", WebhookSecret: secret, ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
