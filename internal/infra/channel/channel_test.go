package channel

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"attribution/config"
	"attribution/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPRelay_SendEmail(t *testing.T) {
	var (
		got  relayRequest
		auth string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id":"msg-42"}`))
	}))
	defer server.Close()

	relay := newHTTPRelay(entity.ChannelEmail, config.RelayConfig{
		Endpoint: server.URL,
		APIKey:   "secret",
		Sender:   "noreply@example.com",
	}, server.Client())

	receipt, err := relay.SendEmail(context.Background(), "client@example.com", "customer_booking_confirmed",
		map[string]any{"booking_reference": "BK-1"},
		[]entity.Document{{Filename: "invoice.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}})

	require.NoError(t, err)
	assert.True(t, receipt.Delivered)
	assert.Equal(t, "msg-42", receipt.ProviderRef)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "client@example.com", got.To)
	assert.Equal(t, "noreply@example.com", got.From)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "JVBERg==", got.Attachments[0].Content)
}

func TestHTTPRelay_ClientErrorIsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"reason":"invalid number"}`))
	}))
	defer server.Close()

	relay := newHTTPRelay(entity.ChannelSMS, config.RelayConfig{Endpoint: server.URL}, server.Client())

	receipt, err := relay.SendSMS(context.Background(), "+33612345678", nil)

	require.NoError(t, err)
	assert.False(t, receipt.Delivered)
	assert.Equal(t, "invalid number", receipt.Reason)
}

func TestHTTPRelay_ServerErrorIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	relay := newHTTPRelay(entity.ChannelWhatsApp, config.RelayConfig{Endpoint: server.URL}, server.Client())

	receipt, err := relay.SendWhatsApp(context.Background(), "+33612345678", "pro_broadcast", map[string]string{"city": "Lyon"})

	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.Contains(t, err.Error(), "502")
}

func TestNewSenders(t *testing.T) {
	t.Run("log driver by default", func(t *testing.T) {
		senders, err := NewSenders(SenderParams{Config: &config.Config{}, Logger: discardLogger()})
		require.NoError(t, err)

		receipt, err := senders.WhatsApp.SendWhatsApp(context.Background(), "+33612345678", "t", nil)
		require.NoError(t, err)
		assert.True(t, receipt.Delivered)
		assert.NotEmpty(t, receipt.ProviderRef)
	})

	t.Run("http driver without endpoint disables the channel", func(t *testing.T) {
		senders, err := NewSenders(SenderParams{
			Config: &config.Config{Channels: &config.ChannelsConfig{Driver: "http"}},
			Logger: discardLogger(),
		})
		require.NoError(t, err)

		_, err = senders.SMS.SendSMS(context.Background(), "+33612345678", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := NewSenders(SenderParams{
			Config: &config.Config{Channels: &config.ChannelsConfig{Driver: "carrier-pigeon"}},
			Logger: discardLogger(),
		})
		assert.Error(t, err)
	})
}
