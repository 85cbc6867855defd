package document

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

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerator(endpoint string) *httpGenerator {
	gen := NewDocumentGenerator(GeneratorParams{
		Config: &config.Config{Documents: &config.DocumentsConfig{Endpoint: endpoint}},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return gen.(*httpGenerator)
}

func TestHTTPGenerator_GenerateDocuments(t *testing.T) {
	bookingID := uuid.New()
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"documents":[{"type":"INVOICE","filename":"invoice.pdf","content_type":"application/pdf","content":"JVBERg=="}]}`))
	}))
	defer server.Close()

	docs, err := newGenerator(server.URL).GenerateDocuments(context.Background(), bookingID, entity.TriggerPaymentCompleted)

	require.NoError(t, err)
	assert.Equal(t, bookingID.String(), got.BookingID)
	assert.Equal(t, "PAYMENT_COMPLETED", got.Trigger)
	require.Len(t, docs, 1)
	assert.Equal(t, entity.DocumentTypeInvoice, docs[0].Type)
	assert.Equal(t, []byte("%PDF"), docs[0].Content)
}

func TestHTTPGenerator_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newGenerator(server.URL).GenerateDocuments(context.Background(), uuid.New(), entity.TriggerBookingConfirmed)

	assert.Error(t, err)
}

func TestNewDocumentGenerator_WithoutEndpoint(t *testing.T) {
	gen := NewDocumentGenerator(GeneratorParams{
		Config: &config.Config{},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	docs, err := gen.GenerateDocuments(context.Background(), uuid.New(), entity.TriggerBookingConfirmed)

	require.NoError(t, err)
	assert.Empty(t, docs)
}
