// Package document fetches generated booking documents from the rendering service.
package document

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"attribution/config"
	"attribution/internal/domain/entity"
	"attribution/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultGenerateTimeout = 20 * time.Second

type generateRequest struct {
	BookingID string `json:"booking_id"`
	Trigger   string `json:"trigger"`
}

type generateResponse struct {
	Documents []struct {
		Type        string `json:"type"`
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
		Content     string `json:"content"` // base64
	} `json:"documents"`
}

// httpGenerator asks the rendering service for the documents of a trigger.
type httpGenerator struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// noopGenerator is used when no rendering service is configured.
type noopGenerator struct{}

func (noopGenerator) GenerateDocuments(context.Context, uuid.UUID, entity.Trigger) ([]entity.Document, error) {
	return nil, nil
}

// GeneratorParams holds dependencies for DocumentGenerator, injected by Fx
type GeneratorParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewDocumentGenerator returns the HTTP generator, or one producing no documents
// when documents.endpoint is empty.
func NewDocumentGenerator(params GeneratorParams) service.DocumentGenerator {
	cfg := params.Config.Documents
	if cfg == nil || cfg.Endpoint == "" {
		params.Logger.Info("Document service not configured, notifications carry no attachments")

		return noopGenerator{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}

	return &httpGenerator{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     params.Logger,
	}
}

func (g *httpGenerator) GenerateDocuments(ctx context.Context, bookingID uuid.UUID, trigger entity.Trigger) ([]entity.Document, error) {
	body, err := json.Marshal(generateRequest{BookingID: bookingID.String(), Trigger: string(trigger)})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "document service request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("document service returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "decode document service response")
	}

	docs := make([]entity.Document, 0, len(decoded.Documents))
	for _, d := range decoded.Documents {
		content, err := base64.StdEncoding.DecodeString(d.Content)
		if err != nil {
			return nil, errors.Wrapf(err, "decode document %s", d.Filename)
		}
		docs = append(docs, entity.Document{
			Type:        entity.DocumentType(d.Type),
			Filename:    d.Filename,
			ContentType: d.ContentType,
			Content:     content,
		})
	}

	g.logger.DebugContext(ctx, "Documents generated",
		slog.String("booking_id", bookingID.String()),
		slog.String("trigger", string(trigger)),
		slog.Int("count", len(docs)),
	)

	return docs, nil
}

// Module provides the document generator FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewDocumentGenerator),
)
