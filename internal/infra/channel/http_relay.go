package channel

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"attribution/config"
	"attribution/internal/domain/entity"
	"attribution/internal/domain/service"

	"github.com/pkg/errors"
)

const maxRelayErrorBody = 1 << 10

// relayRequest is the JSON body posted to a provider relay.
type relayRequest struct {
	To          string            `json:"to"`
	From        string            `json:"from,omitempty"`
	TemplateID  string            `json:"template_id,omitempty"`
	Payload     map[string]any    `json:"payload,omitempty"`
	Variables   map[string]string `json:"variables,omitempty"`
	Attachments []relayAttachment `json:"attachments,omitempty"`
}

type relayAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"` // base64
}

// relayResponse is what a relay answers on 2xx and 4xx.
type relayResponse struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// httpRelay posts messages of one channel to a provider relay endpoint.
// 2xx means accepted, 4xx a permanent rejection, anything else an error.
type httpRelay struct {
	channel    entity.Channel
	cfg        config.RelayConfig
	httpClient *http.Client
}

func newHTTPRelay(channel entity.Channel, cfg config.RelayConfig, httpClient *http.Client) *httpRelay {
	return &httpRelay{
		channel:    channel,
		cfg:        cfg,
		httpClient: httpClient,
	}
}

func (r *httpRelay) SendEmail(ctx context.Context, to, templateID string, payload map[string]any, attachments []entity.Document) (*service.DeliveryReceipt, error) {
	req := relayRequest{
		To:         to,
		From:       r.cfg.Sender,
		TemplateID: templateID,
		Payload:    payload,
	}
	for _, doc := range attachments {
		req.Attachments = append(req.Attachments, relayAttachment{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Content:     base64.StdEncoding.EncodeToString(doc.Content),
		})
	}

	return r.post(ctx, req)
}

func (r *httpRelay) SendSMS(ctx context.Context, to string, payload map[string]any) (*service.DeliveryReceipt, error) {
	return r.post(ctx, relayRequest{To: to, From: r.cfg.Sender, Payload: payload})
}

func (r *httpRelay) SendWhatsApp(ctx context.Context, to, templateID string, variables map[string]string) (*service.DeliveryReceipt, error) {
	return r.post(ctx, relayRequest{To: to, From: r.cfg.Sender, TemplateID: templateID, Variables: variables})
}

func (r *httpRelay) post(ctx context.Context, body relayRequest) (*service.DeliveryReceipt, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s relay request failed", r.channel)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayErrorBody))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s relay response", r.channel)
	}

	var decoded relayResponse
	_ = json.Unmarshal(raw, &decoded)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return &service.DeliveryReceipt{Delivered: true, ProviderRef: decoded.ID}, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		reason := decoded.Reason
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}

		return &service.DeliveryReceipt{Delivered: false, ProviderRef: decoded.ID, Reason: reason}, nil
	default:
		return nil, errors.Errorf("%s relay returned status %d", r.channel, resp.StatusCode)
	}
}

// disabledSender is used for a channel whose relay has no endpoint.
type disabledSender struct {
	channel entity.Channel
}

func (s disabledSender) err() error {
	return errors.Errorf("%s relay endpoint not configured", s.channel)
}

func (s disabledSender) SendEmail(context.Context, string, string, map[string]any, []entity.Document) (*service.DeliveryReceipt, error) {
	return nil, s.err()
}

func (s disabledSender) SendSMS(context.Context, string, map[string]any) (*service.DeliveryReceipt, error) {
	return nil, s.err()
}

func (s disabledSender) SendWhatsApp(context.Context, string, string, map[string]string) (*service.DeliveryReceipt, error) {
	return nil, s.err()
}
