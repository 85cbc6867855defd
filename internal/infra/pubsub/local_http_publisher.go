package pubsub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"attribution/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const localPublishTimeout = 30 * time.Second

// EventTypeAttribution is the "type" attribute of published attribution lifecycle events.
const EventTypeAttribution = "attribution_event"

// localHTTPPublisher implements EventPublisher by sending HTTP POST requests
// to a local endpoint, simulating Pub/Sub push behavior for development
type localHTTPPublisher struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// PushMessage is the envelope Google Pub/Sub uses when pushing to HTTP endpoints.
type PushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// NewPushMessage wraps data in a push envelope addressed to subscription.
func NewPushMessage(subscription string, data []byte, attributes map[string]string) *PushMessage {
	msg := &PushMessage{Subscription: subscription}
	msg.Message.Data = base64.StdEncoding.EncodeToString(data)
	msg.Message.Attributes = attributes
	msg.Message.MessageID = uuid.NewString()
	msg.Message.PublishTime = time.Now().UTC().Format(time.RFC3339)

	return msg
}

// Decode returns the raw payload of the push message.
func (m *PushMessage) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(m.Message.Data)
	if err != nil {
		return nil, errors.Wrap(err, "decode push message data")
	}

	return data, nil
}

// NewLocalHTTPPublisher creates a new local HTTP publisher for development
func NewLocalHTTPPublisher(endpoint string, logger *slog.Logger) service.EventPublisher {
	return &localHTTPPublisher{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: localPublishTimeout,
		},
		logger: logger,
	}
}

// PublishAttributionEvent posts the event to the local endpoint in push format
func (p *localHTTPPublisher) PublishAttributionEvent(ctx context.Context, event *service.AttributionEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	body, err := json.Marshal(NewPushMessage("projects/local/subscriptions/attribution-events", eventData, eventAttributes(event)))
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if event.RequestID != "" {
		req.Header.Set("X-Request-Id", event.RequestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("local endpoint returned non-success status: %d", resp.StatusCode)
	}

	p.logger.Debug("[LocalPubSub] Attribution event published",
		slog.String("endpoint", p.endpoint),
		slog.String("attribution_id", event.AttributionID),
		slog.String("status", event.Status),
	)

	return nil
}

// Close releases resources (no-op for HTTP client)
func (p *localHTTPPublisher) Close() error {
	return nil
}

func eventAttributes(event *service.AttributionEvent) map[string]string {
	attributes := map[string]string{
		"type":           EventTypeAttribution,
		"attribution_id": event.AttributionID,
		"booking_id":     event.BookingID,
		"status":         event.Status,
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}

	return attributes
}
