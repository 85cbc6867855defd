package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"attribution/config"
	"attribution/internal/delivery/api/validator"
	deliverycontext "attribution/internal/delivery/context"
	"attribution/internal/domain/constants"
	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/infra/pubsub"
	"attribution/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// Message types carried in the "type" attribute of a push message.
const (
	MessageTypeBookingTrigger       = "booking_trigger"
	MessageTypeAttributionRequest   = "attribution_request"
	MessageTypeProfessionalResponse = "professional_response"
	MessageTypeAttributionEvent     = pubsub.EventTypeAttribution
)

// BookingTriggerMessage asks for the notifications of a booking lifecycle event.
type BookingTriggerMessage struct {
	RequestID     string         `json:"request_id,omitempty"`
	BookingID     uuid.UUID      `json:"booking_id" validate:"required"`
	Trigger       entity.Trigger `json:"trigger" validate:"required"`
	SkipStaff     bool           `json:"skip_staff,omitempty"`
	SkipReminders bool           `json:"skip_reminders,omitempty"`
}

// AttributionRequestMessage asks for a broadcast round for a booking.
type AttributionRequestMessage struct {
	RequestID       string             `json:"request_id,omitempty"`
	BookingID       uuid.UUID          `json:"booking_id" validate:"required"`
	ServiceLocation entity.Coordinates `json:"service_location"`
	ServiceType     string             `json:"service_type" validate:"required"`
	MaxRadiusKm     float64            `json:"max_radius_km" validate:"gte=0"`
}

// ProfessionalResponseMessage carries an answer collected by another channel.
type ProfessionalResponseMessage struct {
	RequestID      string    `json:"request_id,omitempty"`
	AttributionID  uuid.UUID `json:"attribution_id" validate:"required"`
	ProfessionalID uuid.UUID `json:"professional_id" validate:"required"`
	Accepted       bool      `json:"accepted"`
}

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// classify marks every error except caller mistakes and settled state as retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if domainerrors.IsValidation(err) || domainerrors.IsNotFound(err) || domainerrors.IsStateConflict(err) {
		return err
	}

	return &retryableError{err: err}
}

// isRetryableError checks if an error is retryable
func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// PushHandler handles Pub/Sub push messages feeding the orchestrator
type PushHandler struct {
	verifyPushAuth bool
	pushAudience   string
	logger         *slog.Logger
	orchestrator   usecase.OrchestrationUsecase
	validator      *validator.Validator
	verifyToken    func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config       *config.Config
	Logger       *slog.Logger
	Orchestrator usecase.OrchestrationUsecase
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Only Google pushes carry an OIDC token; local development posts directly.
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	var pushAudience string
	if params.Config.PubSub != nil {
		pushAudience = params.Config.PubSub.PushAudience
	}

	return &PushHandler{
		verifyPushAuth: verifyPushAuth,
		pushAudience:   pushAudience,
		logger:         params.Logger,
		orchestrator:   params.Orchestrator,
		validator:      validator.New(),
		verifyToken:    idtoken.Validate,
	}
}

// HandlePush handles incoming Pub/Sub push messages.
// 503 asks Pub/Sub to redeliver; 200 acknowledges, including messages that can never succeed.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg pubsub.PushMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := pushMsg.Decode()
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var envelope struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		h.logger.Error("[Worker] Message data is not JSON", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := extractRequestID(ctx, &pushMsg, envelope.RequestID)
	ctx = deliverycontext.WithRequest(ctx, h.logger, requestID)
	reqLogger := deliverycontext.GetLoggerOrDefault(ctx, h.logger)

	messageType := pushMsg.Message.Attributes["type"]
	reqLogger.Info("[Worker] Processing push message",
		slog.String("message_id", pushMsg.Message.MessageID),
		slog.String("type", messageType),
	)

	if err := h.process(ctx, messageType, data); err != nil {
		reqLogger.Error("[Worker] Failed to process push message",
			slog.String("message_id", pushMsg.Message.MessageID),
			slog.String("type", messageType),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Push message processed",
		slog.String("message_id", pushMsg.Message.MessageID),
		slog.String("type", messageType),
	)

	return c.NoContent(http.StatusOK)
}

func (h *PushHandler) process(ctx context.Context, messageType string, data []byte) error {
	switch messageType {
	case MessageTypeBookingTrigger:
		var msg BookingTriggerMessage
		if err := h.decode(data, &msg); err != nil {
			return err
		}

		return h.handleBookingTrigger(ctx, &msg)
	case MessageTypeAttributionRequest:
		var msg AttributionRequestMessage
		if err := h.decode(data, &msg); err != nil {
			return err
		}

		return h.handleAttributionRequest(ctx, &msg)
	case MessageTypeProfessionalResponse:
		var msg ProfessionalResponseMessage
		if err := h.decode(data, &msg); err != nil {
			return err
		}

		return h.handleProfessionalResponse(ctx, &msg)
	case MessageTypeAttributionEvent, "":
		// Our own lifecycle events looping back through a shared subscription.
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Debug("[Worker] Ignoring attribution event")

		return nil
	default:
		return domainerrors.ErrValidationFailed.WithDetails("unknown message type " + messageType)
	}
}

func (h *PushHandler) decode(data []byte, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}
	if err := h.validator.Validate(target); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

func (h *PushHandler) handleBookingTrigger(ctx context.Context, msg *BookingTriggerMessage) error {
	report, err := h.orchestrator.OnBookingTrigger(ctx, msg.BookingID, msg.Trigger, usecase.TriggerOptions{
		SkipStaff:     msg.SkipStaff,
		SkipReminders: msg.SkipReminders,
	})
	if report != nil {
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Info("[Worker] Booking trigger handled",
			slog.String("booking_id", msg.BookingID.String()),
			slog.String("trigger", string(msg.Trigger)),
			slog.Int("deliveries", len(report.Deliveries)),
			slog.Int("reminders_created", report.RemindersCreated),
		)
	}

	return classify(err)
}

func (h *PushHandler) handleAttributionRequest(ctx context.Context, msg *AttributionRequestMessage) error {
	result, err := h.orchestrator.StartAttribution(ctx, usecase.StartAttributionRequest{
		BookingID:       msg.BookingID,
		ServiceLocation: msg.ServiceLocation,
		ServiceType:     msg.ServiceType,
		MaxRadiusKm:     msg.MaxRadiusKm,
	})
	if err != nil {
		return classify(err)
	}

	deliverycontext.GetLoggerOrDefault(ctx, h.logger).Info("[Worker] Attribution request handled",
		slog.String("booking_id", msg.BookingID.String()),
		slog.String("attribution_id", result.AttributionID.String()),
		slog.String("outcome", string(result.Outcome)),
		slog.Int("eligible_count", result.EligibleCount),
	)

	return nil
}

func (h *PushHandler) handleProfessionalResponse(ctx context.Context, msg *ProfessionalResponseMessage) error {
	result, err := h.orchestrator.RecordProfessionalResponse(ctx, msg.AttributionID, msg.ProfessionalID, msg.Accepted)
	if err != nil {
		return classify(err)
	}

	deliverycontext.GetLoggerOrDefault(ctx, h.logger).Info("[Worker] Professional response handled",
		slog.String("attribution_id", msg.AttributionID.String()),
		slog.String("professional_id", msg.ProfessionalID.String()),
		slog.String("outcome", string(result.Outcome)),
	)

	return nil
}

// extractRequestID picks the request_id from message attributes, then the payload,
// then the request context, and generates one as a last resort.
func extractRequestID(ctx context.Context, pushMsg *pubsub.PushMessage, payloadRequestID string) string {
	if requestID := pushMsg.Message.Attributes["request_id"]; requestID != "" {
		return requestID
	}
	if payloadRequestID != "" {
		return payloadRequestID
	}
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.NewString()
}

// verifyPubSubToken verifies the OIDC token Google attaches to authenticated push requests.
func (h *PushHandler) verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	audience := h.pushAudience
	if audience == "" {
		scheme := "https"
		if req.TLS == nil {
			scheme = "http"
		}
		audience = fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)
	}

	payload, err := h.verifyToken(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
