package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"attribution/config"
	deliverycontext "attribution/internal/delivery/context"
	"attribution/internal/domain/constants"
	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/infra/pubsub"
	mockUsecase "attribution/internal/mocks/usecase"
	"attribution/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func newTestPushHandler(t *testing.T, cfg *config.Config) (*PushHandler, *mockUsecase.MockOrchestrationUsecase) {
	t.Helper()

	orchestrator := mockUsecase.NewMockOrchestrationUsecase(t)
	if cfg == nil {
		cfg = &config.Config{}
		cfg.Env.Env = constants.EnvDevelop
	}

	return NewPushHandler(PushHandlerParams{
		Config:       cfg,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Orchestrator: orchestrator,
	}), orchestrator
}

func pushRequest(t *testing.T, messageType string, payload any, extraAttributes map[string]string) *http.Request {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	attributes := map[string]string{"type": messageType}
	for k, v := range extraAttributes {
		attributes[k] = v
	}

	body, err := json.Marshal(pubsub.NewPushMessage("projects/test/subscriptions/orchestrator", data, attributes))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return req
}

func serve(h *PushHandler, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = h.HandlePush(c)

	return rec
}

func TestHandlePush_BookingTrigger(t *testing.T) {
	h, orchestrator := newTestPushHandler(t, nil)
	bookingID := uuid.New()

	orchestrator.EXPECT().
		OnBookingTrigger(mock.Anything, bookingID, entity.TriggerPaymentCompleted, usecase.TriggerOptions{SkipStaff: true}).
		Run(func(ctx context.Context, _ uuid.UUID, _ entity.Trigger, _ usecase.TriggerOptions) {
			assert.Equal(t, "req-attr", deliverycontext.GetRequestIDFromContext(ctx))
		}).
		Return(&usecase.TriggerReport{BookingID: bookingID, Trigger: entity.TriggerPaymentCompleted}, nil)

	rec := serve(h, pushRequest(t, MessageTypeBookingTrigger, BookingTriggerMessage{
		RequestID: "req-payload",
		BookingID: bookingID,
		Trigger:   entity.TriggerPaymentCompleted,
		SkipStaff: true,
	}, map[string]string{"request_id": "req-attr"}))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePush_RequestIDFromPayload(t *testing.T) {
	h, orchestrator := newTestPushHandler(t, nil)
	attributionID, professionalID := uuid.New(), uuid.New()

	orchestrator.EXPECT().
		RecordProfessionalResponse(mock.Anything, attributionID, professionalID, true).
		Run(func(ctx context.Context, _, _ uuid.UUID, _ bool) {
			assert.Equal(t, "req-payload", deliverycontext.GetRequestIDFromContext(ctx))
		}).
		Return(&usecase.ResponseResult{Outcome: usecase.ResponseOutcomeAccepted}, nil)

	rec := serve(h, pushRequest(t, MessageTypeProfessionalResponse, ProfessionalResponseMessage{
		RequestID:      "req-payload",
		AttributionID:  attributionID,
		ProfessionalID: professionalID,
		Accepted:       true,
	}, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePush_AttributionRequest(t *testing.T) {
	h, orchestrator := newTestPushHandler(t, nil)
	bookingID := uuid.New()
	location := entity.Coordinates{Latitude: 48.8566, Longitude: 2.3522}

	orchestrator.EXPECT().
		StartAttribution(mock.Anything, usecase.StartAttributionRequest{
			BookingID:       bookingID,
			ServiceLocation: location,
			ServiceType:     "plumbing",
			MaxRadiusKm:     25,
		}).
		Return(&usecase.StartAttributionResult{
			AttributionID: uuid.New(),
			Status:        entity.AttributionStatusBroadcasting,
			EligibleCount: 2,
			Outcome:       usecase.AttributionOutcomeBroadcast,
		}, nil)

	rec := serve(h, pushRequest(t, MessageTypeAttributionRequest, AttributionRequestMessage{
		BookingID:       bookingID,
		ServiceLocation: location,
		ServiceType:     "plumbing",
		MaxRadiusKm:     25,
	}, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePush_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "transient failure is retried",
			err:        errors.New("relay timeout"),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unknown booking is acknowledged",
			err:        errors.WithStack(domainerrors.ErrBookingNotFound),
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid trigger is acknowledged",
			err:        domainerrors.ErrInvalidTrigger,
			wantStatus: http.StatusOK,
		},
		{
			name:       "finalized attribution is acknowledged",
			err:        domainerrors.ErrAttributionFinalized,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, orchestrator := newTestPushHandler(t, nil)
			bookingID := uuid.New()

			orchestrator.EXPECT().
				OnBookingTrigger(mock.Anything, bookingID, entity.TriggerBookingConfirmed, usecase.TriggerOptions{}).
				Return(nil, tt.err)

			rec := serve(h, pushRequest(t, MessageTypeBookingTrigger, BookingTriggerMessage{
				BookingID: bookingID,
				Trigger:   entity.TriggerBookingConfirmed,
			}, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandlePush_PartialDeliveryIsRetried(t *testing.T) {
	h, orchestrator := newTestPushHandler(t, nil)
	bookingID := uuid.New()

	orchestrator.EXPECT().
		OnBookingTrigger(mock.Anything, bookingID, entity.TriggerBookingConfirmed, usecase.TriggerOptions{}).
		Return(&usecase.TriggerReport{BookingID: bookingID}, errors.New("sms relay unavailable"))

	rec := serve(h, pushRequest(t, MessageTypeBookingTrigger, BookingTriggerMessage{
		BookingID: bookingID,
		Trigger:   entity.TriggerBookingConfirmed,
	}, nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlePush_InvalidPayloadIsAcknowledged(t *testing.T) {
	h, _ := newTestPushHandler(t, nil)

	rec := serve(h, pushRequest(t, MessageTypeBookingTrigger, map[string]string{"trigger": "BOOKING_CONFIRMED"}, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePush_UnknownTypeIsAcknowledged(t *testing.T) {
	h, _ := newTestPushHandler(t, nil)

	rec := serve(h, pushRequest(t, "booking_refunded", map[string]string{"booking_id": uuid.NewString()}, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePush_AttributionEventIsIgnored(t *testing.T) {
	h, _ := newTestPushHandler(t, nil)

	rec := serve(h, pushRequest(t, pubsub.EventTypeAttribution, map[string]string{"status": "ACCEPTED"}, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePush_MalformedEnvelope(t *testing.T) {
	h, _ := newTestPushHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/push",
		bytes.NewReader([]byte(`{"message":{"data":"not base64!"}}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePush_VerifiesGoogleToken(t *testing.T) {
	cfg := &config.Config{PubSub: &config.PubSubConfig{
		Provider:     constants.PubSubProviderGoogle,
		PushAudience: "https://worker.example.com/push",
	}}
	cfg.Env.Env = "production"

	t.Run("missing token is rejected", func(t *testing.T) {
		h, _ := newTestPushHandler(t, cfg)

		rec := serve(h, pushRequest(t, pubsub.EventTypeAttribution, map[string]string{}, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong issuer is rejected", func(t *testing.T) {
		h, _ := newTestPushHandler(t, cfg)
		h.verifyToken = func(_ context.Context, _, _ string) (*idtoken.Payload, error) {
			return &idtoken.Payload{Issuer: "https://evil.example.com"}, nil
		}

		req := pushRequest(t, pubsub.EventTypeAttribution, map[string]string{}, nil)
		req.Header.Set("Authorization", "Bearer token")

		assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)
	})

	t.Run("valid token uses configured audience", func(t *testing.T) {
		h, _ := newTestPushHandler(t, cfg)
		var gotAudience string
		h.verifyToken = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
			gotAudience = audience
			assert.Equal(t, "token", token)

			return &idtoken.Payload{Issuer: "https://accounts.google.com", Claims: map[string]interface{}{"email_verified": true}}, nil
		}

		req := pushRequest(t, pubsub.EventTypeAttribution, map[string]string{}, nil)
		req.Header.Set("Authorization", "Bearer token")

		assert.Equal(t, http.StatusOK, serve(h, req).Code)
		assert.Equal(t, "https://worker.example.com/push", gotAudience)
	})
}
