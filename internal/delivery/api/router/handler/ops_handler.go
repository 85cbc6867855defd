package handler

import (
	"net/http"

	"attribution/internal/delivery/api/response"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// OpsHandler serves the operator routes: notification history, resend and manual lifecycle actions.
type OpsHandler struct {
	orchestrator  usecase.OrchestrationUsecase
	notifications usecase.NotificationUsecase
}

// OpsHandlerParams holds dependencies for OpsHandler, injected by Fx
type OpsHandlerParams struct {
	fx.In

	Orchestrator  usecase.OrchestrationUsecase
	Notifications usecase.NotificationUsecase
}

// NewOpsHandler is the constructor for OpsHandler
func NewOpsHandler(params OpsHandlerParams) *OpsHandler {
	return &OpsHandler{
		orchestrator:  params.Orchestrator,
		notifications: params.Notifications,
	}
}

// ResendNotification re-dispatches a FAILED notification.
func (h *OpsHandler) ResendNotification(c echo.Context) error {
	notificationID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.notifications.ResetForResend(c.Request().Context(), notificationID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, result)
}

// BookingNotifications lists the notifications of a booking.
func (h *OpsHandler) BookingNotifications(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	notifications, err := h.notifications.ListForBooking(c.Request().Context(), bookingID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, notifications)
}

// AttributionNotifications lists the notifications of an attribution.
func (h *OpsHandler) AttributionNotifications(c echo.Context) error {
	attributionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	notifications, err := h.notifications.ListForAttribution(c.Request().Context(), attributionID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, notifications)
}

// CancelAttribution cancels an active attribution.
func (h *OpsHandler) CancelAttribution(c echo.Context) error {
	attributionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	attribution, err := h.orchestrator.CancelAttribution(c.Request().Context(), attributionID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, attribution)
}

// ExpireAttributions runs one expiry sweep immediately.
func (h *OpsHandler) ExpireAttributions(c echo.Context) error {
	expired, err := h.orchestrator.ExpireStaleAttributions(c.Request().Context())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]int{"expired": expired})
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WithDetails(name + " must be a UUID")
	}

	return id, nil
}

// HealthCheck reports that the process is serving.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
