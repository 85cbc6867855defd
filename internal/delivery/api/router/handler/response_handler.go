package handler

import (
	"log/slog"
	"net/http"

	"attribution/internal/delivery/api/response"
	deliverycontext "attribution/internal/delivery/context"
	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/service"
	"attribution/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// ResponseHandler records the answers professionals give through their signed links.
type ResponseHandler struct {
	orchestrator usecase.OrchestrationUsecase
	tokens       service.ResponseTokenService
	logger       *slog.Logger
}

// ResponseHandlerParams holds dependencies for ResponseHandler, injected by Fx
type ResponseHandlerParams struct {
	fx.In

	Orchestrator usecase.OrchestrationUsecase
	Tokens       service.ResponseTokenService
	Logger       *slog.Logger
}

// NewResponseHandler is the constructor for ResponseHandler
func NewResponseHandler(params ResponseHandlerParams) *ResponseHandler {
	return &ResponseHandler{
		orchestrator: params.Orchestrator,
		tokens:       params.Tokens,
		logger:       params.Logger,
	}
}

// RespondRequest carries the token of a response link.
type RespondRequest struct {
	Token string `json:"token" query:"token" form:"token" validate:"required"`
}

// Respond verifies the link token and records the decision it carries.
// GET serves the link clicked in the email; POST serves the confirmation form.
func (h *ResponseHandler) Respond(c echo.Context) error {
	var req RespondRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid response input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	claims, err := h.tokens.ParseResponseToken(req.Token)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	result, err := h.orchestrator.RecordProfessionalResponse(ctx, claims.AttributionID, claims.ProfessionalID,
		claims.Decision == entity.ResponseDecisionAccept)
	if err != nil {
		return err
	}

	if result.Outcome == usecase.ResponseOutcomeNoOp {
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Info("Response received after attribution closed",
			slog.String("attribution_id", claims.AttributionID.String()),
			slog.String("status", string(result.Status)),
		)

		return response.FromAppError(c, domainerrors.ErrAttributionFinalized.WithDetails(string(result.Status)))
	}

	return response.Success(c, http.StatusOK, result)
}
