package main

import (
	"context"
	"log/slog"
	"os"

	"attribution/config"
	"attribution/internal/delivery"
	"attribution/internal/delivery/worker"
	"attribution/internal/delivery/worker/handler"
	"attribution/internal/domain/service"
	"attribution/internal/infra/channel"
	"attribution/internal/infra/document"
	"attribution/internal/infra/lock"
	logs "attribution/internal/infra/log"
	"attribution/internal/infra/persistence"
	"attribution/internal/infra/pubsub"
	"attribution/internal/infra/qrcode"
	"attribution/internal/infra/token"
	"attribution/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
		),
		persistence.Module,
	)
}

func injectService() fx.Option {
	return fx.Options(
		channel.Module,
		document.Module,
		lock.Module,
		pubsub.Module,
		fx.Provide(
			token.NewResponseTokenService,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewGeoMatcher,
			impl.NewEligibilityLedger,
			impl.NewAttributionStateMachine,
			impl.NewNotificationDeduplicator,
			impl.NewChannelDispatcher,
			impl.NewNotificationService,
			impl.NewRecipientResolver,
			impl.NewReminderScheduler,
			impl.NewOrchestrator,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewExpirySweeper,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
