package worker

import (
	"context"
	"log/slog"
	"time"

	"attribution/config"
	"attribution/internal/delivery"
	deliverycontext "attribution/internal/delivery/context"
	"attribution/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type expirySweeper struct {
	interval     time.Duration
	orchestrator usecase.OrchestrationUsecase
	logger       *slog.Logger
	done         chan struct{}
}

// SweeperParams holds dependencies for the expiry sweeper
type SweeperParams struct {
	fx.In

	Lc           fx.Lifecycle
	Cfg          *config.Config
	Logger       *slog.Logger
	Orchestrator usecase.OrchestrationUsecase
}

// NewExpirySweeper periodically expires attributions whose broadcast window has passed.
func NewExpirySweeper(params SweeperParams) delivery.Delivery {
	sweeper := &expirySweeper{
		interval:     params.Cfg.Attribution.ExpirySweepInterval,
		orchestrator: params.Orchestrator,
		logger:       params.Logger,
		done:         make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			close(sweeper.done)

			return nil
		},
	})

	return sweeper
}

// Serve blocks until the application stops or ctx is cancelled.
func (s *expirySweeper) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("Expiry sweeper disabled")

		return nil
	}

	s.logger.Info("Starting expiry sweeper", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *expirySweeper) sweep(ctx context.Context) {
	ctx = deliverycontext.WithRequest(ctx, s.logger, uuid.NewString())
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)

	expired, err := s.orchestrator.ExpireStaleAttributions(ctx)
	if err != nil {
		logger.Error("[Sweeper] Failed to expire stale attributions", slog.Any("error", err))

		return
	}
	if expired > 0 {
		logger.Info("[Sweeper] Expired stale attributions", slog.Int("count", expired))
	}
}
