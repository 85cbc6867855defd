package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"attribution/config"
	deliverycontext "attribution/internal/delivery/context"
	mockUsecase "attribution/internal/mocks/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func newTestSweeper(t *testing.T, interval time.Duration) (*fxtest.Lifecycle, *mockUsecase.MockOrchestrationUsecase, *expirySweeper) {
	t.Helper()

	lc := fxtest.NewLifecycle(t)
	orchestrator := mockUsecase.NewMockOrchestrationUsecase(t)
	cfg := &config.Config{Attribution: &config.AttributionConfig{ExpirySweepInterval: interval}}

	sweeper := NewExpirySweeper(SweeperParams{
		Lc:           lc,
		Cfg:          cfg,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Orchestrator: orchestrator,
	})

	return lc, orchestrator, sweeper.(*expirySweeper)
}

func TestExpirySweeper_SweepsUntilStopped(t *testing.T) {
	lc, orchestrator, sweeper := newTestSweeper(t, 10*time.Millisecond)

	swept := make(chan struct{}, 1)
	orchestrator.EXPECT().ExpireStaleAttributions(mock.Anything).
		RunAndReturn(func(ctx context.Context) (int, error) {
			assert.NotEmpty(t, deliverycontext.GetRequestIDFromContext(ctx))
			select {
			case swept <- struct{}{}:
			default:
			}

			return 1, nil
		})

	lc.RequireStart()

	done := make(chan error, 1)
	go func() { done <- sweeper.Serve(context.Background()) }()

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}

	lc.RequireStop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestExpirySweeper_DisabledReturnsImmediately(t *testing.T) {
	_, _, sweeper := newTestSweeper(t, 0)

	require.NoError(t, sweeper.Serve(context.Background()))
}
