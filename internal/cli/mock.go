package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/studiowebux/liftload/internal/mock"
)

// RunMock serves the mock skier API until ctx is done
func RunMock(ctx context.Context, cfg *mock.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := mock.NewServer(cfg, logger)
	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	logger.Info("stopping mock server", zap.Int64("rides", srv.Store().Rides()))
	if err := srv.Stop(); err != nil {
		return fmt.Errorf("failed to stop mock server: %w", err)
	}
	return nil
}
