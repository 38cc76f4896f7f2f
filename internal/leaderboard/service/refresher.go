package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunRefresher chama RecomputeAll a cada intervalo até o ctx ser cancelado.
// Erros são logados e a próxima rodada segue normalmente.
func (s *Service) RunRefresher(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	s.log.Info("periodic refresh enabled", zap.Duration("every", every))
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.RecomputeAll(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("periodic refresh failed", zap.Error(err))
			}
		}
	}
}
