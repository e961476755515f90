package synastry

import (
	"context"
	"log/slog"
)

// Service exposes compatibility scoring to the transport.
type Service interface {
	Compare(ctx context.Context, pair Pair) Result
}

type service struct {
	logger *slog.Logger
}

// NewService wires the synastry domain.
func NewService(logger *slog.Logger) Service {
	return &service{logger: logger.With("component", "synastry.service")}
}

func (s *service) Compare(_ context.Context, pair Pair) Result {
	res := ComputeElements(pair.A, pair.B)
	s.logger.Debug("compatibility computed", "score", res.Score)
	return res
}
