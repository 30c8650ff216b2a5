package ranking

import (
	"context"
	"time"

	"hire/internal/logger"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerRanker short-circuits a failing ranker. While the breaker is open,
// Rank fails immediately with gobreaker.ErrOpenState.
type BreakerRanker struct {
	next   Ranker
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

func NewBreakerRanker(next Ranker, failures uint32, cooldown time.Duration, log *zap.Logger) *BreakerRanker {
	if failures == 0 {
		failures = 3
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	log = logger.OrNop(log)

	st := gobreaker.Settings{
		Name:        "ranking",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("ranking circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BreakerRanker{
		next:   next,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: log,
	}
}

func (b *BreakerRanker) Rank(ctx context.Context, req Request) (Response, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Rank(ctx, req)
	})
	if err != nil {
		return Response{}, err
	}
	return out.(Response), nil
}

func (b *BreakerRanker) State() gobreaker.State {
	return b.cb.State()
}
