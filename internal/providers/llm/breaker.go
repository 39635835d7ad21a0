package llm

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		MinRequests:      5,
		FailureThreshold: 0.6,
	}
}

// Breaker guards a Provider with one circuit breaker per operation.
type Breaker struct {
	next Provider
	cfg  BreakerConfig
	log  *logrus.Logger

	mu  sync.Mutex
	cbs map[string]*gobreaker.CircuitBreaker[string]
}

var _ Provider = (*Breaker)(nil)

func NewBreaker(next Provider, cfg BreakerConfig, l *logrus.Logger) *Breaker {
	if l == nil {
		l = logrus.New()
	}
	return &Breaker{next: next, cfg: cfg, log: l, cbs: map[string]*gobreaker.CircuitBreaker[string]{}}
}

func (b *Breaker) GenerateJSON(ctx context.Context, req Request) (string, error) {
	return b.breaker(req.Operation).Execute(func() (string, error) {
		return b.next.GenerateJSON(ctx, req)
	})
}

func (b *Breaker) Close() error { return b.next.Close() }

func (b *Breaker) breaker(op string) *gobreaker.CircuitBreaker[string] {
	if op == "" {
		op = "default"
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if cb, ok := b.cbs[op]; ok {
		return cb
	}

	cfg := b.cfg
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm-" + op,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && ratio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("llm circuit breaker state changed")
		},
	})
	b.cbs[op] = cb
	return cb
}

// Stats reports the state of every breaker created so far.
func (b *Breaker) Stats() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]any, len(b.cbs))
	for op, cb := range b.cbs {
		out[op] = map[string]any{
			"name":   cb.Name(),
			"state":  cb.State().String(),
			"counts": cb.Counts(),
		}
	}
	return out
}
