package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"casework/pkg/platform/circuit"
)

// ErrCircuitOpen is returned when a publish is dropped because the broker
// circuit is open. Best-effort callers log and move on; gating callers
// surface it as retryable.
var ErrCircuitOpen = errors.New("notify: broker circuit open")

const defaultProbeInterval = 30 * time.Second

// BreakingPublisher guards a publisher with a circuit breaker. While the
// circuit is open most publishes are dropped immediately instead of waiting
// out broker timeouts; one probe per interval is let through so the circuit
// can close again on recovery.
type BreakingPublisher struct {
	inner   Publisher
	breaker *circuit.Breaker
	logger  *slog.Logger

	probeInterval time.Duration
	mu            sync.Mutex
	lastProbe     time.Time
}

func NewBreaking(inner Publisher, breaker *circuit.Breaker, logger *slog.Logger) *BreakingPublisher {
	return &BreakingPublisher{
		inner:         inner,
		breaker:       breaker,
		logger:        logger,
		probeInterval: defaultProbeInterval,
	}
}

func (p *BreakingPublisher) Publish(ctx context.Context, event Event) error {
	if p.breaker.IsOpen() && !p.takeProbe() {
		return ErrCircuitOpen
	}

	if err := p.inner.Publish(ctx, event); err != nil {
		if _, change := p.breaker.RecordFailure(); change.Opened {
			p.logger.WarnContext(ctx, "broker circuit opened",
				slog.String("breaker", p.breaker.Name()), slog.Any("error", err))
		}
		return err
	}
	if _, change := p.breaker.RecordSuccess(); change.Closed {
		p.logger.InfoContext(ctx, "broker circuit closed", slog.String("breaker", p.breaker.Name()))
	}
	return nil
}

// takeProbe claims the open-circuit probe slot if the interval has elapsed.
func (p *BreakingPublisher) takeProbe() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if time.Since(p.lastProbe) < p.probeInterval {
		return false
	}
	p.lastProbe = time.Now()
	return true
}
