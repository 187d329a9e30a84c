package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	mqcontracts "habitpal/contracts/mq"
	"habitpal/internal/reminder"
	"habitpal/pkg/circuitbreaker"
	"habitpal/pkg/metrics"
)

const publishTimeout = 5 * time.Second

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Broker forwards reminder events to the message broker. Publishing goes
// through a circuit breaker so a dead broker costs one fast rejection per
// event instead of a timeout.
type Broker struct {
	publisher Publisher
	breaker   *circuitbreaker.CircuitBreaker
	logger    *zap.Logger
}

// BreakerConfig is circuitbreaker.DefaultConfig with transitions logged and
// exported as the habitpal_broker_circuit_state gauge.
func BreakerConfig(logger *zap.Logger) circuitbreaker.Config {
	cfg := circuitbreaker.DefaultConfig()
	cfg.OnStateChange = func(from, to circuitbreaker.State) {
		metrics.SetBrokerCircuitState(int(to))
		logger.Warn("Broker circuit state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	return cfg
}

func NewBroker(publisher Publisher, breaker *circuitbreaker.CircuitBreaker, logger *zap.Logger) *Broker {
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(BreakerConfig(logger))
	}
	return &Broker{
		publisher: publisher,
		breaker:   breaker,
		logger:    logger,
	}
}

func (b *Broker) ReminderFired(ctx context.Context, p reminder.Prompt) {
	payload := mqcontracts.ReminderFiredPayload{
		PromptID:  p.ID,
		HabitID:   p.HabitID,
		HabitName: p.HabitName,
		Frequency: p.Frequency.String(),
		Kind:      string(p.Kind),
		FiredAt:   p.FiredAt,
	}
	b.publish(ctx, mqcontracts.RoutingReminderFired, payload)
}

func (b *Broker) ReminderResolved(ctx context.Context, r reminder.Resolution) {
	decision := string(r.Decision)
	if r.Cancelled {
		decision = "cancelled"
	}
	payload := mqcontracts.ReminderResolvedPayload{
		PromptID:   r.Prompt.ID,
		HabitID:    r.Prompt.HabitID,
		HabitName:  r.Prompt.HabitName,
		Decision:   decision,
		Error:      r.Err,
		ResolvedAt: r.ResolvedAt,
	}
	b.publish(ctx, mqcontracts.RoutingReminderResolved, payload)
}

func (b *Broker) publish(ctx context.Context, routingKey string, payload any) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := b.breaker.Execute(func() error {
		return b.publisher.Publish(ctx, routingKey, payload)
	})
	if err != nil {
		b.logger.Error("Failed to publish reminder event",
			zap.String("routing_key", routingKey),
			zap.String("breaker", b.breaker.GetState().String()),
			zap.Error(err),
		)
		return
	}

	b.logger.Debug("Published reminder event", zap.String("routing_key", routingKey))
}
