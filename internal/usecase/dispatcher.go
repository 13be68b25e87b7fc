package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"chat-relay/internal/domain"
	"chat-relay/internal/metrics"
)

// EmptyMessagePrompt is returned for blank messages.
const EmptyMessagePrompt = "Please enter a message."

// Provider is one upstream text generator. Any error means "no result".
type Provider interface {
	Name() string
	Ask(ctx context.Context, prompt string) (string, error)
}

type ExchangeRecorder interface {
	RecordExchange(ctx context.Context, ex domain.Exchange) error
}

type Observer interface {
	ObserveProvider(provider, outcome string, elapsed time.Duration)
	ObserveChat(result string)
}

// Dispatcher asks providers in priority order and answers from the fallback
// pool when none of them produces text.
type Dispatcher struct {
	providers []Provider
	pool      FallbackPool
	rand      RandSource
	recorder  ExchangeRecorder
	observer  Observer
	logger    *slog.Logger
}

type Option func(*Dispatcher)

func WithFallbackPool(pool FallbackPool) Option {
	return func(d *Dispatcher) {
		d.pool = pool
	}
}

func WithRandSource(r RandSource) Option {
	return func(d *Dispatcher) {
		d.rand = r
	}
}

// WithRecorder journals every resolved non-empty exchange. Recorder errors
// are logged and never change the reply.
func WithRecorder(r ExchangeRecorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

func NewDispatcher(providers []Provider, opts ...Option) (*Dispatcher, error) {
	for i, p := range providers {
		if p == nil {
			return nil, errors.New("usecase: provider must not be nil")
		}
		for _, prev := range providers[:i] {
			if prev.Name() == p.Name() {
				return nil, errors.New("usecase: duplicate provider " + p.Name())
			}
		}
	}
	d := &Dispatcher{
		providers: append([]Provider(nil), providers...),
		pool:      DefaultFallbackPool(),
		rand:      globalRand{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rand == nil {
		d.rand = globalRand{}
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d, nil
}

// Handle returns the text to show for message. It never fails.
func (d *Dispatcher) Handle(ctx context.Context, message string) string {
	return d.Resolve(ctx, message).Text
}

// Resolve is Handle with provenance: which provider answered, or whether the
// fallback pool was used.
func (d *Dispatcher) Resolve(ctx context.Context, message string) domain.Reply {
	if strings.TrimSpace(message) == "" {
		d.observeChat(metrics.ResultEmpty)
		return domain.Reply{Text: EmptyMessagePrompt}
	}

	logger := d.logger.With("correlationId", CorrelationID(ctx))

	reply, ok := d.askProviders(ctx, logger, message)
	if !ok {
		reply = domain.Reply{Text: d.pool.Pick(d.rand), Fallback: true}
		logger.InfoContext(ctx, "all providers failed, answering from fallback pool")
		d.observeChat(metrics.ResultFallback)
	} else {
		d.observeChat(reply.Provider)
	}

	d.record(ctx, logger, message, reply)
	return reply
}

func (d *Dispatcher) askProviders(ctx context.Context, logger *slog.Logger, message string) (domain.Reply, bool) {
	for _, p := range d.providers {
		start := time.Now()
		text, err := p.Ask(ctx, message)
		outcome := classify(err)

		var elapsed time.Duration
		if outcome != OutcomeNotConfigured {
			elapsed = time.Since(start)
		}
		if d.observer != nil {
			d.observer.ObserveProvider(p.Name(), string(outcome), elapsed)
		}

		if err == nil {
			logger.DebugContext(ctx, "provider answered", "provider", p.Name(), "elapsed", elapsed)
			return domain.Reply{Text: text, Provider: p.Name()}, true
		}

		attrs := []any{"provider", p.Name(), "outcome", outcome}
		if status, ok := upstreamStatusCode(err); ok {
			attrs = append(attrs, "status", status)
		}
		if outcome == OutcomeNotConfigured {
			logger.DebugContext(ctx, "provider skipped", attrs...)
			continue
		}
		logger.WarnContext(ctx, "provider failed", append(attrs, "err", err)...)
	}
	return domain.Reply{}, false
}

func (d *Dispatcher) record(ctx context.Context, logger *slog.Logger, message string, reply domain.Reply) {
	if d.recorder == nil {
		return
	}
	// The journal write outlives a client that hung up after the reply was resolved.
	err := d.recorder.RecordExchange(context.WithoutCancel(ctx), domain.Exchange{
		CorrelationID: CorrelationID(ctx),
		Message:       message,
		Response:      reply.Text,
		Provider:      reply.Provider,
		Fallback:      reply.Fallback,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to record exchange", "err", err)
	}
}

func (d *Dispatcher) observeChat(result string) {
	if d.observer != nil {
		d.observer.ObserveChat(result)
	}
}
