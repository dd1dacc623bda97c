package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cube-solver/api/internal/apperr"
	"cube-solver/api/internal/logger"
	"cube-solver/api/internal/metrics"
)

const (
	CallVision = "vision"
	CallText   = "text"
)

type Options struct {
	Timeout    time.Duration // на один вызов модели, включая повторы
	MaxRetries int           // 0 — без повторов
	RPS        float64       // 0 — без ограничения
	Burst      int
}

// Client оборачивает Engine: таймаут, лимит запросов, повторы, метрики и трейсинг.
// Ошибки транспорта превращаются в UpstreamError / UpstreamTimeout.
type Client struct {
	eng     Engine
	opt     Options
	limiter *rate.Limiter
	tracer  trace.Tracer

	// initialInterval первой паузы между повторами
	initialInterval time.Duration
}

func NewClient(eng Engine, opt Options) *Client {
	if opt.Timeout <= 0 {
		opt.Timeout = 30 * time.Second
	}
	if opt.MaxRetries < 0 {
		opt.MaxRetries = 0
	}
	var lim *rate.Limiter
	if opt.RPS > 0 {
		burst := opt.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(opt.RPS), burst)
	}
	return &Client{
		eng:             eng,
		opt:             opt,
		limiter:         lim,
		tracer:          otel.Tracer("cube-solver/llm"),
		initialInterval: 300 * time.Millisecond,
	}
}

func (c *Client) Name() string { return c.eng.Name() }

func (c *Client) Vision(ctx context.Context, prompt string, image []byte, mime string) (string, error) {
	return c.call(ctx, CallVision, func(ctx context.Context) (string, error) {
		return c.eng.Vision(ctx, prompt, image, mime)
	})
}

func (c *Client) Text(ctx context.Context, prompt string) (string, error) {
	return c.call(ctx, CallText, func(ctx context.Context) (string, error) {
		return c.eng.Text(ctx, prompt)
	})
}

func (c *Client) call(ctx context.Context, kind string, fn func(context.Context) (string, error)) (string, error) {
	ctx, span := c.tracer.Start(ctx, "llm."+kind, trace.WithAttributes(
		attribute.String("llm.engine", c.eng.Name()),
	))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, c.opt.Timeout)
	defer cancel()

	log := logger.From(ctx).With(zap.String("call", kind))
	started := time.Now()
	attempt := 0
	throttled := false

	op := func() (string, error) {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(callCtx); err != nil {
				// Wait отказывает сразу, если токен не успеет до дедлайна
				throttled = true
				return "", backoff.Permanent(err)
			}
		}
		out, err := fn(callCtx)
		if err == nil {
			return out, nil
		}
		if callCtx.Err() != nil {
			return "", backoff.Permanent(err)
		}
		log.Warn("model call failed", zap.Int("attempt", attempt), zap.Error(err))
		return "", err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.opt.MaxRetries)), callCtx)

	out, err := backoff.RetryWithData(op, policy)
	if err == nil {
		metrics.ObserveUpstream(kind, "ok", started)
		log.Debug("model call done", zap.Int("attempts", attempt), zap.Int("reply_bytes", len(out)))
		return out, nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if (throttled || errors.Is(callCtx.Err(), context.DeadlineExceeded)) && ctx.Err() == nil {
		metrics.ObserveUpstream(kind, "timeout", started)
		return "", apperr.Wrap(apperr.UpstreamTimeout, err,
			fmt.Sprintf("AI %s call timed out after %s", kind, c.opt.Timeout))
	}
	metrics.ObserveUpstream(kind, "error", started)
	return "", apperr.Wrap(apperr.UpstreamError, err,
		fmt.Sprintf("AI %s call failed: %v", kind, err))
}
