package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
	"github.com/custodia-labs/faqgen/internal/logger"
)

// ResilientClient wraps a CompletionClient with bounded retries,
// exponential backoff, a per-attempt timeout and optional request pacing.
// It is the unit of fault tolerance: every transient failure is absorbed
// here and only terminal failures escape.
type ResilientClient struct {
	client      driven.CompletionClient
	system      string
	opts        driven.CompletionOptions
	maxAttempts int
	timeout     time.Duration
	backoffUnit time.Duration
	limiter     *rate.Limiter
	sleep       func(ctx context.Context, d time.Duration) error
}

// ResilientOption configures a ResilientClient.
type ResilientOption func(*ResilientClient)

// WithSleeper replaces the backoff wait. Tests use it to observe delays
// without waiting for them.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) ResilientOption {
	return func(c *ResilientClient) {
		c.sleep = sleep
	}
}

// WithLimiter paces requests across all goroutines sharing the client.
func WithLimiter(l *rate.Limiter) ResilientOption {
	return func(c *ResilientClient) {
		c.limiter = l
	}
}

// NewResilientClient creates a resilient client. The system persona is sent
// as the first message of every request.
func NewResilientClient(
	client driven.CompletionClient,
	system string,
	settings domain.LLMSettings,
	opts ...ResilientOption,
) *ResilientClient {
	c := &ResilientClient{
		client: client,
		system: system,
		opts: driven.CompletionOptions{
			Temperature: settings.Temperature,
			TopP:        settings.TopP,
		},
		maxAttempts: settings.MaxAttempts,
		timeout:     settings.Timeout,
		backoffUnit: settings.BackoffUnit,
		sleep:       sleepContext,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = domain.DefaultMaxAttempts
	}
	if c.timeout <= 0 {
		c.timeout = domain.DefaultTimeout
	}
	if settings.RequestsPerSecond > 0 {
		burst := settings.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelName returns the underlying model name.
func (c *ResilientClient) ModelName() string {
	return c.client.ModelName()
}

// MaxAttempts returns the total number of attempts per call.
func (c *ResilientClient) MaxAttempts() int {
	return c.maxAttempts
}

// MaxBackoff caps a single retry delay.
const MaxBackoff = time.Hour

// Backoff returns the wait after the given failed attempt (counted from 1):
// unit*2^attempt, saturating at MaxBackoff.
func (c *ResilientClient) Backoff(attempt int) time.Duration {
	d := c.backoffUnit
	for i := 0; i < attempt; i++ {
		if d >= MaxBackoff/2 {
			return MaxBackoff
		}
		d *= 2
	}
	return min(d, MaxBackoff)
}

// Complete sends prompt as the user message and returns exactly one
// successful reply or a terminal failure wrapping the last cause.
// Cancellation of ctx ends the call early with the context error as cause.
func (c *ResilientClient) Complete(ctx context.Context, prompt string) domain.CompletionResult {
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: c.system},
		{Role: driven.RoleUser, Content: prompt},
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		text, err := c.attempt(ctx, messages)
		if err == nil {
			if attempt > 1 {
				logger.Info("API request succeeded (attempt %d/%d)", attempt, c.maxAttempts)
			} else {
				logger.Debug("API request succeeded (attempt %d/%d)", attempt, c.maxAttempts)
			}
			return domain.Succeeded(text, attempt)
		}
		lastErr = err
		logger.Warn("API request failed (attempt %d/%d): %v", attempt, c.maxAttempts, err)

		if ctx.Err() != nil {
			return domain.Failed(lastErr, attempt)
		}
		if attempt == c.maxAttempts {
			break
		}

		delay := c.Backoff(attempt)
		logger.Info("Retrying in %s...", delay)
		if err := c.sleep(ctx, delay); err != nil {
			return domain.Failed(fmt.Errorf("%w (while backing off: %w)", lastErr, err), attempt)
		}
	}

	return domain.Failed(lastErr, c.maxAttempts)
}

// attempt performs one paced, time-bounded call.
func (c *ResilientClient) attempt(ctx context.Context, messages []driven.ChatMessage) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.client.Complete(attemptCtx, messages, c.opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("attempt timed out after %s: %w", c.timeout, err)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyResponse
	}
	return text, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
