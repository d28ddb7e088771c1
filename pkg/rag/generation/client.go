package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aura-support-be/internal/pkg/logger"
	"aura-support-be/pkg/llm"
	"aura-support-be/pkg/rag/errs"
	"aura-support-be/pkg/rag/prompt"

	"github.com/cenkalti/backoff/v5"
)

type Config struct {
	Timeout        time.Duration // per attempt
	MaxAttempts    uint
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	FallbackReply  string
}

// Reply is what the pipeline gets back from the model. Degraded replies
// carry the fallback text and the cause of the failure.
type Reply struct {
	Text     string
	Degraded bool
	Attempts int
	Cause    error
}

// Client wraps an llm.LLMProvider with timeout, retry and fallback policy.
type Client struct {
	provider llm.LLMProvider
	cfg      Config
	options  []llm.Option
	logger   logger.ILogger
}

func NewClient(provider llm.LLMProvider, cfg Config, log logger.ILogger, options ...llm.Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	return &Client{
		provider: provider,
		cfg:      cfg,
		options:  options,
		logger:   log,
	}
}

// Generate never returns an error. When every attempt fails, or a failure is
// not worth retrying, the reply is the configured fallback text.
func (c *Client) Generate(ctx context.Context, p *prompt.Prompt) Reply {
	messages := p.Messages()
	attempts := 0

	operation := func() (string, error) {
		attempts++
		text, err := c.callOnce(ctx, messages)
		if err == nil {
			text = Sanitize(text)
			if text == "" {
				err = &errs.TransientGenerationError{Cause: errors.New("model returned an empty reply")}
			}
		}
		if err == nil {
			return text, nil
		}

		if !errs.IsTransient(err) || ctx.Err() != nil {
			var fatal *errs.FatalGenerationError
			if !errors.As(err, &fatal) {
				err = &errs.FatalGenerationError{Cause: err}
			}
			return "", backoff.Permanent(err)
		}

		c.logger.Warn("ModelClient", "Transient model failure", map[string]interface{}{
			"attempt":      attempts,
			"max_attempts": c.cfg.MaxAttempts,
			"error":        err.Error(),
		})
		return "", err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff

	text, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.cfg.MaxAttempts),
	)
	if err == nil {
		return Reply{Text: text, Attempts: attempts}
	}

	var fatal *errs.FatalGenerationError
	if !errors.As(err, &fatal) {
		err = fmt.Errorf("%w after %d attempts: %w", errs.ErrGenerationExhausted, attempts, err)
	}

	c.logger.Error("ModelClient", "Generation failed, using fallback reply", map[string]interface{}{
		"attempts": attempts,
		"error":    err.Error(),
	})
	return Reply{
		Text:     c.cfg.FallbackReply,
		Degraded: true,
		Attempts: attempts,
		Cause:    err,
	}
}

// callOnce runs one attempt under the per-attempt deadline. When the deadline
// passes the call is abandoned; its late result lands in a buffered channel
// nobody reads.
func (c *Client) callOnce(ctx context.Context, messages []llm.Message) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		text, err := c.provider.Chat(attemptCtx, messages, c.options...)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-attemptCtx.Done():
		return "", &errs.TransientGenerationError{
			Cause: fmt.Errorf("model call abandoned after %s: %w", c.cfg.Timeout, attemptCtx.Err()),
		}
	}
}
