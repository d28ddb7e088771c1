package generation

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"aura-support-be/internal/pkg/logger"
	"aura-support-be/pkg/llm"
	"aura-support-be/pkg/rag/errs"
	"aura-support-be/pkg/rag/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedStep struct {
	text  string
	err   error
	delay time.Duration
}

type scriptedProvider struct {
	mu    sync.Mutex
	steps []scriptedStep
	calls int
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.mu.Lock()
	step := p.steps[len(p.steps)-1]
	if p.calls < len(p.steps) {
		step = p.steps[p.calls]
	}
	p.calls++
	p.mu.Unlock()

	if step.delay > 0 {
		// Ignores ctx on purpose to simulate a provider that never gives up.
		time.Sleep(step.delay)
	}
	return step.text, step.err
}

func (p *scriptedProvider) Generate(ctx context.Context, text string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: text}}, options...)
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

const fallback = "Sorry, please try again."

func newTestClient(provider llm.LLMProvider) *Client {
	return NewClient(provider, Config{
		Timeout:        time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		FallbackReply:  fallback,
	}, logger.NewNopLogger())
}

func testPrompt() *prompt.Prompt {
	return &prompt.Prompt{System: "sys", Message: "Where is my order?"}
}

func TestGenerate_Success(t *testing.T) {
	provider := &scriptedProvider{steps: []scriptedStep{{text: "It ships tomorrow."}}}

	reply := newTestClient(provider).Generate(context.Background(), testPrompt())

	assert.Equal(t, "It ships tomorrow.", reply.Text)
	assert.False(t, reply.Degraded)
	assert.Equal(t, 1, reply.Attempts)
	assert.NoError(t, reply.Cause)
}

func TestGenerate_RetriesTransientThenSucceeds(t *testing.T) {
	provider := &scriptedProvider{steps: []scriptedStep{
		{err: &llm.StatusError{Provider: "test", StatusCode: http.StatusTooManyRequests}},
		{err: &llm.StatusError{Provider: "test", StatusCode: http.StatusBadGateway}},
		{text: "Here you go."},
	}}

	reply := newTestClient(provider).Generate(context.Background(), testPrompt())

	assert.Equal(t, "Here you go.", reply.Text)
	assert.False(t, reply.Degraded)
	assert.Equal(t, 3, reply.Attempts)
}

func TestGenerate_ExhaustedReturnsFallback(t *testing.T) {
	provider := &scriptedProvider{steps: []scriptedStep{
		{err: &llm.StatusError{Provider: "test", StatusCode: http.StatusServiceUnavailable}},
	}}

	reply := newTestClient(provider).Generate(context.Background(), testPrompt())

	assert.Equal(t, fallback, reply.Text)
	assert.True(t, reply.Degraded)
	assert.Equal(t, 3, reply.Attempts)
	assert.Equal(t, 3, provider.Calls())
	assert.ErrorIs(t, reply.Cause, errs.ErrGenerationExhausted)
}

func TestGenerate_FatalIsNotRetried(t *testing.T) {
	provider := &scriptedProvider{steps: []scriptedStep{
		{err: &llm.StatusError{Provider: "test", StatusCode: http.StatusUnauthorized}},
	}}

	reply := newTestClient(provider).Generate(context.Background(), testPrompt())

	assert.True(t, reply.Degraded)
	assert.Equal(t, fallback, reply.Text)
	assert.Equal(t, 1, provider.Calls())

	var fatal *errs.FatalGenerationError
	assert.ErrorAs(t, reply.Cause, &fatal)
	assert.NotErrorIs(t, reply.Cause, errs.ErrGenerationExhausted)
}

func TestGenerate_TimeoutAbandonsCall(t *testing.T) {
	provider := &scriptedProvider{steps: []scriptedStep{{text: "too late", delay: 500 * time.Millisecond}}}
	client := NewClient(provider, Config{
		Timeout:        20 * time.Millisecond,
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		FallbackReply:  fallback,
	}, logger.NewNopLogger())

	start := time.Now()
	reply := client.Generate(context.Background(), testPrompt())

	assert.Less(t, time.Since(start), 400*time.Millisecond)
	assert.True(t, reply.Degraded)
	assert.Equal(t, fallback, reply.Text)
	assert.Equal(t, 2, reply.Attempts)
	assert.ErrorIs(t, reply.Cause, context.DeadlineExceeded)
}

func TestGenerate_EmptyReplyIsRetried(t *testing.T) {
	provider := &scriptedProvider{steps: []scriptedStep{
		{text: "  <reference_material>chunk</reference_material>  "},
		{text: "Assistant: Your refund is on its way."},
	}}

	reply := newTestClient(provider).Generate(context.Background(), testPrompt())

	assert.False(t, reply.Degraded)
	assert.Equal(t, "Your refund is on its way.", reply.Text)
	assert.Equal(t, 2, reply.Attempts)
}

func TestGenerate_CancelledContextStops(t *testing.T) {
	provider := &scriptedProvider{steps: []scriptedStep{{err: errors.New("connection reset")}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply := newTestClient(provider).Generate(ctx, testPrompt())

	assert.True(t, reply.Degraded)
	assert.LessOrEqual(t, provider.Calls(), 1)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"plain", "Hello there.", "Hello there."},
		{"trims", "\n  Hello.  \n", "Hello."},
		{"role prefix", "AURA: Hello.", "Hello."},
		{"leaked block", "<reference_material>\n[1] secret\n</reference_material>\nAnswer.", "Answer."},
		{"stray tags", "<task>Answer</task>", "Answer"},
		{"only scaffolding", "<system>rules</system>", ""},
		{"mismatched tags keep text", "<system>Keep this</reference_material> text", "Keep this text"},
		{"several blocks", "<system>a</system> keep <reference_material>b</reference_material>", "keep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.raw))
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(&scriptedProvider{}, Config{}, logger.NewNopLogger())
	require.NotNil(t, c)
	assert.Equal(t, uint(3), c.cfg.MaxAttempts)
	assert.Equal(t, 30*time.Second, c.cfg.Timeout)
	assert.GreaterOrEqual(t, c.cfg.MaxBackoff, c.cfg.InitialBackoff)
}
