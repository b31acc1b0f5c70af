// Package oracle wraps the generative-text model used when no intent matches.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"google.golang.org/genai"
)

var (
	// ErrUnavailable means no model is configured. It is permanent for the
	// lifetime of the process.
	ErrUnavailable = errors.New("oracle unavailable")
	// ErrTimeout means the call exceeded its deadline.
	ErrTimeout = errors.New("oracle timed out")
	// ErrEmptyResponse means the model answered with no text.
	ErrEmptyResponse = errors.New("oracle returned empty response")
)

// Oracle completes a prompt with free-form text.
type Oracle interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// GenerateFunc performs one model call.
type GenerateFunc func(ctx context.Context, systemPrompt, userPrompt string, maxTokens int32, temperature float32) (string, error)

// Options configures a Client.
type Options struct {
	APIKey        string
	Model         string
	Timeout       time.Duration
	MaxConcurrent int64
}

const (
	DefaultModel         = "gemini-2.5-flash"
	DefaultTimeout       = 25 * time.Second
	DefaultMaxConcurrent = 4
)

// Client bounds model calls by a timeout and a concurrency cap.
type Client struct {
	generate GenerateFunc
	timeout  time.Duration
	sem      *semaphore.Weighted
	log      *zap.Logger
}

// New builds a Client backed by the Gemini API. An empty API key yields a
// client whose every call returns ErrUnavailable.
func New(ctx context.Context, opts Options, log *zap.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return NewWithGenerator(nil, opts, log), nil
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	gen := func(ctx context.Context, systemPrompt, userPrompt string, maxTokens int32, temperature float32) (string, error) {
		contents := []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}
		cfg := &genai.GenerateContentConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     &temperature,
		}
		if systemPrompt != "" {
			cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
		}
		resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return NewWithGenerator(gen, opts, log), nil
}

// NewWithGenerator builds a Client around an arbitrary model call.
func NewWithGenerator(gen GenerateFunc, opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Client{
		generate: gen,
		timeout:  opts.Timeout,
		sem:      semaphore.NewWeighted(opts.MaxConcurrent),
		log:      log.With(zap.String("component", "oracle")),
	}
}

// Available reports whether a model is configured.
func (c *Client) Available() bool {
	return c.generate != nil
}

// Complete runs one bounded model call.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	if c.generate == nil {
		return "", ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", c.classify(ctx, err)
	}
	defer c.sem.Release(1)

	start := time.Now()
	text, err := c.generate(ctx, systemPrompt, userPrompt, int32(maxTokens), float32(temperature))
	if err != nil {
		err = c.classify(ctx, err)
		c.log.Warn("completion failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	c.log.Debug("completion", zap.Duration("elapsed", time.Since(start)), zap.Int("chars", len(text)))
	return text, nil
}

func (c *Client) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	}
	return fmt.Errorf("oracle call: %w", err)
}
