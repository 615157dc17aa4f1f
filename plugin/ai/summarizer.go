// Package ai provides synopsis and insight text generation for movies and
// networks through an OpenAI-compatible chat completion API.
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/omar251/CinemaTec-sub001/plugin/cache"
)

// Config holds the summarizer configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.openai.com/v1",
		Model:      "gpt-4o-mini",
		MaxRetries: 3,
		Timeout:    30 * time.Second,
	}
}

// Summarizer generates text for a prompt. Results for identical prompts are
// effectively invariant within a session, so they are served from a long-TTL
// cache tier shared with every generated-text feature.
type Summarizer struct {
	client    *openai.Client
	config    *Config
	textCache *cache.Cache[string]
}

// NewSummarizer creates a summarizer. textCache may be nil to disable caching.
func NewSummarizer(cfg *Config, textCache *cache.Cache[string]) *Summarizer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Summarizer{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		textCache: textCache,
	}
}

// Summarize generates text for the given prompt.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	key := promptKey(prompt)
	if s.textCache != nil {
		if text, ok := s.textCache.Get(key); ok {
			return text, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var result string
	err := s.doWithRetry(ctx, func() error {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: s.config.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	if s.textCache != nil {
		s.textCache.Set(key, result, 0)
	}
	return result, nil
}

// doWithRetry executes a function with exponential backoff retry.
func (s *Summarizer) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < s.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("summarize request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}

func promptKey(prompt string) string {
	h := sha256.Sum256([]byte(prompt))
	return "text:" + hex.EncodeToString(h[:])[:16]
}
