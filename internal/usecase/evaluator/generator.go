package evaluator

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/redis/go-redis/v9"
)

// Generator is the opaque text-generation backend: one prompt in, one
// response out. Transport and service failures come back as plain errors; the
// evaluator converts them into fail-closed results.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIGenerator talks to an OpenAI-compatible chat completion endpoint.
// A custom base URL lets a Gemini or proxy gateway stand in for the real API.
type OpenAIGenerator struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIGenerator(apiKey, baseURL, model string, timeout time.Duration) *OpenAIGenerator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIGenerator{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// CachingGenerator memoizes responses in redis keyed by prompt hash, so a
// retried submission does not burn a second model call for identical input.
type CachingGenerator struct {
	next Generator
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachingGenerator(next Generator, rdb *redis.Client, ttl time.Duration) *CachingGenerator {
	return &CachingGenerator{next: next, rdb: rdb, ttl: ttl}
}

func cacheKey(prompt string) string {
	sum := md5.Sum([]byte(prompt))
	return "aieval:" + hex.EncodeToString(sum[:])
}

func (g *CachingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	key := cacheKey(prompt)
	if cached, err := g.rdb.Get(ctx, key).Result(); err == nil && cached != "" {
		return cached, nil
	}
	out, err := g.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	// Cache write failures are not worth failing the evaluation over.
	_ = g.rdb.Set(ctx, key, out, g.ttl).Err()
	return out, nil
}
