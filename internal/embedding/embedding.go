// Package embedding provides text embedding and generation through the
// Gemini API.
package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/vidsage/vidsage/internal/resilience"
	"github.com/vidsage/vidsage/pkg/observability"
)

// Embedder turns text into vectors.
type Embedder interface {
	// EmbedTexts embeds a batch of documents, one vector per input.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text completions.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config configures the Gemini client.
type Config struct {
	APIKey         string        `mapstructure:"api_key"`
	EmbedModel     string        `mapstructure:"embed_model"`
	GenerateModel  string        `mapstructure:"generate_model"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

// DefaultConfig returns the standard Gemini settings.
func DefaultConfig() Config {
	return Config{
		EmbedModel:     "gemini-embedding-001",
		GenerateModel:  "gemini-2.0-flash",
		RequestTimeout: 60 * time.Second,
		MaxRetries:     3,
	}
}

// GeminiClient implements Embedder and Generator against the Gemini API.
// Outbound calls go through the shared rate limiter; transient 503s from
// the model backend are retried a few times with a flat delay.
type GeminiClient struct {
	client  *genai.Client
	config  Config
	limiter *resilience.RateLimiter
	logger  observability.Logger
}

// NewGeminiClient creates a GeminiClient.
func NewGeminiClient(ctx context.Context, config Config, limiter *resilience.RateLimiter, logger observability.Logger) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if config.EmbedModel == "" {
		config.EmbedModel = "gemini-embedding-001"
	}
	if config.GenerateModel == "" {
		config.GenerateModel = "gemini-2.0-flash"
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		config:  config,
		limiter: limiter,
		logger:  logger.WithPrefix("gemini"),
	}, nil
}

// EmbedTexts embeds a batch of documents.
func (g *GeminiClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.config.EmbedModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d inputs", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (g *GeminiClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}

// Generate produces a completion for the prompt, retrying briefly when
// the model backend is overloaded.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	var result *genai.GenerateContentResponse
	var err error
	for attempt := 1; attempt <= g.config.MaxRetries; attempt++ {
		result, err = g.client.Models.GenerateContent(ctx, g.config.GenerateModel, contents, nil)
		if err == nil {
			break
		}
		if !strings.Contains(err.Error(), "503") || attempt == g.config.MaxRetries {
			return "", fmt.Errorf("generation request failed: %w", err)
		}
		g.logger.Warn("Model overloaded, retrying", map[string]interface{}{
			"attempt": attempt,
		})
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("model returned an empty response")
	}
	return text, nil
}

func (g *GeminiClient) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}
