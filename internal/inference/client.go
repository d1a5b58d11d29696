// Package inference is the generative-AI collaborator.  It turns the AI
// settings record into a google.golang.org/genai client and exposes a single
// prompt-in, text-out call.
//
// Constructing the client is a separate explicit step from loading
// settings, and it does not dial the service.  The first network round trip
// happens in Generate.
package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/AdeptTravel/adept-settings/internal/config"
	"github.com/AdeptTravel/adept-settings/internal/metrics"
)

// ErrEmptyPrompt is returned by Generate for a blank prompt.
var ErrEmptyPrompt = errors.New("inference: empty prompt")

// Options are the optional per-call generation parameters.
type Options struct {
	MaxOutputTokens int32    // 0 lets the service decide
	Temperature     *float32 // nil lets the service decide
}

// Client calls the generative-AI service.  Safe for concurrent use.
type Client struct {
	genai *genai.Client
	cfg   config.AI
}

// ClientOption tweaks NewClient.
type ClientOption func(*genai.ClientConfig)

// WithBaseURL points the client at a different endpoint (tests, proxies).
func WithBaseURL(u string) ClientOption {
	return func(cc *genai.ClientConfig) { cc.HTTPOptions.BaseURL = u }
}

// NewClient binds a genai client to cfg.APIKey.
func NewClient(ctx context.Context, cfg config.AI, opts ...ClientOption) (*Client, error) {
	key := cfg.APIKey.Reveal()
	if strings.TrimSpace(key) == "" {
		return nil, &config.Error{Record: "ai", Field: "GOOGLE_API_KEY", Err: config.ErrMalformed}
	}

	cc := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	for _, fn := range opts {
		fn(cc)
	}

	g, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Client{genai: g, cfg: cfg}, nil
}

// OtherModel is the metrics label for identifiers that match no configured
// GEMINI_MODEL_* key.  Callers choose the model name, so it never becomes a
// label value itself.
const OtherModel = "other"

// ResolveModel maps a GEMINI_MODEL_* key to its identifier.  Anything that
// is not a configured key is taken as a raw identifier.  An empty name
// selects the Flash model.
func (c *Client) ResolveModel(name string) string {
	id, _ := c.resolve(name)
	return id
}

// resolve returns the identifier to call and the bounded metrics label: the
// configured key whose identifier it is, or OtherModel.
func (c *Client) resolve(name string) (id, label string) {
	if name == "" {
		name = config.ModelPrefix + "2_5_FLASH"
		if _, ok := c.cfg.Model(name); !ok {
			return c.cfg.Flash, OtherModel
		}
	}
	if id, ok := c.cfg.Model(name); ok {
		return id, name
	}
	for _, key := range c.cfg.ModelKeys() {
		if id, _ := c.cfg.Model(key); id == name {
			return name, key
		}
	}
	return name, OtherModel
}

// Generate sends prompt to model and returns the generated text.
func (c *Client) Generate(ctx context.Context, model, prompt string, opts Options) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	model, label := c.resolve(model)

	gc := &genai.GenerateContentConfig{
		MaxOutputTokens: opts.MaxOutputTokens,
		Temperature:     opts.Temperature,
	}

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, model, genai.Text(prompt), gc)
	metrics.InferenceDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(label, "error").Inc()
		zap.S().Warnw("generate failed", "model", model, "err", err)
		return "", fmt.Errorf("generate %s: %w", model, err)
	}
	metrics.InferenceRequestsTotal.WithLabelValues(label, "ok").Inc()

	text := resp.Text()
	zap.S().Debugw("generate done",
		"model", model,
		"prompt_chars", len(prompt),
		"text_chars", len(text),
		"took", time.Since(start),
	)
	return text, nil
}
