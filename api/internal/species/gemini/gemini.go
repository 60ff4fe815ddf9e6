// Package gemini is the inference client: one GenerateContent call per image.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"species-bot/api/internal/species/types"
)

var ErrEmptyResponse = errors.New("empty response")

// generator is the subset of *genai.GenerativeModel the client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Client struct {
	model string
	gen   generator
	cl    *genai.Client
}

type Options struct {
	APIKey string
	Model  string
	// JSONMode asks the API to return application/json text.
	JSONMode bool
}

// New creates the SDK client once; it is shared read-only by all submissions.
func New(ctx context.Context, o Options) (*Client, error) {
	key := strings.TrimSpace(o.APIKey)
	if key == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	name := strings.TrimSpace(o.Model)
	if name == "" {
		return nil, errors.New("gemini: model is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	m := cl.GenerativeModel(name)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}
	if o.JSONMode {
		m.GenerationConfig.ResponseMIMEType = "application/json"
	}
	return &Client{model: name, gen: m, cl: cl}, nil
}

func (c *Client) Name() string  { return "gemini" }
func (c *Client) Model() string { return c.model }

func (c *Client) Close() error {
	if c.cl == nil {
		return nil
	}
	return c.cl.Close()
}

// Invoke sends prompt and image and returns the raw model text. No retry, no timeout
// beyond ctx. Every failure is an *types.InferenceError.
func (c *Client) Invoke(ctx context.Context, prompt string, p types.InlinePayload) (string, error) {
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return "", c.fail(fmt.Errorf("bad inline payload: %w", err))
	}
	parts := []genai.Part{
		genai.Text(prompt),
		&genai.Blob{MIMEType: p.MIMEType, Data: data},
	}

	resp, err := c.gen.GenerateContent(ctx, parts...)
	if err != nil {
		return "", c.fail(err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", c.fail(ErrEmptyResponse)
	}
	slog.Debug("gemini response", "model", c.model, "bytes", len(txt))
	return txt, nil
}

func (c *Client) fail(err error) error {
	slog.Warn("gemini invoke failed", "model", c.model, "err", err)
	return &types.InferenceError{Model: c.model, Err: err}
}

// firstText concatenates the text parts of the first candidate that has content.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
