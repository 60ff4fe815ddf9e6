// Package pipeline runs one submission: encode, invoke, parse.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"species-bot/api/internal/species/parser"
	"species-bot/api/internal/species/types"
	"species-bot/api/internal/util"
)

// Encoder is satisfied by *imagecodec.Encoder.
type Encoder interface {
	Encode(ctx context.Context, f types.File) (*types.UploadedImage, error)
}

// Engine is satisfied by *gemini.Client.
type Engine interface {
	Name() string
	Invoke(ctx context.Context, prompt string, p types.InlinePayload) (string, error)
}

type Pipeline struct {
	enc    Encoder
	engine Engine
	prompt string
}

func New(enc Encoder, engine Engine) *Pipeline {
	return &Pipeline{enc: enc, engine: engine, prompt: types.InferencePrompt}
}

// Run returns the image and the parsed result, or an error carrying the failing stage
// (*types.FileReadError, *types.InferenceError or *types.ParseError). The image is
// returned whenever encoding succeeded.
func (p *Pipeline) Run(ctx context.Context, f types.File) (*types.Result, *types.UploadedImage, error) {
	started := time.Now()

	img, err := p.enc.Encode(ctx, f)
	if err != nil {
		slog.Warn("encode failed", "file", f.Name, "err", err)
		return nil, nil, err
	}

	raw, err := p.engine.Invoke(ctx, p.prompt, img.Payload())
	if err != nil {
		return nil, img, err
	}

	res, err := parser.ParseErr(raw)
	if err != nil {
		slog.Warn("model output not parseable", "engine", p.engine.Name(), "raw", util.Truncate(raw, 300))
		return nil, img, err
	}

	slog.Info("identification done",
		"engine", p.engine.Name(),
		"file", f.Name,
		"bytes", len(img.Bytes),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return res, img, nil
}
