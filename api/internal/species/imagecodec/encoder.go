// Package imagecodec turns an uploaded file into the data URL shown to the user
// and the inline payload sent to the model.
package imagecodec

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"species-bot/api/internal/species/types"
	"species-bot/api/internal/util"
)

// DefaultMaxBytes matches the inline request limit of the Gemini API.
const DefaultMaxBytes = 20 << 20

var (
	ErrEmptyFile = errors.New("file is empty")
	ErrTooLarge  = errors.New("file exceeds size limit")
)

type Encoder struct {
	maxBytes int64
}

func New(maxBytes int64) *Encoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Encoder{maxBytes: maxBytes}
}

// EncodeToDataURL returns a data: URL suitable for an <img src>.
func (e *Encoder) EncodeToDataURL(ctx context.Context, f types.File) (string, error) {
	img, err := e.Encode(ctx, f)
	if err != nil {
		return "", err
	}
	return img.DataURL, nil
}

// EncodeToInlinePayload returns the base64 bundle for the model request.
func (e *Encoder) EncodeToInlinePayload(ctx context.Context, f types.File) (types.InlinePayload, error) {
	img, err := e.Encode(ctx, f)
	if err != nil {
		return types.InlinePayload{}, err
	}
	return img.Payload(), nil
}

// Encode reads f once and fills both representations. All failures are *types.FileReadError.
func (e *Encoder) Encode(ctx context.Context, f types.File) (*types.UploadedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.FileReadError{Name: f.Name, Err: err}
	}
	if f.Open == nil {
		return nil, &types.FileReadError{Name: f.Name, Err: errors.New("no file")}
	}
	rc, err := f.Open(ctx)
	if err != nil {
		return nil, &types.FileReadError{Name: f.Name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, e.maxBytes+1))
	if err != nil {
		return nil, &types.FileReadError{Name: f.Name, Err: err}
	}
	if len(data) == 0 {
		return nil, &types.FileReadError{Name: f.Name, Err: ErrEmptyFile}
	}
	if int64(len(data)) > e.maxBytes {
		return nil, &types.FileReadError{Name: f.Name, Err: fmt.Errorf("%w (%d bytes)", ErrTooLarge, e.maxBytes)}
	}

	return FromBytes(data, f.MIMEType), nil
}

// FromBytes builds an UploadedImage from bytes already in memory.
func FromBytes(data []byte, declaredMIME string) *types.UploadedImage {
	mime := util.PickMIME(declaredMIME, "", data)
	b64 := base64.StdEncoding.EncodeToString(data)
	img := &types.UploadedImage{
		Bytes:    data,
		Base64:   b64,
		MIMEType: mime,
		DataURL:  util.MakeDataURL(mime, b64),
	}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
		slog.Debug("image decoded", "format", format, "width", cfg.Width, "height", cfg.Height)
	} else {
		slog.Debug("image dimensions unknown", "mime", mime, "err", err)
	}
	return img
}

// DecodeDataURL is the inverse of EncodeToDataURL.
func DecodeDataURL(s string) ([]byte, string, error) {
	return util.DecodeBase64MaybeDataURL(s)
}

// BytesFile wraps in-memory data as a File.
func BytesFile(name, mime string, data []byte) types.File {
	return types.File{
		Name:     name,
		MIMEType: mime,
		Open: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
