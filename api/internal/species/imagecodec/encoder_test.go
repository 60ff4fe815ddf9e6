package imagecodec

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"species-bot/api/internal/species/types"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))); err != nil {
		t.Fatalf("Failed to create test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestDataURLRoundTrip(t *testing.T) {
	raw := testPNG(t)
	enc := New(0)

	dataURL, err := enc.EncodeToDataURL(context.Background(), BytesFile("leaf.png", "", raw))
	if err != nil {
		t.Fatalf("EncodeToDataURL() error = %v", err)
	}
	if !strings.HasPrefix(dataURL, "data:image/png;base64,") {
		t.Errorf("unexpected prefix: %.40s", dataURL)
	}

	got, mime, err := DecodeDataURL(dataURL)
	if err != nil {
		t.Fatalf("DecodeDataURL() error = %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("decoded bytes differ from the original")
	}
	if mime != "image/png" {
		t.Errorf("mime = %q", mime)
	}
}

func TestEncodeToInlinePayload(t *testing.T) {
	raw := testPNG(t)
	p, err := New(0).EncodeToInlinePayload(context.Background(), BytesFile("leaf", "image/x-custom", raw))
	if err != nil {
		t.Fatalf("EncodeToInlinePayload() error = %v", err)
	}
	if p.MIMEType != "image/x-custom" {
		t.Errorf("declared MIME should win, got %q", p.MIMEType)
	}
	if strings.Contains(p.Data, ",") {
		t.Error("payload must be bare base64 without a data: prefix")
	}
}

func TestEncodeDimensions(t *testing.T) {
	img, err := New(0).Encode(context.Background(), BytesFile("leaf.png", "", testPNG(t)))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 4 || img.Height != 3 {
		t.Errorf("got %dx%d, want 4x3", img.Width, img.Height)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestEncodeErrors(t *testing.T) {
	openErr := errors.New("permission denied")
	tests := []struct {
		name    string
		file    types.File
		maxSize int64
		is      error
	}{
		{
			name: "open fails",
			file: types.File{Name: "a", Open: func(context.Context) (io.ReadCloser, error) { return nil, openErr }},
			is:   openErr,
		},
		{
			name: "read fails",
			file: types.File{Name: "b", Open: func(context.Context) (io.ReadCloser, error) { return io.NopCloser(failingReader{}), nil }},
		},
		{
			name: "empty file",
			file: BytesFile("c", "", nil),
			is:   ErrEmptyFile,
		},
		{
			name:    "too large",
			file:    BytesFile("d", "", make([]byte, 11)),
			maxSize: 10,
			is:      ErrTooLarge,
		},
		{
			name: "no opener",
			file: types.File{Name: "e"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.maxSize).Encode(context.Background(), tt.file)
			var fe *types.FileReadError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FileReadError, got %v", err)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v in chain, got %v", tt.is, err)
			}
			if types.KindOf(err) != types.KindFileRead {
				t.Errorf("KindOf() = %q", types.KindOf(err))
			}
		})
	}
}

func TestEncodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(0).Encode(ctx, BytesFile("x", "", []byte{1}))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	img, err := New(0).Encode(context.Background(), BytesFile("blob", "", []byte("plain text")))
	if err != nil {
		t.Fatalf("unknown formats must still encode: %v", err)
	}
	if img.MIMEType != "image/jpeg" || img.Width != 0 {
		t.Errorf("got mime %q width %d", img.MIMEType, img.Width)
	}
}
