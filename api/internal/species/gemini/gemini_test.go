package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"species-bot/api/internal/species/types"
)

type fakeGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func textResponse(chunks ...string) *genai.GenerateContentResponse {
	parts := make([]genai.Part, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, genai.Text(c))
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func payload(b []byte) types.InlinePayload {
	return types.InlinePayload{Data: base64.StdEncoding.EncodeToString(b), MIMEType: "image/png"}
}

func TestInvoke(t *testing.T) {
	fg := &fakeGenerator{resp: textResponse(`{"habitat":`, `"forest"}`)}
	c := &Client{model: "test-model", gen: fg}

	got, err := c.Invoke(context.Background(), "identify", payload([]byte{1, 2, 3}))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != `{"habitat":"forest"}` {
		t.Errorf("Invoke() = %q", got)
	}

	if len(fg.parts) != 2 {
		t.Fatalf("expected prompt + image parts, got %d", len(fg.parts))
	}
	if txt, ok := fg.parts[0].(genai.Text); !ok || string(txt) != "identify" {
		t.Errorf("first part should be the prompt, got %#v", fg.parts[0])
	}
	blob, ok := fg.parts[1].(*genai.Blob)
	if !ok {
		t.Fatalf("second part should be a blob, got %T", fg.parts[1])
	}
	if blob.MIMEType != "image/png" || len(blob.Data) != 3 {
		t.Errorf("unexpected blob %+v", blob)
	}
}

func TestInvokeErrors(t *testing.T) {
	transport := errors.New("connection reset")
	tests := []struct {
		name string
		gen  *fakeGenerator
		p    types.InlinePayload
		is   error
	}{
		{name: "transport", gen: &fakeGenerator{err: transport}, p: payload([]byte{1}), is: transport},
		{name: "no candidates", gen: &fakeGenerator{resp: &genai.GenerateContentResponse{}}, p: payload([]byte{1}), is: ErrEmptyResponse},
		{name: "nil response", gen: &fakeGenerator{}, p: payload([]byte{1}), is: ErrEmptyResponse},
		{name: "blank text", gen: &fakeGenerator{resp: textResponse("  \n")}, p: payload([]byte{1}), is: ErrEmptyResponse},
		{name: "bad payload", gen: &fakeGenerator{resp: textResponse("{}")}, p: types.InlinePayload{Data: "%%%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{model: "m", gen: tt.gen}
			_, err := c.Invoke(context.Background(), "p", tt.p)
			var ie *types.InferenceError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *InferenceError, got %v", err)
			}
			if ie.Model != "m" {
				t.Errorf("model = %q", ie.Model)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v in chain, got %v", tt.is, err)
			}
		})
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(context.Background(), Options{Model: "m"}); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := New(context.Background(), Options{APIKey: "k"}); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestFirstTextSkipsEmptyCandidates(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: nil},
		{Content: &genai.Content{Parts: []genai.Part{&genai.Blob{}}}},
		{Content: &genai.Content{Parts: []genai.Part{genai.Text("hi")}}},
	}}
	if got := firstText(resp); got != "hi" {
		t.Errorf("firstText() = %q", got)
	}
}
