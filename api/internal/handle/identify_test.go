package handle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"species-bot/api/internal/handoff"
	"species-bot/api/internal/species/state"
	"species-bot/api/internal/species/types"
	"species-bot/api/internal/species/view"
)

type stubRunner struct {
	res *types.Result
	err error
	got []byte
}

func (s *stubRunner) Run(ctx context.Context, f types.File) (*types.Result, *types.UploadedImage, error) {
	rc, err := f.Open(ctx)
	if err != nil {
		return nil, nil, &types.FileReadError{Name: f.Name, Err: err}
	}
	defer rc.Close()
	s.got, _ = io.ReadAll(rc)
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.res, &types.UploadedImage{DataURL: "data:image/png;base64,AQI="}, nil
}

func newTestHandle(r state.Runner) (*Handle, *handoff.Store) {
	store := handoff.New(0)
	return New(r, store, 0, 1<<20), store
}

func multipartBody(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "leaf.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestIdentifyMultipartSuccess(t *testing.T) {
	name := "Rosa"
	runner := &stubRunner{res: &types.Result{Species: &types.SpeciesIdentification{ScientificName: &name}}}
	h, store := newTestHandle(runner)

	body, ct := multipartBody(t, []byte{1, 2})
	req := httptest.NewRequest(http.MethodPost, "/v1/species/identify", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	h.Identify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if !bytes.Equal(runner.got, []byte{1, 2}) {
		t.Errorf("runner read %v", runner.got)
	}
	var resp IdentifyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.View.ScientificName != "Rosa" || resp.View.Confidence != "Unknown" {
		t.Errorf("view = %+v", resp.View)
	}
	if resp.Image == "" || resp.ID == "" {
		t.Errorf("missing handoff data: %+v", resp)
	}
	if _, ok := store.Get(resp.ID); !ok {
		t.Error("result was not handed off")
	}
}

func TestIdentifyJSONBody(t *testing.T) {
	runner := &stubRunner{res: &types.Result{}}
	h, _ := newTestHandle(runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/species/identify",
		strings.NewReader(`{"name":"x.png","image":"data:image/png;base64,AQI="}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Identify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if !bytes.Equal(runner.got, []byte{1, 2}) {
		t.Errorf("runner read %v", runner.got)
	}
}

func TestIdentifyFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		kind types.Kind
	}{
		{name: "parse", body: `{"image":"AQI="}`, err: &types.ParseError{Err: errors.New("no object")}, kind: types.KindParse},
		{name: "inference", body: `{"image":"AQI="}`, err: &types.InferenceError{Model: "m", Err: errors.New("503")}, kind: types.KindInference},
		{name: "undecodable image", body: `{"image":"%%%"}`, kind: types.KindFileRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandle(&stubRunner{err: tt.err})
			req := httptest.NewRequest(http.MethodPost, "/v1/species/identify", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Identify(rec, req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			var resp IdentifyResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.ErrorKind != tt.kind {
				t.Errorf("error_kind = %q, want %q", resp.ErrorKind, tt.kind)
			}
			if !resp.View.NoData || resp.View.Message != view.NoDataMessage {
				t.Errorf("view = %+v", resp.View)
			}
			if resp.ID != "" {
				t.Error("failures must not be handed off")
			}
		})
	}
}

func TestIdentifyBadRequest(t *testing.T) {
	h, _ := newTestHandle(&stubRunner{})
	for _, body := range []string{`not json`, `{"image":""}`} {
		req := httptest.NewRequest(http.MethodPost, "/v1/species/identify", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Identify(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d", body, rec.Code)
		}
	}
}
