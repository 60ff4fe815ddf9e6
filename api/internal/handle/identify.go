package handle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"species-bot/api/internal/species/imagecodec"
	"species-bot/api/internal/species/state"
	"species-bot/api/internal/species/types"
	"species-bot/api/internal/species/view"
)

// IdentifyRequest is the JSON alternative to a multipart upload.
type IdentifyRequest struct {
	Name  string `json:"name,omitempty"`
	Image string `json:"image"` // data URL or bare base64
}

type IdentifyResponse struct {
	ID     string         `json:"id,omitempty"`
	State  state.State    `json:"state"`
	View   view.ViewModel `json:"view"`
	Result *types.Result  `json:"result,omitempty"`
	Image  string         `json:"image,omitempty"`

	ErrorKind types.Kind `json:"error_kind,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Identify accepts multipart/form-data with a "file" field, or a JSON IdentifyRequest.
func (h *Handle) Identify(w http.ResponseWriter, r *http.Request) {
	// base64 inflates by 4/3; leave room for form overhead
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload*4/3 + 1<<20)

	file, err := h.readUpload(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// The request context is the view's lifetime: a client that disconnects abandons the result.
	m := state.New(h.runner, h.minDisplay)
	defer m.Close()

	snap, err := m.Submit(r.Context(), file)
	if errors.Is(err, state.ErrStale) {
		slog.Info("client went away before identification finished", "file", file.Name)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := IdentifyResponse{State: snap.State, View: view.ToViewModel(snap.Result)}
	if snap.State != state.Success {
		resp.ErrorKind = snap.Kind
		if snap.Err != nil {
			resp.Error = snap.Err.Error()
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	resp.Result = snap.Result
	if snap.Image != nil {
		resp.Image = snap.Image.DataURL
	}
	resp.ID = h.results.Put(snap.Result, resp.Image)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handle) readUpload(r *http.Request) (types.File, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return types.File{}, errors.New("bad multipart form: " + err.Error())
		}
		_, fh, err := r.FormFile("file")
		if err != nil {
			return types.File{}, errors.New("missing file field")
		}
		return multipartFile(fh), nil
	}

	var req IdentifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return types.File{}, errors.New("bad json: " + err.Error())
	}
	if strings.TrimSpace(req.Image) == "" {
		return types.File{}, errors.New("image is required")
	}
	data, mime, err := imagecodec.DecodeDataURL(req.Image)
	if err != nil {
		// surfaces as a file read failure from the pipeline
		return types.File{Name: req.Name, Open: func(context.Context) (io.ReadCloser, error) { return nil, err }}, nil
	}
	return imagecodec.BytesFile(req.Name, mime, data), nil
}

func multipartFile(fh *multipart.FileHeader) types.File {
	return types.File{
		Name:     fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Open: func(context.Context) (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
