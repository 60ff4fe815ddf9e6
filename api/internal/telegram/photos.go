package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"species-bot/api/internal/species/types"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// acceptImage starts an identification in the background. A newer image in the same
// chat supersedes one still in flight.
func (r *Router) acceptImage(chatID int64, fileID, name, mime string) {
	r.wg.Add(1)
	go r.identify(chatID, fileID, name, mime)
}

// remoteFile defers the download to Open, so download failures surface as file read errors
// and /cancel or a newer photo aborts it.
func (r *Router) remoteFile(fileID, name, mime string) types.File {
	return types.File{
		Name:     name,
		MIMEType: mime,
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			url, err := r.Bot.GetFileDirectURL(fileID)
			if err != nil {
				return nil, fmt.Errorf("get file: %w", err)
			}
			return download(ctx, url)
		},
	}
}

func download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return resp.Body, nil
}
