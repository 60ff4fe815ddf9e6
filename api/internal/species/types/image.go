package types

import (
	"context"
	"io"
)

// File is an upload as handed over by the upload widget (HTTP form, chat photo).
type File struct {
	Name     string
	MIMEType string // declared by the client, may be empty
	// Open is called once per submission with its context; aborting ctx should abort the read.
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// InlinePayload is the base64 image bundle sent to the model next to the prompt.
type InlinePayload struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// UploadedImage lives for one submission only.
type UploadedImage struct {
	Bytes    []byte
	DataURL  string
	Base64   string
	MIMEType string
	Width    int // 0 if the format could not be decoded
	Height   int
}

// Payload returns the inline payload view of the image.
func (u *UploadedImage) Payload() InlinePayload {
	return InlinePayload{Data: u.Base64, MIMEType: u.MIMEType}
}
