package types

import (
	"errors"
	"fmt"
)

// Kind identifies which pipeline stage produced a failure.
type Kind string

const (
	KindNone      Kind = ""
	KindFileRead  Kind = "file_read"
	KindInference Kind = "inference"
	KindParse     Kind = "parse"
	KindCancelled Kind = "cancelled"
)

// FileReadError is returned when an upload cannot be read.
type FileReadError struct {
	Name string
	Err  error
}

func (e *FileReadError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("read file: %v", e.Err)
	}
	return fmt.Sprintf("read file %q: %v", e.Name, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// InferenceError wraps any transport or model failure of the remote call.
type InferenceError struct {
	Model string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference (%s): %v", e.Model, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// ParseError means no JSON object could be recovered from the model text.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// KindOf maps an error to its pipeline stage. Unknown errors count as inference failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		fe *FileReadError
		ie *InferenceError
		pe *ParseError
	)
	switch {
	case errors.As(err, &fe):
		return KindFileRead
	case errors.As(err, &pe):
		return KindParse
	case errors.As(err, &ie):
		return KindInference
	}
	return KindInference
}
