// Package apperr describes every failure the analyze endpoint can report and
// the HTTP status each one maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	EmptyPayload            Kind = "EMPTY_PAYLOAD"
	InvalidImage            Kind = "INVALID_IMAGE"
	ColorExtractionError    Kind = "COLOR_EXTRACTION_ERROR"
	SolutionGenerationError Kind = "SOLUTION_GENERATION_ERROR"
	ValidationError         Kind = "VALIDATION_ERROR"
	MalformedBody           Kind = "MALFORMED_BODY"
	PayloadTooLarge         Kind = "PAYLOAD_TOO_LARGE"
	UpstreamError           Kind = "UPSTREAM_ERROR"
	UpstreamTimeout         Kind = "UPSTREAM_TIMEOUT"
	Unhandled               Kind = "UNHANDLED"
)

// Status returns the HTTP status code for a kind.
func Status(k Kind) int {
	switch k {
	case EmptyPayload, InvalidImage, ColorExtractionError, MalformedBody:
		return http.StatusBadRequest
	case ValidationError:
		return http.StatusUnprocessableEntity
	case PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case UpstreamError:
		return http.StatusBadGateway
	case UpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed failure. Message is what the client sees in "detail";
// Raw keeps the model reply when the failure came from parsing one.
type Error struct {
	Kind    Kind
	Message string
	Raw     string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int { return Status(e.Kind) }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// ColorExtraction builds the 400 reported when a face reply is not a 9-color array.
func ColorExtraction(cause error, raw string) *Error {
	return &Error{
		Kind:    ColorExtractionError,
		Message: fmt.Sprintf("AI color extraction failed: %v | Raw: %s", cause, raw),
		Raw:     raw,
		Err:     cause,
	}
}

// SolutionGeneration builds the 500 reported when the planner reply is unusable.
func SolutionGeneration(cause error, raw string) *Error {
	return &Error{
		Kind:    SolutionGenerationError,
		Message: fmt.Sprintf("AI solution generation failed: %v | Raw: %s", cause, raw),
		Raw:     raw,
		Err:     cause,
	}
}

// KindOf reports the kind of err, or Unhandled for anything untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unhandled
}

// As unwraps err into *Error. Untyped errors become Unhandled with the
// generic "Internal server error" message.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: Unhandled, Message: "Internal server error: " + err.Error(), Err: err}
}
