package types

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinDuration = 1
	MaxDuration = 60
)

var (
	ErrEmptyURL        = errors.New("stream url is empty")
	ErrInvalidDuration = fmt.Errorf("duration must be between %d and %d seconds", MinDuration, MaxDuration)
)

type StreamRequest struct {
	URL             string `json:"url"`
	DurationSeconds int    `json:"seconds"`
}

func (r StreamRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return ErrEmptyURL
	}
	if r.DurationSeconds < MinDuration || r.DurationSeconds > MaxDuration {
		return fmt.Errorf("%w (got %d)", ErrInvalidDuration, r.DurationSeconds)
	}
	return nil
}

type ResolvedMedia struct {
	DirectURL string
}

// ExtractionResult holds the raw transcoder output for one request. Video is
// a motion-JPEG byte stream with no frame count header.
type ExtractionResult struct {
	Video    []byte
	Audio    []byte
	VideoErr error
	AudioErr error
}

type Frame struct {
	Index   int    `json:"index"`
	Raw     []byte `json:"-"`
	Encoded string `json:"jpeg_base64"`
}

// Outcome is the result of a step that may fail without stopping the run.
type Outcome struct {
	Text string
	Err  error
}

func (o Outcome) OK() bool { return o.Err == nil }

func Succeeded(text string) Outcome { return Outcome{Text: text} }

func Failed(err error) Outcome {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Outcome{Err: err}
}

// Skipped marks a step that never ran because an input was missing.
type Skipped struct {
	Missing []string
}

func (s Skipped) Error() string {
	return "skipped: missing " + strings.Join(s.Missing, ", ")
}
