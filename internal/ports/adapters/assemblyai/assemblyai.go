package assemblyai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
)

// Service is the part of the SDK transcripts service the adapter uses.
type Service interface {
	TranscribeFromReader(ctx context.Context, reader io.Reader, params *aai.TranscriptOptionalParams) (aai.Transcript, error)
}

type Adapter struct {
	svc Service
}

func New(apiKey string) *Adapter {
	return NewWithService(aai.NewClient(apiKey).Transcripts)
}

func NewWithService(svc Service) *Adapter {
	return &Adapter{svc: svc}
}

// Transcribe uploads the audio file and blocks until the transcript is ready.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	tr, err := a.svc.TranscribeFromReader(ctx, f, nil)
	if err != nil {
		return "", fmt.Errorf("assemblyai transcribe: %w", err)
	}
	if tr.Status == aai.TranscriptStatusError {
		return "", fmt.Errorf("assemblyai transcript failed: %s", aai.ToString(tr.Error))
	}
	text := strings.TrimSpace(aai.ToString(tr.Text))
	if text == "" {
		return "", errors.New("assemblyai: empty transcript")
	}
	return text, nil
}
