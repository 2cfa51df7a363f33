package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/insightly/internal/ports"
	"github.com/forPelevin/insightly/internal/ports/adapters/procrun"
)

// WavConverter produces the 16 kHz mono WAV that whisper.cpp reads.
type WavConverter interface {
	ConvertToWav16k(ctx context.Context, in, outWav string) error
}

type Adapter struct {
	bin   string
	model string
	wav   WavConverter
	run   ports.Runner
}

func New(binPath, modelPath string, wav WavConverter, run ports.Runner) *Adapter {
	if run == nil {
		run = procrun.New()
	}
	return &Adapter{bin: binPath, model: modelPath, wav: wav, run: run}
}

type output struct {
	Transcription []struct {
		Text string `json:"text"`
	} `json:"transcription"`
}

func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (string, error) {
	workDir, err := os.MkdirTemp("", "insightly-whisper-*")
	if err != nil {
		return "", fmt.Errorf("create whisper workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	wavPath := filepath.Join(workDir, "audio.wav")
	if err := a.wav.ConvertToWav16k(ctx, audioPath, wavPath); err != nil {
		return "", err
	}

	outPrefix := filepath.Join(workDir, "whisper")
	args := []string{
		a.bin,
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	}
	if _, err := a.run.Run(ctx, args); err != nil {
		return "", fmt.Errorf("whisper.cpp failed: %w", err)
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return "", err
	}
	return parseOutput(jb)
}

func parseOutput(jb []byte) (string, error) {
	var out output
	if err := json.Unmarshal(jb, &out); err != nil {
		return "", fmt.Errorf("decode whisper output: %w", err)
	}
	parts := make([]string, 0, len(out.Transcription))
	for _, s := range out.Transcription {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("whisper.cpp produced an empty transcript")
	}
	return strings.Join(parts, " "), nil
}
