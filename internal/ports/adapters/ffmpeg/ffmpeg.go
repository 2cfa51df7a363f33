package ffmpeg

import (
	"context"
	"fmt"
	"strconv"

	"github.com/forPelevin/insightly/internal/ports"
	"github.com/forPelevin/insightly/internal/ports/adapters/procrun"
)

type Adapter struct {
	ffmpeg string
	run    ports.Runner
}

func New(ffmpegPath string, run ports.Runner) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if run == nil {
		run = procrun.New()
	}
	return &Adapter{ffmpeg: ffmpegPath, run: run}
}

// FrameExtractionArgs samples one frame per second as motion-JPEG on stdout,
// with audio stripped.
func FrameExtractionArgs(bin, directURL string, seconds int) []string {
	return []string{
		bin,
		"-i", directURL,
		"-t", strconv.Itoa(seconds),
		"-vf", "fps=1",
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-an",
		"-",
	}
}

// AudioExtractionArgs encodes the audio track as MP3 on stdout, with video
// stripped.
func AudioExtractionArgs(bin, directURL string, seconds int) []string {
	return []string{
		bin,
		"-i", directURL,
		"-vn",
		"-acodec", "libmp3lame",
		"-t", strconv.Itoa(seconds),
		"-f", "mp3",
		"-",
	}
}

func (a *Adapter) ExtractFrames(ctx context.Context, directURL string, seconds int) ([]byte, error) {
	res, err := a.run.Run(ctx, FrameExtractionArgs(a.ffmpeg, directURL, seconds))
	if err != nil {
		return nil, fmt.Errorf("ffmpeg extract frames: %w", err)
	}
	return res.Stdout, nil
}

func (a *Adapter) ExtractAudio(ctx context.Context, directURL string, seconds int) ([]byte, error) {
	res, err := a.run.Run(ctx, AudioExtractionArgs(a.ffmpeg, directURL, seconds))
	if err != nil {
		return nil, fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return res.Stdout, nil
}

// ConvertToWav16k writes a 16 kHz mono WAV copy of in, the input format
// whisper.cpp expects.
func (a *Adapter) ConvertToWav16k(ctx context.Context, in, outWav string) error {
	_, err := a.run.Run(ctx, []string{
		a.ffmpeg,
		"-y",
		"-i", in,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	})
	if err != nil {
		return fmt.Errorf("ffmpeg convert wav: %w", err)
	}
	return nil
}
