package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/forPelevin/insightly/internal/logging"
	"github.com/forPelevin/insightly/internal/ports"
	"github.com/forPelevin/insightly/internal/ports/adapters/assemblyai"
	"github.com/forPelevin/insightly/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/insightly/internal/ports/adapters/gemini"
	"github.com/forPelevin/insightly/internal/ports/adapters/openai"
	"github.com/forPelevin/insightly/internal/ports/adapters/procrun"
	"github.com/forPelevin/insightly/internal/ports/adapters/streamlink"
	"github.com/forPelevin/insightly/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/insightly/internal/render"
	"github.com/forPelevin/insightly/internal/types"
	"github.com/forPelevin/insightly/internal/usecase"
)

// NewTranscriber builds the configured transcription adapter.
func NewTranscriber(cfg Config) (ports.Transcriber, error) {
	run := procrun.New()
	switch cfg.Transcriber {
	case TranscriberAssemblyAI:
		return assemblyai.New(cfg.AssemblyAIAPIKey), nil
	case TranscriberWhisperCpp:
		return whispercpp.New(cfg.WhisperBin, cfg.WhisperModel, ffmpeg.New(cfg.FFmpegPath, run), run), nil
	}
	return nil, fmt.Errorf("unknown transcriber %q", cfg.Transcriber)
}

func NewDescriber(ctx context.Context, cfg Config) (ports.Describer, error) {
	switch cfg.Describer {
	case DescriberOpenAI:
		return openai.New(openai.Config{
			APIKey:            cfg.OpenAIAPIKey,
			BaseURL:           cfg.OpenAIBaseURL,
			VisionModel:       cfg.VisionModel,
			TextModel:         cfg.TextModel,
			DescribeMaxTokens: cfg.DescribeMaxTokens,
			CombineMaxTokens:  cfg.CombineMaxTokens,
		}), nil
	case DescriberGemini:
		g, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g.WithMaxTokens(cfg.DescribeMaxTokens, cfg.CombineMaxTokens), nil
	}
	return nil, fmt.Errorf("unknown describer %q", cfg.Describer)
}

// Build wires every adapter into a ready usecase. cfg must be validated.
func Build(ctx context.Context, cfg Config) (usecase.Usecase, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	run := procrun.New()

	asr, err := NewTranscriber(cfg)
	if err != nil {
		return usecase.Usecase{}, err
	}
	llm, err := NewDescriber(ctx, cfg)
	if err != nil {
		return usecase.Usecase{}, err
	}

	return usecase.New(usecase.Deps{
		Resolver: streamlink.New(cfg.StreamlinkPath, run),
		Media:    ffmpeg.New(cfg.FFmpegPath, run),
		ASR:      asr,
		LLM:      llm,
		Log:      log,
	}), nil
}

// Run analyses one stream window and, when cfg.OutDir is set, writes the run
// artifacts below it. It returns the run directory, empty when nothing was
// written.
func Run(ctx context.Context, cfg Config, req types.StreamRequest) (*types.Report, string, error) {
	uc, err := Build(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	return RunWith(ctx, uc, cfg, req)
}

func RunWith(ctx context.Context, uc usecase.Usecase, cfg Config, req types.StreamRequest) (*types.Report, string, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	rep, err := uc.Run(ctx, usecase.Input{
		Request:  req,
		Parallel: cfg.Parallel,
		TempDir:  cfg.TempDir,
	})
	if err != nil {
		return nil, "", err
	}
	if cfg.OutDir == "" {
		return rep, "", nil
	}

	runOutDir := buildRunOutDir(cfg.OutDir, req.URL, time.Now().UTC())
	if err := render.WriteArtifacts(runOutDir, rep); err != nil {
		return rep, "", fmt.Errorf("write artifacts: %w", err)
	}
	log.Info("artifacts written", "dir", runOutDir, "frames", len(rep.Frames))
	return rep, runOutDir, nil
}

func buildRunOutDir(outRoot, streamURL string, now time.Time) string {
	name := normalizePathSegment(streamName(streamURL))
	if name == "" {
		name = "stream"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", streamURL, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

// streamName picks host plus path from a page URL, e.g. twitch.tv/someone.
func streamName(streamURL string) string {
	u, err := url.Parse(strings.TrimSpace(streamURL))
	if err != nil || u.Host == "" {
		return streamURL
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host + u.Path
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.Runner = (*procrun.Runner)(nil)
var _ ports.Resolver = (*streamlink.Adapter)(nil)
var _ ports.MediaTool = (*ffmpeg.Adapter)(nil)
var _ whispercpp.WavConverter = (*ffmpeg.Adapter)(nil)
var _ ports.Transcriber = (*assemblyai.Adapter)(nil)
var _ ports.Transcriber = (*whispercpp.Adapter)(nil)
var _ ports.Describer = (*openai.Adapter)(nil)
var _ ports.Describer = (*gemini.Adapter)(nil)
