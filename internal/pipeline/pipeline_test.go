package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/insightly/internal/types"
	"github.com/forPelevin/insightly/internal/usecase"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("out", "https://www.twitch.tv/Some_Streamer", now)
	base := filepath.Base(got)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if !strings.HasPrefix(base, "twitch-tv-some-streamer-20260212-103045Z-") {
		t.Fatalf("unexpected run dir format: %s", base)
	}
	if len(base) != len("twitch-tv-some-streamer-20260212-103045Z-")+6 {
		t.Fatalf("unexpected run dir suffix length: %s", base)
	}
}

func TestBuildRunOutDir_FallbackName(t *testing.T) {
	got := filepath.Base(buildRunOutDir("out", "___", time.Now()))
	if !strings.HasPrefix(got, "stream-") {
		t.Fatalf("expected fallback name, got %s", got)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
		"youtube.com/watch": "youtube-com-watch",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Defaults()
	valid.OpenAIAPIKey = "sk-test"

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing openai key", mutate: func(c *Config) { c.OpenAIAPIKey = "" }, wantErr: "OPENAI_API_KEY is required"},
		{name: "http base url", mutate: func(c *Config) { c.OpenAIBaseURL = "http://api.openai.com" }, wantErr: "https is required"},
		{name: "unknown host", mutate: func(c *Config) { c.OpenAIBaseURL = "https://evil.example" }, wantErr: "not in OPENAI_ALLOWED_HOSTS"},
		{name: "allowed proxy", mutate: func(c *Config) {
			c.OpenAIBaseURL = "https://proxy.internal"
			c.OpenAIAllowedHosts = []string{" proxy.internal "}
		}},
		{name: "gemini without key", mutate: func(c *Config) { c.Describer = DescriberGemini }, wantErr: "GEMINI_API_KEY is required"},
		{name: "gemini with key", mutate: func(c *Config) {
			c.Describer = DescriberGemini
			c.OpenAIAPIKey = ""
			c.GeminiAPIKey = "g"
		}},
		{name: "unknown describer", mutate: func(c *Config) { c.Describer = "ollama" }, wantErr: `unknown describer "ollama"`},
		{name: "unknown transcriber", mutate: func(c *Config) { c.Transcriber = "vosk" }, wantErr: `unknown transcriber "vosk"`},
		{name: "whisper without model", mutate: func(c *Config) {
			c.Transcriber = TranscriberWhisperCpp
			c.WhisperModel = ""
		}, wantErr: "whisper model path is required"},
		{name: "negative tokens", mutate: func(c *Config) { c.CombineMaxTokens = -1 }, wantErr: "max tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateTranscription(t *testing.T) {
	c := Defaults()
	if err := c.ValidateTranscription(); err == nil || !strings.Contains(err.Error(), "ASSEMBLYAI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
	c.AssemblyAIAPIKey = "k"
	if err := c.ValidateTranscription(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insightly.yaml")
	yml := "describer: gemini\nvision_model: file-model\ngemini_model: gemini-file\nparallel: true\nopenai_allowed_hosts: [a.example, b.example]\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c := Defaults()
	if err := LoadFile(path, &c); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Describer != DescriberGemini || c.FFmpegPath != "ffmpeg" || !c.Parallel || len(c.OpenAIAllowedHosts) != 2 {
		t.Fatalf("unexpected config after file: %+v", c)
	}

	env := map[string]string{
		"OPENAI_API_KEY":      "sk-env",
		"OPENAI_VISION_MODEL": "env-model",
		"INSIGHTLY_PARALLEL":  "false",
	}
	ApplyEnv(&c, func(k string) string { return env[k] })
	if c.VisionModel != "env-model" || c.GeminiModel != "gemini-file" || c.OpenAIAPIKey != "sk-env" || c.Parallel {
		t.Fatalf("unexpected config after env: %+v", c)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	var c Config
	if err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), &c); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("describer: [unterminated"), 0o644)
	if err := LoadFile(path, &c); err == nil || !strings.Contains(err.Error(), "parse config file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

type stubResolver struct{}

func (stubResolver) Resolve(context.Context, string) (types.ResolvedMedia, error) {
	return types.ResolvedMedia{DirectURL: "https://cdn/best"}, nil
}

type stubMedia struct{}

func (stubMedia) ExtractFrames(context.Context, string, int) ([]byte, error) {
	return []byte{0xFF, 0xD8, 1, 0xFF, 0xD8, 2}, nil
}

func (stubMedia) ExtractAudio(context.Context, string, int) ([]byte, error) {
	return []byte("mp3"), nil
}

type stubASR struct{}

func (stubASR) Transcribe(context.Context, string) (string, error) { return "hello world", nil }

type stubLLM struct{}

func (stubLLM) DescribeFrames(context.Context, []types.Frame) (string, error) { return "two frames", nil }

func (stubLLM) CombineDescriptions(context.Context, string, string) (string, error) {
	return "overall", nil
}

func TestRunWith_WritesArtifacts(t *testing.T) {
	uc := usecase.New(usecase.Deps{Resolver: stubResolver{}, Media: stubMedia{}, ASR: stubASR{}, LLM: stubLLM{}})
	cfg := Defaults()
	cfg.OutDir = t.TempDir()
	cfg.TempDir = t.TempDir()

	rep, dir, err := RunWith(context.Background(), uc, cfg, types.StreamRequest{URL: "https://twitch.tv/x", DurationSeconds: 2})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.State != types.StateDone || len(rep.Frames) != 2 {
		t.Fatalf("unexpected report: %s %d", rep.State, len(rep.Frames))
	}
	if !strings.HasPrefix(filepath.Base(dir), "twitch-tv-x-") {
		t.Fatalf("unexpected run dir: %s", dir)
	}
	for _, name := range []string{"report.json", "audio.mp3", filepath.Join("frames", "frame_0002.jpg")} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestRunWith_NoOutDir(t *testing.T) {
	uc := usecase.New(usecase.Deps{Resolver: stubResolver{}, Media: stubMedia{}, ASR: stubASR{}, LLM: stubLLM{}})
	cfg := Defaults()
	cfg.TempDir = t.TempDir()
	_, dir, err := RunWith(context.Background(), uc, cfg, types.StreamRequest{URL: "u", DurationSeconds: 1})
	if err != nil || dir != "" {
		t.Fatalf("expected no artifacts, got dir=%q err=%v", dir, err)
	}
}
