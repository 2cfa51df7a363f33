package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/insightly/internal/ports/adapters/openai"
)

const (
	DescriberOpenAI = "openai"
	DescriberGemini = "gemini"

	TranscriberAssemblyAI = "assemblyai"
	TranscriberWhisperCpp = "whispercpp"
)

// Config is the full set of knobs for one process. Secrets come from the
// environment only and are never read from the YAML file.
type Config struct {
	Describer   string `yaml:"describer"`
	Transcriber string `yaml:"transcriber"`

	FFmpegPath     string `yaml:"ffmpeg_path"`
	StreamlinkPath string `yaml:"streamlink_path"`

	WhisperBin   string `yaml:"whisper_bin"`
	WhisperModel string `yaml:"whisper_model"`

	VisionModel       string `yaml:"vision_model"`
	TextModel         string `yaml:"text_model"`
	GeminiModel       string `yaml:"gemini_model"`
	DescribeMaxTokens int    `yaml:"describe_max_tokens"`
	CombineMaxTokens  int    `yaml:"combine_max_tokens"`

	OpenAIBaseURL      string   `yaml:"openai_base_url"`
	OpenAIAllowedHosts []string `yaml:"openai_allowed_hosts"`

	// Parallel extracts frames and audio concurrently.
	Parallel bool   `yaml:"parallel"`
	OutDir   string `yaml:"out_dir"`
	TempDir  string `yaml:"temp_dir"`

	OpenAIAPIKey     string `yaml:"-"`
	AssemblyAIAPIKey string `yaml:"-"`
	GeminiAPIKey     string `yaml:"-"`

	Logger *slog.Logger `yaml:"-"`
}

func Defaults() Config {
	return Config{
		Describer:      DescriberOpenAI,
		Transcriber:    TranscriberAssemblyAI,
		FFmpegPath:     "ffmpeg",
		StreamlinkPath: "streamlink",
		WhisperBin:     ".cache/bin/whisper.cpp",
		WhisperModel:   ".cache/models/ggml-base.bin",
	}
}

// LoadFile overlays the YAML file at path onto c. Keys missing from the file
// keep their current value.
func LoadFile(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays values from the environment onto c.
func ApplyEnv(c *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	c.OpenAIAPIKey = getenv("OPENAI_API_KEY")
	c.AssemblyAIAPIKey = getenv("ASSEMBLYAI_API_KEY")
	c.GeminiAPIKey = getenv("GEMINI_API_KEY")

	setString(&c.OpenAIBaseURL, getenv("OPENAI_BASE_URL"))
	setString(&c.Describer, getenv("INSIGHTLY_DESCRIBER"))
	setString(&c.Transcriber, getenv("INSIGHTLY_TRANSCRIBER"))
	setString(&c.VisionModel, getenv("OPENAI_VISION_MODEL"))
	setString(&c.TextModel, getenv("OPENAI_TEXT_MODEL"))
	setString(&c.GeminiModel, getenv("GEMINI_MODEL"))
	setString(&c.WhisperBin, getenv("WHISPER_BIN"))
	setString(&c.WhisperModel, getenv("WHISPER_MODEL"))

	if v := getenv("OPENAI_ALLOWED_HOSTS"); strings.TrimSpace(v) != "" {
		c.OpenAIAllowedHosts = strings.Split(v, ",")
	}
	if v, err := strconv.ParseBool(getenv("INSIGHTLY_PARALLEL")); err == nil {
		c.Parallel = v
	}
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// ValidateTranscription checks only what the transcribe and watch commands need.
func (c Config) ValidateTranscription() error {
	switch c.Transcriber {
	case TranscriberAssemblyAI:
		if c.AssemblyAIAPIKey == "" {
			return errors.New("ASSEMBLYAI_API_KEY is required for the assemblyai transcriber")
		}
	case TranscriberWhisperCpp:
		if c.WhisperModel == "" {
			return errors.New("whisper model path is required")
		}
	default:
		return fmt.Errorf("unknown transcriber %q", c.Transcriber)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Describer {
	case DescriberOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required (set it in .env)")
		}
		if err := openai.ValidateBaseURL(c.OpenAIBaseURL, c.OpenAIAllowedHosts); err != nil {
			return err
		}
	case DescriberGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini describer")
		}
	default:
		return fmt.Errorf("unknown describer %q", c.Describer)
	}
	if c.DescribeMaxTokens < 0 || c.CombineMaxTokens < 0 {
		return errors.New("max tokens must be >= 0")
	}
	if c.Transcriber == TranscriberWhisperCpp && c.WhisperModel == "" {
		return errors.New("whisper model path is required")
	}
	if c.Transcriber != TranscriberAssemblyAI && c.Transcriber != TranscriberWhisperCpp {
		return fmt.Errorf("unknown transcriber %q", c.Transcriber)
	}
	return nil
}
