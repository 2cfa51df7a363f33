package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/forPelevin/insightly/internal/domain/prompts"
	"github.com/forPelevin/insightly/internal/types"
)

const (
	requestTimeout = 3 * time.Minute

	defaultVisionModel = "gpt-4o"
	defaultTextModel   = "gpt-4o-mini"
)

type Config struct {
	APIKey            string
	BaseURL           string
	VisionModel       string
	TextModel         string
	DescribeMaxTokens int
	CombineMaxTokens  int
	HTTPClient        *http.Client
}

type Adapter struct {
	key         string
	client      oai.Client
	visionModel string
	textModel   string
	describeMax int
	combineMax  int
}

// New builds the adapter. cfg.BaseURL is expected to have passed
// ValidateBaseURL; the SDK is pointed at its /v1/ root.
func New(cfg Config) *Adapter {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	a := &Adapter{
		key: cfg.APIKey,
		client: oai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(normalizeBaseURL(cfg.BaseURL)+"/v1/"),
			option.WithHTTPClient(httpClient),
			option.WithRequestTimeout(requestTimeout),
			option.WithMaxRetries(0),
		),
		visionModel: cfg.VisionModel,
		textModel:   cfg.TextModel,
		describeMax: cfg.DescribeMaxTokens,
		combineMax:  cfg.CombineMaxTokens,
	}
	if a.visionModel == "" {
		a.visionModel = defaultVisionModel
	}
	if a.textModel == "" {
		a.textModel = defaultTextModel
	}
	if a.describeMax <= 0 {
		a.describeMax = prompts.DescribeMaxTokens
	}
	if a.combineMax <= 0 {
		a.combineMax = prompts.CombineMaxTokens
	}
	return a
}

// DescribeFrames sends every frame as an inline JPEG in a single request.
func (a *Adapter) DescribeFrames(ctx context.Context, frames []types.Frame) (string, error) {
	if len(frames) == 0 {
		return "", errors.New("openai: no frames to describe")
	}
	parts := make([]oai.ChatCompletionContentPartUnionParam, 0, len(frames)+1)
	parts = append(parts, oai.TextContentPart(prompts.DescribeFrames))
	for _, f := range frames {
		parts = append(parts, oai.ImageContentPart(oai.ChatCompletionContentPartImageImageURLParam{
			URL:    "data:image/jpeg;base64," + f.Encoded,
			Detail: "low",
		}))
	}
	msgs := []oai.ChatCompletionMessageParamUnion{oai.UserMessage(parts)}
	return a.complete(ctx, a.visionModel, msgs, a.describeMax)
}

func (a *Adapter) CombineDescriptions(ctx context.Context, transcript, frameDescription string) (string, error) {
	msgs := []oai.ChatCompletionMessageParamUnion{
		oai.SystemMessage(prompts.CombineDescriptions),
		oai.UserMessage(prompts.CombineInput(transcript, frameDescription)),
	}
	out, err := a.complete(ctx, a.textModel, msgs, a.combineMax)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (a *Adapter) complete(ctx context.Context, model string, msgs []oai.ChatCompletionMessageParamUnion, maxTokens int) (string, error) {
	resp, err := a.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model:     shared.ChatModel(model),
		Messages:  msgs,
		MaxTokens: oai.Int(int64(maxTokens)),
	})
	if err != nil {
		var apiErr *oai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai status %d: %s", apiErr.StatusCode, truncate(redactSecrets(apiErr.Error(), a.key), 400))
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("openai timeout after %s (model=%s)", requestTimeout, model)
		}
		return "", fmt.Errorf("openai request: %s", redactSecrets(err.Error(), a.key))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned (model=%s)", model)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", errors.New("openai: empty content")
	}
	return content, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
