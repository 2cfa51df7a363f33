package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/forPelevin/insightly/internal/domain/prompts"
	"github.com/forPelevin/insightly/internal/types"
)

const defaultModel = "gemini-2.5-flash"

// Generator is the subset of the genai Models service the adapter calls.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Adapter struct {
	models      Generator
	model       string
	describeMax int32
	combineMax  int32
}

func New(ctx context.Context, apiKey, model string) (*Adapter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return NewWithGenerator(client.Models, model), nil
}

func NewWithGenerator(g Generator, model string) *Adapter {
	if model == "" {
		model = defaultModel
	}
	return &Adapter{
		models:      g,
		model:       model,
		describeMax: prompts.DescribeMaxTokens,
		combineMax:  prompts.CombineMaxTokens,
	}
}

// WithMaxTokens overrides the output limits; values <= 0 keep the defaults.
func (a *Adapter) WithMaxTokens(describe, combine int) *Adapter {
	if describe > 0 {
		a.describeMax = int32(describe)
	}
	if combine > 0 {
		a.combineMax = int32(combine)
	}
	return a
}

func (a *Adapter) DescribeFrames(ctx context.Context, frames []types.Frame) (string, error) {
	if len(frames) == 0 {
		return "", errors.New("gemini: no frames to describe")
	}
	parts := make([]*genai.Part, 0, len(frames)+1)
	parts = append(parts, genai.NewPartFromText(prompts.DescribeFrames))
	for _, f := range frames {
		parts = append(parts, genai.NewPartFromBytes(f.Raw, "image/jpeg"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return a.generate(ctx, contents, a.describeMax)
}

func (a *Adapter) CombineDescriptions(ctx context.Context, transcript, frameDescription string) (string, error) {
	text := prompts.CombineDescriptions + "\n\n" + prompts.CombineInput(transcript, frameDescription)
	out, err := a.generate(ctx, genai.Text(text), a.combineMax)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (a *Adapter) generate(ctx context.Context, contents []*genai.Content, maxTokens int32) (string, error) {
	result, err := a.models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("empty response from Gemini")
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("empty response from Gemini")
	}
	return b.String(), nil
}
