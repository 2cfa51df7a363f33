package ports

import (
	"context"

	"github.com/forPelevin/insightly/internal/types"
)

type RunResult struct {
	Stdout []byte
	Stderr []byte
}

type Runner interface {
	Run(ctx context.Context, args []string) (RunResult, error)
}

type Resolver interface {
	Resolve(ctx context.Context, pageURL string) (types.ResolvedMedia, error)
}

type MediaTool interface {
	ExtractFrames(ctx context.Context, directURL string, seconds int) ([]byte, error)
	ExtractAudio(ctx context.Context, directURL string, seconds int) ([]byte, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type Describer interface {
	DescribeFrames(ctx context.Context, frames []types.Frame) (string, error)
	CombineDescriptions(ctx context.Context, transcript, frameDescription string) (string, error)
}
