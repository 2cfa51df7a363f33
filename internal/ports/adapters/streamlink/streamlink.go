package streamlink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/forPelevin/insightly/internal/ports"
	"github.com/forPelevin/insightly/internal/ports/adapters/procrun"
	"github.com/forPelevin/insightly/internal/types"
)

// BestLabel is the quality label streamlink assigns to the highest rendition.
const BestLabel = "best"

var ErrNoStreams = errors.New("no suitable streams found")

type Adapter struct {
	bin string
	run ports.Runner
}

func New(binPath string, run ports.Runner) *Adapter {
	if binPath == "" {
		binPath = "streamlink"
	}
	if run == nil {
		run = procrun.New()
	}
	return &Adapter{bin: binPath, run: run}
}

type listing struct {
	Streams map[string]struct {
		URL string `json:"url"`
	} `json:"streams"`
	Error string `json:"error"`
}

func (a *Adapter) Resolve(ctx context.Context, pageURL string) (types.ResolvedMedia, error) {
	res, err := a.run.Run(ctx, []string{a.bin, "--json", pageURL})
	if err != nil {
		// streamlink exits non-zero with a JSON error body when a page has
		// no playable streams.
		if msg := errorMessage(res.Stdout); msg != "" {
			return types.ResolvedMedia{}, fmt.Errorf("%w: %s", ErrNoStreams, msg)
		}
		return types.ResolvedMedia{}, fmt.Errorf("streamlink: %w", err)
	}

	var l listing
	if err := json.Unmarshal(res.Stdout, &l); err != nil {
		return types.ResolvedMedia{}, fmt.Errorf("decode streamlink output: %w", err)
	}
	if l.Error != "" {
		return types.ResolvedMedia{}, fmt.Errorf("%w: %s", ErrNoStreams, l.Error)
	}
	best, ok := l.Streams[BestLabel]
	if !ok || strings.TrimSpace(best.URL) == "" {
		return types.ResolvedMedia{}, ErrNoStreams
	}
	return types.ResolvedMedia{DirectURL: best.URL}, nil
}

func errorMessage(stdout []byte) string {
	var l listing
	if err := json.Unmarshal(stdout, &l); err != nil {
		return ""
	}
	return l.Error
}
