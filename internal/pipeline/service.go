package pipeline

import (
	"context"

	"github.com/forPelevin/insightly/internal/types"
	"github.com/forPelevin/insightly/internal/usecase"
)

// Service exposes a built usecase to long-running surfaces (HTTP, watch).
type Service struct {
	uc  usecase.Usecase
	cfg Config
}

func NewService(uc usecase.Usecase, cfg Config) *Service {
	return &Service{uc: uc, cfg: cfg}
}

// Analyze runs one request. Artifacts are written when cfg.OutDir is set.
func (s *Service) Analyze(ctx context.Context, req types.StreamRequest) (*types.Report, error) {
	rep, _, err := RunWith(ctx, s.uc, s.cfg, req)
	return rep, err
}

func (s *Service) TranscribeAudio(ctx context.Context, audio []byte) (string, error) {
	return s.uc.TranscribeBytes(ctx, audio, s.cfg.TempDir)
}

// TranscribeFile transcribes audio already on disk without copying it.
func (s *Service) TranscribeFile(ctx context.Context, path string) (string, error) {
	return s.uc.TranscribeFile(ctx, path)
}
