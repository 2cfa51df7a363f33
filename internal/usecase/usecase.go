package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/insightly/internal/domain/frames"
	"github.com/forPelevin/insightly/internal/logging"
	"github.com/forPelevin/insightly/internal/ports"
	"github.com/forPelevin/insightly/internal/ports/adapters/procrun"
	"github.com/forPelevin/insightly/internal/types"
)

var errEmptyOutput = errors.New("transcoder produced no output")

type Deps struct {
	Resolver ports.Resolver
	Media    ports.MediaTool
	ASR      ports.Transcriber
	LLM      ports.Describer
	Log      *slog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	return Usecase{d: d}
}

type Input struct {
	Request types.StreamRequest
	// Parallel runs frame and audio extraction at the same time.
	Parallel bool
	// TempDir is where scratch audio is written. Empty means os.TempDir().
	TempDir string
}

// Run drives one request through the pipeline. The only error it returns is
// for an invalid request; every stage failure is recorded on the report.
func (u Usecase) Run(ctx context.Context, in Input) (*types.Report, error) {
	if err := in.Request.Validate(); err != nil {
		return nil, err
	}
	rep := &types.Report{
		RequestID: uuid.NewString(),
		Request:   in.Request,
		StartedAt: time.Now(),
	}
	log := u.d.Log.With("request_id", rep.RequestID)
	defer func() { rep.FinishedAt = time.Now() }()

	rep.Enter(types.StateIdle)

	rep.Enter(types.StateResolving)
	log.Info("resolving stream", "url", in.Request.URL)
	media, err := u.d.Resolver.Resolve(ctx, in.Request.URL)
	if err != nil {
		log.Warn("stream resolution failed", "error", err)
		rep.Notice(types.NoticeNoStreams)
		rep.Enter(types.StateNoStream)
		return rep, nil
	}
	rep.DirectURL = media.DirectURL

	seconds := in.Request.DurationSeconds
	var ext types.ExtractionResult
	if in.Parallel {
		ext = u.extractBoth(ctx, log, media.DirectURL, seconds)
	}

	rep.Enter(types.StateExtractingFrames)
	if !in.Parallel {
		ext.Video, ext.VideoErr = u.extractFrames(ctx, log, media.DirectURL, seconds)
	}
	if ext.VideoErr != nil {
		rep.FramesErr = ext.VideoErr
	} else if rep.Frames = frames.Split(ext.Video); len(rep.Frames) == 0 {
		rep.FramesErr = errors.New("no jpeg frames in transcoder output")
	}
	if rep.FramesErr != nil {
		log.Warn("frame extraction failed", "error", rep.FramesErr, "stderr", procrun.Stderr(rep.FramesErr))
		rep.Notice(types.NoticeFramesFailed)
	} else {
		log.Info("frames extracted", "count", len(rep.Frames))
	}

	rep.Enter(types.StateExtractingAudio)
	if !in.Parallel {
		ext.Audio, ext.AudioErr = u.extractAudio(ctx, log, media.DirectURL, seconds)
	}
	rep.Audio, rep.AudioErr = ext.Audio, ext.AudioErr
	if rep.AudioErr != nil {
		log.Warn("audio extraction failed", "error", rep.AudioErr, "stderr", procrun.Stderr(rep.AudioErr))
		rep.Notice(types.NoticeAudioFailed)
		rep.Transcript = types.Failed(types.Skipped{Missing: []string{"audio"}})
	} else {
		log.Info("audio extracted", "bytes", len(rep.Audio))
		rep.Enter(types.StateTranscribing)
		text, err := u.TranscribeBytes(ctx, rep.Audio, in.TempDir)
		if err != nil {
			log.Error("transcription failed", "error", err)
			rep.Transcript = types.Failed(err)
		} else {
			rep.Transcript = types.Succeeded(text)
		}
	}
	if !rep.Transcript.OK() {
		rep.Notice(types.NoticeTranscriptFailed)
	}

	rep.Enter(types.StateDescribingFrames)
	if len(rep.Frames) == 0 {
		rep.Description = types.Failed(types.Skipped{Missing: []string{"frames"}})
	} else if text, err := u.d.LLM.DescribeFrames(ctx, rep.Frames); err != nil {
		log.Error("frame description failed", "error", err)
		rep.Description = types.Failed(err)
	} else {
		rep.Description = types.Succeeded(text)
	}
	if !rep.Description.OK() {
		rep.Notice(types.NoticeDescriptionFailed)
	}

	rep.Enter(types.StateCombining)
	rep.Overall = u.combine(ctx, log, rep.Transcript, rep.Description)
	if !rep.Overall.OK() {
		rep.Notice(types.NoticeOverallFailed)
	}

	rep.Enter(types.StateDone)
	log.Info("run finished", "frames", len(rep.Frames), "notices", len(rep.Notices))
	return rep, nil
}

func (u Usecase) extractFrames(ctx context.Context, log *slog.Logger, directURL string, seconds int) ([]byte, error) {
	log.Info("extracting frames", "seconds", seconds)
	b, err := u.d.Media.ExtractFrames(ctx, directURL, seconds)
	if err == nil && len(b) == 0 {
		err = errEmptyOutput
	}
	return b, err
}

func (u Usecase) extractAudio(ctx context.Context, log *slog.Logger, directURL string, seconds int) ([]byte, error) {
	log.Info("extracting audio", "seconds", seconds)
	b, err := u.d.Media.ExtractAudio(ctx, directURL, seconds)
	if err == nil && len(b) == 0 {
		err = errEmptyOutput
	}
	return b, err
}

// extractBoth runs both extractions concurrently. Neither failure cancels
// the other; each is kept on the result.
func (u Usecase) extractBoth(ctx context.Context, log *slog.Logger, directURL string, seconds int) types.ExtractionResult {
	var res types.ExtractionResult
	var g errgroup.Group
	g.Go(func() error {
		res.Video, res.VideoErr = u.extractFrames(ctx, log, directURL, seconds)
		return nil
	})
	g.Go(func() error {
		res.Audio, res.AudioErr = u.extractAudio(ctx, log, directURL, seconds)
		return nil
	})
	_ = g.Wait()
	return res
}

func (u Usecase) combine(ctx context.Context, log *slog.Logger, transcript, description types.Outcome) types.Outcome {
	var missing []string
	if !transcript.OK() {
		missing = append(missing, "transcript")
	}
	if !description.OK() {
		missing = append(missing, "frame description")
	}
	if len(missing) > 0 {
		log.Warn("skipping overall description", "missing", missing)
		return types.Failed(types.Skipped{Missing: missing})
	}
	text, err := u.d.LLM.CombineDescriptions(ctx, transcript.Text, description.Text)
	if err != nil {
		log.Error("overall description failed", "error", err)
		return types.Failed(err)
	}
	return types.Succeeded(text)
}

// TranscribeBytes writes audio to a uniquely named scratch file, transcribes
// it, and removes the file on every path.
func (u Usecase) TranscribeBytes(ctx context.Context, audio []byte, tempDir string) (string, error) {
	f, err := os.CreateTemp(tempDir, "insightly-*.mp3")
	if err != nil {
		return "", fmt.Errorf("create temp audio: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp audio: %w", err)
	}
	return u.d.ASR.Transcribe(ctx, path)
}

func (u Usecase) TranscribeFile(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat audio: %w", err)
	}
	return u.d.ASR.Transcribe(ctx, path)
}
