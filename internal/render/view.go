package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forPelevin/insightly/internal/types"
)

type FrameView struct {
	Index      int    `json:"index"`
	File       string `json:"file,omitempty"`
	JPEGBase64 string `json:"jpeg_base64,omitempty"`
}

// View is the JSON shape of a report. Absent results are null.
type View struct {
	RequestID          string        `json:"request_id"`
	URL                string        `json:"url"`
	Seconds            int           `json:"seconds"`
	DirectURL          string        `json:"direct_url,omitempty"`
	State              types.State   `json:"state"`
	Trace              []types.State `json:"trace"`
	Frames             []FrameView   `json:"frames"`
	AudioBytes         int           `json:"audio_bytes"`
	Transcript         *string       `json:"transcript"`
	FrameDescription   *string       `json:"frame_description"`
	OverallDescription *string       `json:"overall_description"`
	Notices            []string      `json:"notices"`
	StartedAt          time.Time     `json:"started_at"`
	FinishedAt         time.Time     `json:"finished_at"`
}

// NewView converts rep. With inline set, frames carry their base64 payload;
// otherwise they point at the files WriteArtifacts lays down.
func NewView(rep *types.Report, inline bool) View {
	v := View{
		RequestID:          rep.RequestID,
		URL:                rep.Request.URL,
		Seconds:            rep.Request.DurationSeconds,
		DirectURL:          rep.DirectURL,
		State:              rep.State,
		Trace:              rep.Trace,
		Frames:             make([]FrameView, 0, len(rep.Frames)),
		AudioBytes:         len(rep.Audio),
		Transcript:         textOrNil(rep.Transcript),
		FrameDescription:   textOrNil(rep.Description),
		OverallDescription: textOrNil(rep.Overall),
		Notices:            rep.Notices,
		StartedAt:          rep.StartedAt,
		FinishedAt:         rep.FinishedAt,
	}
	if v.Notices == nil {
		v.Notices = []string{}
	}
	for _, f := range rep.Frames {
		fv := FrameView{Index: f.Index}
		if inline {
			fv.JPEGBase64 = f.Encoded
		} else {
			fv.File = FrameFile(f.Index)
		}
		v.Frames = append(v.Frames, fv)
	}
	return v
}

func textOrNil(o types.Outcome) *string {
	if !o.OK() {
		return nil
	}
	s := o.Text
	return &s
}

// FrameFile is the artifact path of frame i relative to the run directory.
func FrameFile(i int) string {
	return filepath.Join("frames", fmt.Sprintf("frame_%04d.jpg", i+1))
}

// WriteArtifacts lays the run out under dir: frames/frame_0001.jpg...,
// audio.mp3 and report.json. dir is created if missing.
func WriteArtifacts(dir string, rep *types.Report) error {
	if err := os.MkdirAll(filepath.Join(dir, "frames"), 0o755); err != nil {
		return err
	}
	for _, f := range rep.Frames {
		if err := os.WriteFile(filepath.Join(dir, FrameFile(f.Index)), f.Raw, 0o644); err != nil {
			return fmt.Errorf("write frame %d: %w", f.Index, err)
		}
	}
	if len(rep.Audio) > 0 {
		if err := os.WriteFile(filepath.Join(dir, "audio.mp3"), rep.Audio, 0o644); err != nil {
			return fmt.Errorf("write audio: %w", err)
		}
	}

	b, err := json.MarshalIndent(NewView(rep, false), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "report.json"), b, 0o644)
}
