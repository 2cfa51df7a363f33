package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forPelevin/insightly/internal/types"
)

func sampleReport(n int) *types.Report {
	rep := &types.Report{
		RequestID:   "req-1",
		Request:     types.StreamRequest{URL: "https://twitch.tv/someone", DurationSeconds: 5},
		State:       types.StateDone,
		Audio:       make([]byte, 2048),
		Transcript:  types.Succeeded("hello world"),
		Description: types.Succeeded("a desk"),
		Overall:     types.Succeeded("someone says hello at a desk"),
	}
	for i := 0; i < n; i++ {
		rep.Frames = append(rep.Frames, types.Frame{Index: i, Raw: []byte{0xFF, 0xD8, byte(i)}, Encoded: "AAA"})
	}
	return rep
}

func TestText_GridAndSections(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, sampleReport(5)); err != nil {
		t.Fatalf("text: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Frame 1    Frame 2    Frame 3\n",
		"Frame 4    Frame 5\n",
		"2.0 KB of mp3 audio",
		"## Transcript\nhello world",
		"## Frame Description\na desk",
		"## Consolidated Description\nsomeone says hello at a desk",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Frame 6") {
		t.Fatalf("unexpected extra frame:\n%s", out)
	}
}

func TestText_Notices(t *testing.T) {
	rep := sampleReport(0)
	rep.FramesErr = errors.New("boom")
	rep.AudioErr = errors.New("boom")
	rep.Transcript = types.Failed(types.Skipped{Missing: []string{"audio"}})
	rep.Description = types.Failed(errors.New("x"))
	rep.Overall = types.Failed(errors.New("x"))

	var buf bytes.Buffer
	_ = Text(&buf, rep)
	out := buf.String()
	for _, want := range []string{
		types.NoticeFramesFailed, types.NoticeAudioFailed, types.NoticeTranscriptFailed,
		types.NoticeDescriptionFailed, types.NoticeOverallFailed,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected notice %q in output:\n%s", want, out)
		}
	}
}

func TestText_NoStream(t *testing.T) {
	rep := &types.Report{Request: types.StreamRequest{URL: "u", DurationSeconds: 1}, State: types.StateNoStream}
	var buf bytes.Buffer
	_ = Text(&buf, rep)
	if !strings.Contains(buf.String(), types.NoticeNoStreams) || strings.Contains(buf.String(), "## Frames") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestNewView_NullsForAbsent(t *testing.T) {
	rep := sampleReport(2)
	rep.Overall = types.Failed(errors.New("x"))
	b, err := json.Marshal(NewView(rep, true))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"overall_description":null`) || !strings.Contains(s, `"transcript":"hello world"`) {
		t.Fatalf("unexpected json: %s", s)
	}
	if !strings.Contains(s, `"jpeg_base64":"AAA"`) || strings.Contains(s, `"file"`) {
		t.Fatalf("expected inline frames: %s", s)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	if err := WriteArtifacts(dir, sampleReport(3)); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	for _, name := range []string{"frames/frame_0001.jpg", "frames/frame_0003.jpg", "audio.mp3", "report.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	b, _ := os.ReadFile(filepath.Join(dir, "frames", "frame_0002.jpg"))
	if !bytes.Equal(b, []byte{0xFF, 0xD8, 1}) {
		t.Fatalf("unexpected frame bytes: %v", b)
	}

	var v View
	raw, _ := os.ReadFile(filepath.Join(dir, "report.json"))
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(v.Frames) != 3 || v.Frames[0].File != filepath.Join("frames", "frame_0001.jpg") || v.Frames[0].JPEGBase64 != "" {
		t.Fatalf("unexpected frames in report: %+v", v.Frames)
	}
}
