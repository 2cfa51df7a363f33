package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/forPelevin/insightly/internal/domain/frames"
	"github.com/forPelevin/insightly/internal/types"
)

// GridColumns is how many frames share a row in the text report.
const GridColumns = 3

const title = "Live Stream Insight"

// Text writes a human-readable report for one run.
func Text(w io.Writer, rep *types.Report) error {
	var b strings.Builder

	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n")
	fmt.Fprintf(&b, "URL: %s\n", rep.Request.URL)
	fmt.Fprintf(&b, "Duration: %ds\n", rep.Request.DurationSeconds)
	if rep.RequestID != "" {
		fmt.Fprintf(&b, "Request: %s\n", rep.RequestID)
	}
	b.WriteString("\n")

	if rep.State == types.StateNoStream {
		b.WriteString(types.NoticeNoStreams + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	section(&b, "Frames")
	if rep.FramesErr != nil {
		b.WriteString(types.NoticeFramesFailed + "\n")
	} else {
		writeGrid(&b, len(rep.Frames))
	}

	section(&b, "Audio")
	if rep.AudioErr != nil {
		b.WriteString(types.NoticeAudioFailed + "\n")
	} else {
		fmt.Fprintf(&b, "%s of mp3 audio\n", humanBytes(len(rep.Audio)))
	}

	outcome(&b, "Transcript", rep.Transcript, types.NoticeTranscriptFailed)
	outcome(&b, "Frame Description", rep.Description, types.NoticeDescriptionFailed)
	outcome(&b, "Consolidated Description", rep.Overall, types.NoticeOverallFailed)

	if !rep.FinishedAt.IsZero() && !rep.StartedAt.IsZero() {
		fmt.Fprintf(&b, "\nfinished in %s\n", rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, name string) {
	b.WriteString("## " + name + "\n")
}

func outcome(b *strings.Builder, name string, o types.Outcome, notice string) {
	b.WriteString("\n")
	section(b, name)
	if !o.OK() {
		b.WriteString(notice + "\n")
		return
	}
	b.WriteString(o.Text + "\n")
}

func writeGrid(b *strings.Builder, n int) {
	rows := frames.Grid(n, GridColumns)
	if len(rows) == 0 {
		b.WriteString("(none)\n")
		return
	}
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, i := range row {
			cells = append(cells, fmt.Sprintf("%-10s", frameLabel(i)))
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, " "), " ") + "\n")
	}
}

// frameLabel is one-based, matching what a viewer counts.
func frameLabel(i int) string {
	return fmt.Sprintf("Frame %d", i+1)
}

func humanBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMG"[exp])
}
