package types

import "time"

type State string

const (
	StateIdle             State = "idle"
	StateResolving        State = "resolving"
	StateNoStream         State = "no_stream"
	StateExtractingFrames State = "extracting_frames"
	StateExtractingAudio  State = "extracting_audio"
	StateTranscribing     State = "transcribing"
	StateDescribingFrames State = "describing_frames"
	StateCombining        State = "combining"
	StateDone             State = "done"
)

func (s State) Terminal() bool { return s == StateNoStream || s == StateDone }

const (
	NoticeNoStreams         = "No suitable streams found."
	NoticeFramesFailed      = "Failed to extract frames."
	NoticeAudioFailed       = "Failed to extract audio."
	NoticeTranscriptFailed  = "Failed to retrieve transcript."
	NoticeDescriptionFailed = "Failed to generate description."
	NoticeOverallFailed     = "Failed to generate overall description."
)

// Report is everything a rendering surface needs to show one run.
type Report struct {
	RequestID string
	Request   StreamRequest
	DirectURL string
	State     State
	Trace     []State

	Frames      []Frame
	FramesErr   error
	Audio       []byte
	AudioErr    error
	Transcript  Outcome
	Description Outcome
	Overall     Outcome

	Notices    []string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Report) Enter(s State) {
	r.State = s
	r.Trace = append(r.Trace, s)
}

func (r *Report) Notice(msg string) {
	r.Notices = append(r.Notices, msg)
}
