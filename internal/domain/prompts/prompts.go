// Package prompts holds the fixed instructions sent to language models.
package prompts

import "strings"

const DescribeFrames = "1. Generate a description for this sequence of video frames in about 90 words. " +
	"2. Return the following: i. List of objects in the video " +
	"ii. Any restrictive content or sensitive content and if so which frame."

const CombineDescriptions = "Generate an in detail description combining the transcript and video description."

const (
	DescribeMaxTokens = 3000
	CombineMaxTokens  = 300
)

// CombineInput joins the two texts the way the combining request expects them.
func CombineInput(transcript, frameDescription string) string {
	return strings.TrimSpace(transcript) + "\n\n" + strings.TrimSpace(frameDescription)
}
