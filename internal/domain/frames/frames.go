package frames

import (
	"bytes"
	"encoding/base64"

	"github.com/forPelevin/insightly/internal/types"
)

// SOI is the JPEG start-of-image marker.
var SOI = []byte{0xFF, 0xD8}

// Split recovers individual JPEG frames from a motion-JPEG byte stream.
// Bytes before the first marker are dropped; a stream with no marker yields
// no frames.
func Split(video []byte) []types.Frame {
	parts := bytes.Split(video, SOI)
	if len(parts) < 2 {
		return nil
	}
	parts = parts[1:]

	out := make([]types.Frame, 0, len(parts))
	for i, p := range parts {
		raw := make([]byte, 0, len(SOI)+len(p))
		raw = append(raw, SOI...)
		raw = append(raw, p...)
		out = append(out, types.Frame{
			Index:   i,
			Raw:     raw,
			Encoded: Encode(raw),
		})
	}
	return out
}

func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

func Decode(encoded string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(encoded)
}

// Encoded returns the transport form of every frame, in order.
func Encoded(fs []types.Frame) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Encoded)
	}
	return out
}

// Grid lays n frame indices out in rows of cols.
func Grid(n, cols int) [][]int {
	if n <= 0 || cols <= 0 {
		return nil
	}
	var rows [][]int
	for start := 0; start < n; start += cols {
		end := start + cols
		if end > n {
			end = n
		}
		row := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			row = append(row, i)
		}
		rows = append(rows, row)
	}
	return rows
}
