package streamlink

import (
	"context"
	"errors"
	"testing"

	"github.com/forPelevin/insightly/internal/ports"
)

type fakeRunner struct {
	args   []string
	stdout string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, args []string) (ports.RunResult, error) {
	f.args = args
	return ports.RunResult{Stdout: []byte(f.stdout)}, f.err
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		runErr  error
		want    string
		wantErr error
	}{
		{
			name:   "best present",
			stdout: `{"plugin":"twitch","streams":{"720p":{"url":"https://cdn/720.m3u8"},"best":{"url":"https://cdn/best.m3u8"}}}`,
			want:   "https://cdn/best.m3u8",
		},
		{
			name:    "no best",
			stdout:  `{"streams":{"audio_only":{"url":"https://cdn/a.m3u8"}}}`,
			wantErr: ErrNoStreams,
		},
		{
			name:    "empty streams",
			stdout:  `{"streams":{}}`,
			wantErr: ErrNoStreams,
		},
		{
			name:    "error body on failed exit",
			stdout:  `{"error":"No plugin can handle URL"}`,
			runErr:  errors.New("exit 1"),
			wantErr: ErrNoStreams,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &fakeRunner{stdout: tt.stdout, err: tt.runErr}
			got, err := New("", run).Resolve(context.Background(), "https://twitch.tv/x")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.DirectURL != tt.want {
				t.Fatalf("DirectURL = %q, want %q", got.DirectURL, tt.want)
			}
			if run.args[0] != "streamlink" || run.args[1] != "--json" {
				t.Fatalf("unexpected command: %v", run.args)
			}
		})
	}
}

func TestResolve_LaunchFailure(t *testing.T) {
	boom := errors.New("executable file not found")
	_, err := New("", &fakeRunner{err: boom}).Resolve(context.Background(), "u")
	if !errors.Is(err, boom) {
		t.Fatalf("expected launch error to be wrapped, got %v", err)
	}
}
