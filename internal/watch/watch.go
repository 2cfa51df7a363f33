package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/forPelevin/insightly/internal/logging"
)

var audioExts = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac"}

type Transcriber interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
}

// Watcher transcribes audio files dropped into a directory and writes the
// transcript next to each one as <name>.txt.
type Watcher struct {
	dir    string
	tr     Transcriber
	log    *slog.Logger
	fsw    *fsnotify.Watcher
	sem    chan struct{}
	wg     sync.WaitGroup
	settle time.Duration
}

func New(dir string, tr Transcriber, log *slog.Logger, maxConcurrent int) (*Watcher, error) {
	if log == nil {
		log = logging.Discard()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &Watcher{
		dir:    dir,
		tr:     tr,
		log:    log,
		fsw:    fsw,
		sem:    make(chan struct{}, maxConcurrent),
		settle: 500 * time.Millisecond,
	}, nil
}

// Start blocks until ctx is done, then waits for in-flight transcriptions.
func (w *Watcher) Start(ctx context.Context) error {
	w.log.Info("watching for audio", "dir", w.dir, "max_concurrent", cap(w.sem))

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.log.Info("watcher stopped")
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if ev.Op&fsnotify.Create == 0 {
				continue
			}
			if !IsAudioFile(ev.Name) {
				w.log.Debug("ignoring file", "path", ev.Name)
				continue
			}
			w.log.Info("new audio detected", "path", ev.Name)

			// the writer may still be flushing
			select {
			case <-time.After(w.settle):
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

			select {
			case w.sem <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.sem }()
					if err := w.handle(ctx, path); err != nil {
						w.log.Error("transcription failed", "path", path, "error", err)
					}
				}(ev.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

func (w *Watcher) handle(ctx context.Context, path string) error {
	text, err := w.tr.TranscribeFile(ctx, path)
	if err != nil {
		return err
	}
	out := TranscriptPath(path)
	if err := os.WriteFile(out, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	w.log.Info("transcript written", "path", out)
	return nil
}

func TranscriptPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".txt"
}

func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range audioExts {
		if ext == e {
			return true
		}
	}
	return false
}
