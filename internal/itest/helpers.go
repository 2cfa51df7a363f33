//go:build integration

package itest

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const mainPkg = "cmd/insightly"

// moduleRoot walks up from the working directory to the checkout that
// contains the insightly binary's main package.
func moduleRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for dir := wd; ; dir = filepath.Dir(dir) {
		if fi, err := os.Stat(filepath.Join(dir, mainPkg)); err == nil && fi.IsDir() {
			return dir, nil
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}
	return "", errors.New("could not locate " + mainPkg + " above " + wd)
}

// mediaFormat reads a single format-level entry (duration, format_name...)
// of a media file via ffprobe.
func mediaFormat(path, entry string) (string, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format="+entry,
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffprobe %s: %w\n%s", entry, err, out)
	}
	return strings.TrimSpace(string(out)), nil
}

func mediaDurationSeconds(path string) (float64, error) {
	s, err := mediaFormat(path, "duration")
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

func itoa(n int) string { return strconv.Itoa(n) }
