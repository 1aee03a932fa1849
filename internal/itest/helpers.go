//go:build integration

package itest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/forPelevin/silencecut/internal/ports/adapters/ffmpeg"
)

// moduleRoot resolves the repository root from this file's location, so the
// tests do not depend on the working directory go test picks.
func moduleRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("itest: cannot resolve source location")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		return "", fmt.Errorf("itest: no go.mod at %s: %w", root, err)
	}
	return root, nil
}

// probeDurationSeconds goes through the same adapter the pipeline uses.
func probeDurationSeconds(path string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return ffmpeg.New("ffmpeg", "ffprobe", ffmpeg.Options{}).ProbeDuration(ctx, path)
}
