package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type filterScripts struct {
	Video string
	Audio string
}

// writeFilterScripts creates both script files or neither.
func writeFilterScripts(dir, video, audio string) (filterScripts, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	v, err := createScript(dir, video)
	if err != nil {
		return filterScripts{}, fmt.Errorf("write video filter script: %w", err)
	}
	a, err := createScript(dir, audio)
	if err != nil {
		_ = os.Remove(v)
		return filterScripts{}, fmt.Errorf("write audio filter script: %w", err)
	}
	return filterScripts{Video: v, Audio: a}, nil
}

func (s filterScripts) Remove() error {
	var errs []error
	for _, p := range []string{s.Video, s.Audio} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func createScript(dir, content string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "silencecut-"+id.String()+".filter")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
