package tts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// audioPrefix guards file operations so the store never touches files it
// did not create.
const audioPrefix = "ava_speech_"

// ErrNotManaged is returned for filenames outside the store's namespace.
var ErrNotManaged = errors.New("filename is not a managed audio file")

// Store writes synthesized audio files to disk and keeps the directory
// bounded by count and age.
type Store struct {
	dir       string
	maxFiles  int
	retention time.Duration
}

// NewStore creates the audio directory if needed.
func NewStore(dir string, maxFiles int, retention time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio directory: %w", err)
	}
	return &Store{dir: dir, maxFiles: maxFiles, retention: retention}, nil
}

// Dir returns the directory served under /audio.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes audio data and returns the generated filename.
func (s *Store) Save(data []byte, format string) (string, error) {
	if format == "" {
		format = "mp3"
	}
	filename := fmt.Sprintf("%s%d.%s", audioPrefix, time.Now().UnixMilli(), format)
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}
	return filename, nil
}

// Delete removes a managed audio file. Filenames with path separators or
// without the store prefix are rejected.
func (s *Store) Delete(filename string) error {
	if !s.manages(filename) {
		return ErrNotManaged
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil {
		return fmt.Errorf("remove audio file: %w", err)
	}
	return nil
}

// Cleanup drops managed files beyond the newest maxFiles and any file
// older than the retention window. It returns the number removed.
func (s *Store) Cleanup() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read audio directory: %w", err)
	}

	type fileInfo struct {
		name    string
		modTime time.Time
	}
	var files []fileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), audioPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{name: e.Name(), modTime: info.ModTime()})
	}

	// Newest first.
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	cutoff := time.Now().Add(-s.retention)
	var removed int
	for i, f := range files {
		if i < s.maxFiles && (s.retention <= 0 || f.modTime.After(cutoff)) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, f.name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (s *Store) manages(filename string) bool {
	return strings.HasPrefix(filename, audioPrefix) &&
		filename == filepath.Base(filename) &&
		!strings.Contains(filename, "..")
}
