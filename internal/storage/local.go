package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// LocalStorage lays out generated assets on disk, one directory per story.
type LocalStorage struct {
	outputDir string
}

func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{outputDir: outputDir}
}

func (s *LocalStorage) EnsureDirectories() error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func (s *LocalStorage) StoryDir(storyID string) string {
	return filepath.Join(s.outputDir, storyID)
}

// SaveAsset writes one asset under the story's directory and returns its
// path.
func (s *LocalStorage) SaveAsset(storyID, filename string, data []byte) (string, error) {
	dir := s.StoryDir(storyID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create story directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write asset %s: %w", filename, err)
	}

	return path, nil
}
