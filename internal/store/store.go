package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"storytime/internal/story"
)

// StorySource records which generator produced the script.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

type CharacterRecord struct {
	Name         string `json:"name"`
	PortraitPath string `json:"portrait_path,omitempty"`
}

// SceneRecord is one persisted scene row: the data the video assembler
// later consumes.
type SceneRecord struct {
	ID             string  `json:"id"`
	Number         int     `json:"number"`
	Title          string  `json:"title"`
	BackgroundPath string  `json:"background_path,omitempty"`
	NarrationPath  string  `json:"narration_path,omitempty"`
	Duration       float64 `json:"duration"`
}

type StoryRecord struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Prompt     string            `json:"prompt"`
	AgeGroup   string            `json:"age_group"`
	Source     string            `json:"source"`
	Script     story.Draft       `json:"script"`
	Characters []CharacterRecord `json:"characters"`
	Scenes     []SceneRecord     `json:"scenes"`
	VideoPath  string            `json:"video_path,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Store persists story records as JSON documents under a data directory,
// one file per story.
type Store struct {
	dir string
	mu  sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the record, assigning IDs and a creation time on first save.
// Writes are atomic: a temp file is renamed into place.
func (s *Store) Save(record *StoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	for i := range record.Scenes {
		if record.Scenes[i].ID == "" {
			record.Scenes[i].ID = uuid.NewString()
		}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal story: %w", err)
	}

	path := s.path(record.ID)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write story file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("commit story file: %w", err)
	}

	return nil
}

func (s *Store) Load(id string) (*StoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("read story %s: %w", id, err)
	}

	var record StoryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse story %s: %w", id, err)
	}

	return &record, nil
}

// List returns all records, newest first.
func (s *Store) List() ([]*StoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store directory: %w", err)
	}

	var records []*StoryRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var record StoryRecord
		if err := json.Unmarshal(data, &record); err != nil {
			// Skip files that are not story documents.
			continue
		}
		records = append(records, &record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

// Latest returns the most recently created record.
func (s *Store) Latest() (*StoryRecord, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no stories found")
	}
	return records[0], nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
