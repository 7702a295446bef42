package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"storytime/internal/story"
)

func testRecord(title string) *StoryRecord {
	return &StoryRecord{
		Title:    title,
		Prompt:   "two rabbits",
		AgeGroup: "preschool",
		Source:   SourceFallback,
		Script: story.Draft{
			Title: title,
			Characters: []story.Character{
				{Name: "Rabbit One", Description: "A brave character", Personality: "Cheerful"},
			},
			Scenes: []story.Scene{
				{Number: 1, Title: "The Beginning", Setting: "A forest"},
			},
		},
		Scenes: []SceneRecord{
			{Number: 1, Title: "The Beginning", Duration: 3},
		},
	}
}

func TestSaveAssignsIDs(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	record := testRecord("First")
	if err := s.Save(record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if record.ID == "" {
		t.Error("story ID not assigned")
	}
	if record.Scenes[0].ID == "" {
		t.Error("scene ID not assigned")
	}
	if record.CreatedAt.IsZero() {
		t.Error("CreatedAt not assigned")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	record := testRecord("Round Trip")
	if err := s.Save(record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load(record.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Title != "Round Trip" {
		t.Errorf("title = %q", loaded.Title)
	}
	if loaded.Script.Characters[0].Name != "Rabbit One" {
		t.Errorf("script characters not preserved: %+v", loaded.Script.Characters)
	}
	if loaded.Scenes[0].Duration != 3 {
		t.Errorf("scene duration = %v", loaded.Scenes[0].Duration)
	}
}

func TestLoadMissing(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := s.Load("does-not-exist"); err == nil {
		t.Error("expected error for missing story")
	}
}

func TestListNewestFirst(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	older := testRecord("Older")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	if err := s.Save(older); err != nil {
		t.Fatalf("Save: %v", err)
	}

	newer := testRecord("Newer")
	if err := s.Save(newer); err != nil {
		t.Fatalf("Save: %v", err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Title != "Newer" || records[1].Title != "Older" {
		t.Errorf("order = [%s, %s], want [Newer, Older]", records[0].Title, records[1].Title)
	}

	latest, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Title != "Newer" {
		t.Errorf("latest = %q, want Newer", latest.Title)
	}
}

func TestLatestEmpty(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := s.Latest(); err == nil {
		t.Error("expected error for empty store")
	}
}

func TestListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(testRecord("Only")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}
}
