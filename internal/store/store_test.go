package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"marathon-migrate/internal/domain"
)

func sampleArchive() domain.MarathonArchive {
	return domain.MarathonArchive{
		SourceID:     "mar-42",
		Title:        "21 Day Face Marathon!",
		DownloadedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Days: []domain.TransformedDay{
			{
				DayNumber:      1,
				WelcomeMessage: "Welcome",
				Exercises: []domain.TransformedExercise{
					{
						CategoryName:  "Face",
						CategoryOrder: 1,
						Name:          "Smile",
						Order:         1,
						Media:         []domain.Media{{Type: "video", URL: "v1.mp4", Order: 1}},
					},
				},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	archive := sampleArchive()

	path, err := s.Save(archive)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "mar-42_21_Day_Face_Marathon.json" {
		t.Errorf("unexpected filename %s", filepath.Base(path))
	}

	got, err := s.Load("mar-42")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, archive) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, archive)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := New(t.TempDir())
	archive := sampleArchive()

	if _, err := s.Save(archive); err != nil {
		t.Fatalf("first save: %v", err)
	}
	archive.Days[0].WelcomeMessage = "Updated"
	if _, err := s.Save(archive); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.Load("mar-42")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Days[0].WelcomeMessage != "Updated" {
		t.Errorf("expected overwrite, got %q", got.Days[0].WelcomeMessage)
	}
}

func TestLoadNotCached(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Load("missing")
	if !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-created"))
	_, err := s.Load("mar-42")
	if !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached for missing dir, got %v", err)
	}
}

func TestLoadAmbiguousMatches(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	for _, name := range []string{"mar-42_Old_Title.json", "mar-42_New_Title.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	_, err := s.Load("mar-42")
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
}

func TestLoadPrefixDoesNotCrossCourses(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	// mar-4 must not match mar-42's file
	if err := os.WriteFile(filepath.Join(dir, "mar-42_Title.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load("mar-4")
	if !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
}

func TestSaveRejectsEmptySourceID(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Save(domain.MarathonArchive{Title: "x"}); err == nil {
		t.Fatal("expected error for empty source id")
	}
}

func TestFileName(t *testing.T) {
	cases := []struct {
		id, title, want string
	}{
		{"mar-1", "Face Yoga", "mar-1_Face_Yoga.json"},
		{"mar-1", "Марафон", "mar-1_untitled.json"},
		{"mar-1", "  spaces & symbols!  ", "mar-1_spaces_symbols.json"},
		{"7", "", "7_untitled.json"},
	}
	for _, c := range cases {
		if got := FileName(c.id, c.title); got != c.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", c.id, c.title, got, c.want)
		}
	}
}
