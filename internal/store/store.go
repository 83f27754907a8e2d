// Package store is the filesystem cache between the download and upload
// phases. One JSON file per course, named <sourceId>_<sanitizedTitle>.json,
// overwritten wholesale on every download.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"marathon-migrate/internal/domain"
)

// ErrNotCached is returned by Load when no file exists for the course.
var ErrNotCached = errors.New("store: course not cached")

// ErrAmbiguous is returned by Load when more than one file matches the
// course id prefix (stale files from runs with a different title). The
// caller decides; we do not guess.
var ErrAmbiguous = errors.New("store: multiple cache files for course")

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

// EnsureDirectory creates the cache directory if absent.
func (s *Store) EnsureDirectory() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("store: create dir %s: %w", s.dir, err)
	}
	return nil
}

// Save serializes the archive as indented JSON, overwriting any previous
// file for the same course id and title.
func (s *Store) Save(archive domain.MarathonArchive) (string, error) {
	if strings.TrimSpace(archive.SourceID) == "" {
		return "", errors.New("store: archive missing source id")
	}
	if err := s.EnsureDirectory(); err != nil {
		return "", err
	}

	b, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return "", fmt.Errorf("store: marshal archive %s: %w", archive.SourceID, err)
	}

	path := filepath.Join(s.dir, FileName(archive.SourceID, archive.Title))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("store: write %s: %w", path, err)
	}
	return path, nil
}

// Load scans the directory for the file belonging to courseID.
// Exactly one match is required.
func (s *Store) Load(courseID string) (domain.MarathonArchive, error) {
	var archive domain.MarathonArchive

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return archive, fmt.Errorf("%w: %s", ErrNotCached, courseID)
		}
		return archive, fmt.Errorf("store: read dir %s: %w", s.dir, err)
	}

	prefix := courseID + "_"
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".json") {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return archive, fmt.Errorf("%w: %s", ErrNotCached, courseID)
	case 1:
	default:
		return archive, fmt.Errorf("%w: %s matches %v", ErrAmbiguous, courseID, matches)
	}

	path := filepath.Join(s.dir, matches[0])
	b, err := os.ReadFile(path)
	if err != nil {
		return archive, fmt.Errorf("store: read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &archive); err != nil {
		return archive, fmt.Errorf("store: parse %s: %w", path, err)
	}
	return archive, nil
}

// FileName derives the cache filename from the course id and a sanitized
// title (runs of non-alphanumerics collapse to a single underscore).
func FileName(courseID, title string) string {
	sanitized := strings.Trim(nonAlnum.ReplaceAllString(title, "_"), "_")
	if sanitized == "" {
		sanitized = "untitled"
	}
	return fmt.Sprintf("%s_%s.json", courseID, sanitized)
}
