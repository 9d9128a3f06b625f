// Package filestore persists the post collection as a single JSON document.
// Every write replaces the whole file; there are no incremental updates.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/BloggingApp/post-store/internal/model"
)

const filePerm = 0o644

// Store owns the backing file. It holds no in-memory copy of the collection,
// so every Load observes the file as it is on disk.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the whole backing file. A missing file yields
// ErrNotFound, unparsable contents yield ErrCorruptData and any other read
// failure yields ErrIO.
func (s *Store) Load() ([]model.Post, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, s.path, err)
	}

	return decode(data)
}

// Save overwrites the backing file with the full collection. The data goes to
// a temporary file in the same directory first and is renamed into place, so
// a failed save leaves the previous contents untouched.
func (s *Store) Save(posts []model.Post) error {
	if posts == nil {
		posts = []model.Post{}
	}

	data, err := json.MarshalIndent(posts, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode posts: %w", ErrIO, err)
	}

	return writeFileAtomic(s.path, data)
}

// Bootstrap writes the seed posts when the backing file does not exist. An
// existing file is left alone whatever it contains. The returned bool reports
// whether the file was created.
func (s *Store) Bootstrap() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w: stat %s: %w", ErrIO, s.path, err)
	}

	if err := s.Save(SeedPosts()); err != nil {
		return false, err
	}

	return true, nil
}

// NextID returns one past the highest id in posts, or 1 for an empty
// collection. It is recomputed from the collection each time, so ids are
// only ever compared with each other and may be zero or negative.
func NextID(posts []model.Post) (int64, error) {
	if len(posts) == 0 {
		return 1, nil
	}

	highest := posts[0].ID
	for _, p := range posts[1:] {
		if p.ID > highest {
			highest = p.ID
		}
	}
	if highest == math.MaxInt64 {
		return 0, fmt.Errorf("%w: post id %d has no successor", ErrCorruptData, highest)
	}

	return highest + 1, nil
}

// record mirrors model.Post with pointer fields so that absent keys and null
// elements can be told apart from zero values.
type record struct {
	ID      *int64  `json:"id"`
	Author  *string `json:"author"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func decode(data []byte) ([]model.Post, error) {
	var records []*record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptData, err)
	}

	posts := make([]model.Post, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("%w: element %d is null", ErrCorruptData, i)
		}
		if r.ID == nil || r.Author == nil || r.Title == nil || r.Content == nil {
			return nil, fmt.Errorf("%w: element %d is missing a field", ErrCorruptData, i)
		}
		if _, ok := seen[*r.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate post id %d", ErrCorruptData, *r.ID)
		}
		seen[*r.ID] = struct{}{}

		posts = append(posts, model.Post{
			ID:      *r.ID,
			Author:  *r.Author,
			Title:   *r.Title,
			Content: *r.Content,
		})
	}

	return posts, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrIO, err)
	}
	tmpName := tmp.Name()

	if err := writeAndClose(tmp, data); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %w", ErrIO, tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: rename to %s: %w", ErrIO, path, err)
	}

	return nil
}

func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(filePerm); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
