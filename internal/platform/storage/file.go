package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// FileStore persists one JSON document per record in a single directory.
// File names are a deterministic function of the natural key, supplied at
// construction so each record kind controls its own naming scheme. Save
// relies on O_EXCL so the at-most-once-create contract holds even if two
// processes share the directory. Mutations serialize on one mutex; reads go
// straight to the filesystem.
type FileStore[T Record] struct {
	dir  string
	name func(T) string
	mu   sync.Mutex
	log  zerolog.Logger
}

// NewFileStore creates the directory if needed and returns the store.
func NewFileStore[T Record](dir string, name func(T) string, log zerolog.Logger) *FileStore[T] {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("create storage directory")
	}
	return &FileStore[T]{dir: dir, name: name, log: log}
}

func (s *FileStore[T]) path(rec T) string {
	return filepath.Join(s.dir, s.name(rec)+".json")
}

// Save writes a new document, false if one already exists at that name.
func (s *FileStore[T]) Save(_ context.Context, rec T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		s.log.Error().Err(err).Str("key", rec.NaturalKey()).Msg("encode record")
		return false
	}
	f, err := os.OpenFile(s.path(rec), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if !errors.Is(err, fs.ErrExist) {
			s.log.Error().Err(err).Str("key", rec.NaturalKey()).Msg("create record file")
		}
		return false
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		s.log.Error().Err(err).Str("key", rec.NaturalKey()).Msg("write record file")
		os.Remove(f.Name())
		return false
	}
	return true
}

// Find reads the document named by the template's key.
func (s *FileStore[T]) Find(_ context.Context, tmpl T) (T, bool) {
	var rec T
	data, err := os.ReadFile(s.path(tmpl))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Error().Err(err).Str("key", tmpl.NaturalKey()).Msg("read record file")
		}
		return rec, false
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.Error().Err(err).Str("key", tmpl.NaturalKey()).Msg("decode record file")
		var zero T
		return zero, false
	}
	return rec, true
}

// Update rewrites an existing document, false if it does not exist.
func (s *FileStore[T]) Update(_ context.Context, rec T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.path(rec)
	if _, err := os.Stat(path); err != nil {
		return false
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		s.log.Error().Err(err).Str("key", rec.NaturalKey()).Msg("encode record")
		return false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Error().Err(err).Str("key", rec.NaturalKey()).Msg("rewrite record file")
		return false
	}
	return true
}

// Delete removes the document, false if absent.
func (s *FileStore[T]) Delete(_ context.Context, rec T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(rec)); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Error().Err(err).Str("key", rec.NaturalKey()).Msg("remove record file")
		}
		return false
	}
	return true
}

// GetAll decodes every .json document in the directory. Directory order is
// whatever the filesystem reports; callers must not rely on it. Documents
// that fail to decode are skipped with a warning rather than failing the
// whole scan.
func (s *FileStore[T]) GetAll(_ context.Context) []T {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Error().Err(err).Str("dir", s.dir).Msg("scan storage directory")
		return nil
	}
	var out []T
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			s.log.Warn().Err(err).Str("file", e.Name()).Msg("skip unreadable record")
			continue
		}
		var rec T
		if err := json.Unmarshal(data, &rec); err != nil {
			s.log.Warn().Err(err).Str("file", e.Name()).Msg("skip corrupt record")
			continue
		}
		out = append(out, rec)
	}
	return out
}

// FileCredentialStore is a FileStore for records that can authenticate.
type FileCredentialStore[T Credentialed] struct {
	*FileStore[T]
}

// NewFileCredentialStore returns a credential store rooted at dir.
func NewFileCredentialStore[T Credentialed](dir string, name func(T) string, log zerolog.Logger) *FileCredentialStore[T] {
	return &FileCredentialStore[T]{FileStore: NewFileStore[T](dir, name, log)}
}

// FindByEmail scans every document for a case-insensitive email match.
func (s *FileCredentialStore[T]) FindByEmail(ctx context.Context, email string) (T, bool) {
	var zero T
	if email == "" {
		return zero, false
	}
	for _, r := range s.GetAll(ctx) {
		if strings.EqualFold(r.LoginEmail(), email) {
			return r, true
		}
	}
	return zero, false
}
