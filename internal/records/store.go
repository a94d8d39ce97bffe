package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// ErrMalformed marks a collection file that exists but is not valid JSON for
// its record type. Missing files surface as fs.ErrNotExist.
var ErrMalformed = errors.New("records: malformed JSON")

// Paths names the three collection files.
type Paths struct {
	Questions string
	Results   string
	ErrorLog  string
}

// Store reads and writes the record collections as whole files.
type Store struct {
	paths Paths
	perm  os.FileMode
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithFileMode overrides the permission bits applied to written files.
func WithFileMode(perm os.FileMode) StoreOption {
	return func(s *Store) {
		s.perm = perm
	}
}

// NewStore builds a store over the given files.
func NewStore(paths Paths, opts ...StoreOption) *Store {
	store := &Store{paths: paths, perm: 0o644}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Paths returns the files backing this store.
func (s *Store) Paths() Paths {
	return s.paths
}

// LoadQuestions reads the source questions.
func (s *Store) LoadQuestions() ([]Question, error) {
	var questions []Question
	if err := readJSON(s.paths.Questions, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// LoadResults reads the marking results.
func (s *Store) LoadResults() ([]MarkingResult, error) {
	var results []MarkingResult
	if err := readJSON(s.paths.Results, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// LoadErrorLog reads the error log.
func (s *Store) LoadErrorLog() ([]ErrorLogEntry, error) {
	var entries []ErrorLogEntry
	if err := readJSON(s.paths.ErrorLog, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveResults rewrites the marking results file.
func (s *Store) SaveResults(results []MarkingResult) error {
	if results == nil {
		results = []MarkingResult{}
	}
	return writeJSON(s.paths.Results, results, s.perm)
}

// SaveErrorLog rewrites the error log file.
func (s *Store) SaveErrorLog(entries []ErrorLogEntry) error {
	if entries == nil {
		entries = []ErrorLogEntry{}
	}
	return writeJSON(s.paths.ErrorLog, entries, s.perm)
}

// RecordDecision stores one verdict for the question at the zero-based
// position with a full read-modify-write of the results file. An absent or
// unreadable results file starts from an empty collection.
func (s *Store) RecordDecision(position int, q Question, status Status) error {
	if !status.IsMarked() {
		return fmt.Errorf("records: refusing to record an unmarked status")
	}
	results, err := s.LoadResults()
	if err != nil && !IsRecoverable(err) {
		return err
	}
	results = ApplyDecision(results, position, q, status)
	return s.SaveResults(results)
}

// IsRecoverable reports whether err means the file is absent or malformed,
// the two cases optional collections fall back to empty for.
func IsRecoverable(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, ErrMalformed)
}

func readJSON(path string, into any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("records: read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("records: %s is empty: %w", path, ErrMalformed)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("records: parse %s: %w: %v", path, ErrMalformed, err)
	}
	return nil
}

// Encode renders v the way every collection file is written: four-space
// indent with non-ASCII and HTML characters left as-is.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalUnescaped is json.Marshal without HTML escaping, for custom
// marshalers whose output the encoder copies verbatim.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeJSON(path string, v any, perm os.FileMode) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("records: encode %s: %w", path, err)
	}
	if err := writeFileAtomic(path, data, perm); err != nil {
		return fmt.Errorf("records: write %s: %w", path, err)
	}
	return nil
}

// writeFileAtomic replaces path through a temp file in the same directory,
// so a crash leaves either the old or the new contents.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	return os.Chmod(path, perm)
}
