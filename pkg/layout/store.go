package layout

import (
	"encoding/json"
	"os"
)

// DefaultStorePath is the calibration constants file used when no explicit
// path is configured. It lives in the working directory, next to the
// documents being converted.
const DefaultStorePath = "ocr_layout_constants.json"

// SampleCounts tracks how many geometry samples informed a calibration.
type SampleCounts struct {
	Char int `json:"char"`
	Line int `json:"line"`
}

// Constants is the persisted calibration record: the page's body character
// height in pixels and the line-height multiplier, plus the accumulated
// sample counts backing them.
type Constants struct {
	CharHeight           float64      `json:"char_height"`
	LineHeightMultiplier float64      `json:"line_height_multiplier"`
	SampleCounts         SampleCounts `json:"sample_counts"`
	UpdatedAt            int64        `json:"updated_at"`
}

// Store persists calibration constants between runs. Load reports whether
// any usable history exists; implementations must treat every read problem
// as a cold start rather than an error.
type Store interface {
	Load() (Constants, bool)
	Save(Constants) error
}

// FileStore keeps constants in a single JSON file with no locking or
// versioning. Concurrent writers race; the last write wins.
type FileStore struct {
	Path string
}

// NewFileStore creates a file-backed store. An empty path selects
// DefaultStorePath.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultStorePath
	}
	return &FileStore{Path: path}
}

// Load reads the constants file. A missing file, unreadable file, or
// invalid JSON all mean "no history".
func (s *FileStore) Load() (Constants, bool) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Constants{}, false
	}
	var c Constants
	if err := json.Unmarshal(data, &c); err != nil {
		return Constants{}, false
	}
	return c, true
}

// Save overwrites the constants file.
func (s *FileStore) Save(c Constants) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0644)
}

// MemoryStore is an in-process Store for tests and for callers that want
// per-run calibration without touching the filesystem.
type MemoryStore struct {
	constants Constants
	loaded    bool
}

// NewMemoryStore creates an empty in-memory store (cold start).
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed preloads the store with history, as if a previous run had saved it.
func (m *MemoryStore) Seed(c Constants) {
	m.constants = c
	m.loaded = true
}

// Load returns the stored constants, if any.
func (m *MemoryStore) Load() (Constants, bool) {
	return m.constants, m.loaded
}

// Save replaces the stored constants.
func (m *MemoryStore) Save(c Constants) error {
	m.constants = c
	m.loaded = true
	return nil
}
