// =============================================================================
// Tax Invoice Generator - Invoice Counter
// =============================================================================
//
// The counter issues sequential invoice numbers and persists the last issued
// value to a small JSON file:
//
//   {"last_invoice": 1042}
//
// LIFECYCLE:
//   - If the file does not exist it is created holding the seed value.
//   - Every Next call reads the value, adds one, writes it back and returns it.
//   - A number is consumed as soon as Next returns, whatever happens afterwards.
//   - Preview hands out numbers for dry runs and never writes.
//
// CONCURRENCY:
//   Next is serialized within one process by a mutex and the file is replaced
//   atomically (temp file + fsync + rename). Two separate processes sharing the
//   same counter file can still read the same value and issue a duplicate
//   number; this is not detected.
//
// =============================================================================

package counter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrCorruptCounter is returned when the counter file exists but does not hold
// valid JSON. The file is never repaired automatically.
var ErrCorruptCounter = errors.New("invoice counter file is corrupt")

// DefaultSeed is the value written to a fresh counter file. The first invoice
// issued from a fresh file is DefaultSeed+1.
const DefaultSeed = 1000

// state is the on-disk representation.
type state struct {
	LastInvoice *int `json:"last_invoice"`
}

// Store owns one counter file.
type Store struct {
	path string
	seed int
	mu   sync.Mutex

	// previewed counts numbers handed out by Preview.
	previewed int
}

// New returns a Store for the counter file at path. The file is not touched
// until the first call to Next or Peek.
func New(path string, seed int) *Store {
	return &Store{path: path, seed: seed}
}

// Path returns the counter file location.
func (s *Store) Path() string {
	return s.path
}

// Next issues the next invoice number.
//
// RETURNS:
//   - The new invoice number (last issued + 1).
//   - An error if the file cannot be read, parsed or written.
func (s *Store) Next() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(); err != nil {
		return 0, err
	}

	last, err := s.read()
	if err != nil {
		return 0, err
	}

	next := last + 1
	if err := s.write(next); err != nil {
		return 0, err
	}

	return next, nil
}

// Peek returns the last issued number without changing anything. A missing
// file reports the seed.
func (s *Store) Peek() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return s.seed, nil
	}
	return s.read()
}

// Preview returns the number the next invoice would get without writing the
// counter file. Successive calls on the same Store return successive numbers,
// so a dry run over several files shows the sequence a real run would issue.
func (s *Store) Preview() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := s.seed
	if _, err := os.Stat(s.path); err == nil {
		v, err := s.read()
		if err != nil {
			return 0, err
		}
		last = v
	}

	s.previewed++
	return last + s.previewed, nil
}

// ensureSeeded creates the counter file with the seed value if it is absent.
func (s *Store) ensureSeeded() error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat counter file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create counter directory: %w", err)
		}
	}

	return s.write(s.seed)
}

// read loads the last issued value. A file without the last_invoice key is
// treated as holding the seed.
func (s *Store) read() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read counter file: %w", err)
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrCorruptCounter, s.path, err)
	}

	if st.LastInvoice == nil {
		return s.seed, nil
	}
	return *st.LastInvoice, nil
}

// write replaces the counter file atomically.
func (s *Store) write(value int) error {
	data, err := json.Marshal(state{LastInvoice: &value})
	if err != nil {
		return fmt.Errorf("failed to encode counter: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".invoice_counter-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp counter file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write counter file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync counter file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close counter file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace counter file: %w", err)
	}

	return nil
}
