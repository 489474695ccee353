package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SaveState encodes state to path through a temp file in the same
// directory and a rename, so readers never see a partial document.
// Missing parent directories are created.
func SaveState(path string, codec Codec, state any) error {
	dir := filepath.Dir(path)

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}

	encodeErr := codec.Encode(tmp, state)
	closeErr := tmp.Close()

	if encodeErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("encode state: %w", errors.Join(encodeErr, closeErr))
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

// LoadState decodes the document at path into state, which must be a pointer.
func LoadState(path string, codec Codec, state any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, state)
	if err != nil {
		return fmt.Errorf("decode state %s: %w", path, err)
	}

	return nil
}

// Persister handles I/O for a specific state type, choosing the codec from
// each path's extension.
type Persister[T any] struct{}

// NewPersister creates a persister for T.
func NewPersister[T any]() *Persister[T] {
	return &Persister[T]{}
}

// Save writes state to path.
func (p *Persister[T]) Save(path string, state *T) error {
	return SaveState(path, CodecFor(path), state)
}

// Load reads the state at path. A missing file yields the zero value.
func (p *Persister[T]) Load(path string) (T, error) {
	var state T

	err := LoadState(path, CodecFor(path), &state)
	if errors.Is(err, fs.ErrNotExist) {
		return state, nil
	}

	if err != nil {
		var zero T

		return zero, err
	}

	return state, nil
}
