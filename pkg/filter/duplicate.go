package filter

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const duplicateDoc = `Matches files whose content is identical to a file seen earlier by the
same rule. Files are compared by size first, then by an xxHash digest of
their content. The first file seen is the original and does not match.

Attributes:
  duplicate: the path of the original file.

Examples:
  - duplicate`

type DuplicateOptions struct{}

type contentKey struct {
	size uint64
	hash uint64
}

// Duplicate matches files with content seen before. State is kept per
// instance, so each rule detects duplicates among its own candidates.
type Duplicate struct {
	bySize map[uint64][]string
	byKey  map[contentKey]string
	dupOf  map[string]string
	mu     sync.Mutex
}

func newDuplicate(_ *DuplicateOptions) (Filter, error) {
	return NewDuplicate(), nil
}

// NewDuplicate creates a [Duplicate] filter.
func NewDuplicate() *Duplicate {
	return &Duplicate{
		bySize: map[uint64][]string{},
		byKey:  map[contentKey]string{},
		dupOf:  map[string]string{},
	}
}

func (f *Duplicate) Matches(_ context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.dupOf[path]; ok {
		return true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	size := uint64(info.Size()) //nolint:gosec // G115: sizes are never negative.

	seen := f.bySize[size]
	if len(seen) == 1 {
		// Hash the first file of this size only once a second one shows up.
		err := f.index(seen[0], size)
		if err != nil {
			return false, err
		}
	}

	f.bySize[size] = append(seen, path)

	if len(seen) == 0 {
		return false, nil
	}

	sum, err := hashFile(path)
	if err != nil {
		return false, err
	}

	key := contentKey{size: size, hash: sum}

	original, ok := f.byKey[key]
	if !ok || original == path {
		f.byKey[key] = path
		return false, nil
	}

	f.dupOf[path] = original

	return true, nil
}

func (f *Duplicate) Parse(_ context.Context, path string) (Attributes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return Attributes{"duplicate": f.dupOf[path]}, nil
}

func (f *Duplicate) index(path string, size uint64) error {
	sum, err := hashFile(path)
	if err != nil {
		return err
	}

	key := contentKey{size: size, hash: sum}
	if _, ok := f.byKey[key]; !ok {
		f.byKey[key] = path
	}

	return nil
}

func hashFile(path string) (uint64, error) {
	file, err := os.Open(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Read only.

	h := xxhash.New()

	_, err = io.Copy(h, file)
	if err != nil {
		return 0, fmt.Errorf("hash file: %w", err)
	}

	return h.Sum64(), nil
}
