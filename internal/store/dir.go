package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/i474232898/horizon-colors/internal/civiltime"
	"github.com/i474232898/horizon-colors/internal/colors"
)

const slotExt = ".json"

// Dir stores snapshots as <root>/<YYYY-MM-DD>/<HH-MM>.json.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at root. The root is created on first write.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the data directory.
func (d *Dir) Root() string {
	return d.root
}

// Put writes data atomically: a temp file in the date folder is renamed over
// the target so readers never observe a partial file.
func (d *Dir) Put(key colors.Key, data []byte) error {
	dir := filepath.Join(d.root, key.Date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+key.Slot+"-*.tmp")
	if err != nil {
		return fmt.Errorf("store: create tmp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write tmp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: close tmp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: chmod tmp: %w", err)
	}

	target := filepath.Join(dir, key.Slot+slotExt)
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}

// Get reads the encoded snapshot at key.
func (d *Dir) Get(key colors.Key) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.root, key.Date, key.Slot+slotExt))
}

// ListDates returns the names of all well-formed date folders.
func (d *Dir) ListDates() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var dates []string
	for _, e := range entries {
		if e.IsDir() && civiltime.ValidDate(e.Name()) {
			dates = append(dates, e.Name())
		}
	}
	return dates, nil
}

// ListSlots returns the HH-MM keys present in a date folder.
func (d *Dir) ListSlots(date string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(d.root, date))
	if err != nil {
		return nil, err
	}

	var slots []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, slotExt) {
			continue
		}
		slot := strings.TrimSuffix(name, slotExt)
		if civiltime.ValidSlot(slot) {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}
