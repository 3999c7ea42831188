package device

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyOpen = errors.New("I/O channel already open")
	ErrNotOpen     = errors.New("I/O channel not open")
)

// FileTable maps integer handles to open streams. Relative names are
// resolved against Dir.
type FileTable struct {
	Dir   string
	files map[int]*os.File
}

func NewFileTable(dir string) *FileTable {
	return &FileTable{
		Dir:   dir,
		files: make(map[int]*os.File),
	}
}

// Open registers name under handle, opened for reading and writing.
func (t *FileTable) Open(handle int, name string) error {
	if _, ok := t.files[handle]; ok {
		return fmt.Errorf("%w: #%d", ErrAlreadyOpen, handle)
	}
	path := name
	if !filepath.IsAbs(path) && t.Dir != "" {
		path = filepath.Join(t.Dir, path)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	t.files[handle] = f
	log.Debug().Int("handle", handle).Str("path", path).Msg("Opened file")
	return nil
}

func (t *FileTable) get(handle int) (*os.File, error) {
	f, ok := t.files[handle]
	if !ok {
		return nil, fmt.Errorf("%w: #%d", ErrNotOpen, handle)
	}
	return f, nil
}

// Rewind moves the handle's read point back to the start.
func (t *FileTable) Rewind(handle int) error {
	f, err := t.get(handle)
	if err != nil {
		return err
	}
	_, err = f.Seek(0, io.SeekStart)
	return err
}

// WriteLine appends one line to the handle.
func (t *FileTable) WriteLine(handle int, line string) error {
	f, err := t.get(handle)
	if err != nil {
		return err
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	_, err = io.WriteString(f, line+"\n")
	return err
}

func (t *FileTable) IsOpen(handle int) bool {
	_, ok := t.files[handle]
	return ok
}

// Handles returns the open handles in ascending order.
func (t *FileTable) Handles() []int {
	out := make([]int, 0, len(t.files))
	for h := range t.files {
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}

func (t *FileTable) CloseAll() error {
	var errs []error
	for _, h := range t.Handles() {
		if err := t.files[h].Close(); err != nil {
			errs = append(errs, err)
		}
		delete(t.files, h)
	}
	return errors.Join(errs...)
}
