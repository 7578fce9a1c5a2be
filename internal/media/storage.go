package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/wpx/internal/shared"
)

// Storage writes downloaded files under <root>/<directory> and names them with public:// URIs.
type Storage struct {
	root      string
	directory string
}

// NewStorage creates the storage directory if needed.
func NewStorage(root, directory string) (*Storage, error) {
	directory = strings.Trim(directory, "/")
	if directory == "" || strings.Contains(directory, "..") {
		return nil, fmt.Errorf("%w: invalid media directory %q", shared.ErrInvalidConfig, directory)
	}

	s := &Storage{root: root, directory: directory}
	if err := os.MkdirAll(s.Dir(), 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %v", shared.ErrStorage, s.Dir(), err)
	}
	return s, nil
}

// Dir returns the directory files are written into.
func (s *Storage) Dir() string {
	return filepath.Join(s.root, filepath.FromSlash(s.directory))
}

// URI returns the public URI of a stored file name.
func (s *Storage) URI(name string) string {
	return "public://" + s.directory + "/" + name
}

// Path returns the local path of a stored file name.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.Dir(), name)
}

// Write streams r into name, replacing any existing file of that name.
//
// The data goes to a temporary file first and is renamed into place, so a failed download never
// truncates a previously stored file.
func (s *Storage) Write(name string, r io.Reader) (int64, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return 0, fmt.Errorf("%w: unsafe file name %q", shared.ErrStorage, name)
	}

	tmp, err := os.CreateTemp(s.Dir(), ".download-*")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("%w: failed to write %s: %v", shared.ErrDownload, name, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		return 0, fmt.Errorf("%w: failed to move %s into place: %v", shared.ErrStorage, name, err)
	}
	return size, nil
}
