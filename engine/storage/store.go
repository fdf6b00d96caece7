package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/spf13/afero"

	"github.com/plexify/plexify/pkg/logger"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Store writes generated media under a root directory that is also served
// statically, and returns the public URL of each file.
type Store struct {
	fs   afero.Fs
	root string
}

func NewStore(fs afero.Fs, root string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs, root: root}
}

// NewOSStore stores files on the local disk below root.
func NewOSStore(root string) *Store {
	return NewStore(afero.NewOsFs(), root)
}

func (s *Store) Fs() afero.Fs {
	return s.fs
}

func (s *Store) Root() string {
	return s.root
}

// Save writes data to <root>/<dir>/<name> and returns "/<dir>/<name>".
// name is slugified while keeping its extension.
func (s *Store) Save(ctx context.Context, dir, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir = strings.Trim(path.Clean("/"+dir), "/")
	file := SafeName(name, "output")
	target := filepath.Join(s.root, filepath.FromSlash(dir))
	if err := s.fs.MkdirAll(target, dirPermissions); err != nil {
		return "", fmt.Errorf("storage: create %s: %w", target, err)
	}
	full := filepath.Join(target, file)
	if err := afero.WriteFile(s.fs, full, data, filePermissions); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", full, err)
	}
	url := "/" + path.Join(dir, file)
	logger.FromContext(ctx).Debug("Stored media file", "path", full, "url", url, "bytes", len(data))
	return url, nil
}

// Open reads back a stored file by its public URL.
func (s *Store) Open(url string) ([]byte, error) {
	rel := strings.TrimPrefix(path.Clean("/"+url), "/")
	return afero.ReadFile(s.fs, filepath.Join(s.root, filepath.FromSlash(rel)))
}

// SafeName slugifies the base of name and keeps a lower-cased extension.
// fallback is used when nothing usable remains.
func SafeName(name, fallback string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := slug.Make(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if base == "" {
		base = slug.Make(fallback)
	}
	if !isSimpleExt(ext) {
		ext = ""
	}
	return base + ext
}

func isSimpleExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
