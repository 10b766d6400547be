package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/svwadmin/reservations-tracker/internal/common"
)

// FSStore serves the store contracts from a local directory tree.
type FSStore struct {
	Root string
}

func NewFSStore(root string) *FSStore {
	return &FSStore{Root: root}
}

func (s *FSStore) FolderByPath(_ context.Context, folderPath string) (Folder, error) {
	abs := filepath.Join(s.Root, filepath.FromSlash(folderPath))
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("folder %q: %w", folderPath, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("folder %q: path is a file", folderPath)
	}
	return &fsFolder{abs: abs, name: path.Base(folderPath)}, nil
}

type fsFolder struct {
	abs  string
	name string
}

func (f *fsFolder) Name() string { return f.name }

func (f *fsFolder) Items(_ context.Context) ([]Item, error) {
	entries, err := os.ReadDir(f.abs)
	if err != nil {
		return nil, err
	}
	var items []Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		items = append(items, &fsItem{dir: f.abs, name: e.Name()})
	}
	return items, nil
}

func (f *fsFolder) Upload(_ context.Context, localPath, name string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(f.abs, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (f *fsFolder) CreateChild(_ context.Context, name string) (Folder, error) {
	abs := filepath.Join(f.abs, name)
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &fsFolder{abs: abs, name: name}, nil
}

type fsItem struct {
	dir  string
	name string
}

func (i *fsItem) Name() string { return i.name }

func (i *fsItem) Download(_ context.Context, dir string) (string, error) {
	src, err := os.Open(filepath.Join(i.dir, i.name))
	if err != nil {
		return "", err
	}
	defer src.Close()

	local := filepath.Join(dir, i.name)
	dst, err := os.Create(local)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return local, nil
}
