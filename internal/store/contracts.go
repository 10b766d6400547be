// Package store abstracts the document store the archive lives in. The
// production deployment adapts a cloud drive client to these interfaces; a
// filesystem implementation ships here for local mode and tests.
package store

import "context"

// Item is a stored file.
type Item interface {
	Name() string
	// Download copies the item into dir and returns the local path.
	Download(ctx context.Context, dir string) (string, error)
}

// Folder is a listable, writable folder.
type Folder interface {
	Name() string
	Items(ctx context.Context) ([]Item, error)
	Upload(ctx context.Context, localPath, name string) error
	// CreateChild creates (or returns an existing) subfolder.
	CreateChild(ctx context.Context, name string) (Folder, error)
}

// Store resolves folders by path. A missing folder yields common.ErrNotFound
// so the caller can decide whether absence means "create it" or "fatal
// misconfiguration"; the two are never conflated into one broad error.
type Store interface {
	FolderByPath(ctx context.Context, path string) (Folder, error)
}
