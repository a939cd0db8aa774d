// Package storage defines the folder/file capability the mirror walks.
//
// A Client is the only way the mirror touches a storage platform, so a run can be
// pointed at S3, a local directory, or an in-memory fake in tests.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// Done is returned by an iterator's Next once every entry has been yielded.
	Done = errors.New("no more items in iterator")

	ErrNotFound    = errors.New("not found")
	ErrInvalidName = errors.New("invalid name")
)

// Folder is a handle to a folder on the platform. ID is opaque to callers.
type Folder struct {
	ID   string
	Name string
}

// File is a handle to a file on the platform. ID is opaque to callers.
type File struct {
	ID   string
	Name string
	Size int64
}

// FolderIterator yields folders lazily. It cannot be restarted.
type FolderIterator interface {
	Next(ctx context.Context) (Folder, error)
}

// FileIterator yields files lazily. It cannot be restarted.
type FileIterator interface {
	Next(ctx context.Context) (File, error)
}

type Client interface {
	// Root returns the storage root under which destination roots are resolved.
	Root(ctx context.Context) (Folder, error)

	// FolderByID looks up a folder by its ID. Returns ErrNotFound if it does not exist.
	FolderByID(ctx context.Context, id string) (Folder, error)

	// Folders lists the direct subfolders of parent.
	Folders(ctx context.Context, parent Folder) FolderIterator

	// FoldersByName lists the direct subfolders of parent named name.
	FoldersByName(ctx context.Context, parent Folder, name string) FolderIterator

	// CreateFolder creates a subfolder of parent. It does not check for an existing one.
	CreateFolder(ctx context.Context, parent Folder, name string) (Folder, error)

	// Files lists the files directly under parent.
	Files(ctx context.Context, parent Folder) FileIterator

	// FilesByName lists the files directly under parent named name.
	FilesByName(ctx context.Context, parent Folder, name string) FileIterator

	// CopyFile duplicates file into target under name.
	CopyFile(ctx context.Context, file File, target Folder, name string) (File, error)
}

// FirstFolder consumes it up to its first entry.
func FirstFolder(ctx context.Context, it FolderIterator) (Folder, bool, error) {
	folder, err := it.Next(ctx)
	if errors.Is(err, Done) {
		return Folder{}, false, nil
	}
	if err != nil {
		return Folder{}, false, err
	}
	return folder, true, nil
}

// FirstFile consumes it up to its first entry.
func FirstFile(ctx context.Context, it FileIterator) (File, bool, error) {
	file, err := it.Next(ctx)
	if errors.Is(err, Done) {
		return File{}, false, nil
	}
	if err != nil {
		return File{}, false, err
	}
	return file, true, nil
}

// ValidateName rejects names that cannot be a single path segment.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.Contains(name, "/"):
		return fmt.Errorf("%w: %q contains a slash", ErrInvalidName, name)
	}
	return nil
}
