// Package localfs implements storage.Client on a local directory tree.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/yuya-takeyama/s3-tree-mirror/pkg/storage"
)

// Client uses absolute, cleaned paths as folder and file IDs.
type Client struct {
	root    string
	chtimes func(name string, atime, mtime time.Time) error
}

var _ storage.Client = (*Client)(nil)

// New creates a client whose storage root is the directory root.
func New(root string) (*Client, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	return &Client{root: absRoot, chtimes: os.Chtimes}, nil
}

func (c *Client) Root(ctx context.Context) (storage.Folder, error) {
	return newFolder(c.root), nil
}

func (c *Client) FolderByID(ctx context.Context, id string) (storage.Folder, error) {
	absPath, err := filepath.Abs(id)
	if err != nil {
		return storage.Folder{}, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return storage.Folder{}, fmt.Errorf("folder %s: %w", absPath, storage.ErrNotFound)
	}
	if err != nil {
		return storage.Folder{}, fmt.Errorf("failed to stat folder: %w", err)
	}
	if !info.IsDir() {
		return storage.Folder{}, fmt.Errorf("not a directory: %s: %w", absPath, storage.ErrNotFound)
	}

	return newFolder(absPath), nil
}

// Folders lists subdirectories in name order. Symlinks are not followed.
func (c *Client) Folders(ctx context.Context, parent storage.Folder) storage.FolderIterator {
	entries, err := os.ReadDir(parent.ID)
	if err != nil {
		return storage.FolderError(fmt.Errorf("failed to read directory: %w", err))
	}

	var folders []storage.Folder
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, newFolder(filepath.Join(parent.ID, entry.Name())))
		}
	}
	return storage.NewFolderSliceIterator(folders)
}

// FoldersByName follows symlinks, so a link to a directory counts as that folder.
func (c *Client) FoldersByName(ctx context.Context, parent storage.Folder, name string) storage.FolderIterator {
	if err := storage.ValidateName(name); err != nil {
		return storage.FolderError(err)
	}

	p := filepath.Join(parent.ID, name)
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return storage.NewFolderSliceIterator(nil)
	}
	if err != nil {
		return storage.FolderError(fmt.Errorf("failed to stat folder: %w", err))
	}
	if !info.IsDir() {
		return storage.NewFolderSliceIterator(nil)
	}
	return storage.NewFolderSliceIterator([]storage.Folder{newFolder(p)})
}

func (c *Client) CreateFolder(ctx context.Context, parent storage.Folder, name string) (storage.Folder, error) {
	if err := storage.ValidateName(name); err != nil {
		return storage.Folder{}, err
	}

	p := filepath.Join(parent.ID, name)
	if err := os.Mkdir(p, 0755); err != nil {
		return storage.Folder{}, fmt.Errorf("failed to create directory: %w", err)
	}
	return newFolder(p), nil
}

// Files lists regular files in name order.
func (c *Client) Files(ctx context.Context, parent storage.Folder) storage.FileIterator {
	entries, err := os.ReadDir(parent.ID)
	if err != nil {
		return storage.FileError(fmt.Errorf("failed to read directory: %w", err))
	}

	var files []storage.File
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return storage.FileError(fmt.Errorf("failed to stat file: %w", err))
		}
		files = append(files, storage.File{
			ID:   filepath.Join(parent.ID, entry.Name()),
			Name: entry.Name(),
			Size: info.Size(),
		})
	}
	return storage.NewFileSliceIterator(files)
}

func (c *Client) FilesByName(ctx context.Context, parent storage.Folder, name string) storage.FileIterator {
	if err := storage.ValidateName(name); err != nil {
		return storage.FileError(err)
	}

	p := filepath.Join(parent.ID, name)
	info, err := os.Lstat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return storage.NewFileSliceIterator(nil)
	}
	if err != nil {
		return storage.FileError(fmt.Errorf("failed to stat file: %w", err))
	}
	if info.IsDir() {
		return storage.NewFileSliceIterator(nil)
	}
	return storage.NewFileSliceIterator([]storage.File{{ID: p, Name: name, Size: info.Size()}})
}

// CopyFile copies file into target, keeping its permissions and, when the filesystem
// allows it, its modification time. It fails rather than overwrite an existing entry,
// and stops with ctx's error if ctx is cancelled mid-copy.
func (c *Client) CopyFile(ctx context.Context, file storage.File, target storage.Folder, name string) (storage.File, error) {
	if err := storage.ValidateName(name); err != nil {
		return storage.File{}, err
	}
	if err := ctx.Err(); err != nil {
		return storage.File{}, err
	}

	src, err := os.Open(file.ID)
	if err != nil {
		return storage.File{}, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return storage.File{}, fmt.Errorf("failed to stat source file: %w", err)
	}

	dstPath := filepath.Join(target.ID, name)
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return storage.File{}, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(dst, &contextReader{ctx: ctx, r: src})
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dstPath)
		return storage.File{}, fmt.Errorf("failed to copy file: %w", err)
	}

	// The content is complete at this point; a copy with a fresh mtime still counts.
	_ = c.chtimes(dstPath, info.ModTime(), info.ModTime())

	return storage.File{ID: dstPath, Name: name, Size: n}, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

func newFolder(p string) storage.Folder {
	return storage.Folder{ID: p, Name: filepath.Base(p)}
}
