// Package mirror copies a folder tree into another folder, creating missing folders and
// copying missing files by name. Entries already present at the destination are left alone,
// so running a mirror again is safe and picks up where an interrupted run stopped.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/yuya-takeyama/s3-tree-mirror/pkg/logger"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/storage"
)

type Mirrorer struct {
	client storage.Client
	logger logger.Logger
	opts   Options
}

func New(client storage.Client, logger logger.Logger, opts Options) *Mirrorer {
	return &Mirrorer{
		client: client,
		logger: logger,
		opts:   opts,
	}
}

// target is a destination folder. folder is nil when the folder does not exist yet,
// which only happens during a dry run.
type target struct {
	folder *storage.Folder
	path   string
}

func existing(f storage.Folder) target {
	return target{folder: &f, path: f.ID}
}

// Mirror mirrors the folder sourceFolderID into the folder named destinationName at the
// storage root. If several root folders share that name, the first one the client lists
// is used; if none exists it is created.
//
// Only errors that stop the walk are returned, including ctx's error once it is cancelled.
// Files that fail to copy are reported to the logger and skipped.
func (m *Mirrorer) Mirror(ctx context.Context, sourceFolderID, destinationName string) error {
	if err := storage.ValidateName(destinationName); err != nil {
		return fmt.Errorf("invalid destination name: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	source, err := m.client.FolderByID(ctx, sourceFolderID)
	if err != nil {
		return fmt.Errorf("failed to get source folder %s: %w", sourceFolderID, err)
	}

	root, err := m.client.Root(ctx)
	if err != nil {
		return fmt.Errorf("failed to get storage root: %w", err)
	}

	dest, err := m.findOrCreateFolder(ctx, existing(root), destinationName)
	if err != nil {
		return err
	}

	w := &walk{Mirrorer: m}
	if dest.folder != nil {
		w.destRootID = dest.folder.ID
	}
	return w.mirrorFolder(ctx, source, dest, "")
}

// MirrorFolder mirrors the contents of source into destination.
func (m *Mirrorer) MirrorFolder(ctx context.Context, source, destination storage.Folder) error {
	w := &walk{Mirrorer: m, destRootID: destination.ID}
	return w.mirrorFolder(ctx, source, existing(destination), "")
}

type walk struct {
	*Mirrorer

	// destRootID is skipped when met in the source, so a destination created inside
	// the source tree is not mirrored into itself.
	destRootID string
}

// mirrorFolder handles every subfolder depth-first before the files of source.
func (w *walk) mirrorFolder(ctx context.Context, source storage.Folder, dest target, relPath string) error {
	folders := w.client.Folders(ctx, source)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sub, err := folders.Next(ctx)
		if errors.Is(err, storage.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list folders in %s: %w", source.ID, err)
		}

		if sub.ID == w.destRootID {
			w.logger.Debug(fmt.Sprintf("skipping %s: it is the destination", sub.ID))
			continue
		}

		subRel := path.Join(relPath, sub.Name)
		excluded, err := IsExcluded(subRel, w.opts.Excludes)
		if err != nil {
			return err
		}
		if excluded {
			w.logger.Debug(fmt.Sprintf("excluded %s", sub.ID))
			continue
		}

		subDest, err := w.findOrCreateFolder(ctx, dest, sub.Name)
		if err != nil {
			return err
		}

		if err := w.mirrorFolder(ctx, sub, subDest, subRel); err != nil {
			return err
		}
	}

	files := w.client.Files(ctx, source)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		file, err := files.Next(ctx)
		if errors.Is(err, storage.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list files in %s: %w", source.ID, err)
		}

		excluded, err := IsExcluded(path.Join(relPath, file.Name), w.opts.Excludes)
		if err != nil {
			return err
		}
		if excluded {
			w.logger.Debug(fmt.Sprintf("excluded %s", file.ID))
			continue
		}

		if err := w.mirrorFile(ctx, file, dest); err != nil {
			return err
		}
	}

	return nil
}

// mirrorFile copies file into dest unless dest already has a file of that name.
// A failed copy is logged, not returned.
func (w *walk) mirrorFile(ctx context.Context, file storage.File, dest target) error {
	targetPath := joinPath(dest.path, file.Name)

	if dest.folder != nil {
		found, ok, err := storage.FirstFile(ctx, w.client.FilesByName(ctx, *dest.folder, file.Name))
		if err != nil {
			return fmt.Errorf("failed to look up file %s: %w", targetPath, err)
		}
		if ok {
			w.logger.Skip(found.ID, "already exists")
			return nil
		}
	}

	if w.opts.DryRun {
		w.logger.Copy(file.ID, targetPath, file.Size)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	copied, err := w.client.CopyFile(ctx, file, *dest.folder, file.Name)
	if err != nil {
		// A copy cut short by cancellation stops the run instead of counting as a failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		w.logger.Error("copy", file.ID, err)
		return nil
	}

	w.logger.Copy(file.ID, copied.ID, file.Size)
	return nil
}

func (m *Mirrorer) findOrCreateFolder(ctx context.Context, parent target, name string) (target, error) {
	childPath := joinPath(parent.path, name)

	if parent.folder == nil {
		m.logger.CreateFolder(childPath)
		return target{path: childPath}, nil
	}

	found, ok, err := storage.FirstFolder(ctx, m.client.FoldersByName(ctx, *parent.folder, name))
	if err != nil {
		return target{}, fmt.Errorf("failed to look up folder %s: %w", childPath, err)
	}
	if ok {
		m.logger.Debug(fmt.Sprintf("using existing folder %s", found.ID))
		return existing(found), nil
	}

	if m.opts.DryRun {
		m.logger.CreateFolder(childPath)
		return target{path: childPath}, nil
	}

	created, err := m.client.CreateFolder(ctx, *parent.folder, name)
	if err != nil {
		return target{}, fmt.Errorf("failed to create folder %s: %w", childPath, err)
	}
	m.logger.CreateFolder(created.ID)
	return existing(created), nil
}

func joinPath(parent, name string) string {
	return strings.TrimSuffix(parent, "/") + "/" + name
}
