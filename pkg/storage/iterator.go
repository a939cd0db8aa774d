package storage

import "context"

type folderSliceIterator struct {
	folders []Folder
	pos     int
}

// NewFolderSliceIterator iterates over an already listed set of folders.
func NewFolderSliceIterator(folders []Folder) FolderIterator {
	return &folderSliceIterator{folders: folders}
}

func (it *folderSliceIterator) Next(ctx context.Context) (Folder, error) {
	if it.pos >= len(it.folders) {
		return Folder{}, Done
	}
	f := it.folders[it.pos]
	it.pos++
	return f, nil
}

type fileSliceIterator struct {
	files []File
	pos   int
}

// NewFileSliceIterator iterates over an already listed set of files.
func NewFileSliceIterator(files []File) FileIterator {
	return &fileSliceIterator{files: files}
}

func (it *fileSliceIterator) Next(ctx context.Context) (File, error) {
	if it.pos >= len(it.files) {
		return File{}, Done
	}
	f := it.files[it.pos]
	it.pos++
	return f, nil
}

type errFolderIterator struct{ err error }

// FolderError returns an iterator whose Next always fails with err.
func FolderError(err error) FolderIterator {
	return errFolderIterator{err: err}
}

func (it errFolderIterator) Next(ctx context.Context) (Folder, error) {
	return Folder{}, it.err
}

type errFileIterator struct{ err error }

// FileError returns an iterator whose Next always fails with err.
func FileError(err error) FileIterator {
	return errFileIterator{err: err}
}

func (it errFileIterator) Next(ctx context.Context) (File, error) {
	return File{}, it.err
}
