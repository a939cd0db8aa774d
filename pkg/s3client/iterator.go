package s3client

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/storage"
)

// folderIterator yields the common prefixes of a delimited listing, one page at a time.
type folderIterator struct {
	bucket    string
	paginator *s3.ListObjectsV2Paginator
	buf       []storage.Folder
}

func (it *folderIterator) Next(ctx context.Context) (storage.Folder, error) {
	for len(it.buf) == 0 {
		if !it.paginator.HasMorePages() {
			return storage.Folder{}, storage.Done
		}
		page, err := it.paginator.NextPage(ctx)
		if err != nil {
			return storage.Folder{}, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, cp := range page.CommonPrefixes {
			if cp.Prefix == nil {
				continue
			}
			it.buf = append(it.buf, newFolder(it.bucket, *cp.Prefix))
		}
	}

	f := it.buf[0]
	it.buf = it.buf[1:]
	return f, nil
}

// fileIterator yields the objects of a delimited listing, skipping the folder marker.
type fileIterator struct {
	bucket    string
	prefix    string
	paginator *s3.ListObjectsV2Paginator
	buf       []storage.File
}

func (it *fileIterator) Next(ctx context.Context) (storage.File, error) {
	for len(it.buf) == 0 {
		if !it.paginator.HasMorePages() {
			return storage.File{}, storage.Done
		}
		page, err := it.paginator.NextPage(ctx)
		if err != nil {
			return storage.File{}, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			key := *obj.Key
			name := strings.TrimPrefix(key, it.prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			it.buf = append(it.buf, storage.File{
				ID:   FormatS3URI(it.bucket, key),
				Name: name,
				Size: aws.ToInt64(obj.Size),
			})
		}
	}

	f := it.buf[0]
	it.buf = it.buf[1:]
	return f, nil
}

// lazyFolderIterator runs fetch on the first call to Next.
type lazyFolderIterator struct {
	fetch   func(ctx context.Context) ([]storage.Folder, error)
	fetched bool
	buf     []storage.Folder
}

func (it *lazyFolderIterator) Next(ctx context.Context) (storage.Folder, error) {
	if !it.fetched {
		folders, err := it.fetch(ctx)
		if err != nil {
			return storage.Folder{}, err
		}
		it.buf = folders
		it.fetched = true
	}
	if len(it.buf) == 0 {
		return storage.Folder{}, storage.Done
	}
	f := it.buf[0]
	it.buf = it.buf[1:]
	return f, nil
}

// lazyFileIterator runs fetch on the first call to Next.
type lazyFileIterator struct {
	fetch   func(ctx context.Context) ([]storage.File, error)
	fetched bool
	buf     []storage.File
}

func (it *lazyFileIterator) Next(ctx context.Context) (storage.File, error) {
	if !it.fetched {
		files, err := it.fetch(ctx)
		if err != nil {
			return storage.File{}, err
		}
		it.buf = files
		it.fetched = true
	}
	if len(it.buf) == 0 {
		return storage.File{}, storage.Done
	}
	f := it.buf[0]
	it.buf = it.buf[1:]
	return f, nil
}
