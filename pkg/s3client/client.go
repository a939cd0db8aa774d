package s3client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/storage"
)

// API is the part of *s3.Client used to walk and copy folder trees.
type API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPartCopy(ctx context.Context, params *s3.UploadPartCopyInput, optFns ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

// Client implements storage.Client on S3. Folders are key prefixes ending in "/",
// created as zero-byte marker objects, and files are objects directly under a prefix.
//
// Folder IDs are s3://bucket/prefix/ URIs and file IDs are s3://bucket/key URIs, so a
// source folder may live in another bucket than the storage root.
type Client struct {
	api        API
	rootBucket string
	rootPrefix string
}

var _ storage.Client = (*Client)(nil)

// NewAWSClient creates a client whose storage root is the S3 URI root.
func NewAWSClient(cfg aws.Config, root string, optFns ...func(*s3.Options)) (*Client, error) {
	return NewClient(s3.NewFromConfig(cfg, optFns...), root)
}

func NewClient(api API, root string) (*Client, error) {
	bucket, key, err := ParseS3URI(root)
	if err != nil {
		return nil, fmt.Errorf("invalid storage root: %w", err)
	}

	return &Client{
		api:        api,
		rootBucket: bucket,
		rootPrefix: folderPrefix(key),
	}, nil
}

func (c *Client) Root(ctx context.Context) (storage.Folder, error) {
	return newFolder(c.rootBucket, c.rootPrefix), nil
}

func (c *Client) FolderByID(ctx context.Context, id string) (storage.Folder, error) {
	bucket, key, err := ParseS3URI(id)
	if err != nil {
		return storage.Folder{}, err
	}
	prefix := folderPrefix(key)

	if prefix == "" {
		return newFolder(bucket, prefix), nil
	}

	resp, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return storage.Folder{}, fmt.Errorf("failed to list objects: %w", err)
	}
	if len(resp.Contents) == 0 && len(resp.CommonPrefixes) == 0 {
		return storage.Folder{}, fmt.Errorf("folder %s: %w", FormatS3URI(bucket, prefix), storage.ErrNotFound)
	}

	return newFolder(bucket, prefix), nil
}

func (c *Client) Folders(ctx context.Context, parent storage.Folder) storage.FolderIterator {
	bucket, prefix, err := parseFolderID(parent.ID)
	if err != nil {
		return storage.FolderError(err)
	}

	return &folderIterator{
		bucket:    bucket,
		paginator: c.newPaginator(bucket, prefix),
	}
}

func (c *Client) FoldersByName(ctx context.Context, parent storage.Folder, name string) storage.FolderIterator {
	bucket, prefix, err := parseFolderID(parent.ID)
	if err != nil {
		return storage.FolderError(err)
	}
	if err := storage.ValidateName(name); err != nil {
		return storage.FolderError(err)
	}
	childPrefix := prefix + name + "/"

	return &lazyFolderIterator{fetch: func(ctx context.Context) ([]storage.Folder, error) {
		resp, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:  aws.String(bucket),
			Prefix:  aws.String(childPrefix),
			MaxKeys: aws.Int32(1),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		if len(resp.Contents) == 0 && len(resp.CommonPrefixes) == 0 {
			return nil, nil
		}
		return []storage.Folder{newFolder(bucket, childPrefix)}, nil
	}}
}

func (c *Client) CreateFolder(ctx context.Context, parent storage.Folder, name string) (storage.Folder, error) {
	bucket, prefix, err := parseFolderID(parent.ID)
	if err != nil {
		return storage.Folder{}, err
	}
	if err := storage.ValidateName(name); err != nil {
		return storage.Folder{}, err
	}
	key := prefix + name + "/"

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return storage.Folder{}, fmt.Errorf("failed to put folder marker: %w", err)
	}

	return newFolder(bucket, key), nil
}

func (c *Client) Files(ctx context.Context, parent storage.Folder) storage.FileIterator {
	bucket, prefix, err := parseFolderID(parent.ID)
	if err != nil {
		return storage.FileError(err)
	}

	return &fileIterator{
		bucket:    bucket,
		prefix:    prefix,
		paginator: c.newPaginator(bucket, prefix),
	}
}

func (c *Client) FilesByName(ctx context.Context, parent storage.Folder, name string) storage.FileIterator {
	bucket, prefix, err := parseFolderID(parent.ID)
	if err != nil {
		return storage.FileError(err)
	}
	if err := storage.ValidateName(name); err != nil {
		return storage.FileError(err)
	}
	key := prefix + name

	return &lazyFileIterator{fetch: func(ctx context.Context) ([]storage.File, error) {
		resp, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to head object: %w", err)
		}
		return []storage.File{{
			ID:   FormatS3URI(bucket, key),
			Name: name,
			Size: aws.ToInt64(resp.ContentLength),
		}}, nil
	}}
}

func (c *Client) newPaginator(bucket, prefix string) *s3.ListObjectsV2Paginator {
	return s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
}

func newFolder(bucket, prefix string) storage.Folder {
	name := bucket
	if prefix != "" {
		name = path.Base(strings.TrimSuffix(prefix, "/"))
	}
	return storage.Folder{
		ID:   FormatS3URI(bucket, prefix),
		Name: name,
	}
}

func parseFolderID(id string) (bucket, prefix string, err error) {
	bucket, key, err := ParseS3URI(id)
	if err != nil {
		return "", "", fmt.Errorf("invalid folder ID: %w", err)
	}
	return bucket, folderPrefix(key), nil
}

// isNotFound reports whether err means the object does not exist.
// HeadObject has no body, so S3 only gives back the status-derived NotFound code.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
