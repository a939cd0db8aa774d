package s3client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/storage"
)

const (
	maxCopyObjectSize   = 5 * 1024 * 1024 * 1024 // 5GB, the CopyObject limit
	defaultCopyPartSize = 512 * 1024 * 1024      // 512MB
	maxParts            = 10000
)

// CopyFile copies file into target server-side. Objects over 5GB are copied part by part.
func (c *Client) CopyFile(ctx context.Context, file storage.File, target storage.Folder, name string) (storage.File, error) {
	srcBucket, srcKey, err := ParseS3URI(file.ID)
	if err != nil {
		return storage.File{}, fmt.Errorf("invalid file ID: %w", err)
	}
	dstBucket, prefix, err := parseFolderID(target.ID)
	if err != nil {
		return storage.File{}, err
	}
	if err := storage.ValidateName(name); err != nil {
		return storage.File{}, err
	}
	dstKey := prefix + name

	if srcBucket == dstBucket && srcKey == dstKey {
		return storage.File{}, fmt.Errorf("cannot copy object to itself: %s", file.ID)
	}

	if file.Size > maxCopyObjectSize {
		err = c.multipartCopy(ctx, srcBucket, srcKey, dstBucket, dstKey, file.Size)
	} else {
		_, err = c.api.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(dstBucket),
			Key:        aws.String(dstKey),
			CopySource: aws.String(copySource(srcBucket, srcKey)),
		})
		if err != nil {
			err = fmt.Errorf("failed to copy object: %w", err)
		}
	}
	if err != nil {
		return storage.File{}, err
	}

	return storage.File{
		ID:   FormatS3URI(dstBucket, dstKey),
		Name: name,
		Size: file.Size,
	}, nil
}

// multipartCopy copies the object part by part. CreateMultipartUpload does not copy the
// source headers the way CopyObject does, so they are read with HeadObject and passed on.
func (c *Client) multipartCopy(ctx context.Context, srcBucket, srcKey, bucket, key string, size int64) error {
	head, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(srcBucket),
		Key:    aws.String(srcKey),
	})
	if err != nil {
		return fmt.Errorf("failed to head source object: %w", err)
	}

	createResp, err := c.api.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:             aws.String(bucket),
		Key:                aws.String(key),
		ContentType:        head.ContentType,
		CacheControl:       head.CacheControl,
		ContentEncoding:    head.ContentEncoding,
		ContentDisposition: head.ContentDisposition,
		ContentLanguage:    head.ContentLanguage,
		Metadata:           head.Metadata,
		StorageClass:       head.StorageClass,
	})
	if err != nil {
		return fmt.Errorf("failed to create multipart upload: %w", err)
	}
	uploadID := aws.ToString(createResp.UploadId)

	source := copySource(srcBucket, srcKey)
	var completedParts []types.CompletedPart
	for i, byteRange := range copyRanges(size, copyPartSize(size)) {
		partNumber := int32(i + 1)
		partResp, err := c.api.UploadPartCopy(ctx, &s3.UploadPartCopyInput{
			Bucket:          aws.String(bucket),
			Key:             aws.String(key),
			UploadId:        aws.String(uploadID),
			PartNumber:      aws.Int32(partNumber),
			CopySource:      aws.String(source),
			CopySourceRange: aws.String(byteRange),
		})
		if err != nil {
			return c.abort(ctx, bucket, key, uploadID, fmt.Errorf("failed to copy part %d: %w", partNumber, err))
		}

		var etag *string
		if partResp.CopyPartResult != nil {
			etag = partResp.CopyPartResult.ETag
		}
		completedParts = append(completedParts, types.CompletedPart{
			ETag:       etag,
			PartNumber: aws.Int32(partNumber),
		})
	}

	_, err = c.api.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completedParts,
		},
	})
	if err != nil {
		return c.abort(ctx, bucket, key, uploadID, fmt.Errorf("failed to complete multipart upload: %w", err))
	}

	return nil
}

// abort runs even when ctx is cancelled, so an interrupted copy leaves no pending upload.
func (c *Client) abort(ctx context.Context, bucket, key, uploadID string, cause error) error {
	_, err := c.api.AbortMultipartUpload(context.WithoutCancel(ctx), &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return errors.Join(cause, fmt.Errorf("failed to abort multipart upload: %w", err))
	}
	return cause
}

// copyPartSize grows the part size when the default would need more than maxParts parts.
func copyPartSize(size int64) int64 {
	partSize := int64(defaultCopyPartSize)
	if minSize := (size + maxParts - 1) / maxParts; minSize > partSize {
		partSize = minSize
	}
	return partSize
}

// copyRanges splits [0, size) into inclusive HTTP byte ranges of at most partSize bytes.
func copyRanges(size, partSize int64) []string {
	var ranges []string
	for start := int64(0); start < size; start += partSize {
		end := start + partSize - 1
		if end >= size {
			end = size - 1
		}
		ranges = append(ranges, fmt.Sprintf("bytes=%d-%d", start, end))
	}
	return ranges
}

// copySource builds the URL-encoded bucket/key value of the x-amz-copy-source header.
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = strings.ReplaceAll(url.PathEscape(s), "+", "%2B")
	}
	return bucket + "/" + strings.Join(segments, "/")
}
