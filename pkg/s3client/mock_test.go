package s3client

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockS3API is a mock implementation of API for testing
type mockS3API struct {
	listObjectsV2Func           func(ctx context.Context, params *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error)
	headObjectFunc              func(ctx context.Context, params *s3.HeadObjectInput) (*s3.HeadObjectOutput, error)
	putObjectFunc               func(ctx context.Context, params *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	copyObjectFunc              func(ctx context.Context, params *s3.CopyObjectInput) (*s3.CopyObjectOutput, error)
	createMultipartUploadFunc   func(ctx context.Context, params *s3.CreateMultipartUploadInput) (*s3.CreateMultipartUploadOutput, error)
	uploadPartCopyFunc          func(ctx context.Context, params *s3.UploadPartCopyInput) (*s3.UploadPartCopyOutput, error)
	completeMultipartUploadFunc func(ctx context.Context, params *s3.CompleteMultipartUploadInput) (*s3.CompleteMultipartUploadOutput, error)
	abortMultipartUploadFunc    func(ctx context.Context, params *s3.AbortMultipartUploadInput) (*s3.AbortMultipartUploadOutput, error)
}

func (m *mockS3API) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.listObjectsV2Func != nil {
		return m.listObjectsV2Func(ctx, params)
	}
	return nil, fmt.Errorf("ListObjectsV2 not implemented")
}

func (m *mockS3API) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if m.headObjectFunc != nil {
		return m.headObjectFunc(ctx, params)
	}
	return nil, fmt.Errorf("HeadObject not implemented")
}

func (m *mockS3API) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, params)
	}
	return nil, fmt.Errorf("PutObject not implemented")
}

func (m *mockS3API) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	if m.copyObjectFunc != nil {
		return m.copyObjectFunc(ctx, params)
	}
	return nil, fmt.Errorf("CopyObject not implemented")
}

func (m *mockS3API) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	if m.createMultipartUploadFunc != nil {
		return m.createMultipartUploadFunc(ctx, params)
	}
	return nil, fmt.Errorf("CreateMultipartUpload not implemented")
}

func (m *mockS3API) UploadPartCopy(ctx context.Context, params *s3.UploadPartCopyInput, optFns ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error) {
	if m.uploadPartCopyFunc != nil {
		return m.uploadPartCopyFunc(ctx, params)
	}
	return nil, fmt.Errorf("UploadPartCopy not implemented")
}

func (m *mockS3API) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	if m.completeMultipartUploadFunc != nil {
		return m.completeMultipartUploadFunc(ctx, params)
	}
	return nil, fmt.Errorf("CompleteMultipartUpload not implemented")
}

func (m *mockS3API) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	if m.abortMultipartUploadFunc != nil {
		return m.abortMultipartUploadFunc(ctx, params)
	}
	return nil, fmt.Errorf("AbortMultipartUpload not implemented")
}
