package s3client

import (
	"fmt"
	"strings"
)

// ParseS3URI parses an S3 URI into bucket and key
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", fmt.Errorf("invalid S3 URI %q: must start with s3://", uri)
	}

	path := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(path, "/", 2)

	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URI %q: missing bucket name", uri)
	}

	bucket = parts[0]
	if len(parts) > 1 {
		key = parts[1]
	}

	return bucket, key, nil
}

func FormatS3URI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

// folderPrefix turns a key into a folder prefix: empty, or ending with exactly one "/".
func folderPrefix(key string) string {
	key = strings.TrimRight(key, "/")
	if key == "" {
		return ""
	}
	return key + "/"
}
