package filesystem

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ParseS3URI splits s3://bucket/key. ok is false for anything else.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, key, true
}

func newClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// ReadFile copies the object at bucket/key into w.
func ReadFile(ctx context.Context, bucket string, key string, w io.Writer) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	obj, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer obj.Body.Close()

	if _, err := io.Copy(w, obj.Body); err != nil {
		return fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// ListFiles returns the object keys under prefix. Folder placeholder keys are left out.
func ListFiles(ctx context.Context, bucket string, prefix string) ([]string, error) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}

	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var keys []string
	pages := s3.NewListObjectsV2Paginator(client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if key := aws.ToString(obj.Key); key != "" && !strings.HasSuffix(key, "/") {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}
