package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"cast-press/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// NewS3Client creates an S3 client, optionally against a custom endpoint for
// S3-compatible providers.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
	}
	if cfg.S3Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.S3Endpoint,
					SigningRegion:     cfg.S3Region,
					HostnameImmutable: true,
				}, nil
			},
		)
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg), nil
}

// ObjectKey generates a unique object key under prefix, keeping the original
// file extension.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:12], ext)
	return prefix + "/" + name
}

// UploadFile stores the object and returns its public URL.
func UploadFile(ctx context.Context, client *s3.Client, cfg *config.Config, key, contentType string, body io.Reader) (string, error) {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return PublicURL(cfg, key), nil
}

// PublicURL builds the public link for a stored object.
func PublicURL(cfg *config.Config, key string) string {
	if cfg.S3Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(cfg.S3Endpoint, "/"), cfg.S3Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.S3Bucket, cfg.S3Region, key)
}

// KeyFromURL extracts the object key from a public URL previously returned by
// UploadFile. Returns an empty string when the URL does not parse.
func KeyFromURL(cfg *config.Config, fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil || u.Path == "" {
		return ""
	}
	key := strings.TrimPrefix(u.Path, "/")
	// Custom endpoints carry the bucket as the first path segment.
	key = strings.TrimPrefix(key, cfg.S3Bucket+"/")
	return key
}

// DeleteFileByURL removes the object behind a public URL. Callers treat
// failures as best-effort: a leaked object never blocks a record delete.
func DeleteFileByURL(ctx context.Context, client *s3.Client, cfg *config.Config, fileURL string) error {
	key := KeyFromURL(cfg, fileURL)
	if key == "" {
		return fmt.Errorf("cannot extract object key from %q", fileURL)
	}
	_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(cfg.S3Bucket),
		Key:    aws.String(key),
	})
	return err
}
