package exporter

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"autojobfinder/internal/logging/types"
)

// SpacesConfig describes the bucket artifacts are uploaded to
type SpacesConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	PublicURL       string
	AccessKeyID     string
	AccessKeySecret string
}

// SpacesUploader uploads artifacts to DigitalOcean Spaces or any S3-compatible store
type SpacesUploader struct {
	client    s3iface.S3API
	bucket    string
	prefix    string
	publicURL string
	logger    types.Logger
}

// NewSpacesUploader creates an uploader from static credentials
func NewSpacesUploader(cfg SpacesConfig, logger types.Logger) (*SpacesUploader, error) {
	if cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, fmt.Errorf("%w: object storage credentials are required", ErrStorageConfig)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", ErrStorageConfig)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Region)
	}

	logger.Info("Configuring object storage with endpoint", map[string]interface{}{
		"endpoint": endpoint,
		"bucket":   cfg.Bucket,
		"region":   cfg.Region,
	})

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.AccessKeySecret, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create session: %v", ErrStorageConfig, err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.%s.digitaloceanspaces.com", cfg.Bucket, cfg.Region)
	}

	return newSpacesUploader(s3.New(sess), cfg.Bucket, cfg.Prefix, publicURL, logger), nil
}

func newSpacesUploader(client s3iface.S3API, bucket, prefix, publicURL string, logger types.Logger) *SpacesUploader {
	return &SpacesUploader{
		client:    client,
		bucket:    bucket,
		prefix:    strings.Trim(prefix, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// Upload stores the file under the configured prefix and returns its URL
func (u *SpacesUploader) Upload(ctx context.Context, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer f.Close()

	key := path.Join(u.prefix, filepath.Base(file))

	u.logger.Info("Uploading artifact", map[string]interface{}{
		"bucket":     u.bucket,
		"object_key": key,
	})

	_, err = u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		u.logger.Error("Failed to upload artifact", map[string]interface{}{
			"object_key": key,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	url := u.publicURL + "/" + key
	u.logger.Info("Artifact uploaded successfully", map[string]interface{}{
		"object_key": key,
		"url":        url,
	})
	return url, nil
}
