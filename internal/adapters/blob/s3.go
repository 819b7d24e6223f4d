package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Config holds the S3-compatible object storage parameters.
type S3Config struct {
	Region     string
	Endpoint   string // custom endpoint for S3-compatible services
	AccessKey  string
	SecretKey  string
	PathStyle  bool
	DisableSSL bool
	PublicURL  string // base for returned URLs; defaults to the upload location
}

// S3Uploader uploads attachments with the AWS SDK upload manager.
type S3Uploader struct {
	uploader  *s3manager.Uploader
	publicURL string
}

// Compile-time check that *S3Uploader satisfies Uploader.
var _ Uploader = (*S3Uploader)(nil)

// NewS3Uploader creates an uploader from cfg.
// PRE: cfg.Region or cfg.Endpoint is set
// POST: returns a ready uploader or the session error
func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	awsCfg := aws.NewConfig()
	if cfg.Region != "" {
		awsCfg.WithRegion(cfg.Region)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""))
	}
	if cfg.Endpoint != "" {
		awsCfg.WithEndpoint(cfg.Endpoint)
		awsCfg.WithS3ForcePathStyle(cfg.PathStyle)
		if cfg.DisableSSL {
			awsCfg.WithDisableSSL(true)
		}
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	slog.Info("blob_backend", "backend", "s3", "endpoint", cfg.Endpoint, "path_style", cfg.PathStyle)

	return &S3Uploader{
		uploader:  s3manager.NewUploader(sess),
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload stores r as bucket/name with a public-read ACL.
// PRE: bucket and name are plain object names
// POST: returns the object's public URL
func (u *S3Uploader) Upload(ctx context.Context, bucket, name string, r io.Reader, contentType string) (string, error) {
	if err := validName(bucket, name); err != nil {
		return "", err
	}
	out, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(name),
		Body:        r,
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, name, err)
	}
	if u.publicURL != "" {
		return u.publicURL + "/" + bucket + "/" + name, nil
	}
	return out.Location, nil
}
