package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/memodb-io/assetbucket/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

const DiskS3 = "s3"

// S3Deps stores objects in an S3 compatible bucket. Keys are prefixed with the
// storage root so several deployments can share one bucket.
type S3Deps struct {
	Client   *s3.Client
	Uploader *manager.Uploader
	Bucket   string
	prefix   string
}

func NewS3(ctx context.Context, cfg *config.Config) (*S3Deps, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		))
	}
	acfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.Telemetry.Enabled {
		otelaws.AppendMiddlewares(&acfg.APIOptions)
	}

	client := s3.NewFromConfig(acfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3.UsePathStyle
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
	})

	return &S3Deps{
		Client:   client,
		Uploader: manager.NewUploader(client),
		Bucket:   cfg.S3.Bucket,
		prefix:   strings.Trim(cfg.Storage.Root, "/"),
	}, nil
}

func (u *S3Deps) Disk() string { return DiskS3 }

func (u *S3Deps) objectKey(key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if u.prefix == "" {
		return key, nil
	}
	return u.prefix + "/" + key, nil
}

func (u *S3Deps) Put(ctx context.Context, key string, r io.Reader, contentType string) (*UploadedMeta, error) {
	objKey, err := u.objectKey(key)
	if err != nil {
		return nil, err
	}

	dr := newDigestReader(r)
	out, err := u.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(objKey),
		Body:        dr,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", objKey, err)
	}

	return &UploadedMeta{
		Bucket: u.Bucket,
		Key:    key,
		ETag:   strings.Trim(aws.ToString(out.ETag), `"`),
		SHA256: dr.Sum(),
		MIME:   contentType,
		SizeB:  dr.n,
	}, nil
}

func (u *S3Deps) Open(ctx context.Context, key string) (*Object, error) {
	objKey, err := u.objectKey(key)
	if err != nil {
		return nil, err
	}
	out, err := u.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(objKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("get %s: %w", objKey, err)
	}
	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return &Object{
		Body:  out.Body,
		SizeB: size,
		MIME:  aws.ToString(out.ContentType),
	}, nil
}

// Delete is idempotent on the S3 side; a missing key succeeds.
func (u *S3Deps) Delete(ctx context.Context, key string) error {
	objKey, err := u.objectKey(key)
	if err != nil {
		return err
	}
	_, err = u.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(objKey),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete %s: %w", objKey, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
