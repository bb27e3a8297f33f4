package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	a "estate-api/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

const minMultipartSize = 12 << 20

type S3Gateway struct {
	S3      *a.S3Client
	presign *s3.PresignClient
	baseURL string
}

// NewS3Gateway wraps an already verified client. publicURL overrides the
// canonical address, for buckets served behind a CDN or a custom domain.
func NewS3Gateway(c *a.S3Client, publicURL string) *S3Gateway {
	base := strings.TrimSuffix(publicURL, "/")
	if base == "" {
		if c.Endpoint != "" {
			base = strings.TrimSuffix(c.Endpoint, "/") + "/" + *c.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", *c.Bucket, c.Region)
		}
	}

	return &S3Gateway{
		S3:      c,
		presign: s3.NewPresignClient(c.C),
		baseURL: base,
	}
}

func (g *S3Gateway) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	objectInput := &s3.PutObjectInput{
		Bucket:        g.S3.Bucket,
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}

	var err error
	if size > minMultipartSize {
		uploader := manager.NewUploader(g.S3.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})
		_, err = uploader.Upload(ctx, objectInput)
	} else {
		_, err = g.S3.C.PutObject(ctx, objectInput)
	}
	if err != nil {
		return fmt.Errorf("failed to upload object %s, %w", key, err)
	}

	return nil
}

func (g *S3Gateway) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.S3.C.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: g.S3.Bucket,
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	if isNotFound(err) {
		return false, nil
	}

	return false, fmt.Errorf("failed to check object %s, %w", key, err)
}

func (g *S3Gateway) Delete(ctx context.Context, key string) error {
	_, err := g.S3.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: g.S3.Bucket,
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete object %s, %w", key, err)
	}

	return nil
}

func (g *S3Gateway) URL(key string) string {
	return g.baseURL + "/" + key
}

func (g *S3Gateway) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	req, err := g.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      g.S3.Bucket,
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload of %s, %w", key, err)
	}

	return req.URL, nil
}

func (g *S3Gateway) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := g.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: g.S3.Bucket,
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign download of %s, %w", key, err)
	}

	return req.URL, nil
}

// HeadObject has no body so the SDK can only report a bare 404
func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}

	return false
}
