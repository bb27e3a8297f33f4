// Package cloudflare provides a client for interacting with Cloudflare R2.
package cloudflare

import (
	"context"
	"errors"
	"fmt"

	"estate-api/aws"
)

type R2Options struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// Endpoint returns the S3 compatible endpoint of an R2 account
func Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// NewR2 is an S3 client pointed at R2. R2 ignores the region but the SDK
// needs one for signing, "auto" is what Cloudflare documents.
func NewR2(ctx context.Context, o R2Options) (*aws.S3Client, error) {
	if o.AccountID == "" {
		return nil, errors.New("account id can't be empty")
	}
	if o.AccessKeyID == "" {
		return nil, errors.New("account access id can't be empty")
	}
	if o.SecretAccessKey == "" {
		return nil, errors.New("secret access key can't be empty")
	}

	return aws.NewS3(ctx, aws.S3Options{
		Region:          "auto",
		Bucket:          o.Bucket,
		AccessKeyID:     o.AccessKeyID,
		SecretAccessKey: o.SecretAccessKey,
		Endpoint:        Endpoint(o.AccountID),
	})
}
