// Package aws defines functions used to interact with the AWS API
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type S3Options struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Set for S3 compatible providers (R2, MinIO). Empty means AWS itself
	Endpoint string
	// Bucket name goes into the path instead of the host
	PathStyle bool
}

type S3Client struct {
	C        *s3.Client
	Bucket   *string
	Region   string
	Endpoint string
}

// NewS3 builds the client and makes sure the bucket is reachable
func NewS3(ctx context.Context, o S3Options) (*S3Client, error) {
	if o.Bucket == "" {
		return nil, errors.New("bucket can't be empty")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(o.Region),
	}

	// Fall back to the default chain (env, shared config, IAM role) when no
	// static keys are given
	if o.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKeyID,
			o.SecretAccessKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(o.Bucket)

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		so.Region = o.Region
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
		so.UsePathStyle = o.PathStyle
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", o.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Client{
		C:        client,
		Bucket:   bucket,
		Region:   o.Region,
		Endpoint: o.Endpoint,
	}, nil
}
