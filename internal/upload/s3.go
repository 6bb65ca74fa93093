package upload

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the slice of *s3.Client used by S3.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores uploads in a bucket.  PublicURL overrides the default
// virtual-hosted URL (set it for a CDN or an S3-compatible endpoint).
type S3 struct {
	Client    PutObjectAPI
	Bucket    string
	Region    string
	Prefix    string // key prefix, e.g. "uploads"
	PublicURL string
}

// NewS3 builds an S3 backend from the default AWS credential chain.
// Path-style addressing keeps MinIO and other compatible stores working.
func NewS3(ctx context.Context, bucket, region, prefix, publicURL string) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("upload: aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return &S3{Client: client, Bucket: bucket, Region: region, Prefix: prefix, PublicURL: publicURL}, nil
}

func (s *S3) Name() string { return "s3" }

// Put uploads obj under Prefix/obj.Name.
func (s *S3) Put(ctx context.Context, obj Object) (string, error) {
	key := path.Join(strings.Trim(s.Prefix, "/"), obj.Name)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          obj.Body,
		ContentType:   aws.String(obj.ContentType),
		ContentLength: aws.Int64(obj.Size),
	})
	if err != nil {
		return "", fmt.Errorf("upload: put %s: %w", key, err)
	}
	if s.PublicURL != "" {
		return strings.TrimRight(s.PublicURL, "/") + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key), nil
}
