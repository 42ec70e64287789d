package storage

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the part of *s3.Client the store calls.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options configure NewS3.
type S3Options struct {
	Bucket       string
	Region       string
	Endpoint     string // custom endpoint for MinIO and other S3-compatible stores
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	PublicURL    string
}

// S3 stores images in a bucket.
type S3 struct {
	client    s3API
	bucket    string
	publicURL string
}

// NewS3 builds a client from the default AWS chain, overridden by static keys when given.
func NewS3(ctx context.Context, o S3Options) (*S3, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if o.Region != "" {
		opts = append(opts, awsconfig.WithRegion(o.Region))
	}
	if o.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
		so.UsePathStyle = o.UsePathStyle
	})

	public := o.PublicURL
	if public == "" {
		public = "https://" + o.Bucket + ".s3." + cfg.Region + ".amazonaws.com"
	}
	return newS3WithClient(client, o.Bucket, public), nil
}

func newS3WithClient(c s3API, bucket, publicURL string) *S3 {
	return &S3{client: c, bucket: bucket, publicURL: publicURL}
}

// Save uploads data.
func (s *S3) Save(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	return err
}

// Delete removes the object. S3 reports success for missing keys.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// URL returns the public object URL.
func (s *S3) URL(key string) string {
	if key == "" {
		return ""
	}
	return joinURL(s.publicURL, key)
}
