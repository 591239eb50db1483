package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const classContentType = "application/java-vm"

// PutObjectAPI is the part of the S3 client the sink uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores each class as an object named <prefix>/a/b/Color.class.
type S3 struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3 returns a sink writing to bucket through client.
func NewS3(client PutObjectAPI, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// S3Config holds the optional connection settings of an S3 target.
// Empty fields fall back to the default AWS configuration chain
// (environment, shared config files, instance role).
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

func (c S3Config) loadOptions() []func(*config.LoadOptions) error {
	var opts []func(*config.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if c.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")))
	}
	return opts
}

// OpenS3 returns a sink writing to bucket with a client built from cfg.
func OpenS3(ctx context.Context, bucket, prefix string, cfg S3Config) (*S3, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, cfg.loadOptions()...)
	if err != nil {
		return nil, fmt.Errorf("sink: loading aws config: %w", err)
	}
	return NewS3(s3.NewFromConfig(awsCfg), bucket, prefix), nil
}

// Key returns the object key for a class.
func (s *S3) Key(name string) string {
	if s.prefix == "" {
		return classPath(name)
	}
	return path.Join(s.prefix, classPath(name))
}

func (s *S3) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(classContentType),
	})
	return err
}

func (s *S3) Close() error {
	return nil
}
