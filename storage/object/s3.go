// Package object implements core.FileStorage on S3-compatible stores.
package object

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
)

type S3Storage struct {
	client *s3.S3
	bucket string
}

var _ core.FileStorage = (*S3Storage)(nil) // interface compliance check

func NewS3Storage(conf *core.Config) (*S3Storage, error) {
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(conf.Storage.AccessKey, conf.Storage.SecretKey, ""),
		Endpoint:         aws.String(conf.Storage.Endpoint),
		Region:           aws.String(conf.Storage.Region),
		DisableSSL:       aws.Bool(!conf.Storage.UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, errors.Wrap(err, "opening S3 session")
	}

	return &S3Storage{
		client: s3.New(sess),
		bucket: conf.Storage.Bucket,
	}, nil
}

func (s *S3Storage) UploadFile(ctx context.Context, key string, content io.Reader, contentType string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(content),
		ContentType: aws.String(contentType),
	})
	return errors.Wrap(err, "uploading object")
}

func (s *S3Storage) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrap(err, "deleting object")
}

func (s *S3Storage) SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(ttl)
	if err != nil {
		return "", errors.Wrap(err, "signing object URL")
	}
	return url, nil
}
