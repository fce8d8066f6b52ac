package storage

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Storage implements the Storage interface against AWS S3.
type S3Storage struct {
	Config  Config
	Session *session.Session
}

// NewS3Storage creates a new S3Storage with a new aws.Session.
func NewS3Storage(config Config) S3Storage {
	return S3Storage{
		Config:  config,
		Session: newAWSSession(config),
	}
}

// NewS3StorageWithSession returns a new S3Storage with a given AWS Session.
func NewS3StorageWithSession(config Config, session *session.Session) S3Storage {
	return S3Storage{
		Config:  config,
		Session: session,
	}
}

// Write writes the data to the key in the S3 Bucket, with Options applied.
func (s S3Storage) Write(ctx context.Context, key string, body []byte,
	options *Options) error {

	svc := s3.New(s.Session)

	poi := s3.PutObjectInput{
		Bucket: aws.String(s.Config.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}

	if options != nil && options.TTL > 0 {
		expiry := time.Now().Add(time.Duration(options.TTL) * time.Second)
		poi.Expires = &expiry
	}

	if _, err := svc.PutObject(&poi); err != nil {
		return fmt.Errorf("Failed to write to %v : %v", key, err)
	}

	return nil
}

// Read will read the data from the S3 Bucket.
func (s S3Storage) Read(ctx context.Context, key string) ([]byte, error) {
	svc := s3.New(s.Session)

	document, err := svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.Config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if strings.HasPrefix(err.Error(), "NoSuchKey") {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("Failed to read from %v : %v", key, err)
	}

	b, err := ioutil.ReadAll(document.Body)
	if err != nil {
		return nil, fmt.Errorf("Error reading body : %v", err)
	}

	return b, nil
}

// Remove removes the object stored at key, in the S3 Bucket.
func (s S3Storage) Remove(ctx context.Context, key string) error {
	svc := s3.New(s.Session)

	do := &s3.DeleteObjectInput{
		Bucket: aws.String(s.Config.Bucket),
		Key:    aws.String(key),
	}

	if _, err := svc.DeleteObject(do); err != nil {
		if strings.HasPrefix(err.Error(), "NoSuchKey") {
			return ErrNotFound
		}

		return fmt.Errorf("Failed to delete object at %v : %v", key, err)
	}

	return nil
}

// List returns the keys of all objects with the given key prefix.
func (s S3Storage) List(ctx context.Context, keyPrefix string) ([]string, error) {
	svc := s3.New(s.Session)

	keys := []string{}
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Config.Bucket),
		Prefix: aws.String(keyPrefix),
	}

	err := svc.ListObjectsV2Pages(input,
		func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, object := range page.Contents {
				keys = append(keys, aws.StringValue(object.Key))
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("Failed to list %v : %v", keyPrefix, err)
	}

	return keys, nil
}

func newAWSSession(config Config) *session.Session {
	return session.Must(session.NewSession(&aws.Config{
		MaxRetries: aws.Int(config.MaxRetries),
	}))
}
