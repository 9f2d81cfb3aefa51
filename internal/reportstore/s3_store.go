//go:build s3example
// +build s3example

// This file provides an example S3Store implementation for report
// storage. It is excluded from regular builds because it requires the
// AWS SDK; build with `-tags s3example` to include it.
//
// To use this in your project, add the AWS SDK:
//   go get github.com/aws/aws-sdk-go-v2
//   go get github.com/aws/aws-sdk-go-v2/config
//   go get github.com/aws/aws-sdk-go-v2/service/s3

package reportstore

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/reactcheck/reactcheck/internal/model"
	"github.com/reactcheck/reactcheck/internal/report"
)

// S3Store writes finished SessionReports to an S3 bucket, one object per
// session, keyed by the session id.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	client := s3.NewFromConfig(cfg)
//	store := reportstore.NewS3Store(client, "my-bucket", "reactcheck-reports/")
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates a new S3-backed report store.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Write implements Store.
func (s *S3Store) Write(r model.SessionReport) (string, error) {
	data, err := report.Marshal(r)
	if err != nil {
		return "", err
	}

	key := s.prefix + r.Session.SessionID + ".json"
	_, err = s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"session-id":  r.Session.SessionID,
			"upload-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("reportstore: s3 upload failed: %w", err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}
