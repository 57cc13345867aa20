// utils/s3.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var s3Client *s3.Client
var s3Bucket string
var cdnBaseURL string

// InitS3 configures the S3-compatible bucket that stores uploaded logos.
// S3_ENDPOINT supports R2/MinIO style deployments; leave it empty for AWS.
func InitS3() error {
	endpoint := os.Getenv("S3_ENDPOINT")
	accessKeyID := os.Getenv("S3_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("S3_ACCESS_KEY_SECRET")
	s3Bucket = os.Getenv("S3_BUCKET_NAME")
	cdnBaseURL = os.Getenv("CDN_BASE_URL")

	if accessKeyID == "" || accessKeySecret == "" || s3Bucket == "" {
		return fmt.Errorf("S3_ACCESS_KEY_ID, S3_ACCESS_KEY_SECRET and S3_BUCKET_NAME must be set")
	}

	region := os.Getenv("S3_REGION")
	if region == "" {
		region = "auto"
	}
	if cdnBaseURL == "" && endpoint != "" {
		cdnBaseURL = fmt.Sprintf("%s/%s", endpoint, s3Bucket)
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
	}
	if endpoint != "" {
		opts = append(opts, config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint}, nil
			}),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return fmt.Errorf("failed to load S3 config: %w", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	return nil
}

// UploadsEnabled reports whether logo storage was configured at boot.
func UploadsEnabled() bool {
	return s3Client != nil
}

// UploadLogo uploads a multipart logo file and returns its public URL.
// key is the object key (e.g., "logos/abc123.png").
func UploadLogo(fileHeader *multipart.FileHeader, key string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s3Bucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}

	return fmt.Sprintf("%s/%s", cdnBaseURL, key), nil
}
