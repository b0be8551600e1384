// Package s3service stores farmer CSV batches in S3.
package s3service

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appConfig "kisanmitra-scheme-engine/internal/config"
	"kisanmitra-scheme-engine/internal/utils"
)

// Key prefixes for uploaded and processed batches.
const (
	UploadPrefix    = "uploads/"
	ProcessedPrefix = "processed/"
	CSVContentType  = "text/csv"
)

// DefaultExpiryMinutes applies when a caller passes no expiry.
const DefaultExpiryMinutes = 15

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Service handles S3 operations
type Service struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
}

// PresignedURLResult contains the presigned URL details
type PresignedURLResult struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewService creates a new S3 service for the configured bucket.
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	return &Service{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: appCfg.S3Bucket,
	}, nil
}

// Bucket returns the bucket name.
func (s *Service) Bucket() string {
	return s.bucketName
}

// UploadKey builds a dated, collision-free key for an uploaded CSV batch:
// uploads/YYYY/MM/DD/<uuid>_<name>.csv
func UploadKey(filename string, now time.Time) string {
	name := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	name = strings.Trim(unsafeNameChars.ReplaceAllString(name, "_"), "_")
	if name == "" || name == "." {
		name = "farmers"
	}

	return fmt.Sprintf("%s%s/%s_%s.csv", UploadPrefix, now.UTC().Format("2006/01/02"), uuid.New().String(), name)
}

// ArchiveKey maps an upload key to its location under processed/.
func ArchiveKey(key string) string {
	return ProcessedPrefix + strings.TrimPrefix(key, UploadPrefix)
}

// BatchIDFromKey derives the batch id from an upload key's file name.
func BatchIDFromKey(key string) string {
	base := strings.TrimSuffix(path.Base(key), path.Ext(key))
	if id, _, ok := strings.Cut(base, "_"); ok {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return base
}

// GeneratePresignedUploadURL creates a presigned URL for uploading files
func (s *Service) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiryMinutes int) (*PresignedURLResult, error) {
	if expiryMinutes <= 0 {
		expiryMinutes = DefaultExpiryMinutes
	}
	if contentType == "" {
		contentType = CSVContentType
	}

	expiry := time.Duration(expiryMinutes) * time.Minute

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presignedReq, err := s.presigner.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		utils.GetLogger().Error("Failed to generate presigned URL",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	utils.GetLogger().Info("Generated presigned upload URL",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("expiry_minutes", expiryMinutes),
	)

	return &PresignedURLResult{
		URL:       presignedReq.URL,
		Key:       key,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

// DownloadFile downloads a file from S3
func (s *Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		utils.GetLogger().Error("Failed to download file from S3",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	utils.GetLogger().Info("Downloaded file from S3",
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return data, nil
}

// ArchiveFile moves a processed upload under processed/ and returns the new key.
func (s *Service) ArchiveFile(ctx context.Context, key string) (string, error) {
	dest := ArchiveKey(key)

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucketName),
		CopySource: aws.String(s.bucketName + "/" + key),
		Key:        aws.String(dest),
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete file: %w", err)
	}

	utils.GetLogger().Info("Archived file in S3",
		zap.String("source", key),
		zap.String("destination", dest),
	)

	return dest, nil
}
