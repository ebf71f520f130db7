package blobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
	"github.com/google/uuid"
)

// S3Config describes an S3-compatible bucket, e.g. MinIO.
type S3Config struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}

	now = time.Now
)

// S3Store keeps image bytes in a bucket under random keys.
type S3Store struct {
	client s3API
	bucket string
}

func NewS3Store(ctx context.Context, c S3Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.RootUser,
			c.RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: c.Bucket}, nil
}

// RandomStorageKey returns a fresh object key grouped by upload date.
func RandomStorageKey() string {
	d := now()
	return fmt.Sprintf("accounts/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3Store) put(ctx context.Context, img models.Image) (string, error) {
	key := RandomStorageKey()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", img.Filename, err)
	}
	return key, nil
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: image object %s is missing", common.ErrorMalformedStoredData, key)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (s *S3Store) Offload(ctx context.Context, images []models.Image) ([]models.Image, error) {
	result := make([]models.Image, 0, len(images))
	var added []models.Image
	for _, img := range images {
		if img.StorageKey != "" {
			result = append(result, img)
			continue
		}

		key, err := s.put(ctx, img)
		if err != nil {
			_ = s.Discard(ctx, added)
			return nil, err
		}

		img.StorageKey = key
		img.Data = nil
		result = append(result, img)
		added = append(added, img)
	}
	return result, nil
}

func (s *S3Store) Resolve(ctx context.Context, images []models.Image) ([]models.Image, error) {
	result := make([]models.Image, 0, len(images))
	for _, img := range images {
		if img.StorageKey != "" {
			data, err := s.get(ctx, img.StorageKey)
			if err != nil {
				return nil, err
			}
			img.Data = data
			img.StorageKey = ""
		}
		result = append(result, img)
	}
	return result, nil
}

func (s *S3Store) Discard(ctx context.Context, images []models.Image) error {
	var errs []error
	for _, img := range images {
		if img.StorageKey == "" {
			continue
		}
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(img.StorageKey),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", img.StorageKey, err))
		}
	}
	return errors.Join(errs...)
}
