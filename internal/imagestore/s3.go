package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"mime"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/magabrotheeeer/foodgram/internal/config"
)

// objectAPI — часть клиента S3, которой пользуется хранилище.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 хранит картинки в бакете объектного хранилища.
type S3 struct {
	client    objectAPI
	bucket    string
	urlPrefix string
}

// NewS3 настраивает клиент S3. Endpoint задаётся для совместимых хранилищ
// (MinIO, DigitalOcean Spaces), тогда используется path-style адресация.
func NewS3(ctx context.Context, cfg config.S3, urlPrefix string) (*S3, error) {
	const op = "imagestore.NewS3"

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3WithClient(client, cfg.Bucket, urlPrefix), nil
}

func newS3WithClient(client objectAPI, bucket, urlPrefix string) *S3 {
	return &S3{client: client, bucket: bucket, urlPrefix: urlPrefix}
}

// Save загружает картинку и возвращает её URL.
func (s *S3) Save(ctx context.Context, ext string, data []byte) (string, error) {
	const op = "imagestore.S3.Save"

	key := objectKey(ext)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.urlPrefix + key, nil
}

// Delete удаляет объект по URL.
func (s *S3) Delete(ctx context.Context, url string) error {
	const op = "imagestore.S3.Delete"

	key, err := keyFromURL(s.urlPrefix, url)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
