// s3 — реализация storage.MediaStorage поверх AWS S3 (aws-sdk-go-v2).
// Включается через media.driver=s3; с заданным endpoint работает и с любым
// S3-совместимым хранилищем в path-style режиме.
package s3

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pribylovaa/videovox/internal/config"
	"github.com/pribylovaa/videovox/internal/storage"
)

// putObjectAPI — часть клиента S3, нужная адаптеру.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// MediaStorage — адаптер S3 для изображений профиля.
type MediaStorage struct {
	client  putObjectAPI
	bucket  string
	baseURL string
	now     func() time.Time
}

// New собирает клиент S3 из конфига. Статические ключи используются, если заданы,
// иначе — стандартная цепочка провайдеров AWS (env, shared config, IAM-роль).
func New(ctx context.Context, cfg config.S3Config) (*MediaStorage, error) {
	const op = "storage/s3/New"

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
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

	return newWithClient(client, cfg), nil
}

func newWithClient(client putObjectAPI, cfg config.S3Config) *MediaStorage {
	return &MediaStorage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBase(cfg),
		now:     time.Now,
	}
}

// publicBase — PublicBaseURL из конфига, адрес бакета на endpoint (path-style)
// или virtual-hosted адрес AWS.
func publicBase(cfg config.S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Upload загружает локальный файл под случайным ключом и возвращает публичный URL.
func (s *MediaStorage) Upload(ctx context.Context, localPath string) (string, error) {
	const op = "storage/s3/Upload"

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%s: open: %w", op, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%s: stat: %w", op, err)
	}

	key := storage.ObjectKey(localPath, s.now())

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(st.Size()),
		ContentType:   aws.String(storage.ContentType(localPath)),
	})
	if err != nil {
		return "", fmt.Errorf("%s: put: %w", op, err)
	}

	return storage.PublicURL(s.baseURL, key), nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.MediaStorage = (*MediaStorage)(nil)
