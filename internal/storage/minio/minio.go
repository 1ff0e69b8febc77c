// minio предоставляет реализацию storage.MediaStorage на базе MinIO.
// Файл загружается сервером целиком (FPutObject), наружу уходит публичный URL объекта.
package minio

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/videovox/internal/config"
	"github.com/pribylovaa/videovox/internal/storage"
)

// MediaStorage — адаптер MinIO для изображений профиля.
type MediaStorage struct {
	client  *mclient.Client
	bucket  string
	baseURL string
	now     func() time.Time
}

// New создаёт клиент MinIO.
// Убирает схему из endpoint, подбирает Secure по схеме
// и выполняет fail-fast-проверку доступности бакета.
func New(ctx context.Context, cfg config.S3Config) (*MediaStorage, error) {
	const op = "storage/minio/New"

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	return &MediaStorage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBase(cfg.PublicBaseURL, client.EndpointURL(), cfg.Bucket),
		now:     time.Now,
	}, nil
}

// publicBase — PublicBaseURL из конфига либо path-style адрес бакета на самом MinIO.
func publicBase(configured string, endpoint *url.URL, bucket string) string {
	if configured != "" {
		return configured
	}

	return endpoint.Scheme + "://" + endpoint.Host + "/" + bucket
}

// Upload загружает локальный файл в бакет под случайным ключом.
func (s *MediaStorage) Upload(ctx context.Context, localPath string) (string, error) {
	const op = "storage/minio/Upload"

	key := storage.ObjectKey(localPath, s.now())

	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, mclient.PutObjectOptions{
		ContentType: storage.ContentType(localPath),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return storage.PublicURL(s.baseURL, key), nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.MediaStorage = (*MediaStorage)(nil)
