package minio

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/videovox/internal/config"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты поднимают реальный MinIO через testcontainers-go.
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/minio -v -count=1

const (
	rootUser     = "root"
	rootPassword = "rootpass"
	bucket       = "media"
)

func startMinio(t *testing.T, createBucket bool, publicBase string) (*MediaStorage, *mclient.Client, error) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image: "docker.io/minio/minio:latest",
		Env: map[string]string{
			"MINIO_ROOT_USER":     rootUser,
			"MINIO_ROOT_PASSWORD": rootPassword,
		},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	admin, err := mclient.New(host+":"+port.Port(), &mclient.Options{
		Creds: credentials.NewStaticV4(rootUser, rootPassword, ""),
	})
	require.NoError(t, err)

	if createBucket {
		require.NoError(t, admin.MakeBucket(ctx, bucket, mclient.MakeBucketOptions{Region: "us-east-1"}))
	}

	st, err := New(ctx, config.S3Config{
		Endpoint:      fmt.Sprintf("http://%s:%s", host, port.Port()),
		Region:        "us-east-1",
		AccessKey:     rootUser,
		SecretKey:     rootPassword,
		Bucket:        bucket,
		PublicBaseURL: publicBase,
	})

	return st, admin, err
}

func TestIntegration_New_BucketMustExist(t *testing.T) {
	_, _, err := startMinio(t, false, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestIntegration_Upload_OK(t *testing.T) {
	st, admin, err := startMinio(t, true, "http://cdn.local/media")
	require.NoError(t, err)

	local := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(local, []byte("\x89PNG fake"), 0o600))

	u, err := st.Upload(context.Background(), local)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "http://cdn.local/media/images/"), u)
	require.True(t, strings.HasSuffix(u, ".png"), u)

	key := strings.TrimPrefix(u, "http://cdn.local/media/")
	info, err := admin.StatObject(context.Background(), bucket, key, mclient.StatObjectOptions{})
	require.NoError(t, err)
	require.Equal(t, "image/png", info.ContentType)

	// Локальный файл остаётся: удаление — забота вызывающей стороны.
	_, err = os.Stat(local)
	require.NoError(t, err)
}

func TestIntegration_Upload_MissingLocalFile(t *testing.T) {
	st, _, err := startMinio(t, true, "")
	require.NoError(t, err)

	_, err = st.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestPublicBase(t *testing.T) {
	t.Parallel()

	ep, err := url.Parse("http://localhost:9000")
	require.NoError(t, err)

	require.Equal(t, "https://cdn.example.com", publicBase("https://cdn.example.com", ep, "media"))
	require.Equal(t, "http://localhost:9000/media", publicBase("", ep, "media"))
}
