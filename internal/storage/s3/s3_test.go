package s3

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pribylovaa/videovox/internal/config"
	"github.com/stretchr/testify/require"
)

// fakePut запоминает вход PutObject и читает тело, как это сделал бы SDK.
type fakePut struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePut) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		b, err := io.ReadAll(in.Body)
		if err != nil {
			return nil, err
		}
		f.body = b
	}

	if f.err != nil {
		return nil, f.err
	}

	return &s3.PutObjectOutput{}, nil
}

func writeTemp(t *testing.T, name, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

func TestUpload_OK(t *testing.T) {
	t.Parallel()

	fake := &fakePut{}
	st := newWithClient(fake, config.S3Config{Bucket: "media", PublicBaseURL: "https://cdn.example.com"})

	local := writeTemp(t, "cover.jpg", "jpeg-bytes")

	u, err := st.Upload(context.Background(), local)
	require.NoError(t, err)

	require.Equal(t, "media", aws.ToString(fake.in.Bucket))
	require.Equal(t, "image/jpeg", aws.ToString(fake.in.ContentType))
	require.Equal(t, int64(len("jpeg-bytes")), aws.ToInt64(fake.in.ContentLength))
	require.Equal(t, "jpeg-bytes", string(fake.body))

	key := aws.ToString(fake.in.Key)
	require.True(t, strings.HasPrefix(key, "images/"), key)
	require.Equal(t, "https://cdn.example.com/"+key, u)

	// Локальный файл не удаляется адаптером.
	_, err = os.Stat(local)
	require.NoError(t, err)
}

func TestUpload_PutError(t *testing.T) {
	t.Parallel()

	fake := &fakePut{err: errors.New("boom")}
	st := newWithClient(fake, config.S3Config{Bucket: "media"})

	_, err := st.Upload(context.Background(), writeTemp(t, "a.png", "x"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage/s3/Upload")
}

func TestUpload_MissingFile(t *testing.T) {
	t.Parallel()

	fake := &fakePut{}
	st := newWithClient(fake, config.S3Config{Bucket: "media"})

	_, err := st.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	require.Nil(t, fake.in)
}

func TestPublicBase(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://cdn", publicBase(config.S3Config{PublicBaseURL: "https://cdn", Bucket: "b"}))
	require.Equal(t, "http://minio:9000/b", publicBase(config.S3Config{Endpoint: "http://minio:9000/", Bucket: "b"}))
	require.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", publicBase(config.S3Config{Bucket: "b", Region: "eu-west-1"}))
}

func TestNew_BuildsClient(t *testing.T) {
	t.Parallel()

	st, err := New(context.Background(), config.S3Config{
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "media",
	})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000/media", st.baseURL)
}
