package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"treesync/core/storage"
	"treesync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "styles").Return(true, nil)

		require.NoError(t, storage.EnsureBucket(ctx, client, "styles", ""))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "styles").Return(false, nil)
		client.On("MakeBucket", ctx, "styles", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		require.NoError(t, storage.EnsureBucket(ctx, client, "styles", "eu-west-1"))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "styles").Return(false, errors.New("denied"))

		err := storage.EnsureBucket(ctx, client, "styles", "")
		assert.ErrorContains(t, err, "denied")
	})
}

func TestPutBytesAndReadAll(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)

	client.On("PutObject", ctx, "styles", "css/a.css", mock.Anything, int64(5), mock.MatchedBy(func(o minio.PutObjectOptions) bool {
		return o.ContentType == "text/css"
	})).
		Return(minio.UploadInfo{Key: "css/a.css"}, nil)
	client.On("GetObject", ctx, "styles", "css/a.css", minio.GetObjectOptions{}).
		Return(io.NopCloser(strings.NewReader("a{} ")), nil)

	require.NoError(t, storage.PutBytes(ctx, client, "styles", "css/a.css", []byte("a{} \n"), "text/css"))

	data, err := storage.ReadAll(ctx, client, "styles", "css/a.css")
	require.NoError(t, err)
	assert.Equal(t, "a{} ", string(data))
	client.AssertExpectations(t)
}
