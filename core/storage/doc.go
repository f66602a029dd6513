// Package storage wraps the MinIO client for the buckets stylesheets are
// published to.
//
// The Client interface is the subset of *minio.Client the publisher needs:
// bucket checks, single object writes and reads, prefix listing, and single
// or batch removal. core/storage/mocks provides a testify mock of it.
//
// EnsureBucket creates a missing bucket, PutBytes uploads an in-memory
// object with a content type, and ReadAll downloads one.
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
