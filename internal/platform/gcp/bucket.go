package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/hrgen/internal/platform/logger"
)

// ErrObjectNotFound is returned by ReadObject for a missing object.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore reads and writes whole objects in Cloud Storage.
type ObjectStore interface {
	ReadObject(ctx context.Context, bucket, key string) ([]byte, error)
	WriteObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Close() error
}

type bucketService struct {
	log    *logger.Logger
	client *storage.Client
	mode   ObjectStorageMode
}

func NewObjectStore(ctx context.Context, log *logger.Logger, storageCfg ObjectStorageConfig, creds Credentials) (ObjectStore, error) {
	if err := ValidateObjectStorageConfig(storageCfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClientForMode(ctx, storageCfg, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog := log.With("service", "ObjectStore")
	serviceLog.Info("Object storage initialized",
		"mode", storageCfg.Mode,
		"implicit_emulator", storageCfg.ImplicitEmulator,
		"emulator_host", storageCfg.EmulatorHost,
	)
	return &bucketService{log: serviceLog, client: client, mode: storageCfg.Mode}, nil
}

func newStorageClientForMode(ctx context.Context, storageCfg ObjectStorageConfig, creds Credentials) (*storage.Client, error) {
	switch storageCfg.Mode {
	case ObjectStorageModeGCS:
		return storage.NewClient(ctx, creds.ClientOptions(storage.ScopeReadWrite)...)
	case ObjectStorageModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/")
		// The storage client only honors the emulator through this variable.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(storageCfg.Mode)}
	}
}

func (bs *bucketService) ReadObject(ctx context.Context, bucket, key string) ([]byte, error) {
	r, err := bs.client.Bucket(bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, key, err)
	}
	return b, nil
}

func (bs *bucketService) WriteObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	w := bs.client.Bucket(bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	bs.log.Debug("object written", "bucket", bucket, "key", key, "bytes", len(data))
	return nil
}

func (bs *bucketService) Close() error { return bs.client.Close() }

// ParseObjectURL splits "gs://bucket/key".
func ParseObjectURL(u string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(u), "gs://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
