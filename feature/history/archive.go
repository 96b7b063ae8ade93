package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"fleet-sync/core/failure"
	"fleet-sync/core/reconcile"
	"fleet-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// Archiver stores full run reports as JSON objects.
type Archiver struct {
	client storage.Client
	bucket string
	prefix string
}

// NewArchiver creates an archiver writing to bucket under prefix.
func NewArchiver(client storage.Client, bucket, prefix string) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key for a run id.
func (a *Archiver) Key(id string) string {
	return path.Join(a.prefix, id+".json")
}

// Save uploads the report and returns its object key.
func (a *Archiver) Save(ctx context.Context, report reconcile.RunReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report %s: %w", report.ID, err)
	}

	key := a.Key(report.ID)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}
	return key, nil
}

// Load downloads and decodes the report for a run id.
func (a *Archiver) Load(ctx context.Context, id string) (reconcile.RunReport, error) {
	key := a.Key(id)
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return reconcile.RunReport{}, a.readError(key, err)
	}
	defer obj.Close()

	var report reconcile.RunReport
	if err := json.NewDecoder(obj).Decode(&report); err != nil {
		return reconcile.RunReport{}, a.readError(key, err)
	}
	return report, nil
}

// List returns the archived run ids sorted by id.
func (a *Archiver) List(ctx context.Context) ([]string, error) {
	prefix := a.prefix
	if prefix != "" {
		prefix += "/"
	}

	// Cancelling stops the listing goroutine when we return early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ids []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if !strings.HasSuffix(name, ".json") || strings.Contains(name, "/") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (a *Archiver) readError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("report %s: %w", key, failure.ErrNotFound)
	}
	return fmt.Errorf("failed to read report %s: %w", key, err)
}
