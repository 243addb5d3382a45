package couchbase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/couchbase/gocb/v2"
	"stealthcompany.com/wardconsole/internal/metrics"
)

// ErrNotFound is returned by GetDocument when the key does not exist.
var ErrNotFound = errors.New("document not found")

// DocumentManager handles document CRUD operations on the default collection
type DocumentManager struct {
	bucket *gocb.Bucket
}

// NewDocumentManager creates a new document manager
func NewDocumentManager(bucket *gocb.Bucket) *DocumentManager {
	return &DocumentManager{bucket: bucket}
}

// UpsertDocument stores or updates a document
func (dm *DocumentManager) UpsertDocument(ctx context.Context, docID string, data interface{}) error {
	start := time.Now()
	col := dm.bucket.DefaultCollection()

	_, err := col.Upsert(docID, data, &gocb.UpsertOptions{Context: ctx})
	metrics.RecordStoreOperation("upsert", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", docID, err)
	}
	return nil
}

// GetDocument retrieves a document into result
func (dm *DocumentManager) GetDocument(ctx context.Context, docID string, result interface{}) error {
	start := time.Now()
	col := dm.bucket.DefaultCollection()

	resultDoc, err := col.Get(docID, &gocb.GetOptions{Context: ctx})
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		metrics.RecordStoreOperation("get", start, nil)
		return ErrNotFound
	}
	metrics.RecordStoreOperation("get", start, err)
	if err != nil {
		return fmt.Errorf("failed to get document %s: %w", docID, err)
	}

	if err := resultDoc.Content(result); err != nil {
		return fmt.Errorf("failed to parse document content: %w", err)
	}
	return nil
}

// DeleteDocument removes a document. Removing a missing document is not an error.
func (dm *DocumentManager) DeleteDocument(ctx context.Context, docID string) error {
	start := time.Now()
	col := dm.bucket.DefaultCollection()

	_, err := col.Remove(docID, &gocb.RemoveOptions{Context: ctx})
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		err = nil
	}
	metrics.RecordStoreOperation("remove", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", docID, err)
	}
	return nil
}
