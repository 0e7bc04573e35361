// internals/helpers/oss/blob_store.go
package helper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"arcevents_backend/internals/helpers/apperror"

	"github.com/google/uuid"
)

// Upload is a validated file ready to be written to the blob store.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BlobRef points at a stored object. Key is what Delete needs, URL is what clients get.
type BlobRef struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func (r BlobRef) IsZero() bool { return r.Key == "" && r.URL == "" }

// BlobStore is the opaque image host. Upload failures come back as apperror Upstream.
type BlobStore interface {
	Upload(ctx context.Context, folder string, u Upload) (BlobRef, error)
	Delete(ctx context.Context, key string) error
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

func sanitizeFilename(filename string) string {
	safe := unsafeFilename.ReplaceAllString(strings.TrimSpace(filename), "_")
	if safe == "" || safe == "." || safe == ".." {
		return "file"
	}
	return safe
}

// GenerateUniqueFilename: folder/yyyymmdd-uuid-name
func GenerateUniqueFilename(folder, originalFilename string) string {
	timestamp := time.Now().Format("20060102")
	return fmt.Sprintf("%s/%s-%s-%s",
		strings.Trim(folder, "/"), timestamp, uuid.New().String(), sanitizeFilename(originalFilename))
}

// ReleaseQuietly deletes key on a detached context and ignores the outcome.
// The returned error is only for logging.
func ReleaseQuietly(store BlobStore, key string, timeout time.Duration) error {
	if store == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return store.Delete(ctx, key)
}

/* =======================================================================
   In-memory store (dev without OSS credentials, tests)
======================================================================= */

type MemoryBlobStore struct {
	mu       sync.Mutex
	BaseURL  string
	objects  map[string]Upload
	deleted  []string
	failWith error
	delay    time.Duration
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		BaseURL: "memory://blobs",
		objects: map[string]Upload{},
	}
}

// FailUploads makes every following Upload fail with err (nil restores).
func (m *MemoryBlobStore) FailUploads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// SetDelay stalls uploads for d, or until the context ends.
func (m *MemoryBlobStore) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

func (m *MemoryBlobStore) Upload(ctx context.Context, folder string, u Upload) (BlobRef, error) {
	m.mu.Lock()
	delay, failWith := m.delay, m.failWith
	m.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return BlobRef{}, apperror.Upstream("blob upload timed out", ctx.Err())
		case <-t.C:
		}
	}
	if failWith != nil {
		return BlobRef{}, apperror.Upstream("blob upload failed", failWith)
	}

	key := GenerateUniqueFilename(folder, u.Filename)
	m.mu.Lock()
	m.objects[key] = u
	m.mu.Unlock()
	return BlobRef{URL: strings.TrimRight(m.BaseURL, "/") + "/" + key, Key: key}, nil
}

func (m *MemoryBlobStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MemoryBlobStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *MemoryBlobStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *MemoryBlobStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
