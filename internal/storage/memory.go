package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// Memory keeps objects in a map. Used by tests and local runs without a
// bucket. Signed URLs it mints are not servable.
type Memory struct {
	mu      sync.Mutex
	objects map[string]memObject

	// Injected failures, checked before touching the map
	PutErr    error
	ExistsErr error
	DeleteErr error
	SignErr   error
}

type memObject struct {
	data        []byte
	contentType string
}

func NewMemory() *Memory {
	return &Memory{objects: map[string]memObject{}}
}

func (m *Memory) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if m.PutErr != nil {
		return m.PutErr
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch for %s, expected %d got %d", key, size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{data: data, contentType: contentType}

	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]

	return ok, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)

	return nil
}

func (m *Memory) URL(key string) string {
	return "memory://bucket/" + key
}

func (m *Memory) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	return m.sign(key, "PUT", contentType, ttl)
}

func (m *Memory) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return m.sign(key, "GET", "", ttl)
}

func (m *Memory) sign(key, method, contentType string, ttl time.Duration) (string, error) {
	if m.SignErr != nil {
		return "", m.SignErr
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}

	q := url.Values{}
	q.Set("method", method)
	q.Set("expires", time.Now().Add(ttl).UTC().Format(time.RFC3339))
	if contentType != "" {
		q.Set("content-type", contentType)
	}

	return m.URL(key) + "?" + q.Encode(), nil
}

// Object returns a stored blob, for assertions
func (m *Memory) Object(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.objects[key]
	return bytes.Clone(o.data), o.contentType, ok
}

// Len is the number of stored objects
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.objects)
}
