package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	bulkapp "github.com/marketplace/portal/internal/application/bulk"
	"github.com/marketplace/portal/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:      true,
		Endpoint:     endpoint,
		Bucket:       "portal-imports",
		AccessKey:    "minio",
		SecretKey:    "minio-secret",
		UsePathStyle: true,
	}
}

func TestNewS3Archive_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3Archive(ctx, nil)
	assert.ErrorContains(t, err, "configuration is required")

	cfg := testConfig("localhost:9000")
	cfg.Bucket = ""
	_, err = NewS3Archive(ctx, cfg)
	assert.ErrorContains(t, err, "bucket is required")

	cfg = testConfig("localhost:9000")
	cfg.SecretKey = ""
	_, err = NewS3Archive(ctx, cfg)
	assert.ErrorContains(t, err, "credentials are required")

	a, err := NewS3Archive(ctx, testConfig("localhost:9000"), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, "portal-imports", a.Bucket())
	assert.Equal(t, defaultPresignExpiration, a.expiresIn)
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "https://s3.example.com", endpointURL("https://s3.example.com", false))
	assert.Equal(t, "", endpointURL("", true))
}

func TestS3Archive_URL(t *testing.T) {
	cfg := testConfig("localhost:9000")
	cfg.PresignExpiration = 5 * time.Minute
	a, err := NewS3Archive(context.Background(), cfg)
	require.NoError(t, err)

	url, expires, err := a.URL(context.Background(), "imports/v1/products/abc.xlsx")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/portal-imports/imports/v1/products/abc.xlsx?"))
	assert.Contains(t, url, "X-Amz-Expires=300")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expires, 5*time.Second)

	_, _, err = a.URL(context.Background(), "")
	assert.Error(t, err)
}

func TestS3Archive_PutAndDelete(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			b, _ := io.ReadAll(r.Body)
			body = string(b)
			w.Header().Set("ETag", `"etag"`)
		}
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a, err := NewS3Archive(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	require.NoError(t, a.Put(context.Background(), "imports/v1/prices/x.xlsx", []byte("PK-workbook"), "application/octet-stream"))
	require.NoError(t, a.Delete(context.Background(), "imports/v1/prices/x.xlsx"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"PUT /portal-imports/imports/v1/prices/x.xlsx",
		"DELETE /portal-imports/imports/v1/prices/x.xlsx",
	}, calls)
	assert.Contains(t, body, "PK-workbook")
}

func TestS3Archive_PutFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<?xml version="1.0"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	}))
	defer srv.Close()

	a, err := NewS3Archive(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	err = a.Put(context.Background(), "k.xlsx", []byte("x"), "application/octet-stream")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to archive k.xlsx")
}

func TestDisabledArchive(t *testing.T) {
	var a DisabledArchive
	assert.NoError(t, a.Put(context.Background(), "k", []byte("x"), "t"))
	_, _, err := a.URL(context.Background(), "k")
	assert.ErrorIs(t, err, bulkapp.ErrArchiveDisabled)
}
