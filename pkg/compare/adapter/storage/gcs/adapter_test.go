package gcs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageConfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage/gcs"
)

func fakeGCS(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/b/exports/o"):
			assert.Equal(t, "results/", r.URL.Query().Get("prefix"))
			_, _ = w.Write([]byte(`{"kind":"storage#objects","items":[{"name":"results/a.parquet","bucket":"exports"},{"name":"results/b.parquet","bucket":"exports"}]}`))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"No such object"}}`))
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGCSAdapter_ListAndDeleteMissing(t *testing.T) {
	srv := fakeGCS(t)
	ctx := context.Background()
	conn, err := gcs.NewGCSAdapter(ctx, storageConfig.StorageConfig{
		Type:       "gcs",
		BucketName: "exports",
		Endpoint:   srv.URL + "/storage/v1/",
	}, "lake")
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "gcs", conn.Type())
	assert.Equal(t, "lake", conn.Name())

	var names []string
	require.NoError(t, conn.ListObjects(ctx, "", "results/", func(name string) error {
		names = append(names, name)
		return nil
	}))
	assert.Equal(t, []string{"results/a.parquet", "results/b.parquet"}, names)

	assert.NoError(t, conn.DeleteObject(ctx, "", "results/missing.parquet"))
}

func TestGCSAdapter_RequiresBucket(t *testing.T) {
	srv := fakeGCS(t)
	conn, err := gcs.NewGCSAdapter(context.Background(), storageConfig.StorageConfig{Endpoint: srv.URL + "/storage/v1/"}, "lake")
	require.NoError(t, err)
	defer conn.Close()

	err = conn.Upload(context.Background(), "", "a.parquet", strings.NewReader("PAR1"), "application/octet-stream")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket_name not configured")
}

func TestClientOptions(t *testing.T) {
	assert.Empty(t, gcs.ClientOptions(storageConfig.StorageConfig{}))
	assert.Len(t, gcs.ClientOptions(storageConfig.StorageConfig{CredentialsFile: "/etc/sa.json"}), 1)
	assert.Len(t, gcs.ClientOptions(storageConfig.StorageConfig{Endpoint: "http://localhost:4443/storage/v1/"}), 2)
}
