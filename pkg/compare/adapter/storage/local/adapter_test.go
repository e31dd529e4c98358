package local_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage"
	storageConfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage/local"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
)

func TestLocalAdapter_UploadListDownloadDelete(t *testing.T) {
	base := filepath.Join(t.TempDir(), "exports")
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{Type: "local", BaseDir: base, BucketName: "default"}, "files")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, conn.Upload(ctx, "", "results/dt=2026-10-01/a.parquet", strings.NewReader("PAR1"), "application/octet-stream"))
	require.NoError(t, conn.Upload(ctx, "", "results/dt=2026-10-02/b.parquet", strings.NewReader("PAR1"), "application/octet-stream"))
	require.NoError(t, conn.Upload(ctx, "", "other/c.txt", strings.NewReader("x"), "text/plain"))
	assert.FileExists(t, filepath.Join(base, "default", "results", "dt=2026-10-01", "a.parquet"))

	var names []string
	require.NoError(t, conn.ListObjects(ctx, "", "results/", func(name string) error {
		names = append(names, name)
		return nil
	}))
	sort.Strings(names)
	assert.Equal(t, []string{"results/dt=2026-10-01/a.parquet", "results/dt=2026-10-02/b.parquet"}, names)

	rc, err := conn.Download(ctx, "default", "results/dt=2026-10-01/a.parquet")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.True(t, bytes.Equal([]byte("PAR1"), body))

	require.NoError(t, conn.DeleteObject(ctx, "", "results/dt=2026-10-01/a.parquet"))
	require.NoError(t, conn.DeleteObject(ctx, "", "results/dt=2026-10-01/a.parquet"), "deleting a missing object is not an error")
	_, err = os.Stat(filepath.Join(base, "default", "results", "dt=2026-10-01", "a.parquet"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalAdapter_RejectsEscapingPaths(t *testing.T) {
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{BaseDir: t.TempDir()}, "files")
	require.NoError(t, err)

	err = conn.Upload(context.Background(), "", "../../etc/passwd", strings.NewReader("x"), "text/plain")
	assert.Error(t, err)
}

func TestLocalAdapter_RequiresBaseDir(t *testing.T) {
	_, err := local.NewLocalAdapter(storageConfig.StorageConfig{}, "files")
	assert.Error(t, err)
}

func TestConfigResolver_ResolvesRegisteredLocalAdapter(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Compare.Storage["exports"] = map[string]interface{}{"type": "local", "base_dir": t.TempDir()}
	cfg.Compare.Storage["broken"] = map[string]interface{}{"type": "ftp"}
	r := storage.NewConfigResolver(cfg)
	ctx := context.Background()

	conn, err := r.ResolveStorageConnection(ctx, "exports")
	require.NoError(t, err)
	assert.Equal(t, "local", conn.Type())
	assert.Equal(t, "exports", conn.Name())

	again, err := r.ResolveStorageConnection(ctx, "exports")
	require.NoError(t, err)
	assert.Same(t, conn, again)

	_, err = r.ResolveStorageConnection(ctx, "broken")
	assert.ErrorIs(t, err, exception.ErrConfiguration)
	_, err = r.ResolveStorageConnection(ctx, "missing")
	assert.ErrorIs(t, err, exception.ErrConfiguration)

	assert.NoError(t, r.CloseAll())
}
