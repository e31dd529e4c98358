// Package writer exports run results as Parquet files to a configured storage.
package writer

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

const parquetContentType = "application/octet-stream"

// ParquetResultWriter writes the results of a run into one Parquet file per
// platform below OutputBaseDir/dt=YYYY-MM-DD/run_id=<id>/.
type ParquetResultWriter struct {
	cfg      config.ExportConfig
	resolver storage.StorageConnectionResolver
}

// NewParquetResultWriter validates cfg and creates a writer.
func NewParquetResultWriter(cfg config.ExportConfig, resolver storage.StorageConnectionResolver) (*ParquetResultWriter, error) {
	if cfg.StorageRef == "" {
		return nil, exception.NewConfigurationError("export requires 'storage_ref'", nil)
	}
	if cfg.OutputBaseDir == "" {
		return nil, exception.NewConfigurationError("export requires 'output_base_dir'", nil)
	}
	if cfg.CompressionType == "" {
		cfg.CompressionType = "SNAPPY"
	}
	if _, err := compressionCodec(cfg.CompressionType); err != nil {
		return nil, exception.NewConfigurationError(fmt.Sprintf("invalid compression type '%s'", cfg.CompressionType), err)
	}
	return &ParquetResultWriter{cfg: cfg, resolver: resolver}, nil
}

// Export uploads the results of run and returns the directory they were written to
// as "<storage_ref>://<bucket>/<dir>". A run without results is not exported.
func (w *ParquetResultWriter) Export(ctx context.Context, run *model.RunSummary) (string, error) {
	if run == nil || len(run.Results) == 0 {
		logger.Infof("No results to export.")
		return "", nil
	}

	conn, err := w.resolver.ResolveStorageConnection(ctx, w.cfg.StorageRef)
	if err != nil {
		return "", err
	}
	codec, _ := compressionCodec(w.cfg.CompressionType)

	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	dir := path.Join(w.cfg.OutputBaseDir, "dt="+started.UTC().Format("2006-01-02"), "run_id="+run.RunID)

	var multiErr error
	for _, platform := range []model.Platform{model.PlatformSQLServer, model.PlatformSnowflake} {
		results := model.FilterByPlatform(run.Results, platform)
		if len(results) == 0 {
			continue
		}
		records := make([]ResultRecord, 0, len(results))
		for _, r := range results {
			records = append(records, NewResultRecord(run.RunID, r))
		}

		buf, err := encode(records, codec)
		if err != nil {
			multiErr = multierror.Append(multiErr, exception.NewCompareError(exception.KindExecution, "writer",
				fmt.Sprintf("failed to encode %s results", platform), err))
			continue
		}

		objectName := path.Join(dir, fileName(platform))
		if err := conn.Upload(ctx, w.cfg.Bucket, objectName, buf, parquetContentType); err != nil {
			multiErr = multierror.Append(multiErr, exception.NewCompareError(exception.KindExecution, "writer",
				fmt.Sprintf("failed to upload '%s'", objectName), err))
			continue
		}
		logger.Infof("Exported %d %s results to %s", len(records), platform, objectName)
	}
	if multiErr != nil {
		return "", multiErr
	}
	return fmt.Sprintf("%s://%s/%s", w.cfg.StorageRef, w.cfg.Bucket, dir), nil
}

// encode writes records into an in-memory Parquet file with a single row group.
func encode(records []ResultRecord, codec parquet.CompressionCodec) (buf *bytes.Buffer, err error) {
	buf = new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(ResultRecord), int64(len(records)))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = codec

	for _, rec := range records {
		if err := pw.Write(rec); err != nil {
			return nil, fmt.Errorf("failed to write parquet record: %w", err)
		}
	}

	// WriteStop can panic on schema mismatches.
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return buf, nil
}

func fileName(p model.Platform) string {
	slug := strings.ToLower(strings.ReplaceAll(string(p), " ", "_"))
	return fmt.Sprintf("%s_%s.parquet", slug, time.Now().UTC().Format("20060102150405"))
}

func compressionCodec(compressionType string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compressionType) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}
