// Package report persists the finished catering report using
// gocloud.dev/blob, so the same writer serves local file buckets, S3, GCS,
// Azure, and the in-memory bucket the tests use
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/kode4food/banquet/pkg/api"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Writer stores the catering report under a fixed key in a bucket
type Writer struct {
	bucket *blob.Bucket
	key    string
}

var (
	ErrMissingReport = errors.New("missing report argument")
	ErrNoReport      = errors.New("no report has been written")
)

// NewWriter opens the bucket named by bucketURL and prepares a writer that
// stores reports under the provided key
func NewWriter(ctx context.Context, bucketURL, key string) (*Writer, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return &Writer{
		bucket: bucket,
		key:    key,
	}, nil
}

// Write stores the report content and returns a confirmation suitable for
// showing to the requester
func (w *Writer) Write(ctx context.Context, content string) (string, error) {
	if err := w.bucket.WriteAll(
		ctx, w.key, []byte(content), nil,
	); err != nil {
		slog.Error("Failed to write report",
			slog.String("key", w.key),
			slog.Any("error", err))
		return "", err
	}
	return fmt.Sprintf("Report saved to %s", w.key), nil
}

// Read returns the most recently written report
func (w *Writer) Read(ctx context.Context) (string, error) {
	data, err := w.bucket.ReadAll(ctx, w.key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return "", ErrNoReport
		}
		return "", err
	}
	return string(data), nil
}

// WriteFile answers the write_file capability, persisting the report passed
// in the arguments and confirming where it landed
func (w *Writer) WriteFile(
	ctx context.Context, args api.Args,
) (api.Args, error) {
	content := args.GetString(api.ArgReport, "")
	if content == "" {
		return nil, ErrMissingReport
	}
	confirmation, err := w.Write(ctx, content)
	if err != nil {
		return nil, err
	}
	return api.Args{api.ArgConfirmation: confirmation}, nil
}

// Close releases the underlying bucket
func (w *Writer) Close() error {
	return w.bucket.Close()
}
