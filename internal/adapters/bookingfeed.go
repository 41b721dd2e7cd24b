// Package adapters contains cross-module glue: concrete implementations of
// narrow interfaces the domain services depend on.
package adapters

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"leadportal_backend/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config combines the config interfaces the booking feed needs.
type Config interface {
	config.BookingImportConfig
	config.StoreConfig
}

// BookingFeed reads booking note tokens from a CSV export dropped into an
// S3-compatible bucket by the external booking system. The first column of
// every row is the opaque token; everything else is ignored. The feed is an
// external collaborator: the engine only consumes the token sequence.
type BookingFeed struct {
	client  *minio.Client
	bucket  string
	object  string
	timeout time.Duration
}

// NewBookingFeed creates the feed client, or returns nil (no error) when the
// object store is not configured, in which case booking imports are disabled.
func NewBookingFeed(cfg Config) (*BookingFeed, error) {
	if !cfg.IsBookingImportEnabled() {
		return nil, nil
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking feed client: %w", err)
	}

	timeout := cfg.GetStoreCallTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &BookingFeed{
		client:  client,
		bucket:  cfg.GetBookingBucket(),
		object:  cfg.GetBookingObject(),
		timeout: timeout,
	}, nil
}

// Tokens downloads the current export and returns the first column of every
// row. Malformed rows are skipped; a header row, if present, is treated like
// any other token and simply won't match a lead. Any failure of the stream
// itself aborts the read so a broken download surfaces instead of looping.
func (f *BookingFeed) Tokens(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	obj, err := f.client.GetObject(ctx, f.bucket, f.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking export: %w", err)
	}
	defer obj.Close()

	reader := csv.NewReader(obj)
	reader.FieldsPerRecord = -1

	tokens := make([]string, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read booking export: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		tokens = append(tokens, record[0])
	}

	return tokens, nil
}
