package statuses

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dmitrijs2005/nowstatus/internal/logging"
	"github.com/dmitrijs2005/nowstatus/internal/server/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the backend selected by cfg.StorageBackend, wrapped with
// Locked. The returned Closer releases backend resources.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (Repository, io.Closer, error) {
	var (
		repo   Repository
		closer io.Closer = nopCloser{}
	)

	switch cfg.StorageBackend {
	case config.BackendFS:
		r, err := NewFileRepository(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		repo = r

	case config.BackendMemory:
		repo = NewMemoryRepository()

	case config.BackendPostgres:
		db, err := OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		repo, closer = NewPostgresRepository(db), db

	case config.BackendBadger:
		r, err := NewBadgerRepository(filepath.Join(cfg.DataDir, "badger"), logger)
		if err != nil {
			return nil, nil, err
		}
		repo, closer = r, r

	case config.BackendS3:
		client, err := NewS3Client(ctx, S3Options{
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		repo = NewS3Repository(client, cfg.S3Bucket, cfg.S3Prefix)

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	logger.Info(ctx, "storage opened", "backend", cfg.StorageBackend)
	return Locked(repo), closer, nil
}
