package statuses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nowstatus/internal/dbx"
	"github.com/dmitrijs2005/nowstatus/internal/server/migrations"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepository keeps one row per segment in the statuses table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres opens a pgx-backed *sql.DB and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Save upserts the whole row in one transaction.
func (r *PostgresRepository) Save(ctx context.Context, seg models.Segment, st models.Status) error {
	if err := checkSegment(seg); err != nil {
		return err
	}

	query := `
		INSERT INTO statuses (segment, title, text, image, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (segment)
		DO UPDATE SET
			title = EXCLUDED.title,
			text = EXCLUDED.text,
			image = EXCLUDED.image,
			updated_at = EXCLUDED.updated_at;
	`

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, query, string(seg), st.Title, st.Text, st.Image)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected error: %w", err)
		}
		if n != 1 {
			return fmt.Errorf("unexpected rows affected: %d", n)
		}
		return nil
	})
	if err != nil {
		return storageError("save", seg, err)
	}
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context, seg models.Segment) (models.Status, error) {
	if err := checkSegment(seg); err != nil {
		return models.Status{}, err
	}

	query := `SELECT title, text, image FROM statuses WHERE segment=$1`

	var st models.Status
	err := r.db.QueryRowContext(ctx, query, string(seg)).Scan(&st.Title, &st.Text, &st.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Status{}, nil
	}
	if err != nil {
		return models.Status{}, storageError("load", seg, err)
	}
	return st, nil
}
