// Package migrate applies the embedded goose migrations.
package migrate

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/and161185/foodgram/migrations"
)

// Up applies all pending migrations and logs each applied version.
func Up(ctx context.Context, dsn string, log *zap.Logger) error {
	return withProvider(dsn, func(p *goose.Provider) error {
		res, err := p.Up(ctx)
		for _, r := range res {
			log.Info("migration applied",
				zap.Int64("version", r.Source.Version),
				zap.String("file", r.Source.Path),
				zap.Duration("dur", r.Duration),
			)
		}
		return err
	})
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, dsn string, log *zap.Logger) error {
	return withProvider(dsn, func(p *goose.Provider) error {
		r, err := p.Down(ctx)
		if err != nil {
			return err
		}
		log.Info("migration rolled back", zap.Int64("version", r.Source.Version))
		return nil
	})
}

func withProvider(dsn string, fn func(p *goose.Provider) error) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	return fn(p)
}
