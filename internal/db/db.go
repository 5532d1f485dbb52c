// Package db provides a pgxpool-based connection pool with prepared statement
// registration, embedded schema migrations and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamecenter/nfl-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool. The schema must already
// exist (see Migrate): statements are prepared on every new connection.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// Statement names shared with the document store.
const (
	StmtHealthCheck  = "health_check"
	StmtDocUpsert    = "doc_upsert"
	StmtDocGet       = "doc_get"
	StmtDocCount     = "doc_count"
	StmtDocClear     = "doc_clear"
	StmtGenNext      = "gen_next"
	StmtGenPut       = "gen_put"
	StmtGenWritten   = "gen_written"
	StmtGenUnwritten = "gen_unwritten_keys"
	StmtGenCopy      = "gen_copy_keys"
	StmtGenSwap      = "gen_swap"
	StmtGenAbort     = "gen_abort"
	StmtGenPrune     = "gen_prune"
)

// registerPreparedStatements registers every statement the document store
// uses. Filtered finds are built per call and are not prepared.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		StmtHealthCheck: "SELECT 1",

		// Current generation
		StmtDocUpsert: `
			INSERT INTO documents (collection, generation, key, doc)
			VALUES ($1, current_generation($1), $2, $3)
			ON CONFLICT (collection, generation, key) DO UPDATE SET
				doc = EXCLUDED.doc,
				updated_at = NOW()
			RETURNING (xmax = 0)`,
		StmtDocGet: `
			SELECT doc FROM documents
			WHERE collection = $1 AND generation = current_generation($1) AND key = $2`,
		StmtDocCount: `
			SELECT COUNT(*) FROM documents
			WHERE collection = $1 AND generation = current_generation($1)`,
		StmtDocClear: `
			DELETE FROM documents
			WHERE collection = $1 AND generation = current_generation($1)`,

		// Generations
		StmtGenNext: "SELECT nextval('document_generation_seq')",
		StmtGenPut: `
			INSERT INTO documents (collection, generation, key, doc)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (collection, generation, key) DO UPDATE SET
				doc = EXCLUDED.doc,
				updated_at = NOW()`,
		StmtGenWritten: `
			SELECT COUNT(*) FROM documents WHERE collection = $1 AND generation = $2`,
		StmtGenUnwritten: `
			SELECT cur.key FROM documents cur
			WHERE cur.collection = $1
			  AND cur.generation = current_generation($1)
			  AND NOT EXISTS (
				SELECT 1 FROM documents nxt
				WHERE nxt.collection = $1 AND nxt.generation = $2 AND nxt.key = cur.key
			  )`,
		StmtGenCopy: `
			INSERT INTO documents (collection, generation, key, doc, created_at, updated_at)
			SELECT collection, $2, key, doc, created_at, updated_at FROM documents
			WHERE collection = $1 AND generation = current_generation($1) AND key = ANY($3)
			ON CONFLICT (collection, generation, key) DO NOTHING`,
		StmtGenSwap: `
			INSERT INTO collection_generations (collection, generation, previous_generation, swapped_at)
			VALUES ($1, $2, 0, NOW())
			ON CONFLICT (collection) DO UPDATE SET
				previous_generation = collection_generations.generation,
				generation = EXCLUDED.generation,
				swapped_at = NOW()`,
		StmtGenAbort: `
			DELETE FROM documents WHERE collection = $1 AND generation = $2`,
		StmtGenPrune: `
			DELETE FROM documents
			WHERE generation <> current_generation(collection)
			  AND updated_at < NOW() - make_interval(secs => $1)`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
