package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamecenter/nfl-data/internal/db"
)

// Postgres stores documents as JSONB rows in the documents table. All fixed
// statements are prepared on connect by package db.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps a connected pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Upsert(ctx context.Context, collection, key string, doc any) (bool, error) {
	body, err := encode(doc)
	if err != nil {
		return false, err
	}
	var created bool
	if err := p.pool.QueryRow(ctx, db.StmtDocUpsert, collection, key, body).Scan(&created); err != nil {
		return false, fmt.Errorf("upsert %s/%s: %w", collection, key, err)
	}
	return created, nil
}

func (p *Postgres) Get(ctx context.Context, collection, key string, out any) (bool, error) {
	var body []byte
	err := p.pool.QueryRow(ctx, db.StmtDocGet, collection, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return true, Document{Key: key, Body: body}.Decode(out)
}

var pathSegment = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// pathLiteral renders a JSON path as a text[] literal. Paths come from code,
// never from requests, but are still checked so they cannot break out of the
// literal.
func pathLiteral(path []string) (string, error) {
	for _, seg := range path {
		if !pathSegment.MatchString(seg) {
			return "", fmt.Errorf("invalid document path segment %q", seg)
		}
	}
	return "'{" + strings.Join(path, ",") + "}'", nil
}

// buildFind renders the filtered select for Find. Values are always bound as
// parameters.
func buildFind(collection string, q Query) (string, []any, error) {
	var sb strings.Builder
	args := []any{collection}
	sb.WriteString("SELECT key, doc FROM documents WHERE collection = $1 AND generation = current_generation($1)")

	for _, c := range q.Where {
		if len(c.Paths) == 0 {
			continue
		}
		args = append(args, c.Value)
		param := fmt.Sprintf("$%d", len(args))

		alts := make([]string, 0, len(c.Paths)+1)
		missing := make([]string, 0, len(c.Paths))
		for _, path := range c.Paths {
			lit, err := pathLiteral(path)
			if err != nil {
				return "", nil, err
			}
			missing = append(missing, fmt.Sprintf("doc #>> %s IS NULL", lit))
			if c.Fold {
				alts = append(alts, fmt.Sprintf("lower(doc #>> %s) = lower(%s)", lit, param))
			} else {
				alts = append(alts, fmt.Sprintf("doc #>> %s = %s", lit, param))
			}
		}
		if c.OrMissing {
			alts = append(alts, "("+strings.Join(missing, " AND ")+")")
		}
		sb.WriteString(" AND (")
		sb.WriteString(strings.Join(alts, " OR "))
		sb.WriteString(")")
	}

	sb.WriteString(" ORDER BY key")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	return sb.String(), args, nil
}

func (p *Postgres) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	sql, args, err := buildFind(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Key, &d.Body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) Count(ctx context.Context, collection string) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, db.StmtDocCount, collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (p *Postgres) Clear(ctx context.Context, collection string) (int, error) {
	tag, err := p.pool.Exec(ctx, db.StmtDocClear, collection)
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", collection, err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *Postgres) BeginGeneration(ctx context.Context, collection string) (Generation, error) {
	var id int64
	if err := p.pool.QueryRow(ctx, db.StmtGenNext).Scan(&id); err != nil {
		return nil, fmt.Errorf("allocate generation for %s: %w", collection, err)
	}
	return &pgGeneration{pool: p.pool, collection: collection, id: id}, nil
}

func (p *Postgres) PruneGenerations(ctx context.Context, olderThan time.Duration) (int, error) {
	tag, err := p.pool.Exec(ctx, db.StmtGenPrune, olderThan.Seconds())
	if err != nil {
		return 0, fmt.Errorf("prune generations: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	var n int
	return p.pool.QueryRow(ctx, db.StmtHealthCheck).Scan(&n)
}

// --------------------------------------------------------------------------
// Generations
// --------------------------------------------------------------------------

type pgGeneration struct {
	pool       *pgxpool.Pool
	collection string
	id         int64
	closed     bool
}

func (g *pgGeneration) ID() int64 { return g.id }

func (g *pgGeneration) Put(ctx context.Context, key string, doc any) error {
	if g.closed {
		return ErrGenerationClosed
	}
	body, err := encode(doc)
	if err != nil {
		return err
	}
	if _, err := g.pool.Exec(ctx, db.StmtGenPut, g.collection, g.id, key, body); err != nil {
		return fmt.Errorf("put %s/%s (generation %d): %w", g.collection, key, g.id, err)
	}
	return nil
}

func (g *pgGeneration) Written(ctx context.Context) (int, error) {
	var n int
	if err := g.pool.QueryRow(ctx, db.StmtGenWritten, g.collection, g.id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s generation %d: %w", g.collection, g.id, err)
	}
	return n, nil
}

// Commit carries forward and swaps inside one transaction, so readers see
// either the old generation or the complete new one.
func (g *pgGeneration) Commit(ctx context.Context, keep func(key string) bool) (int, error) {
	if g.closed {
		return 0, ErrGenerationClosed
	}

	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin commit of %s generation %d: %w", g.collection, g.id, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	rows, err := tx.Query(ctx, db.StmtGenUnwritten, g.collection, g.id)
	if err != nil {
		return 0, fmt.Errorf("list unwritten keys: %w", err)
	}
	var carry []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan unwritten key: %w", err)
		}
		if keep == nil || keep(key) {
			carry = append(carry, key)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("list unwritten keys: %w", err)
	}

	carried := 0
	if len(carry) > 0 {
		tag, err := tx.Exec(ctx, db.StmtGenCopy, g.collection, g.id, carry)
		if err != nil {
			return 0, fmt.Errorf("carry forward %d documents: %w", len(carry), err)
		}
		carried = int(tag.RowsAffected())
	}

	if _, err := tx.Exec(ctx, db.StmtGenSwap, g.collection, g.id); err != nil {
		return 0, fmt.Errorf("swap %s to generation %d: %w", g.collection, g.id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %s generation %d: %w", g.collection, g.id, err)
	}
	g.closed = true
	return carried, nil
}

func (g *pgGeneration) Abort(ctx context.Context) error {
	if g.closed {
		return nil
	}
	g.closed = true
	if _, err := g.pool.Exec(ctx, db.StmtGenAbort, g.collection, g.id); err != nil {
		return fmt.Errorf("abort %s generation %d: %w", g.collection, g.id, err)
	}
	return nil
}
