package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forPelevin/vidarticle/internal/ports"
	"github.com/forPelevin/vidarticle/internal/types"
)

const table = "article_archive"

const schema = `CREATE TABLE IF NOT EXISTS article_archive (
	source_url TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	article    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store archives generated articles keyed by source URL.
type Store struct {
	pool *pgxpool.Pool
}

var _ ports.ArticleStore = (*Store)(nil)

// Open connects, pings and makes sure the archive table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create %s: %w", table, err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Save upserts the article snapshot.
func (s *Store) Save(ctx context.Context, sourceURL string, a types.Article) error {
	if s == nil || s.pool == nil {
		return nil
	}
	query, args, err := upsertQuery(sourceURL, a)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sourceURL string) (types.Article, bool, error) {
	if s == nil || s.pool == nil {
		return types.Article{}, false, nil
	}
	query, args, err := selectQuery(sourceURL)
	if err != nil {
		return types.Article{}, false, err
	}
	var raw []byte
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Article{}, false, nil
		}
		return types.Article{}, false, fmt.Errorf("select article: %w", err)
	}
	var a types.Article
	if err := json.Unmarshal(raw, &a); err != nil {
		return types.Article{}, false, fmt.Errorf("decode archived article: %w", err)
	}
	return a, true, nil
}

func upsertQuery(sourceURL string, a types.Article) (string, []any, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return "", nil, fmt.Errorf("marshal article: %w", err)
	}
	query, args, err := psql.Insert(table).
		Columns("source_url", "title", "article").
		Values(sourceURL, a.Title, string(body)).
		Suffix(`ON CONFLICT (source_url) DO UPDATE
              SET title = EXCLUDED.title,
                  article = EXCLUDED.article,
                  updated_at = NOW()`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert: %w", err)
	}
	return query, args, nil
}

func selectQuery(sourceURL string) (string, []any, error) {
	query, args, err := psql.Select("article").
		From(table).
		Where(sq.Eq{"source_url": sourceURL}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build select: %w", err)
	}
	return query, args, nil
}
