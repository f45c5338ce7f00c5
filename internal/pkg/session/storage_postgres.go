package session

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Querier is the subset of pgxpool.Pool used by the Postgres backend.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresBackend persists session state in the client_storage table so sessions survive
// restarts and are shared between replicas.
type PostgresBackend struct {
	db     Querier
	logger *zap.Logger
}

func NewPostgresBackend(db Querier, logger *zap.Logger) *PostgresBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresBackend{db: db, logger: logger}
}

func (b *PostgresBackend) Scope(id uuid.UUID) Storage {
	return &postgresStorage{backend: b, sessionID: id}
}

type postgresStorage struct {
	backend   *PostgresBackend
	sessionID uuid.UUID
}

func (p *postgresStorage) where(key string) sq.And {
	return sq.And{sq.Eq{"session_id": p.sessionID}, sq.Eq{"key": key}}
}

func (p *postgresStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	query, args, err := psql.Select("value").From("client_storage").Where(p.where(key)).ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build select: %w", err)
	}

	var value string
	err = p.backend.db.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		p.backend.logger.Error("Failed to read client storage",
			zap.String("session_id", p.sessionID.String()),
			zap.String("key", key),
			zap.Error(err))
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

func (p *postgresStorage) SetItem(ctx context.Context, key, value string) error {
	query, args, err := psql.Insert("client_storage").
		Columns("session_id", "key", "value", "updated_at").
		Values(p.sessionID, key, value, sq.Expr("now()")).
		Suffix("ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := p.backend.db.Exec(ctx, query, args...); err != nil {
		p.backend.logger.Error("Failed to write client storage",
			zap.String("session_id", p.sessionID.String()),
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (p *postgresStorage) RemoveItem(ctx context.Context, key string) error {
	query, args, err := psql.Delete("client_storage").Where(p.where(key)).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := p.backend.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
