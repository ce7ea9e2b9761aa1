// Package sql is a database/sql storage backend for SQLite and PostgreSQL.
package sql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Config selects the driver and data source
type Config struct {
	Driver string // DriverSQLite or DriverPostgres
	DSN    string
}

// Storage is a SQL-backed implementation of the storage interface
type Storage struct {
	db     *sql.DB
	driver string
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open connects to the database and applies pending migrations
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// One writer at a time; SQLite serializes writes anyway
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Storage{db: db, driver: cfg.Driver}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// migrate applies embedded migrations in lexical order, recording each in _migrations
func (s *Storage) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		var applied int
		err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM _migrations WHERE name = ?`), name).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied > 0 {
			continue
		}

		body, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		err = s.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(body)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, s.q(`INSERT INTO _migrations (name) VALUES (?)`), name)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Storage) q(query string) string {
	return rebind(s.driver, query)
}

func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func toNanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// Player operations

const playerColumns = `id, username, display_name, is_guest, is_bot, bot_strategy, created_at`

func scanPlayer(row interface{ Scan(...any) error }) (*model.Player, error) {
	var (
		p         model.Player
		createdAt int64
	)
	err := row.Scan(&p.ID, &p.Username, &p.DisplayName, &p.IsGuest, &p.IsBot, &p.BotStrategy, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	p.CreatedAt = fromNanos(createdAt)
	return &p, nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO players (`+playerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			display_name = excluded.display_name,
			is_guest = excluded.is_guest,
			is_bot = excluded.is_bot,
			bot_strategy = excluded.bot_strategy`),
		player.ID, player.Username, player.DisplayName, player.IsGuest, player.IsBot,
		player.BotStrategy, toNanos(player.CreatedAt))
	if isUniqueViolation(err) {
		return model.ErrUsernameTaken
	}
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+playerColumns+` FROM players WHERE id = ?`), id)
	return scanPlayer(row)
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+playerColumns+` FROM players WHERE username = ?`), username)
	return scanPlayer(row)
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM registered_players WHERE player_id = ?`), id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, s.q(`DELETE FROM players WHERE id = ?`), id)
		return err
	})
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO registered_players (player_id, username, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			password_hash = excluded.password_hash,
			updated_at = excluded.updated_at`),
		rp.PlayerID, rp.Username, rp.PasswordHash, toNanos(rp.CreatedAt), toNanos(rp.UpdatedAt))
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	var (
		rp                   model.RegisteredPlayer
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT player_id, username, password_hash, created_at, updated_at
		FROM registered_players WHERE player_id = ?`), playerID).
		Scan(&rp.PlayerID, &rp.Username, &rp.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	rp.CreatedAt = fromNanos(createdAt)
	rp.UpdatedAt = fromNanos(updatedAt)
	return &rp, nil
}
