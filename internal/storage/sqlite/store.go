// Package sqlite provides a SQLite-backed save and demo store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Garsondee/soldier-campaign/internal/storage"
	"github.com/Garsondee/soldier-campaign/internal/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists save slots and demos in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var (
	_ storage.SaveStore = (*Store)(nil)
	_ storage.DemoStore = (*Store)(nil)
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// PutSave writes save, replacing any slot with the same name.
func (s *Store) PutSave(ctx context.Context, save storage.Save) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	name := strings.TrimSpace(save.Name)
	if name == "" {
		return fmt.Errorf("save name is required")
	}
	if len(save.Data) == 0 {
		return fmt.Errorf("save data is required")
	}
	updatedAt := save.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO saves (
		   name,
		   campaign,
		   mission_number,
		   mission_phase,
		   version,
		   data,
		   updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   campaign = excluded.campaign,
		   mission_number = excluded.mission_number,
		   mission_phase = excluded.mission_phase,
		   version = excluded.version,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		name,
		save.Campaign,
		save.MissionNumber,
		save.MissionPhase,
		save.Version,
		save.Data,
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put save: %w", err)
	}
	return nil
}

// GetSave returns one save slot by name.
func (s *Store) GetSave(ctx context.Context, name string) (storage.Save, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Save{}, err
	}
	var (
		save      storage.Save
		updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT name, campaign, mission_number, mission_phase, version, data, updated_at
		 FROM saves WHERE name = ?`,
		strings.TrimSpace(name),
	).Scan(&save.Name, &save.Campaign, &save.MissionNumber, &save.MissionPhase, &save.Version, &save.Data, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Save{}, storage.ErrNotFound
		}
		return storage.Save{}, fmt.Errorf("get save: %w", err)
	}
	save.UpdatedAt = fromMillis(updatedAt)
	return save, nil
}

// ListSaves returns every slot, most recently written first. Data is left
// empty; load a slot with GetSave.
func (s *Store) ListSaves(ctx context.Context) ([]storage.Save, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT name, campaign, mission_number, mission_phase, version, updated_at
		 FROM saves ORDER BY updated_at DESC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var saves []storage.Save
	for rows.Next() {
		var (
			save      storage.Save
			updatedAt int64
		)
		if err := rows.Scan(&save.Name, &save.Campaign, &save.MissionNumber, &save.MissionPhase, &save.Version, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		save.UpdatedAt = fromMillis(updatedAt)
		saves = append(saves, save)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saves: %w", err)
	}
	return saves, nil
}

// PutDemo stores a new demo. Names are unique; storing a second demo under a
// taken name returns storage.ErrAlreadyExists.
func (s *Store) PutDemo(ctx context.Context, demo storage.Demo) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	name := strings.TrimSpace(demo.Name)
	if name == "" {
		return fmt.Errorf("demo name is required")
	}
	if len(demo.Data) == 0 {
		return fmt.Errorf("demo data is required")
	}
	createdAt := demo.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO demos (name, campaign, ticks, events, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name,
		demo.Campaign,
		int64(demo.Ticks),
		demo.Events,
		demo.Data,
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put demo: %w", err)
	}
	return nil
}

// GetDemo returns one demo by name.
func (s *Store) GetDemo(ctx context.Context, name string) (storage.Demo, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Demo{}, err
	}
	var (
		demo      storage.Demo
		ticks     int64
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT name, campaign, ticks, events, data, created_at FROM demos WHERE name = ?`,
		strings.TrimSpace(name),
	).Scan(&demo.Name, &demo.Campaign, &ticks, &demo.Events, &demo.Data, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Demo{}, storage.ErrNotFound
		}
		return storage.Demo{}, fmt.Errorf("get demo: %w", err)
	}
	demo.Ticks = uint32(ticks)
	demo.CreatedAt = fromMillis(createdAt)
	return demo, nil
}

// ListDemos returns every demo, oldest first, without data.
func (s *Store) ListDemos(ctx context.Context) ([]storage.Demo, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT name, campaign, ticks, events, created_at FROM demos ORDER BY created_at ASC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list demos: %w", err)
	}
	defer rows.Close()

	var demos []storage.Demo
	for rows.Next() {
		var (
			demo      storage.Demo
			ticks     int64
			createdAt int64
		)
		if err := rows.Scan(&demo.Name, &demo.Campaign, &ticks, &demo.Events, &createdAt); err != nil {
			return nil, fmt.Errorf("scan demo: %w", err)
		}
		demo.Ticks = uint32(ticks)
		demo.CreatedAt = fromMillis(createdAt)
		demos = append(demos, demo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate demos: %w", err)
	}
	return demos, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
