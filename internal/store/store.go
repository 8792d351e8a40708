// Package store persists page configs and owner plans in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fourohfour/monetizer/internal/analytics"
	apperrors "github.com/fourohfour/monetizer/internal/errors"
	"github.com/fourohfour/monetizer/internal/page"
)

// ErrNotFound matches every lookup miss via errors.Is.
var ErrNotFound = apperrors.NewNotFoundError(apperrors.ErrCodePageNotFound, "page not found")

// Summary is one row of List.
type Summary struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	Title     string    `json:"title" yaml:"title"`
	Status    string    `json:"status" yaml:"status"`
	Theme     string    `json:"theme" yaml:"theme"`
	Features  int       `json:"features" yaml:"features"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store wraps the SQLite connection.
type Store struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens (or creates) the database at path and migrates it. ":memory:"
// opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, apperrors.NewIOError(apperrors.ErrCodeStoreFailed, "create db directory", err).WithFile(path)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, apperrors.NewIOError(apperrors.ErrCodeStoreFailed, "open sqlite", err).WithFile(path)
	}
	// one writer; also keeps :memory: on a single database
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, apperrors.NewIOError(apperrors.ErrCodeStoreFailed, "migrate", err).WithFile(path)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			config_json TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_user ON pages(user_id)`,
		`CREATE TABLE IF NOT EXISTS owners (
			user_id TEXT PRIMARY KEY,
			plan TEXT NOT NULL DEFAULT 'free',
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %s: %w", strings.Join(strings.Fields(m)[:5], " "), err)
		}
	}
	return nil
}

// Create inserts a new page. An empty ID is replaced by a new UUID and the
// stored config is defaulted. The stored config is returned.
func (s *Store) Create(ctx context.Context, cfg *page.Config) (*page.Config, error) {
	c := cfg.Clone()
	if strings.TrimSpace(c.ID) == "" {
		c.ID = uuid.New().String()
	}
	page.ApplyDefaults(c)

	data, err := page.Encode(c)
	if err != nil {
		return nil, apperrors.WrapStore(err, "encode page", c.ID)
	}

	now := s.now()
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO pages (id, user_id, title, status, config_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, c.Status, string(data), now, now,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidPage, "page already exists").WithPage(c.ID)
		}
		return nil, apperrors.WrapStore(err, "create page", c.ID)
	}
	return c, nil
}

// Save inserts or replaces a page by ID.
func (s *Store) Save(ctx context.Context, cfg *page.Config) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidPage, "page id is required")
	}
	c := cfg.Clone()
	page.ApplyDefaults(c)

	data, err := page.Encode(c)
	if err != nil {
		return apperrors.WrapStore(err, "encode page", c.ID)
	}

	now := s.now()
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO pages (id, user_id, title, status, config_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			title = excluded.title,
			status = excluded.status,
			config_json = excluded.config_json,
			updated_at = excluded.updated_at`,
		c.ID, c.UserID, c.Title, c.Status, string(data), now, now,
	)
	if err != nil {
		return apperrors.WrapStore(err, "save page", c.ID)
	}
	return nil
}

// Get loads a page by ID.
func (s *Store) Get(ctx context.Context, id string) (*page.Config, error) {
	var data string
	err := s.conn.QueryRowContext(ctx, `SELECT config_json FROM pages WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrPageNotFound(id)
	}
	if err != nil {
		return nil, apperrors.WrapStore(err, "get page", id)
	}

	cfg, _, err := page.Decode([]byte(data))
	if err != nil {
		return nil, apperrors.WrapStore(err, "decode stored page", id)
	}
	cfg.ID = id
	return cfg, nil
}

// List returns every page, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, config_json, updated_at FROM pages ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, apperrors.WrapStore(err, "list pages", "")
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			id, data string
			updated  time.Time
		)
		if err := rows.Scan(&id, &data, &updated); err != nil {
			return nil, apperrors.WrapStore(err, "scan page", "")
		}
		cfg, _, err := page.Decode([]byte(data))
		if err != nil {
			return nil, apperrors.WrapStore(err, "decode stored page", id)
		}
		out = append(out, Summary{
			ID:        id,
			UserID:    cfg.UserID,
			Title:     cfg.Title,
			Status:    cfg.Status,
			Theme:     cfg.Theme,
			Features:  len(cfg.Features.Enabled()),
			UpdatedAt: updated.UTC(),
		})
	}
	return out, rows.Err()
}

// Delete removes a page.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return apperrors.WrapStore(err, "delete page", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrPageNotFound(id)
	}
	return nil
}

// SetPlan records the subscription plan of an owner.
func (s *Store) SetPlan(ctx context.Context, userID string, plan analytics.Plan) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "user id is required")
	}
	p, err := analytics.ParsePlan(string(plan))
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO owners (user_id, plan, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET plan = excluded.plan, updated_at = excluded.updated_at`,
		userID, string(p), s.now(),
	)
	if err != nil {
		return apperrors.WrapStore(err, "set plan", "").WithContext("user_id", userID)
	}
	return nil
}

// PlanFor returns the plan of an owner. Unknown owners are on the free
// plan.
func (s *Store) PlanFor(ctx context.Context, userID string) (analytics.Plan, error) {
	var plan string
	err := s.conn.QueryRowContext(ctx, `SELECT plan FROM owners WHERE user_id = ?`, userID).Scan(&plan)
	if errors.Is(err, sql.ErrNoRows) {
		return analytics.PlanFree, nil
	}
	if err != nil {
		return "", apperrors.WrapStore(err, "get plan", "").WithContext("user_id", userID)
	}
	p, err := analytics.ParsePlan(plan)
	if err != nil {
		return analytics.PlanFree, nil
	}
	return p, nil
}
