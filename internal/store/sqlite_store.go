package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"partsmcp/internal/model"
)

var requiredTables = []string{"categories", "manufacturers", "components"}

// SQLiteStore reads a jlcparts catalog database. The handle is opened
// read-only with a single connection, so overlapping calls serialize.
type SQLiteStore struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Open opens the catalog and checks that the expected tables exist.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	st := NewSQLiteStore(path)
	if err := st.Init(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}
	if strings.TrimSpace(s.path) == "" {
		return errors.New("catalog path is empty")
	}

	db, err := sql.Open("sqlite", readOnlyDSN(s.path))
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("open catalog %s: %w", s.path, err)
	}
	if err := checkTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("open catalog %s: %w", s.path, err)
	}

	s.db = db
	return nil
}

// readOnlyDSN builds a file: URI for path. The path is percent-encoded so
// '?' and '#' in a file name cannot cut off the query. The empty authority
// is omitted so relative paths stay relative.
func readOnlyDSN(path string) string {
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		OmitHost: true,
		RawQuery: "mode=ro&_pragma=busy_timeout(5000)",
	}
	return u.String()
}

func checkTables(ctx context.Context, db *sql.DB) error {
	for _, table := range requiredTables {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("missing table %q", table)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.queryCategories(ctx, `SELECT id, category, subcategory FROM categories`)
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return model.Category{}, err
	}

	c := model.Category{ID: id}
	err = db.QueryRowContext(ctx,
		`SELECT category, subcategory FROM categories WHERE id = ?`, id,
	).Scan(&c.Category, &c.Subcategory)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, model.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// SearchSubcategories matches name as a substring of the subcategory.
func (s *SQLiteStore) SearchSubcategories(ctx context.Context, name string) ([]model.Category, error) {
	return s.queryCategories(ctx,
		`SELECT id, category, subcategory FROM categories WHERE subcategory LIKE ?`,
		"%"+name+"%",
	)
}

func (s *SQLiteStore) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Category, 0, 64)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Category, &c.Subcategory); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	return s.queryManufacturers(ctx, `SELECT id, name FROM manufacturers`)
}

func (s *SQLiteStore) GetManufacturer(ctx context.Context, id int64) (model.Manufacturer, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return model.Manufacturer{}, err
	}

	m := model.Manufacturer{ID: id}
	err = db.QueryRowContext(ctx, `SELECT name FROM manufacturers WHERE id = ?`, id).Scan(&m.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Manufacturer{}, model.ErrNotFound
	}
	if err != nil {
		return model.Manufacturer{}, err
	}
	return m, nil
}

// SearchManufacturers matches name as a substring of the manufacturer name.
func (s *SQLiteStore) SearchManufacturers(ctx context.Context, name string) ([]model.Manufacturer, error) {
	return s.queryManufacturers(ctx,
		`SELECT id, name FROM manufacturers WHERE name LIKE ?`,
		"%"+name+"%",
	)
}

func (s *SQLiteStore) queryManufacturers(ctx context.Context, query string, args ...any) ([]model.Manufacturer, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Manufacturer, 0, 64)
	for rows.Next() {
		var m model.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetDatasheetURL returns ErrNotFound when the part is unknown or has no
// datasheet recorded.
func (s *SQLiteStore) GetDatasheetURL(ctx context.Context, lcsc int64) (string, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return "", err
	}

	var url sql.NullString
	err = db.QueryRowContext(ctx, `SELECT datasheet FROM components WHERE lcsc = ?`, lcsc).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", model.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if !url.Valid || strings.TrimSpace(url.String) == "" {
		return "", model.ErrNotFound
	}
	return url.String, nil
}

func (s *SQLiteStore) GetComponentExtra(ctx context.Context, lcsc int64) (model.RawJSON, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return model.RawJSON{}, err
	}

	var extra sql.NullString
	err = db.QueryRowContext(ctx, `SELECT extra FROM components WHERE lcsc = ?`, lcsc).Scan(&extra)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RawJSON{}, model.ErrNotFound
	}
	if err != nil {
		return model.RawJSON{}, err
	}
	return model.RawJSON{Text: extra.String, Valid: extra.Valid}, nil
}

// SearchComponents runs the composed search. There is no row cap: empty
// criteria return the whole table.
func (s *SQLiteStore) SearchComponents(ctx context.Context, criteria model.SearchCriteria) ([]model.Component, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	query, args := componentSearchSQL(criteria)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Component, 0, 32)
	for rows.Next() {
		var (
			c                model.Component
			basic, preferred int64
			price, extra     sql.NullString
		)
		if err := rows.Scan(
			&c.LCSC,
			&c.CategoryID,
			&c.ManufacturerID,
			&c.MFR,
			&basic,
			&preferred,
			&c.Description,
			&c.Package,
			&c.Stock,
			&price,
			&extra,
		); err != nil {
			return nil, err
		}
		c.Basic = basic != 0
		c.Preferred = preferred != 0
		c.Price = model.RawJSON{Text: price.String, Valid: price.Valid}
		c.Extra = model.RawJSON{Text: extra.String, Valid: extra.Valid}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) ensureDB(ctx context.Context) (*sql.DB, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("sqlite db not initialized")
	}
	return s.db, nil
}

var _ model.Catalog = (*SQLiteStore)(nil)
