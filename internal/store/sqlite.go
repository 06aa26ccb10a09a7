package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/gravgor/landmark-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. JSON-valued
// columns (detail, image_paths, data_sources) are stored as TEXT.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS landmarks (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL UNIQUE,
	description       TEXT NOT NULL DEFAULT '',
	latitude          REAL NOT NULL DEFAULT 0,
	longitude         REAL NOT NULL DEFAULT 0,
	country           TEXT NOT NULL DEFAULT '',
	city              TEXT NOT NULL DEFAULT '',
	category          TEXT NOT NULL DEFAULT 'Unknown',
	image_paths       TEXT NOT NULL DEFAULT '[]',
	data_sources      TEXT NOT NULL DEFAULT '{}',
	validation_status INTEGER NOT NULL DEFAULT 0,
	detail            TEXT,
	last_updated      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_landmarks_category ON landmarks(category);
CREATE INDEX IF NOT EXISTS idx_landmarks_country ON landmarks(country);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteLandmarkColumns = `id, name, description, latitude, longitude, country, city, category,
	image_paths, data_sources, validation_status, detail, last_updated`

// UpsertLandmark inserts or replaces a landmark keyed by name.
func (s *SQLiteStore) UpsertLandmark(ctx context.Context, lm *model.Landmark) (*model.Landmark, error) {
	id := lm.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := lm.LastUpdated
	if now.IsZero() {
		now = time.Now().UTC()
	}

	imagesJSON, sourcesJSON, detailJSON, err := encodeLandmarkJSON(lm)
	if err != nil {
		return nil, err
	}

	var storedID string
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO landmarks (id, name, description, latitude, longitude, country, city, category, image_paths, data_sources, validation_status, detail, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET
			description = excluded.description, latitude = excluded.latitude, longitude = excluded.longitude,
			country = excluded.country, city = excluded.city, category = excluded.category,
			image_paths = excluded.image_paths, data_sources = excluded.data_sources,
			validation_status = excluded.validation_status, detail = excluded.detail, last_updated = excluded.last_updated
		 RETURNING id`,
		id, lm.Name, lm.Description, lm.Latitude, lm.Longitude, lm.Country, lm.City,
		lm.Category, imagesJSON, sourcesJSON, lm.ValidationStatus, detailJSON, now,
	).Scan(&storedID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert landmark %s", lm.Name)
	}

	stored := *lm
	stored.ID = storedID
	stored.LastUpdated = now
	return &stored, nil
}

func (s *SQLiteStore) GetLandmarkByName(ctx context.Context, name string) (*model.Landmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteLandmarkColumns+` FROM landmarks WHERE name = ?`, name)
	lm, err := scanSQLiteLandmark(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get landmark %s", name)
	}
	return lm, nil
}

func (s *SQLiteStore) GetLandmarkByID(ctx context.Context, id string) (*model.Landmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteLandmarkColumns+` FROM landmarks WHERE id = ?`, id)
	lm, err := scanSQLiteLandmark(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get landmark by id %s", id)
	}
	return lm, nil
}

func (s *SQLiteStore) ListLandmarks(ctx context.Context, filter ListFilter) ([]model.Landmark, int, error) {
	countQuery := `SELECT COUNT(*) FROM landmarks WHERE 1=1`
	query := `SELECT ` + sqliteLandmarkColumns + ` FROM landmarks WHERE 1=1`
	var clauses string
	var args []any

	if filter.Category != "" {
		clauses += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Country != "" {
		clauses += ` AND country = ?`
		args = append(args, filter.Country)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery+clauses, args...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: count landmarks")
	}

	query += clauses + ` ORDER BY name ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: list landmarks")
	}
	defer rows.Close()

	var landmarks []model.Landmark
	for rows.Next() {
		lm, err := scanSQLiteLandmark(rows)
		if err != nil {
			return nil, 0, eris.Wrap(err, "sqlite: scan landmark")
		}
		landmarks = append(landmarks, *lm)
	}
	return landmarks, total, eris.Wrap(rows.Err(), "sqlite: list landmarks iterate")
}

// SeedLandmarks upserts the scalar columns of each landmark one by one.
// SQLite has no COPY protocol, so the rows go through a single transaction.
func (s *SQLiteStore) SeedLandmarks(ctx context.Context, landmarks []model.Landmark) (int64, error) {
	if len(landmarks) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: seed begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	var n int64
	for _, lm := range landmarks {
		id := lm.ID
		if id == "" {
			id = uuid.New().String()
		}
		category := lm.Category
		if category == "" {
			category = model.CategoryUnknown
		}
		sourcesJSON, err := json.Marshal(lm.DataSources)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal data sources for %s", lm.Name)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO landmarks (id, name, description, latitude, longitude, country, city, category, data_sources, validation_status, last_updated)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (name) DO UPDATE SET
				description = excluded.description, latitude = excluded.latitude, longitude = excluded.longitude,
				country = excluded.country, city = excluded.city, category = excluded.category,
				data_sources = excluded.data_sources, validation_status = excluded.validation_status,
				last_updated = excluded.last_updated`,
			id, lm.Name, lm.Description, lm.Latitude, lm.Longitude, lm.Country, lm.City,
			category, string(sourcesJSON), lm.ValidationStatus, now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: seed landmark %s", lm.Name)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: seed commit")
	}
	return n, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, email, passwordHash, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, eris.Wrapf(err, "sqlite: insert user %s", email)
	}

	return &model.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get user %s", email)
	}
	return &u, nil
}

// helpers

func encodeLandmarkJSON(lm *model.Landmark) (images, sources string, detail any, err error) {
	imagesBytes, err := json.Marshal(lm.ImagePaths)
	if err != nil {
		return "", "", nil, eris.Wrap(err, "sqlite: marshal image paths")
	}
	if lm.ImagePaths == nil {
		imagesBytes = []byte("[]")
	}
	sourcesBytes, err := json.Marshal(lm.DataSources)
	if err != nil {
		return "", "", nil, eris.Wrap(err, "sqlite: marshal data sources")
	}
	if lm.DataSources == nil {
		sourcesBytes = []byte("{}")
	}
	if lm.Detail == nil {
		return string(imagesBytes), string(sourcesBytes), nil, nil
	}
	detailBytes, err := json.Marshal(lm.Detail)
	if err != nil {
		return "", "", nil, eris.Wrap(err, "sqlite: marshal detail")
	}
	return string(imagesBytes), string(sourcesBytes), string(detailBytes), nil
}

func scanSQLiteLandmark(row scannable) (*model.Landmark, error) {
	var lm model.Landmark
	var imagesJSON, sourcesJSON string
	var detailJSON sql.NullString

	err := row.Scan(
		&lm.ID, &lm.Name, &lm.Description, &lm.Latitude, &lm.Longitude,
		&lm.Country, &lm.City, &lm.Category, &imagesJSON, &sourcesJSON,
		&lm.ValidationStatus, &detailJSON, &lm.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	if imagesJSON != "" && imagesJSON != "[]" {
		if err := json.Unmarshal([]byte(imagesJSON), &lm.ImagePaths); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal image paths")
		}
	}
	if sourcesJSON != "" && sourcesJSON != "{}" {
		if err := json.Unmarshal([]byte(sourcesJSON), &lm.DataSources); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal data sources")
		}
	}
	if detailJSON.Valid && detailJSON.String != "" {
		lm.Detail = &model.LandmarkDetail{}
		if err := json.Unmarshal([]byte(detailJSON.String), lm.Detail); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal detail")
		}
	}
	return &lm, nil
}

// scannable covers both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}
