package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/gravgor/landmark-cli/internal/db"
	"github.com/gravgor/landmark-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const upsertLandmarkSQL = `INSERT INTO landmarks
	(id, name, description, latitude, longitude, country, city, category, data_sources, validation_status, detail, last_updated)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (name) DO UPDATE SET
		description = $3, latitude = $4, longitude = $5, country = $6, city = $7,
		category = $8, data_sources = $9, validation_status = $10, detail = $11, last_updated = $12
	RETURNING id`

const landmarkColumns = `id, name, description, latitude, longitude, country, city, category,
	data_sources, validation_status, detail, last_updated,
	(SELECT COALESCE(json_agg(i.path ORDER BY i.position), '[]')
	 FROM landmark_images i WHERE i.landmark_id = landmarks.id) AS image_paths`

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"upsert_landmark":      upsertLandmarkSQL,
	"get_landmark_by_name": `SELECT ` + landmarkColumns + ` FROM landmarks WHERE name = $1`,
	"get_landmark_by_id":   `SELECT ` + landmarkColumns + ` FROM landmarks WHERE id = $1`,
	"delete_images":        `DELETE FROM landmark_images WHERE landmark_id = $1`,
	"insert_user":          `INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
	"get_user_by_email":    `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for use by subsystems that
// need direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS landmarks (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name              TEXT NOT NULL UNIQUE,
	description       TEXT NOT NULL DEFAULT '',
	latitude          DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude         DOUBLE PRECISION NOT NULL DEFAULT 0,
	country           TEXT NOT NULL DEFAULT '',
	city              TEXT NOT NULL DEFAULT '',
	category          TEXT NOT NULL DEFAULT 'Unknown',
	data_sources      JSONB NOT NULL DEFAULT '{}',
	validation_status BOOLEAN NOT NULL DEFAULT false,
	detail            JSONB,
	last_updated      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_landmarks_category ON landmarks(category);
CREATE INDEX IF NOT EXISTS idx_landmarks_country ON landmarks(country);

CREATE TABLE IF NOT EXISTS landmark_images (
	landmark_id TEXT NOT NULL REFERENCES landmarks(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	path        TEXT NOT NULL,
	PRIMARY KEY (landmark_id, position)
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// UpsertLandmark inserts or replaces a landmark keyed by name. Image
// rows are replaced wholesale so the incoming order is preserved.
func (s *PostgresStore) UpsertLandmark(ctx context.Context, lm *model.Landmark) (*model.Landmark, error) {
	id := lm.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := lm.LastUpdated
	if now.IsZero() {
		now = time.Now().UTC()
	}

	sourcesJSON, err := json.Marshal(lm.DataSources)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal data sources")
	}

	var detailJSON []byte
	if lm.Detail != nil {
		detailJSON, err = json.Marshal(lm.Detail)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal detail")
		}
	}

	var storedID string
	err = s.pool.QueryRow(ctx, upsertLandmarkSQL,
		id, lm.Name, lm.Description, lm.Latitude, lm.Longitude,
		lm.Country, lm.City, lm.Category, sourcesJSON, lm.ValidationStatus,
		detailJSON, now,
	).Scan(&storedID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert landmark %s", lm.Name)
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM landmark_images WHERE landmark_id = $1`, storedID); err != nil {
		return nil, eris.Wrapf(err, "postgres: clear images for %s", lm.Name)
	}
	if len(lm.ImagePaths) > 0 {
		rows := make([][]any, 0, len(lm.ImagePaths))
		for i, path := range lm.ImagePaths {
			rows = append(rows, []any{storedID, i, path})
		}
		if _, err := db.CopyFrom(ctx, s.pool, "landmark_images", []string{"landmark_id", "position", "path"}, rows); err != nil {
			return nil, eris.Wrapf(err, "postgres: copy images for %s", lm.Name)
		}
	}

	stored := *lm
	stored.ID = storedID
	stored.LastUpdated = now
	return &stored, nil
}

func (s *PostgresStore) GetLandmarkByName(ctx context.Context, name string) (*model.Landmark, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+landmarkColumns+` FROM landmarks WHERE name = $1`, name)
	lm, err := scanLandmarkRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get landmark %s", name)
	}
	return lm, nil
}

func (s *PostgresStore) GetLandmarkByID(ctx context.Context, id string) (*model.Landmark, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+landmarkColumns+` FROM landmarks WHERE id = $1`, id)
	lm, err := scanLandmarkRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get landmark by id %s", id)
	}
	return lm, nil
}

func (s *PostgresStore) ListLandmarks(ctx context.Context, filter ListFilter) ([]model.Landmark, int, error) {
	query := `SELECT ` + landmarkColumns + `, COUNT(*) OVER() AS total FROM landmarks WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.Country != "" {
		query += fmt.Sprintf(` AND country = $%d`, argIdx)
		args = append(args, filter.Country)
		argIdx++
	}
	query += ` ORDER BY name ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "postgres: list landmarks")
	}
	defer rows.Close()

	var landmarks []model.Landmark
	var total int
	for rows.Next() {
		lm, rowTotal, err := scanLandmarkWithTotal(rows)
		if err != nil {
			return nil, 0, eris.Wrap(err, "postgres: scan landmark")
		}
		total = rowTotal
		landmarks = append(landmarks, *lm)
	}
	return landmarks, total, eris.Wrap(rows.Err(), "postgres: list landmarks iterate")
}

// SeedLandmarks bulk-upserts landmarks keyed by name. Only the scalar
// columns are written; detail and images come from later aggregation.
func (s *PostgresStore) SeedLandmarks(ctx context.Context, landmarks []model.Landmark) (int64, error) {
	if len(landmarks) == 0 {
		return 0, nil
	}

	cols := []string{"id", "name", "description", "latitude", "longitude", "country", "city", "category", "data_sources", "validation_status", "last_updated"}
	rows := make([][]any, 0, len(landmarks))
	now := time.Now().UTC()
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
			return 0, eris.Wrapf(err, "postgres: marshal data sources for %s", lm.Name)
		}
		rows = append(rows, []any{
			id, lm.Name, lm.Description, lm.Latitude, lm.Longitude,
			lm.Country, lm.City, category, sourcesJSON, lm.ValidationStatus, now,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "landmarks",
		Columns:      cols,
		ConflictKeys: []string{"name"},
		// Keep the existing row id stable across reseeds.
		UpdateCols: []string{"description", "latitude", "longitude", "country", "city", "category", "data_sources", "validation_status", "last_updated"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: seed landmarks")
	}
	return n, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, name, email, passwordHash, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, eris.Wrapf(err, "postgres: insert user %s", email)
	}

	return &model.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get user %s", email)
	}
	return &u, nil
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLandmarkRow(row rowScanner) (*model.Landmark, error) {
	var lm model.Landmark
	var sourcesJSON, imagesJSON []byte
	var detailNull *[]byte

	err := row.Scan(
		&lm.ID, &lm.Name, &lm.Description, &lm.Latitude, &lm.Longitude,
		&lm.Country, &lm.City, &lm.Category, &sourcesJSON, &lm.ValidationStatus,
		&detailNull, &lm.LastUpdated, &imagesJSON,
	)
	if err != nil {
		return nil, err
	}
	return decodeLandmark(&lm, sourcesJSON, imagesJSON, detailNull)
}

func scanLandmarkWithTotal(row rowScanner) (*model.Landmark, int, error) {
	var lm model.Landmark
	var sourcesJSON, imagesJSON []byte
	var detailNull *[]byte
	var total int

	err := row.Scan(
		&lm.ID, &lm.Name, &lm.Description, &lm.Latitude, &lm.Longitude,
		&lm.Country, &lm.City, &lm.Category, &sourcesJSON, &lm.ValidationStatus,
		&detailNull, &lm.LastUpdated, &imagesJSON, &total,
	)
	if err != nil {
		return nil, 0, err
	}
	decoded, err := decodeLandmark(&lm, sourcesJSON, imagesJSON, detailNull)
	return decoded, total, err
}

func decodeLandmark(lm *model.Landmark, sourcesJSON, imagesJSON []byte, detailNull *[]byte) (*model.Landmark, error) {
	if len(sourcesJSON) > 0 {
		if err := json.Unmarshal(sourcesJSON, &lm.DataSources); err != nil {
			return nil, eris.Wrap(err, "unmarshal data sources")
		}
	}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &lm.ImagePaths); err != nil {
			return nil, eris.Wrap(err, "unmarshal image paths")
		}
	}
	if detailNull != nil && len(*detailNull) > 0 {
		lm.Detail = &model.LandmarkDetail{}
		if err := json.Unmarshal(*detailNull, lm.Detail); err != nil {
			return nil, eris.Wrap(err, "unmarshal detail")
		}
	}
	return lm, nil
}
