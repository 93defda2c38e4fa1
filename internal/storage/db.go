package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pressly/goose/v3"

	"cv-fields/internal/field"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ErrUserNotFound is returned when no user row exists for the given id.
var ErrUserNotFound = errors.New("user not found")

// DB is the field store: one row per user, the whole field collection as a
// JSONB document. Saves replace the document; the last full save wins, also
// across concurrent browser tabs (documented limitation).
type DB struct {
	connection *sql.DB
}

func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{connection: db}, nil
}

// Migrate applies the embedded goose migrations.
func (db *DB) Migrate() error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db.connection, "migrations")
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		log.Println("Error closing the database connection:", err)
	}
}

// GetUserContext loads a user with their full field collection. Loaded
// fields are normalized: duplicate version entries are collapsed keeping the
// last-seen one instead of failing the load.
func (db *DB) GetUserContext(ctx context.Context, userID string) (field.User, error) {
	query := `SELECT base_language, fields, created_at, updated_at FROM users WHERE id = $1`

	var (
		u      = field.User{ID: userID}
		fields []byte
	)
	err := db.connection.QueryRowContext(ctx, query, userID).
		Scan(&u.BaseLanguage, &fields, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return field.User{}, ErrUserNotFound
	}
	if err != nil {
		return field.User{}, err
	}

	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &u.Data); err != nil {
			return field.User{}, fmt.Errorf("decode fields for user %s: %w", userID, err)
		}
	}
	for i := range u.Data {
		u.Data[i] = field.Normalize(u.Data[i])
	}
	return u, nil
}

// SaveUserContext upserts the user row, replacing the whole field
// collection atomically.
func (db *DB) SaveUserContext(ctx context.Context, u field.User) error {
	fields, err := json.Marshal(u.Data)
	if err != nil {
		return fmt.Errorf("encode fields for user %s: %w", u.ID, err)
	}

	query := `INSERT INTO users (id, base_language, fields, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (id) DO UPDATE
	            SET base_language = EXCLUDED.base_language,
	                fields = EXCLUDED.fields,
	                updated_at = EXCLUDED.updated_at`

	_, err = db.connection.ExecContext(ctx, query,
		u.ID, u.BaseLanguage, fields, u.CreatedAt, u.UpdatedAt)
	return err
}

// UserExists checks whether a user row is present.
func (db *DB) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	err := db.connection.QueryRowContext(ctx, query, userID).Scan(&exists)
	return exists, err
}

// ListUserIDs returns every stored user id, for the admin CLI.
func (db *DB) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := db.connection.QueryContext(ctx, `SELECT id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetConnection returns the underlying database connection.
func (db *DB) GetConnection() *sql.DB {
	return db.connection
}

// newWithConnection wires an existing connection, for tests.
func newWithConnection(conn *sql.DB) *DB {
	return &DB{connection: conn}
}
