package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/nzaccagnino/folio/internal/auth"
	"github.com/nzaccagnino/folio/internal/model"
)

//go:embed migrations
var migrations embed.FS

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

var ErrNotFound = errors.New("not found")

type ServerDB struct {
	conn   *sql.DB
	driver string
	now    func() time.Time
	newID  func() string

	notes    *Table[model.Note]
	projects *Table[model.Project]
	services *Table[model.HomelabService]
	gear     *Table[model.GearItem]
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) Model() model.User {
	return model.User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// NewServerDB opens the database and applies pending migrations.
func NewServerDB(ctx context.Context, driver, dsn string) (*ServerDB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
	}

	db := newServerDB(conn, driver)
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func newServerDB(conn *sql.DB, driver string) *ServerDB {
	db := &ServerDB{
		conn:   conn,
		driver: driver,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID:  uuid.NewString,
	}
	db.notes = newTable(db, notesDef)
	db.projects = newTable(db, projectsDef)
	db.services = newTable(db, servicesDef)
	db.gear = newTable(db, gearDef)
	return db
}

func (db *ServerDB) migrate(ctx context.Context) error {
	dialect, dir := "sqlite3", "migrations/sqlite"
	if db.driver == DriverPostgres {
		dialect, dir = "postgres", "migrations/postgres"
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, db.conn, dir)
}

func (db *ServerDB) Close() error {
	return db.conn.Close()
}

func (db *ServerDB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *ServerDB) Notes() *Table[model.Note] { return db.notes }

func (db *ServerDB) Projects() *Table[model.Project] { return db.projects }

func (db *ServerDB) HomelabServices() *Table[model.HomelabService] { return db.services }

func (db *ServerDB) TrailGear() *Table[model.GearItem] { return db.gear }

// rebind turns ? placeholders into $n for Postgres.
func (db *ServerDB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// User operations

// SetOwner creates the account for email or replaces its password.
func (db *ServerDB) SetOwner(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	existing, err := db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		_, err := db.conn.ExecContext(ctx, db.rebind(`UPDATE users SET password_hash = ? WHERE id = ?`), hash, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		existing.PasswordHash = hash
		return existing, nil
	}

	u := &User{ID: db.newID(), Email: email, PasswordHash: hash, CreatedAt: db.now()}
	_, err = db.conn.ExecContext(ctx, db.rebind(`
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`), u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (db *ServerDB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return db.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
}

func (db *ServerDB) GetUserByID(ctx context.Context, id string) (*User, error) {
	return db.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (db *ServerDB) getUser(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := db.conn.QueryRowContext(ctx, db.rebind(query), arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// Authenticate returns the user when the password matches, nil otherwise.
func (db *ServerDB) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := db.GetUserByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, nil
	}
	return u, nil
}
