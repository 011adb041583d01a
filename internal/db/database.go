// Package db persists player bankrolls in SQLite or PostgreSQL.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

type Database struct {
	db     *sql.DB
	driver string
}

// Player is a stored bankroll. Round history is not kept.
type Player struct {
	ID        string          `json:"playerId"`
	Name      string          `json:"playerName"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	LastLogin time.Time       `json:"lastLogin"`
}

// NormalizeDriver maps the accepted driver spellings onto a registered
// database/sql driver name.
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pq":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// NewDatabase opens a connection, checks it and creates the schema.
func NewDatabase(driver, dsn string) (*Database, error) {
	driver, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if driver == DriverSQLite {
		// One writer keeps SQLite from reporting a locked database.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(5)
	}
	conn.SetConnMaxLifetime(time.Hour)

	d := &Database{db: conn, driver: driver}
	if err := d.initTables(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) initTables() error {
	// Balances are stored as decimal text so both drivers round-trip them exactly.
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			balance TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			last_login TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating players table: %w", err)
	}
	return nil
}

func (d *Database) Driver() string {
	return d.driver
}

func (d *Database) Close() error {
	return d.db.Close()
}

// GetPlayerByID returns ErrPlayerNotFound for unknown IDs.
func (d *Database) GetPlayerByID(playerID string) (*Player, error) {
	var (
		player  Player
		balance string
	)

	err := d.db.QueryRow(
		d.rebind("SELECT id, name, balance, created_at, last_login FROM players WHERE id = ?"),
		playerID,
	).Scan(&player.ID, &player.Name, &balance, &player.CreatedAt, &player.LastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading player %s: %w", playerID, err)
	}

	player.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("error parsing balance of player %s: %w", playerID, err)
	}
	return &player, nil
}

// CreatePlayer inserts a new player and fails if the ID is taken.
func (d *Database) CreatePlayer(playerID, playerName string, initialBalance decimal.Decimal) error {
	now := time.Now().UTC()
	_, err := d.db.Exec(
		d.rebind("INSERT INTO players (id, name, balance, created_at, last_login) VALUES (?, ?, ?, ?, ?)"),
		playerID, playerName, initialBalance.String(), now, now,
	)
	if err != nil {
		return fmt.Errorf("error creating player %s: %w", playerID, err)
	}
	return nil
}

// SavePlayer inserts the player or overwrites its name and balance. It is
// safe against a concurrent first save of the same player.
func (d *Database) SavePlayer(playerID, playerName string, balance decimal.Decimal) error {
	now := time.Now().UTC()
	_, err := d.db.Exec(d.rebind(`
		INSERT INTO players (id, name, balance, created_at, last_login)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name, balance = excluded.balance, last_login = excluded.last_login
	`), playerID, playerName, balance.String(), now, now)
	if err != nil {
		return fmt.Errorf("error saving player %s: %w", playerID, err)
	}
	return nil
}

// UpdatePlayerBalance returns ErrPlayerNotFound for unknown IDs.
func (d *Database) UpdatePlayerBalance(playerID string, newBalance decimal.Decimal) error {
	return d.update(playerID,
		"UPDATE players SET balance = ?, last_login = ? WHERE id = ?",
		newBalance.String(), time.Now().UTC(), playerID,
	)
}

// UpdatePlayerLastLogin stamps the player as seen now.
func (d *Database) UpdatePlayerLastLogin(playerID string) error {
	return d.update(playerID,
		"UPDATE players SET last_login = ? WHERE id = ?",
		time.Now().UTC(), playerID,
	)
}

func (d *Database) update(playerID, query string, args ...any) error {
	res, err := d.db.Exec(d.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("error updating player %s: %w", playerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error updating player %s: %w", playerID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (d *Database) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}

	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
