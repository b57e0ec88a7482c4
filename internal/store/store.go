// Package store is the relational storage of pcrm. It owns the schema and all SQL except the name
// lookup of the resolver and the stamp of the activity tracker, which run against the handle
// returned by DB.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"gitlab.com/dirk.krummacker/pcrm/internal/config"
)

// ErrNotFound is returned when a contact id does not exist.
var ErrNotFound = errors.New("contact not found")

// Error is a failure of the underlying database. Callers do not retry it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrap turns a driver error into an *Error. It returns nil for a nil error.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// Wrap is wrap for the packages that issue their own statements against DB.
func Wrap(op string, err error) error {
	return wrap(op, err)
}

func init() {
	sqlx.BindDriver(string(SQLite), sqlx.QUESTION)
}

// contactColumns is the column list matching model.Contact.
const contactColumns = `id, first_name, last_name, email, birthday, date_met, how_met, favorite_color,
	last_contacted_at, created_at`

// Store is a handle to the database. It is safe to share between operations; each write
// operation runs in its own transaction via WithTx.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	log     *zap.Logger

	// insert is a prepared statement for creating a contact on the database.
	insert *sqlx.NamedStmt

	// selectWhereId is a prepared statement for selecting contacts with a given id.
	selectWhereId *sqlx.Stmt

	// deleteWhereId is a prepared statement for deleting a contact with a given id.
	deleteWhereId *sqlx.Stmt
}

// DSN builds the data source name for the configured database.
func DSN(cfg config.Database) (Dialect, string, error) {
	switch Dialect(cfg.Driver) {
	case SQLite:
		query := url.Values{}
		query.Add("_pragma", "foreign_keys(1)")
		query.Add("_pragma", "busy_timeout(5000)")
		query.Set("_time_format", "sqlite")
		return SQLite, "file:" + cfg.Path + "?" + query.Encode(), nil
	case MySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = cfg.Host
		mc.DBName = cfg.Name
		mc.ParseTime = true
		// Report matched rather than changed rows, so that an update with unchanged values
		// is not mistaken for a missing contact.
		mc.ClientFoundRows = true
		return MySQL, mc.FormatDSN(), nil
	}
	return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Open connects to the configured database, creates the schema if necessary and prepares all
// statements.
func Open(ctx context.Context, cfg config.Database, log *zap.Logger) (*Store, error) {
	dialect, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, wrap("open", err)
	}
	if dialect == SQLite {
		// One local user, one connection.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, wrap("connect", err)
	}
	if err := CreateSchema(ctx, sqlDB, dialect); err != nil {
		sqlDB.Close()
		return nil, err
	}
	s, err := New(sqlDB, dialect, log)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	log.Debug("database opened", zap.String("driver", string(dialect)))
	return s, nil
}

// New initializes the sqlx database wrapper with the specified sql database. It then prepares all
// statements. The database argument can be a real database for production use or a mock database
// within unit tests.
func New(sqlDB *sql.DB, dialect Dialect, log *zap.Logger) (*Store, error) {
	var err error
	s := &Store{
		db:      sqlx.NewDb(sqlDB, string(dialect)),
		dialect: dialect,
		log:     log,
	}

	// Prepared statements offer a significant speed increase if executed many times.
	s.insert, err = s.db.PrepareNamed(`
		INSERT INTO contacts (first_name, last_name, email, birthday, date_met, how_met,
			favorite_color, created_at)
		VALUES (:first_name, :last_name, :email, :birthday, :date_met, :how_met,
			:favorite_color, :created_at)
	`)
	if err != nil {
		return nil, wrap("prepare insert", err)
	}
	s.selectWhereId, err = s.db.Preparex(`
		SELECT ` + contactColumns + ` FROM contacts WHERE id = ?
	`)
	if err != nil {
		return nil, wrap("prepare select", err)
	}
	s.deleteWhereId, err = s.db.Preparex(`
		DELETE FROM contacts WHERE id = ?
	`)
	if err != nil {
		return nil, wrap("prepare delete", err)
	}
	return s, nil
}

// DB exposes the handle for read-only collaborators such as the name resolver.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Dialect returns the SQL dialect the store was opened with.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return wrap("ping", s.db.PingContext(ctx))
}

// Exec runs a raw statement. It is used for applying SQL scripts.
func (s *Store) Exec(ctx context.Context, statement string) error {
	_, err := s.db.ExecContext(ctx, statement)
	return wrap("exec", err)
}

// Close releases the prepared statements and closes the database.
func (s *Store) Close() error {
	s.insert.Close()
	s.selectWhereId.Close()
	s.deleteWhereId.Close()
	return s.db.Close()
}

// Tx is a write transaction. All mutating statements besides contact creation and deletion are
// methods of Tx.
type Tx struct {
	*sqlx.Tx
}

// WithTx runs fn inside a transaction. The transaction is committed if fn returns nil and rolled
// back otherwise, including when fn panics. Errors returned by fn are passed through unchanged.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("begin", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = wrap("commit", tx.Commit())
	}()
	return fn(&Tx{Tx: tx})
}
