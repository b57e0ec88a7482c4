package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/pcrm/internal/config"
	"gitlab.com/dirk.krummacker/pcrm/internal/model"
)

var contactColumnNames = []string{
	"id", "first_name", "last_name", "email", "birthday", "date_met", "how_met", "favorite_color",
	"last_contacted_at", "created_at",
}

// createMockObjects builds a mock database handle and a mock object for defining our expected SQL
// calls.
func createMockObjects(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	return db, mock
}

// expectPreparedStatements instructs the mock object to expect that several statements are being
// prepared.
func expectPreparedStatements(mock sqlmock.Sqlmock) {
	mock.ExpectPrepare("INSERT INTO contacts")
	mock.ExpectPrepare("SELECT (.+) FROM contacts WHERE id = ?")
	mock.ExpectPrepare("DELETE FROM contacts WHERE id = ?")
}

// newMockStore sets up a store on top of the mock database.
func newMockStore(t *testing.T, db *sql.DB) *Store {
	s, err := New(db, SQLite, zap.NewNop())
	require.NoError(t, err)
	return s
}

// TestAddContact expects that the contact values are inserted and the new id is returned.
func TestAddContact(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectExec("INSERT INTO contacts").
		WithArgs("Erika", "Mustermann", nil, "1969-03-02", nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))

	// Run test and compare results
	s := newMockStore(t, db)
	last, birthday := "Mustermann", "1969-03-02"
	id, err := s.AddContact(context.Background(), &model.Contact{
		FirstName: "Erika",
		LastName:  &last,
		Birthday:  &birthday,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestContact expects that a selected row is returned as a contact.
func TestContact(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	created := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	rows := mock.NewRows(contactColumnNames).
		AddRow(29, "Erika", "Mustermann", "erika@example.com", "1969-03-02", nil, nil, nil, nil, created)
	mock.ExpectQuery("SELECT (.+) FROM contacts WHERE id = ?").
		WithArgs(29).
		WillReturnRows(rows)

	// Run test and compare results
	s := newMockStore(t, db)
	contact, err := s.Contact(context.Background(), 29)
	require.NoError(t, err)
	assert.Equal(t, int64(29), contact.Id)
	assert.Equal(t, "Erika Mustermann", contact.FullName())
	assert.Equal(t, "erika@example.com", *contact.Email)
	assert.Nil(t, contact.LastContactedAt)
	assert.Equal(t, created, contact.CreatedAt)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestContactNotFound expects ErrNotFound when the select returns no rows.
func TestContactNotFound(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectQuery("SELECT (.+) FROM contacts WHERE id = ?").
		WithArgs(9999).
		WillReturnRows(mock.NewRows(contactColumnNames))

	// Run test and compare results
	s := newMockStore(t, db)
	_, err := s.Contact(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestDeleteContactNotFound expects ErrNotFound when the delete statement affects no row.
func TestDeleteContactNotFound(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectExec("DELETE FROM contacts").
		WithArgs(9999).
		WillReturnResult(sqlmock.NewResult(-1, 0))

	// Run test and compare results
	s := newMockStore(t, db)
	err := s.DeleteContact(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestStorageError expects that a failing driver call surfaces as a storage error that still
// wraps the driver error.
func TestStorageError(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	driverErr := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT (.+) FROM contacts").WillReturnError(driverErr)

	// Run test and compare results
	s := newMockStore(t, db)
	_, err := s.ListContacts(context.Background(), "")
	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "list contacts", storeErr.Op)
	assert.ErrorIs(t, err, driverErr)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestWithTxCommit expects that a successful function commits the transaction.
func TestWithTxCommit(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notes").
		WithArgs(7, "Met for coffee", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	// Run test and compare results
	s := newMockStore(t, db)
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		id, err := tx.InsertNote(context.Background(), 7, "Met for coffee", time.Now())
		assert.Equal(t, int64(3), id)
		return err
	})
	require.NoError(t, err)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestWithTxRollback expects that a failing statement rolls the transaction back and that the
// failure is reported as a storage error.
func TestWithTxRollback(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notes").WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	// Run test and compare results
	s := newMockStore(t, db)
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		_, err := tx.InsertNote(context.Background(), 7, "x", time.Now())
		return err
	})
	var storeErr *Error
	assert.ErrorAs(t, err, &storeErr)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestWithTxPassesDomainErrors expects that errors which are not storage errors are returned
// unchanged after the rollback.
func TestWithTxPassesDomainErrors(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectBegin()
	mock.ExpectRollback()

	// Run test and compare results
	s := newMockStore(t, db)
	domainErr := errors.New("already tagged")
	err := s.WithTx(context.Background(), func(tx *Tx) error { return domainErr })
	assert.Equal(t, domainErr, err)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestUpdateContactPartial expects that only the specified values are part of the update and that
// an empty optional value is stored as NULL.
func TestUpdateContactPartial(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE contacts SET last_name=\\?, birthday=\\? WHERE id=\\?").
		WithArgs(nil, "1950-04-13", 35).
		WillReturnResult(sqlmock.NewResult(-1, 1))
	mock.ExpectCommit()

	// Run test and compare results
	s := newMockStore(t, db)
	empty, birthday := "", "1950-04-13"
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		return tx.UpdateContact(context.Background(), 35, ContactUpdate{LastName: &empty, Birthday: &birthday})
	})
	require.NoError(t, err)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestUpdateContactInvalidID expects ErrNotFound when no row was matched.
func TestUpdateContactInvalidID(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE contacts").
		WithArgs("Rudi", 9999).
		WillReturnResult(sqlmock.NewResult(-1, 0))
	mock.ExpectRollback()

	// Run test and compare results
	s := newMockStore(t, db)
	first := "Rudi"
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		return tx.UpdateContact(context.Background(), 9999, ContactUpdate{FirstName: &first})
	})
	assert.ErrorIs(t, err, ErrNotFound)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestFindContactsInvalidOrder expects an error for an order column that is not allowed, before
// reaching out to the database.
func TestFindContactsInvalidOrder(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)

	s := newMockStore(t, db)
	_, err := s.FindContacts(context.Background(), Filter{OrderBy: "password"})
	assert.Error(t, err)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestDSN(t *testing.T) {
	dialect, dsn, err := DSN(config.Database{Driver: "sqlite", Path: "/tmp/crm.db"})
	require.NoError(t, err)
	assert.Equal(t, SQLite, dialect)
	assert.Contains(t, dsn, "file:/tmp/crm.db?")
	assert.Contains(t, dsn, "foreign_keys")

	dialect, dsn, err = DSN(config.Database{Driver: "mysql", Host: "db:3306", User: "dirk", Password: "pw", Name: "pcrm"})
	require.NoError(t, err)
	assert.Equal(t, MySQL, dialect)
	assert.Contains(t, dsn, "dirk:pw@tcp(db:3306)/pcrm")
	assert.Contains(t, dsn, "parseTime=true")

	_, _, err = DSN(config.Database{Driver: "oracle"})
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	for _, dialect := range []Dialect{SQLite, MySQL} {
		statements, err := Schema(dialect)
		require.NoError(t, err)
		assert.NotEmpty(t, statements)
		assert.Contains(t, statements[0], "CREATE TABLE IF NOT EXISTS contacts")
	}
	_, err := Schema("oracle")
	assert.Error(t, err)
}
