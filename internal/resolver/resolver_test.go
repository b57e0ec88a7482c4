package resolver_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	"gitlab.com/dirk.krummacker/pcrm/internal/resolver"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
	"gitlab.com/dirk.krummacker/pcrm/internal/storetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

func addContact(t *testing.T, s *store.Store, first, last string) int64 {
	t.Helper()
	c := &model.Contact{FirstName: first, CreatedAt: time.Now().UTC()}
	if last != "" {
		c.LastName = &last
	}
	id, err := s.AddContact(context.Background(), c)
	require.NoError(t, err)
	return id
}

// failingChooser fails the test if a selection is requested.
func failingChooser(t *testing.T) resolver.Chooser {
	return resolver.ChooserFunc(func(context.Context, string, []model.Candidate) (int, error) {
		t.Error("no selection expected")
		return 0, resolver.ErrCancelled
	})
}

// TestResolveAmbiguousFirstName adds Jane Doe and Jane Smith. It expects that "Jane" presents both
// in name order and that choosing the first one returns the id of Jane Doe.
func TestResolveAmbiguousFirstName(t *testing.T) {
	s := storetest.Open(t)
	smith := addContact(t, s, "Jane", "Smith")
	doe := addContact(t, s, "Jane", "Doe")

	r := resolver.New(s.DB())
	var out bytes.Buffer
	prompt := resolver.NewPrompt(strings.NewReader("1\n"), &out)
	id, err := r.Resolve(context.Background(), "Jane", prompt)
	require.NoError(t, err)
	assert.Equal(t, doe, id)
	assert.NotEqual(t, smith, id)
	assert.Contains(t, out.String(), "1: Jane Doe")
	assert.Contains(t, out.String(), "2: Jane Smith")
}

// TestResolveDuplicateNames expects that two contacts sharing the full name yield exactly two
// candidates in stable order.
func TestResolveDuplicateNames(t *testing.T) {
	s := storetest.Open(t)
	first := addContact(t, s, "Alex", "Kim")
	second := addContact(t, s, "Alex", "Kim")

	r := resolver.New(s.DB())
	for i := 0; i < 3; i++ {
		candidates, err := r.Find(context.Background(), "alex KIM")
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, first, candidates[0].Id)
		assert.Equal(t, second, candidates[1].Id)
	}

	_, err := r.Resolve(context.Background(), "Alex Kim", nil)
	var ambiguous *resolver.AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Candidates, 2)
}

// TestResolveSingleMatch expects that an unambiguous full name resolves without a prompt.
func TestResolveSingleMatch(t *testing.T) {
	s := storetest.Open(t)
	sam := addContact(t, s, "Sam", "Lee")

	r := resolver.New(s.DB())
	id, err := r.Resolve(context.Background(), "  Sam   Lee ", failingChooser(t))
	require.NoError(t, err)
	assert.Equal(t, sam, id)

	// A single word matches the last name as well.
	id, err = r.Resolve(context.Background(), "lee", failingChooser(t))
	require.NoError(t, err)
	assert.Equal(t, sam, id)
}

// TestResolveExactMatchOnly expects that partial names do not match.
func TestResolveExactMatchOnly(t *testing.T) {
	s := storetest.Open(t)
	addContact(t, s, "Samantha", "Lee")

	r := resolver.New(s.DB())
	_, err := r.Resolve(context.Background(), "Sam", failingChooser(t))
	assert.ErrorIs(t, err, resolver.ErrNotFound)
}

// TestResolveMultiWordLastName expects that everything after the first word is the last name.
func TestResolveMultiWordLastName(t *testing.T) {
	s := storetest.Open(t)
	id := addContact(t, s, "Ludwig", "van Beethoven")
	addContact(t, s, "Ludwig", "Erhard")

	r := resolver.New(s.DB())
	resolved, err := r.Resolve(context.Background(), "ludwig Van  Beethoven", failingChooser(t))
	require.NoError(t, err)
	assert.Equal(t, id, resolved)
}

// TestResolveNoContacts expects ErrNotFound on an empty database and that nothing is written.
func TestResolveNoContacts(t *testing.T) {
	s := storetest.Open(t)

	r := resolver.New(s.DB())
	_, err := r.Resolve(context.Background(), "Anyone", failingChooser(t))
	assert.ErrorIs(t, err, resolver.ErrNotFound)
	assert.Equal(t, 0, storetest.Count(t, s, "contacts"))
}

// TestResolveEmptyName expects ErrEmptyName for blank input.
func TestResolveEmptyName(t *testing.T) {
	s := storetest.Open(t)

	r := resolver.New(s.DB())
	_, err := r.Resolve(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, resolver.ErrEmptyName)
}

// TestResolveCancelled expects ErrCancelled when the user enters the cancel token.
func TestResolveCancelled(t *testing.T) {
	s := storetest.Open(t)
	addContact(t, s, "Jane", "Doe")
	addContact(t, s, "Jane", "Smith")

	r := resolver.New(s.DB())
	var out bytes.Buffer
	_, err := r.Resolve(context.Background(), "Jane", resolver.NewPrompt(strings.NewReader("Q\n"), &out))
	assert.ErrorIs(t, err, resolver.ErrCancelled)
	assert.Contains(t, out.String(), "Operation cancelled.")
}

// TestResolveWithSelection expects that a choice made in advance picks the candidate and that an
// out of range choice is reported as invalid.
func TestResolveWithSelection(t *testing.T) {
	s := storetest.Open(t)
	addContact(t, s, "Jane", "Doe")
	smith := addContact(t, s, "Jane", "Smith")

	r := resolver.New(s.DB())
	id, err := r.Resolve(context.Background(), "jane", resolver.Selection("2"))
	require.NoError(t, err)
	assert.Equal(t, smith, id)

	_, err = r.Resolve(context.Background(), "jane", resolver.Selection("3"))
	assert.ErrorIs(t, err, resolver.ErrInvalidSelection)

	_, err = r.Resolve(context.Background(), "jane", resolver.Selection(""))
	var ambiguous *resolver.AmbiguousError
	assert.ErrorAs(t, err, &ambiguous)
}

// TestResolveStorageError expects that a failing query is reported as a storage error.
func TestResolveStorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery("SELECT id, first_name, last_name FROM contacts").
		WillReturnError(errors.New("database is locked"))

	r := resolver.New(sqlx.NewDb(db, "sqlite"))
	_, err = r.Resolve(context.Background(), "Jane", nil)
	var storeErr *store.Error
	assert.ErrorAs(t, err, &storeErr)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestResolveNonASCIIName adds Émile Zola. It expects that the name resolves regardless of the case
// of its accented letters.
func TestResolveNonASCIIName(t *testing.T) {
	s := storetest.Open(t)
	id := addContact(t, s, "Émile", "Zola")

	r := resolver.New(s.DB())
	for _, name := range []string{"Émile Zola", "ÉMILE", "émile zola", "ZOLA"} {
		got, err := r.Resolve(context.Background(), name, failingChooser(t))
		require.NoError(t, err, name)
		assert.Equal(t, id, got, name)
	}
}

// TestFindOrdersNamesIgnoringCase adds Jane Smith and jane doe. It expects the candidates in
// alphabetical order regardless of the case of the stored names.
func TestFindOrdersNamesIgnoringCase(t *testing.T) {
	s := storetest.Open(t)
	smith := addContact(t, s, "Jane", "Smith")
	doe := addContact(t, s, "jane", "doe")

	candidates, err := resolver.New(s.DB()).Find(context.Background(), "JANE")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, doe, candidates[0].Id)
	assert.Equal(t, smith, candidates[1].Id)
}
