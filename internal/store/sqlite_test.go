package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
	"gitlab.com/dirk.krummacker/pcrm/internal/storetest"
)

func ptr(s string) *string {
	return &s
}

func addContact(t *testing.T, s *store.Store, first, last string) int64 {
	t.Helper()
	c := &model.Contact{FirstName: first, CreatedAt: time.Now().UTC()}
	if last != "" {
		c.LastName = ptr(last)
	}
	id, err := s.AddContact(context.Background(), c)
	require.NoError(t, err)
	return id
}

func setLastContacted(t *testing.T, s *store.Store, id int64, at time.Time) {
	t.Helper()
	_, err := s.DB().Exec(`UPDATE contacts SET last_contacted_at = ? WHERE id = ?`, at, id)
	require.NoError(t, err)
}

// TestContactRoundTrip expects that a stored contact is read back with all its values and without
// a last contacted timestamp.
func TestContactRoundTrip(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()
	created := time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)
	id, err := s.AddContact(ctx, &model.Contact{
		FirstName: "Jane",
		LastName:  ptr("Doe"),
		Email:     ptr("jane@example.com"),
		Birthday:  ptr("1990-05-01"),
		CreatedAt: created,
	})
	require.NoError(t, err)

	contact, err := s.Contact(ctx, id)
	require.NoError(t, err)
	want := model.Contact{
		Id:        id,
		FirstName: "Jane",
		LastName:  ptr("Doe"),
		Email:     ptr("jane@example.com"),
		Birthday:  ptr("1990-05-01"),
		CreatedAt: created,
	}
	if diff := cmp.Diff(want, contact); diff != "" {
		t.Errorf("contact mismatch (-want +got):\n%s", diff)
	}
}

// TestDeleteContactCascades expects that deleting a contact removes everything that belongs to it
// but nothing of other contacts.
func TestDeleteContactCascades(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()
	jane := addContact(t, s, "Jane", "Doe")
	sam := addContact(t, s, "Sam", "Lee")
	now := time.Now().UTC()

	err := s.WithTx(ctx, func(tx *store.Tx) error {
		for _, id := range []int64{jane, sam} {
			if _, err := tx.InsertNote(ctx, id, "note", now); err != nil {
				return err
			}
			if _, err := tx.InsertReminder(ctx, id, "call", "2030-01-01", now); err != nil {
				return err
			}
			if _, err := tx.InsertPhone(ctx, id, "555-0100", nil); err != nil {
				return err
			}
		}
		tagID, err := tx.InsertTag(ctx, "friend")
		if err != nil {
			return err
		}
		if err := tx.AttachTag(ctx, jane, tagID); err != nil {
			return err
		}
		if _, err := tx.InsertRelationship(ctx, jane, sam, "colleague"); err != nil {
			return err
		}
		occasionID, err := tx.InsertOccasion(ctx, jane, "Anniversary", "2030-06-01")
		if err != nil {
			return err
		}
		_, err = tx.InsertGift(ctx, &model.Gift{
			ContactId: jane, OccasionId: &occasionID, Description: "Book", Direction: model.GiftGiven,
		})
		return err
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteContact(ctx, jane))

	_, err = s.Contact(ctx, jane)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 1, storetest.Count(t, s, "notes"))
	assert.Equal(t, 1, storetest.Count(t, s, "reminders"))
	assert.Equal(t, 1, storetest.Count(t, s, "phones"))
	assert.Equal(t, 0, storetest.Count(t, s, "contact_tags"))
	assert.Equal(t, 0, storetest.Count(t, s, "relationships"))
	assert.Equal(t, 0, storetest.Count(t, s, "special_occasions"))
	assert.Equal(t, 0, storetest.Count(t, s, "gifts"))
	// The tag itself outlives its last contact.
	assert.Equal(t, 1, storetest.Count(t, s, "tags"))

	assert.ErrorIs(t, s.DeleteContact(ctx, jane), store.ErrNotFound)
}

// TestSuggestionsOrder expects never contacted contacts first, then the longest uncontacted, and
// that recently contacted contacts are left out.
func TestSuggestionsOrder(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	recent := addContact(t, s, "Recent", "")
	old := addContact(t, s, "Old", "")
	older := addContact(t, s, "Older", "")
	never := addContact(t, s, "Never", "")
	setLastContacted(t, s, recent, now.AddDate(0, 0, -2))
	setLastContacted(t, s, old, now.AddDate(0, 0, -40))
	setLastContacted(t, s, older, now.AddDate(0, 0, -90))

	suggestions, err := s.Suggestions(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	var ids []int64
	for _, suggestion := range suggestions {
		ids = append(ids, suggestion.Id)
	}
	assert.Equal(t, []int64{never, older, old}, ids)
	assert.Nil(t, suggestions[0].LastContactedAt)
	require.NotNil(t, suggestions[1].LastContactedAt)
	assert.True(t, suggestions[1].LastContactedAt.Equal(now.AddDate(0, 0, -90)))
}

// TestSuggestionsThresholdInOtherZone passes a threshold in a zone east of UTC. It expects that the
// comparison uses the instant, so a contact reached an hour after the threshold is left out.
func TestSuggestionsThresholdInOtherZone(t *testing.T) {
	s := storetest.Open(t)
	id := addContact(t, s, "Jane", "Doe")
	setLastContacted(t, s, id, time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC))

	threshold := time.Date(2025, time.March, 1, 11, 0, 0, 0, time.FixedZone("EET", 2*60*60))
	suggestions, err := s.Suggestions(context.Background(), threshold)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

// TestListContactsIgnoresCase expects that the order by name does not depend on upper and lower
// case.
func TestListContactsIgnoresCase(t *testing.T) {
	s := storetest.Open(t)
	smith := addContact(t, s, "Jane", "Smith")
	doe := addContact(t, s, "jane", "doe")
	adams := addContact(t, s, "adam", "")

	contacts, err := s.ListContacts(context.Background(), "")
	require.NoError(t, err)
	var ids []int64
	for _, c := range contacts {
		ids = append(ids, c.Id)
	}
	assert.Equal(t, []int64{adams, doe, smith}, ids)
}

// TestReminderWindows expects that overdue and upcoming reminders are split at the given dates.
func TestReminderWindows(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()
	jane := addContact(t, s, "Jane", "Doe")
	now := time.Now().UTC()
	err := s.WithTx(ctx, func(tx *store.Tx) error {
		for _, date := range []string{"2025-02-27", "2025-03-01", "2025-03-08", "2025-03-09"} {
			if _, err := tx.InsertReminder(ctx, jane, "on "+date, date, now); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	overdue, err := s.RemindersBefore(ctx, "2025-03-01")
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "2025-02-27", overdue[0].ReminderDate)
	assert.Equal(t, "Jane Doe", overdue[0].FullName())

	upcoming, err := s.RemindersBetween(ctx, "2025-03-01", "2025-03-08")
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "2025-03-01", upcoming[0].ReminderDate)
	assert.Equal(t, "2025-03-08", upcoming[1].ReminderDate)

	all, err := s.RemindersBetween(ctx, "2025-03-01", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// TestFindContacts expects that the filter criteria are combined.
func TestFindContacts(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()
	jane := addContact(t, s, "Jane", "Doe")
	addContact(t, s, "Jane", "Smith")
	addContact(t, s, "John", "Doe")
	err := s.WithTx(ctx, func(tx *store.Tx) error {
		return tx.UpdateContact(ctx, jane, store.ContactUpdate{Birthday: ptr("1990-05-01")})
	})
	require.NoError(t, err)

	contacts, err := s.FindContacts(ctx, store.Filter{FirstName: "Ja", OrderBy: "lastname"})
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Doe", *contacts[0].LastName)
	assert.Equal(t, "Smith", *contacts[1].LastName)

	contacts, err = s.FindContacts(ctx, store.Filter{BirthMonth: 5, BirthDay: 1})
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, jane, contacts[0].Id)

	contacts, err = s.FindContacts(ctx, store.Filter{Query: "oe", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "John", contacts[0].FirstName)
}

// TestTagging expects that tags are attached once, listed per contact, and filter the contact
// list.
func TestTagging(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()
	jane := addContact(t, s, "Jane", "Doe")
	addContact(t, s, "Sam", "Lee")

	err := s.WithTx(ctx, func(tx *store.Tx) error {
		_, found, err := tx.TagID(ctx, "family")
		require.NoError(t, err)
		assert.False(t, found)
		tagID, err := tx.InsertTag(ctx, "family")
		if err != nil {
			return err
		}
		if err := tx.AttachTag(ctx, jane, tagID); err != nil {
			return err
		}
		has, err := tx.HasTag(ctx, jane, tagID)
		assert.True(t, has)
		return err
	})
	require.NoError(t, err)

	tags, err := s.Tags(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, []string{"family"}, tags)

	contacts, err := s.ListContacts(ctx, "family")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, jane, contacts[0].Id)

	err = s.WithTx(ctx, func(tx *store.Tx) error {
		tagID, _, err := tx.TagID(ctx, "family")
		if err != nil {
			return err
		}
		removed, err := tx.DetachTag(ctx, jane, tagID)
		assert.True(t, removed)
		return err
	})
	require.NoError(t, err)
	contacts, err = s.ListContacts(ctx, "family")
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

// TestRelationshipsBothDirections expects that a relationship shows up on both contacts.
func TestRelationshipsBothDirections(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()
	jane := addContact(t, s, "Jane", "Doe")
	sam := addContact(t, s, "Sam", "Lee")
	err := s.WithTx(ctx, func(tx *store.Tx) error {
		_, err := tx.InsertRelationship(ctx, jane, sam, "sibling")
		return err
	})
	require.NoError(t, err)

	related, err := s.Relationships(ctx, sam)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, jane, related[0].ContactId)
	assert.Equal(t, "sibling", related[0].Type)

	err = s.WithTx(ctx, func(tx *store.Tx) error {
		removed, err := tx.DeleteRelationship(ctx, sam, jane)
		assert.Equal(t, int64(1), removed)
		return err
	})
	require.NoError(t, err)
	all, err := s.AllRelationships(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
