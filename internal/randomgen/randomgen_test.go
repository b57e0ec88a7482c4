package randomgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSameSeed expects identical sequences for generators with the same seed.
func TestSameSeed(t *testing.T) {
	a, b := New(7), New(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Contact(), b.Contact())
	}
}

// TestContact expects a name on every contact and valid dates.
func TestContact(t *testing.T) {
	g := New(1)
	for i := 0; i < 100; i++ {
		contact := g.Contact()
		require.NotNil(t, contact.FirstName)
		require.NotNil(t, contact.LastName)
		assert.NotEmpty(t, *contact.FirstName)
		if contact.Birthday != nil {
			birthday, err := time.Parse("2006-01-02", *contact.Birthday)
			require.NoError(t, err)
			assert.True(t, birthday.Year() >= 1950 && birthday.Year() <= 2005)
		}
	}
}

// TestRecords expects reminders in the future and gift directions the API accepts.
func TestRecords(t *testing.T) {
	g := New(3)
	from := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		reminder := g.Reminder(from)
		date, err := time.Parse("2006-01-02", reminder.Date)
		require.NoError(t, err)
		assert.True(t, date.After(from), reminder.Date)
		assert.True(t, date.Before(from.AddDate(1, 0, 1)), reminder.Date)

		gift := g.Gift()
		assert.Contains(t, []string{"given", "received"}, gift.Direction)
		assert.Regexp(t, `^555-\d{4}$`, g.Phone().Number)
		assert.NotEmpty(t, g.Occasion().Name)
	}
}
