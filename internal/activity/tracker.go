// Package activity maintains the last contacted timestamp of contacts.
package activity

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"gitlab.com/dirk.krummacker/pcrm/internal/metrics"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
)

// Reasons for marking a contact. They label the metrics.
const (
	ReasonNote        = "note"
	ReasonReminder    = "reminder"
	ReasonInteraction = "interaction"
)

// Tracker stamps contacts as contacted. It is called once for every note, reminder and logged
// interaction, within the transaction that records it, and never by reading operations.
type Tracker struct {
	now func() time.Time
}

// New returns a tracker that uses the wall clock in UTC.
func New() *Tracker {
	return NewWithClock(func() time.Time { return time.Now().UTC() })
}

// NewWithClock returns a tracker with a custom time source, mostly for tests.
func NewWithClock(now func() time.Time) *Tracker {
	return &Tracker{now: now}
}

// Now returns the time the tracker would stamp, in UTC.
func (t *Tracker) Now() time.Time {
	return t.now().UTC()
}

// MarkContacted sets the last contacted timestamp of the contact to the current time, replacing
// any earlier value. An unknown id is not an error.
func (t *Tracker) MarkContacted(ctx context.Context, exec sqlx.ExecerContext, contactID int64, reason string) error {
	_, err := exec.ExecContext(ctx,
		`UPDATE contacts SET last_contacted_at = ? WHERE id = ?`, t.Now(), contactID)
	if err != nil {
		return store.Wrap("mark contacted", err)
	}
	metrics.ContactsMarked.WithLabelValues(reason).Inc()
	return nil
}
