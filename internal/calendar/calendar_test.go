package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"gitlab.com/dirk.krummacker/pcrm/internal/config"
	"gitlab.com/dirk.krummacker/pcrm/internal/model"
)

// fakeCalendar records inserted events and answers 409 for ids it has seen before.
type fakeCalendar struct {
	events map[string]gcal.Event
	paths  []string
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.paths = append(f.paths, r.URL.Path)
	var event gcal.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, ok := f.events[event.Id]; ok {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"code":409,"message":"The requested identifier already exists."}}`))
		return
	}
	f.events[event.Id] = event
	event.HtmlLink = "https://calendar.example/" + event.Id
	json.NewEncoder(w).Encode(event)
}

func newTestScheduler(t *testing.T) (*Google, *fakeCalendar) {
	fake := &fakeCalendar{events: map[string]gcal.Event{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	g, err := New(context.Background(), config.Calendar{Enabled: true, CalendarID: "team"}, zap.NewNop(),
		option.WithEndpoint(server.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	return g, fake
}

// TestScheduleReminder expects an all-day event with a stable id in the configured calendar.
func TestScheduleReminder(t *testing.T) {
	g, fake := newTestScheduler(t)
	last := "Doe"
	event := ReminderEvent(model.ReminderEntry{
		Id: 4, ContactId: 1, ReminderDate: "2025-12-31", Message: "Call", FirstName: "Jane", LastName: &last,
	})

	created, err := g.Schedule(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, created)

	require.Len(t, fake.events, 1)
	stored := fake.events[EventID(KindReminder, 4)]
	assert.Equal(t, "Reminder: Call (Jane Doe)", stored.Summary)
	assert.Equal(t, "2025-12-31", stored.Start.Date)
	assert.Equal(t, "2026-01-01", stored.End.Date)
	assert.Empty(t, stored.Recurrence)
	assert.Contains(t, fake.paths[0], "/calendars/team/events")
}

// TestScheduleTwice expects that a second push of the same record is reported as already there.
func TestScheduleTwice(t *testing.T) {
	g, fake := newTestScheduler(t)
	event := OccasionEvent(model.Occasion{Id: 9, ContactId: 2, Name: "Anniversary", Date: "2024-06-01"}, "Sam Lee")

	created, err := g.Schedule(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = g.Schedule(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, fake.events, 1)
	assert.Equal(t, []string{"RRULE:FREQ=YEARLY"}, fake.events[EventID(KindOccasion, 9)].Recurrence)
}

func TestScheduleInvalidDate(t *testing.T) {
	g, _ := newTestScheduler(t)
	_, err := g.Schedule(context.Background(), Event{Kind: KindReminder, RecordID: 1, Date: "tomorrow"})
	assert.Error(t, err)
}

func TestEventID(t *testing.T) {
	id := EventID(KindReminder, 17)
	assert.Equal(t, id, EventID(KindReminder, 17))
	assert.NotEqual(t, id, EventID(KindOccasion, 17))
	assert.NotEqual(t, id, EventID(KindReminder, 18))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), id)
}

func TestNewDisabled(t *testing.T) {
	_, err := New(context.Background(), config.Calendar{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrDisabled)
}
