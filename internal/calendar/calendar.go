// Package calendar pushes reminders and special occasions to Google Calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"gitlab.com/dirk.krummacker/pcrm/internal/config"
	"gitlab.com/dirk.krummacker/pcrm/internal/metrics"
	"gitlab.com/dirk.krummacker/pcrm/internal/model"
)

// Kinds of events.
const (
	KindReminder = "reminder"
	KindOccasion = "occasion"
)

// ErrDisabled is returned by New when the calendar integration is switched off.
var ErrDisabled = errors.New("calendar integration is disabled")

// Event is an all-day calendar entry derived from a reminder or an occasion.
type Event struct {
	Kind     string
	RecordID int64
	Summary  string
	Date     string
	// Yearly repeats the event every year on the same day.
	Yearly bool
}

// Scheduler puts events into a calendar. Schedule reports false if the event was already there.
type Scheduler interface {
	Schedule(ctx context.Context, event Event) (bool, error)
}

// ReminderEvent builds the event for a reminder.
func ReminderEvent(r model.ReminderEntry) Event {
	return Event{
		Kind:     KindReminder,
		RecordID: r.Id,
		Summary:  fmt.Sprintf("Reminder: %s (%s)", r.Message, r.FullName()),
		Date:     r.ReminderDate,
	}
}

// OccasionEvent builds the yearly event for a special occasion of a contact.
func OccasionEvent(o model.Occasion, contactName string) Event {
	return Event{
		Kind:     KindOccasion,
		RecordID: o.Id,
		Summary:  fmt.Sprintf("%s: %s", contactName, o.Name),
		Date:     o.Date,
		Yearly:   true,
	}
}

// namespace scopes the event ids of pcrm.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://gitlab.com/dirk.krummacker/pcrm"))

// EventID derives a stable event id from the kind and the record id, so that pushing the same
// record twice does not create a second event. Google accepts lowercase hex as event id.
func EventID(kind string, recordID int64) string {
	id := uuid.NewSHA1(namespace, []byte(kind+":"+strconv.FormatInt(recordID, 10)))
	return strings.ReplaceAll(id.String(), "-", "")
}

// Google is the Scheduler backed by the Google Calendar API.
type Google struct {
	events     *gcal.EventsService
	calendarID string
	log        *zap.Logger
}

// New creates a Google scheduler from the configuration. The credentials file holds a service
// account key or authorized user credentials. Additional client options, such as a different
// endpoint, are appended.
func New(ctx context.Context, cfg config.Calendar, log *zap.Logger, opts ...option.ClientOption) (*Google, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if cfg.CredentialsFile != "" {
		opts = append([]option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(gcal.CalendarEventsScope),
		}, opts...)
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Google{events: svc.Events, calendarID: calendarID, log: log}, nil
}

func (g *Google) Schedule(ctx context.Context, event Event) (bool, error) {
	day, err := time.Parse(model.DateLayout, event.Date)
	if err != nil {
		return false, fmt.Errorf("invalid event date %q: %w", event.Date, err)
	}
	entry := &gcal.Event{
		Id:      EventID(event.Kind, event.RecordID),
		Summary: event.Summary,
		Start:   &gcal.EventDateTime{Date: day.Format(model.DateLayout)},
		End:     &gcal.EventDateTime{Date: day.AddDate(0, 0, 1).Format(model.DateLayout)},
	}
	if event.Yearly {
		entry.Recurrence = []string{"RRULE:FREQ=YEARLY"}
	}

	created, err := g.events.Insert(g.calendarID, entry).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
		metrics.CalendarSyncs.WithLabelValues("exists").Inc()
		g.log.Debug("calendar event exists", zap.String("id", entry.Id))
		return false, nil
	}
	if err != nil {
		metrics.CalendarSyncs.WithLabelValues("error").Inc()
		return false, fmt.Errorf("failed to create calendar event: %w", err)
	}
	metrics.CalendarSyncs.WithLabelValues("created").Inc()
	g.log.Debug("calendar event created", zap.String("id", created.Id), zap.String("link", created.HtmlLink))
	return true, nil
}
