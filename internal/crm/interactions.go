package crm

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/pcrm/internal/activity"
	"gitlab.com/dirk.krummacker/pcrm/internal/calendar"
	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

// InteractionPrefix starts the text of notes created by LogInteraction.
const InteractionPrefix = "Logged interaction: "

// AddNote stores a note and marks the contact as contacted.
func (s *Service) AddNote(ctx context.Context, id int64, text string) (model.Note, error) {
	return s.addNote(ctx, "add_note", activity.ReasonNote, id, text)
}

// LogInteraction records a conversation or meeting as a note and marks the contact as contacted.
func (s *Service) LogInteraction(ctx context.Context, id int64, text string) (model.Note, error) {
	return s.addNote(ctx, "log_interaction", activity.ReasonInteraction, id, text)
}

func (s *Service) addNote(ctx context.Context, operation, reason string, id int64, text string) (model.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Note{}, ErrRequired
	}
	if reason == activity.ReasonInteraction {
		text = InteractionPrefix + text
	}
	note := model.Note{ContactId: id, Text: text, CreatedAt: s.now()}
	err := s.write(ctx, operation, func(tx *store.Tx) error {
		if err := exists(ctx, tx, id); err != nil {
			return err
		}
		var err error
		if note.Id, err = tx.InsertNote(ctx, id, note.Text, note.CreatedAt); err != nil {
			return err
		}
		return s.tracker.MarkContacted(ctx, tx, id, reason)
	})
	if err != nil {
		return model.Note{}, err
	}
	return note, nil
}

// AddReminder stores a reminder and marks the contact as contacted. If requested and a calendar is
// configured, the reminder is also put into the calendar; a failure there is logged but does not
// undo the reminder.
func (s *Service) AddReminder(ctx context.Context, id int64, input api.Reminder) (model.Reminder, error) {
	input.Message = strings.TrimSpace(input.Message)
	if err := check(input); err != nil {
		return model.Reminder{}, err
	}
	reminder := model.Reminder{
		ContactId:    id,
		Message:      input.Message,
		ReminderDate: input.Date,
		CreatedAt:    s.now(),
	}
	err := s.write(ctx, "add_reminder", func(tx *store.Tx) error {
		if err := exists(ctx, tx, id); err != nil {
			return err
		}
		var err error
		if reminder.Id, err = tx.InsertReminder(ctx, id, reminder.Message, reminder.ReminderDate, reminder.CreatedAt); err != nil {
			return err
		}
		return s.tracker.MarkContacted(ctx, tx, id, activity.ReasonReminder)
	})
	if err != nil {
		return model.Reminder{}, err
	}

	if input.Sync {
		contact, err := s.store.Contact(ctx, id)
		if err == nil {
			s.schedule(ctx, calendar.ReminderEvent(model.ReminderEntry{
				Id:           reminder.Id,
				ContactId:    id,
				ReminderDate: reminder.ReminderDate,
				Message:      reminder.Message,
				FirstName:    contact.FirstName,
				LastName:     contact.LastName,
			}))
		}
	}
	return reminder, nil
}

// ListReminders returns the reminders from today on, earliest first.
func (s *Service) ListReminders(ctx context.Context) ([]model.ReminderEntry, error) {
	return s.store.RemindersBetween(ctx, s.today().Format(model.DateLayout), "")
}

// schedule pushes a single event if a calendar is configured.
func (s *Service) schedule(ctx context.Context, event calendar.Event) {
	if s.calendar == nil {
		s.log.Warn("calendar sync requested but no calendar is configured")
		return
	}
	if _, err := s.calendar.Schedule(ctx, event); err != nil {
		s.log.Warn("calendar sync failed", zap.String("kind", event.Kind),
			zap.Int64("record", event.RecordID), zap.Error(err))
	}
}

// SyncResult counts the outcome of SyncCalendar.
type SyncResult struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
}

// SyncCalendar pushes all reminders from today on and all special occasions to the calendar.
// Events pushed before are recognised and left alone.
func (s *Service) SyncCalendar(ctx context.Context) (SyncResult, error) {
	var result SyncResult
	if s.calendar == nil {
		return result, calendar.ErrDisabled
	}
	reminders, err := s.ListReminders(ctx)
	if err != nil {
		return result, err
	}
	occasions, err := s.store.OccasionEntries(ctx)
	if err != nil {
		return result, err
	}

	events := make([]calendar.Event, 0, len(reminders)+len(occasions))
	for _, r := range reminders {
		events = append(events, calendar.ReminderEvent(r))
	}
	for _, o := range occasions {
		events = append(events, calendar.OccasionEvent(o.Occasion, o.FullName()))
	}
	for _, event := range events {
		created, err := s.calendar.Schedule(ctx, event)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Existing++
		}
	}
	s.log.Info("calendar synchronised", zap.Int("created", result.Created), zap.Int("existing", result.Existing))
	return result, nil
}
