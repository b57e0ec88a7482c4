package store

import (
	"context"
	"time"

	"gitlab.com/dirk.krummacker/pcrm/internal/model"
)

// Notes returns the notes of a contact, newest first.
func (s *Store) Notes(ctx context.Context, contactID int64) ([]model.Note, error) {
	notes := []model.Note{}
	err := s.db.SelectContext(ctx, &notes, `
		SELECT id, contact_id, note_text, created_at FROM notes
		WHERE contact_id = ? ORDER BY created_at DESC, id DESC`, contactID)
	return notes, wrap("select notes", err)
}

// Reminders returns the reminders of a contact, earliest first.
func (s *Store) Reminders(ctx context.Context, contactID int64) ([]model.Reminder, error) {
	reminders := []model.Reminder{}
	err := s.db.SelectContext(ctx, &reminders, `
		SELECT id, contact_id, message, reminder_date, created_at FROM reminders
		WHERE contact_id = ? ORDER BY reminder_date ASC, id ASC`, contactID)
	return reminders, wrap("select reminders", err)
}

// Tags returns the names of the tags of a contact.
func (s *Store) Tags(ctx context.Context, contactID int64) ([]string, error) {
	tags := []string{}
	err := s.db.SelectContext(ctx, &tags, `
		SELECT t.name FROM tags t
		JOIN contact_tags ct ON t.id = ct.tag_id
		WHERE ct.contact_id = ? ORDER BY t.name`, contactID)
	return tags, wrap("select tags", err)
}

// AllTags returns every known tag.
func (s *Store) AllTags(ctx context.Context) ([]model.Tag, error) {
	tags := []model.Tag{}
	err := s.db.SelectContext(ctx, &tags, `SELECT id, name FROM tags ORDER BY name`)
	return tags, wrap("select tags", err)
}

func (s *Store) Phones(ctx context.Context, contactID int64) ([]model.Phone, error) {
	phones := []model.Phone{}
	err := s.db.SelectContext(ctx, &phones, `
		SELECT id, contact_id, phone_number, phone_type FROM phones
		WHERE contact_id = ? ORDER BY id`, contactID)
	return phones, wrap("select phones", err)
}

func (s *Store) Pets(ctx context.Context, contactID int64) ([]model.Pet, error) {
	pets := []model.Pet{}
	err := s.db.SelectContext(ctx, &pets, `
		SELECT id, contact_id, name FROM pets WHERE contact_id = ? ORDER BY id`, contactID)
	return pets, wrap("select pets", err)
}

func (s *Store) Partners(ctx context.Context, contactID int64) ([]model.Partner, error) {
	partners := []model.Partner{}
	err := s.db.SelectContext(ctx, &partners, `
		SELECT id, contact_id, name FROM partners WHERE contact_id = ? ORDER BY id`, contactID)
	return partners, wrap("select partners", err)
}

// Relationships returns the contacts related to a contact, in either direction.
func (s *Store) Relationships(ctx context.Context, contactID int64) ([]model.RelatedContact, error) {
	related := []model.RelatedContact{}
	err := s.db.SelectContext(ctx, &related, `
		SELECT contact_id, first_name, last_name, relationship_type FROM (
			SELECT c.id AS contact_id, c.first_name, c.last_name, r.relationship_type
			FROM relationships r
			JOIN contacts c ON c.id = r.contact2_id
			WHERE r.contact1_id = ?
			UNION ALL
			SELECT c.id AS contact_id, c.first_name, c.last_name, r.relationship_type
			FROM relationships r
			JOIN contacts c ON c.id = r.contact1_id
			WHERE r.contact2_id = ?) related
		ORDER BY LOWER(first_name), LOWER(last_name), contact_id`, contactID, contactID)
	return related, wrap("select relationships", err)
}

// AllRelationships returns every relationship, for drawing the relationship graph.
func (s *Store) AllRelationships(ctx context.Context) ([]model.Relationship, error) {
	relationships := []model.Relationship{}
	err := s.db.SelectContext(ctx, &relationships, `
		SELECT id, contact1_id, contact2_id, relationship_type FROM relationships ORDER BY id`)
	return relationships, wrap("select relationships", err)
}

// Occasions returns the special occasions of a contact ordered by date.
func (s *Store) Occasions(ctx context.Context, contactID int64) ([]model.Occasion, error) {
	occasions := []model.Occasion{}
	err := s.db.SelectContext(ctx, &occasions, `
		SELECT id, contact_id, name, date FROM special_occasions
		WHERE contact_id = ? ORDER BY date, id`, contactID)
	return occasions, wrap("select occasions", err)
}

// OccasionEntries returns the special occasions of all contacts ordered by date.
func (s *Store) OccasionEntries(ctx context.Context) ([]model.OccasionEntry, error) {
	entries := []model.OccasionEntry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT o.id, o.contact_id, o.name, o.date, c.first_name, c.last_name
		FROM special_occasions o JOIN contacts c ON o.contact_id = c.id
		ORDER BY o.date, o.id`)
	return entries, wrap("select occasions", err)
}

// Gifts returns the gifts of a contact, newest first, together with the name of the occasion.
func (s *Store) Gifts(ctx context.Context, contactID int64) ([]model.Gift, error) {
	gifts := []model.Gift{}
	err := s.db.SelectContext(ctx, &gifts, `
		SELECT g.id, g.contact_id, g.occasion_id, g.description, g.direction, g.date,
			o.name AS occasion_name
		FROM gifts g
		LEFT JOIN special_occasions o ON g.occasion_id = o.id
		WHERE g.contact_id = ?
		ORDER BY g.date DESC, g.id DESC`, contactID)
	return gifts, wrap("select gifts", err)
}

const reminderEntryColumns = `r.id, r.contact_id, r.reminder_date, r.message, c.first_name, c.last_name`

// RemindersBefore returns the reminders dated strictly before the given date, earliest first.
func (s *Store) RemindersBefore(ctx context.Context, date string) ([]model.ReminderEntry, error) {
	entries := []model.ReminderEntry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT `+reminderEntryColumns+`
		FROM reminders r JOIN contacts c ON r.contact_id = c.id
		WHERE r.reminder_date < ?
		ORDER BY r.reminder_date ASC, r.id ASC`, date)
	return entries, wrap("select reminders", err)
}

// RemindersBetween returns the reminders dated from `from` up to and including `to`, earliest
// first. An empty `to` means no upper bound.
func (s *Store) RemindersBetween(ctx context.Context, from, to string) ([]model.ReminderEntry, error) {
	entries := []model.ReminderEntry{}
	var err error
	if to == "" {
		err = s.db.SelectContext(ctx, &entries, `
			SELECT `+reminderEntryColumns+`
			FROM reminders r JOIN contacts c ON r.contact_id = c.id
			WHERE r.reminder_date >= ?
			ORDER BY r.reminder_date ASC, r.id ASC`, from)
	} else {
		err = s.db.SelectContext(ctx, &entries, `
			SELECT `+reminderEntryColumns+`
			FROM reminders r JOIN contacts c ON r.contact_id = c.id
			WHERE r.reminder_date >= ? AND r.reminder_date <= ?
			ORDER BY r.reminder_date ASC, r.id ASC`, from, to)
	}
	return entries, wrap("select reminders", err)
}

// Suggestions returns the contacts that were never contacted or not since threshold. Contacts
// that were never contacted come first, then the rest from the oldest contact on.
func (s *Store) Suggestions(ctx context.Context, threshold time.Time) ([]model.Suggestion, error) {
	suggestions := []model.Suggestion{}
	err := s.db.SelectContext(ctx, &suggestions, `
		SELECT id, first_name, last_name, last_contacted_at
		FROM contacts
		WHERE last_contacted_at IS NULL OR last_contacted_at < ?
		ORDER BY (last_contacted_at IS NULL) DESC, last_contacted_at ASC, LOWER(first_name), LOWER(last_name), id`,
		threshold.UTC())
	return suggestions, wrap("select suggestions", err)
}
