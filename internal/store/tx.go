package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gitlab.com/dirk.krummacker/pcrm/internal/model"
)

// ContactUpdate lists the contact values to change. Nil fields are left alone. An empty string in
// an optional field clears that field.
type ContactUpdate struct {
	FirstName     *string
	LastName      *string
	Email         *string
	Birthday      *string
	DateMet       *string
	HowMet        *string
	FavoriteColor *string
}

// Empty reports whether there is nothing to update.
func (u ContactUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Birthday == nil &&
		u.DateMet == nil && u.HowMet == nil && u.FavoriteColor == nil
}

// UpdateContact updates the values specified in the update (and only those). It returns
// ErrNotFound if there is no contact with this id.
func (tx *Tx) UpdateContact(ctx context.Context, id int64, u ContactUpdate) error {
	var args []interface{}
	query := "UPDATE contacts SET "
	if u.FirstName != nil {
		args = append(args, *u.FirstName)
		query += "first_name=?, "
	}
	optional := []struct {
		column string
		value  *string
	}{
		{"last_name", u.LastName},
		{"email", u.Email},
		{"birthday", u.Birthday},
		{"date_met", u.DateMet},
		{"how_met", u.HowMet},
		{"favorite_color", u.FavoriteColor},
	}
	for _, field := range optional {
		if field.value == nil {
			continue
		}
		if *field.value == "" {
			args = append(args, nil)
		} else {
			args = append(args, *field.value)
		}
		query += field.column + "=?, "
	}

	// It only makes sense to continue if we have at least one value to update.
	if len(args) == 0 {
		return nil
	}

	query = query[:len(query)-2]
	query += " WHERE id=?"
	args = append(args, id)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return wrap("update contact", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrap("update contact", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ContactExists reports whether there is a contact with this id.
func (tx *Tx) ContactExists(ctx context.Context, id int64) (bool, error) {
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM contacts WHERE id = ?`, id); err != nil {
		return false, wrap("select contact", err)
	}
	return count > 0, nil
}

// insert executes an INSERT statement and returns the id of the new row.
func (tx *Tx) insert(ctx context.Context, op string, query string, args ...interface{}) (int64, error) {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrap(op, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

func (tx *Tx) InsertNote(ctx context.Context, contactID int64, text string, at time.Time) (int64, error) {
	return tx.insert(ctx, "insert note",
		`INSERT INTO notes (contact_id, note_text, created_at) VALUES (?, ?, ?)`,
		contactID, text, at)
}

func (tx *Tx) InsertReminder(ctx context.Context, contactID int64, message, date string, at time.Time) (int64, error) {
	return tx.insert(ctx, "insert reminder",
		`INSERT INTO reminders (contact_id, message, reminder_date, created_at) VALUES (?, ?, ?, ?)`,
		contactID, message, date, at)
}

// TagID looks up a tag by name. The boolean is false if the tag does not exist.
func (tx *Tx) TagID(ctx context.Context, name string) (int64, bool, error) {
	var id int64
	err := tx.GetContext(ctx, &id, `SELECT id FROM tags WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap("select tag", err)
	}
	return id, true, nil
}

func (tx *Tx) InsertTag(ctx context.Context, name string) (int64, error) {
	return tx.insert(ctx, "insert tag", `INSERT INTO tags (name) VALUES (?)`, name)
}

// HasTag reports whether the contact carries the tag.
func (tx *Tx) HasTag(ctx context.Context, contactID, tagID int64) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM contact_tags WHERE contact_id = ? AND tag_id = ?`, contactID, tagID)
	if err != nil {
		return false, wrap("select contact tag", err)
	}
	return count > 0, nil
}

func (tx *Tx) AttachTag(ctx context.Context, contactID, tagID int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO contact_tags (contact_id, tag_id) VALUES (?, ?)`, contactID, tagID)
	return wrap("insert contact tag", err)
}

// DetachTag removes the tag from the contact. The boolean is false if the contact did not carry
// the tag.
func (tx *Tx) DetachTag(ctx context.Context, contactID, tagID int64) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM contact_tags WHERE contact_id = ? AND tag_id = ?`, contactID, tagID)
	if err != nil {
		return false, wrap("delete contact tag", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, wrap("delete contact tag", err)
	}
	return rowsAffected > 0, nil
}

func (tx *Tx) InsertPhone(ctx context.Context, contactID int64, number string, phoneType *string) (int64, error) {
	return tx.insert(ctx, "insert phone",
		`INSERT INTO phones (contact_id, phone_number, phone_type) VALUES (?, ?, ?)`,
		contactID, number, phoneType)
}

func (tx *Tx) InsertPet(ctx context.Context, contactID int64, name string) (int64, error) {
	return tx.insert(ctx, "insert pet",
		`INSERT INTO pets (contact_id, name) VALUES (?, ?)`, contactID, name)
}

func (tx *Tx) InsertPartner(ctx context.Context, contactID int64, name string) (int64, error) {
	return tx.insert(ctx, "insert partner",
		`INSERT INTO partners (contact_id, name) VALUES (?, ?)`, contactID, name)
}

func (tx *Tx) InsertRelationship(ctx context.Context, contact1ID, contact2ID int64, relationshipType string) (int64, error) {
	return tx.insert(ctx, "insert relationship",
		`INSERT INTO relationships (contact1_id, contact2_id, relationship_type) VALUES (?, ?, ?)`,
		contact1ID, contact2ID, relationshipType)
}

// DeleteRelationship removes every relationship between the two contacts, in either direction,
// and returns how many were removed.
func (tx *Tx) DeleteRelationship(ctx context.Context, contact1ID, contact2ID int64) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM relationships
		WHERE (contact1_id = ? AND contact2_id = ?) OR (contact1_id = ? AND contact2_id = ?)`,
		contact1ID, contact2ID, contact2ID, contact1ID)
	if err != nil {
		return 0, wrap("delete relationship", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap("delete relationship", err)
	}
	return rowsAffected, nil
}

func (tx *Tx) InsertOccasion(ctx context.Context, contactID int64, name, date string) (int64, error) {
	return tx.insert(ctx, "insert occasion",
		`INSERT INTO special_occasions (contact_id, name, date) VALUES (?, ?, ?)`,
		contactID, name, date)
}

// OccasionOwner returns the contact id of an occasion. The boolean is false if the occasion does
// not exist.
func (tx *Tx) OccasionOwner(ctx context.Context, occasionID int64) (int64, bool, error) {
	var contactID int64
	err := tx.GetContext(ctx, &contactID,
		`SELECT contact_id FROM special_occasions WHERE id = ?`, occasionID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap("select occasion", err)
	}
	return contactID, true, nil
}

func (tx *Tx) InsertGift(ctx context.Context, gift *model.Gift) (int64, error) {
	return tx.insert(ctx, "insert gift",
		`INSERT INTO gifts (contact_id, occasion_id, description, direction, date) VALUES (?, ?, ?, ?, ?)`,
		gift.ContactId, gift.OccasionId, gift.Description, gift.Direction, gift.Date)
}
