package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gitlab.com/dirk.krummacker/pcrm/internal/model"
)

// maxInt is the largest possible int value
const maxInt = int(^uint(0) >> 1)

// AddContact inserts the contact and returns the newly assigned id.
func (s *Store) AddContact(ctx context.Context, contact *model.Contact) (int64, error) {
	result, err := s.insert.ExecContext(ctx, contact)
	if err != nil {
		return 0, wrap("insert contact", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, wrap("insert contact", err)
	}
	return id, nil
}

// Contact returns the contact with the given id, or ErrNotFound.
func (s *Store) Contact(ctx context.Context, id int64) (model.Contact, error) {
	var contacts []model.Contact
	if err := s.selectWhereId.SelectContext(ctx, &contacts, id); err != nil {
		return model.Contact{}, wrap("select contact", err)
	}
	if len(contacts) == 0 {
		return model.Contact{}, ErrNotFound
	}
	return contacts[0], nil
}

// DeleteContact deletes the contact and, through the foreign keys, everything that belongs to it.
// It returns ErrNotFound if there was no such contact.
func (s *Store) DeleteContact(ctx context.Context, id int64) error {
	result, err := s.deleteWhereId.ExecContext(ctx, id)
	if err != nil {
		return wrap("delete contact", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrap("delete contact", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListContacts returns all contacts ordered by name. If tag is not empty, only the contacts
// carrying that tag are returned.
func (s *Store) ListContacts(ctx context.Context, tag string) ([]model.Contact, error) {
	contacts := []model.Contact{}
	var err error
	if tag != "" {
		err = s.db.SelectContext(ctx, &contacts, `
			SELECT `+contactColumns+`
			FROM contacts
			WHERE id IN (
				SELECT ct.contact_id FROM contact_tags ct JOIN tags t ON t.id = ct.tag_id
				WHERE t.name = ?)
			ORDER BY LOWER(first_name), LOWER(last_name), id`, tag)
	} else {
		err = s.db.SelectContext(ctx, &contacts, `
			SELECT `+contactColumns+`
			FROM contacts
			ORDER BY LOWER(first_name), LOWER(last_name), id`)
	}
	if err != nil {
		return nil, wrap("list contacts", err)
	}
	return contacts, nil
}

// Filter narrows down FindContacts. Zero values mean "no restriction".
type Filter struct {
	// FirstName and LastName are matched as the beginning of the respective name.
	FirstName string
	LastName  string
	// BirthMonth and BirthDay match the birthday regardless of the year. Both must be set.
	BirthMonth int
	BirthDay   int
	Tag        string
	// Query is matched anywhere in the first name, the last name or the email.
	Query  string
	Limit  int
	Offset int
	// OrderBy is one of the keys of OrderColumns, "id" if empty.
	OrderBy    string
	Descending bool
}

// OrderColumns are the allowed values for Filter.OrderBy and the columns they sort by.
var OrderColumns = map[string]string{
	"id":            "id",
	"firstname":     "first_name",
	"lastname":      "last_name",
	"email":         "email",
	"birthday":      "birthday",
	"lastcontacted": "last_contacted_at",
}

// FindContacts returns the contacts matching the filter.
func (s *Store) FindContacts(ctx context.Context, f Filter) ([]model.Contact, error) {
	orderBy := "id"
	if f.OrderBy != "" {
		column, ok := OrderColumns[f.OrderBy]
		if !ok {
			return nil, fmt.Errorf("invalid order column %q", f.OrderBy)
		}
		orderBy = column
	}
	direction := "ASC"
	if f.Descending {
		direction = "DESC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = maxInt
	}

	var where []string
	var args []interface{}
	if f.FirstName != "" {
		where = append(where, "first_name LIKE ?")
		args = append(args, f.FirstName+"%")
	}
	if f.LastName != "" {
		where = append(where, "last_name LIKE ?")
		args = append(args, f.LastName+"%")
	}
	if f.BirthMonth != 0 || f.BirthDay != 0 {
		where = append(where, "SUBSTR(birthday, 6, 5) = ?")
		args = append(args, fmt.Sprintf("%02d-%02d", f.BirthMonth, f.BirthDay))
	}
	if f.Tag != "" {
		where = append(where, `id IN (
			SELECT ct.contact_id FROM contact_tags ct JOIN tags t ON t.id = ct.tag_id
			WHERE t.name = ?)`)
		args = append(args, f.Tag)
	}
	if f.Query != "" {
		where = append(where, "(first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)")
		pattern := "%" + f.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}

	query := "SELECT " + contactColumns + " FROM contacts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s %s LIMIT ? OFFSET ?", orderBy, direction)
	args = append(args, limit, f.Offset)

	contacts := []model.Contact{}
	if err := s.db.SelectContext(ctx, &contacts, query, args...); err != nil {
		return nil, wrap("find contacts", err)
	}
	return contacts, nil
}

// SearchableFields are the contact columns accepted by SearchFields.
var SearchableFields = []string{
	"first_name", "last_name", "email", "birthday", "date_met", "how_met", "favorite_color",
}

// SearchFields returns the contacts where every given column contains the given value.
func (s *Store) SearchFields(ctx context.Context, criteria map[string]string) ([]model.Contact, error) {
	fields := make([]string, 0, len(criteria))
	for field := range criteria {
		if !contains(SearchableFields, field) {
			return nil, fmt.Errorf("field %q is not searchable", field)
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	query := "SELECT " + contactColumns + " FROM contacts"
	var where []string
	var args []interface{}
	for _, field := range fields {
		where = append(where, field+" LIKE ?")
		args = append(args, "%"+criteria[field]+"%")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY LOWER(first_name), LOWER(last_name), id"

	contacts := []model.Contact{}
	if err := s.db.SelectContext(ctx, &contacts, query, args...); err != nil {
		return nil, wrap("search contacts", err)
	}
	return contacts, nil
}

// contains returns true if a string is present in a slice.
func contains(slice []string, str string) bool {
	for _, v := range slice {
		if v == str {
			return true
		}
	}
	return false
}
