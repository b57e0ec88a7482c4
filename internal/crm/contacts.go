package crm

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/pcrm/internal/metrics"
	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

// AddContact stores a new contact and returns it with its id. The first name is required.
func (s *Service) AddContact(ctx context.Context, input api.Contact) (model.Contact, error) {
	if input.FirstName == nil || strings.TrimSpace(*input.FirstName) == "" {
		return model.Contact{}, ErrRequired
	}
	if err := check(input); err != nil {
		return model.Contact{}, err
	}

	contact := model.Contact{
		FirstName:     strings.TrimSpace(*input.FirstName),
		LastName:      optional(input.LastName),
		Email:         optional(input.Email),
		Birthday:      optional(input.Birthday),
		DateMet:       optional(input.DateMet),
		HowMet:        optional(input.HowMet),
		FavoriteColor: optional(input.FavoriteColor),
		CreatedAt:     s.now(),
	}
	id, err := s.store.AddContact(ctx, &contact)
	metrics.Operations.WithLabelValues("add_contact", metrics.Status(err)).Inc()
	if err != nil {
		return model.Contact{}, err
	}
	contact.Id = id
	s.log.Debug("contact added", zap.Int64("id", id))
	return contact, nil
}

// optional trims a value and turns an empty one into nil.
func optional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Contact returns a single contact without its related records.
func (s *Service) Contact(ctx context.Context, id int64) (model.Contact, error) {
	return s.store.Contact(ctx, id)
}

// ListContacts returns all contacts ordered by name, optionally only those with the given tag.
func (s *Service) ListContacts(ctx context.Context, tag string) ([]model.Contact, error) {
	return s.store.ListContacts(ctx, strings.TrimSpace(tag))
}

// FindContacts returns the contacts matching the filter.
func (s *Service) FindContacts(ctx context.Context, filter store.Filter) ([]model.Contact, error) {
	if filter.BirthMonth < 0 || filter.BirthMonth > 12 || filter.BirthDay < 0 || filter.BirthDay > 31 {
		return nil, ErrInvalidDate
	}
	if _, ok := store.OrderColumns[filter.OrderBy]; filter.OrderBy != "" && !ok {
		return nil, ErrInvalidValue
	}
	return s.store.FindContacts(ctx, filter)
}

// AdvancedSearch returns the contacts where each given field contains the given text. Empty
// criteria are ignored.
func (s *Service) AdvancedSearch(ctx context.Context, criteria map[string]string) ([]model.Contact, error) {
	cleaned := make(map[string]string, len(criteria))
	for field, value := range criteria {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if !searchable(field) {
			return nil, ErrInvalidValue
		}
		cleaned[field] = value
	}
	return s.store.SearchFields(ctx, cleaned)
}

func searchable(field string) bool {
	for _, f := range store.SearchableFields {
		if f == field {
			return true
		}
	}
	return false
}

// ViewContact collects everything known about a contact. It does not change the contact.
func (s *Service) ViewContact(ctx context.Context, id int64) (model.ContactDetails, error) {
	var details model.ContactDetails
	var err error
	if details.Contact, err = s.store.Contact(ctx, id); err != nil {
		return details, err
	}
	if details.Tags, err = s.store.Tags(ctx, id); err != nil {
		return details, err
	}
	if details.Notes, err = s.store.Notes(ctx, id); err != nil {
		return details, err
	}
	if details.Reminders, err = s.store.Reminders(ctx, id); err != nil {
		return details, err
	}
	if details.Phones, err = s.store.Phones(ctx, id); err != nil {
		return details, err
	}
	if details.Pets, err = s.store.Pets(ctx, id); err != nil {
		return details, err
	}
	if details.Partners, err = s.store.Partners(ctx, id); err != nil {
		return details, err
	}
	if details.Relationships, err = s.store.Relationships(ctx, id); err != nil {
		return details, err
	}
	if details.Occasions, err = s.store.Occasions(ctx, id); err != nil {
		return details, err
	}
	if details.Gifts, err = s.store.Gifts(ctx, id); err != nil {
		return details, err
	}
	return details, nil
}

// EditContact changes the values present in the update. An empty optional value clears it; the
// first name cannot be cleared.
func (s *Service) EditContact(ctx context.Context, id int64, input api.Contact) (model.Contact, error) {
	if input.FirstName != nil && strings.TrimSpace(*input.FirstName) == "" {
		return model.Contact{}, ErrRequired
	}
	checked := input
	for _, value := range []**string{&checked.Email, &checked.Birthday, &checked.DateMet} {
		if *value != nil && strings.TrimSpace(**value) == "" {
			*value = nil
		}
	}
	if err := check(checked); err != nil {
		return model.Contact{}, err
	}
	update := store.ContactUpdate{
		FirstName:     trimmed(input.FirstName),
		LastName:      trimmed(input.LastName),
		Email:         trimmed(input.Email),
		Birthday:      trimmed(input.Birthday),
		DateMet:       trimmed(input.DateMet),
		HowMet:        trimmed(input.HowMet),
		FavoriteColor: trimmed(input.FavoriteColor),
	}
	err := s.write(ctx, "edit_contact", func(tx *store.Tx) error {
		if update.Empty() {
			return exists(ctx, tx, id)
		}
		return tx.UpdateContact(ctx, id, update)
	})
	if err != nil {
		return model.Contact{}, err
	}
	return s.store.Contact(ctx, id)
}

// trimmed trims a value but keeps nil and empty apart.
func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	t := strings.TrimSpace(*value)
	return &t
}

// DeleteContact removes the contact and everything that belongs to it.
func (s *Service) DeleteContact(ctx context.Context, id int64) error {
	err := s.store.DeleteContact(ctx, id)
	metrics.Operations.WithLabelValues("delete_contact", metrics.Status(err)).Inc()
	if err == nil {
		s.log.Debug("contact deleted", zap.Int64("id", id))
	}
	return err
}
