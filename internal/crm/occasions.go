package crm

import (
	"context"
	"strings"

	"gitlab.com/dirk.krummacker/pcrm/internal/calendar"
	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

// AddOccasion stores a special occasion such as an anniversary. Like reminders, occasions can be
// pushed to the calendar, where they repeat every year.
func (s *Service) AddOccasion(ctx context.Context, id int64, input api.Occasion) (model.Occasion, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := check(input); err != nil {
		return model.Occasion{}, err
	}
	occasion := model.Occasion{ContactId: id, Name: input.Name, Date: input.Date}
	err := s.write(ctx, "add_occasion", func(tx *store.Tx) error {
		if err := exists(ctx, tx, id); err != nil {
			return err
		}
		var err error
		occasion.Id, err = tx.InsertOccasion(ctx, id, occasion.Name, occasion.Date)
		return err
	})
	if err != nil {
		return model.Occasion{}, err
	}

	if input.Sync {
		if contact, err := s.store.Contact(ctx, id); err == nil {
			s.schedule(ctx, calendar.OccasionEvent(occasion, contact.FullName()))
		}
	}
	return occasion, nil
}

// ListOccasions returns the special occasions of the contact ordered by date.
func (s *Service) ListOccasions(ctx context.Context, id int64) ([]model.Occasion, error) {
	if _, err := s.store.Contact(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Occasions(ctx, id)
}

// AddGift records a gift given to or received from a contact, optionally for one of the contact's
// occasions.
func (s *Service) AddGift(ctx context.Context, id int64, input api.Gift) (model.Gift, error) {
	input.Description = strings.TrimSpace(input.Description)
	input.Direction = strings.ToLower(strings.TrimSpace(input.Direction))
	if err := check(input); err != nil {
		return model.Gift{}, err
	}
	gift := model.Gift{
		ContactId:   id,
		OccasionId:  input.OccasionId,
		Description: input.Description,
		Direction:   input.Direction,
		Date:        optional(&input.Date),
	}
	err := s.write(ctx, "add_gift", func(tx *store.Tx) error {
		if err := exists(ctx, tx, id); err != nil {
			return err
		}
		if gift.OccasionId != nil {
			owner, found, err := tx.OccasionOwner(ctx, *gift.OccasionId)
			if err != nil {
				return err
			}
			if !found || owner != id {
				return ErrUnknownOccasion
			}
		}
		var err error
		gift.Id, err = tx.InsertGift(ctx, &gift)
		return err
	})
	if err != nil {
		return model.Gift{}, err
	}
	return gift, nil
}

// ListGifts returns the gifts given to or received from the contact, newest first.
func (s *Service) ListGifts(ctx context.Context, id int64) ([]model.Gift, error) {
	if _, err := s.store.Contact(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Gifts(ctx, id)
}
