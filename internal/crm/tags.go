package crm

import (
	"context"
	"strings"

	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
)

// TagContact attaches a tag to a contact, creating the tag on first use.
func (s *Service) TagContact(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrRequired
	}
	return s.write(ctx, "tag_contact", func(tx *store.Tx) error {
		if err := exists(ctx, tx, id); err != nil {
			return err
		}
		tagID, found, err := tx.TagID(ctx, name)
		if err != nil {
			return err
		}
		if !found {
			if tagID, err = tx.InsertTag(ctx, name); err != nil {
				return err
			}
		} else {
			tagged, err := tx.HasTag(ctx, id, tagID)
			if err != nil {
				return err
			}
			if tagged {
				return ErrAlreadyTagged
			}
		}
		return tx.AttachTag(ctx, id, tagID)
	})
}

// UntagContact removes a tag from a contact. The tag itself is kept.
func (s *Service) UntagContact(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrRequired
	}
	return s.write(ctx, "untag_contact", func(tx *store.Tx) error {
		if err := exists(ctx, tx, id); err != nil {
			return err
		}
		tagID, found, err := tx.TagID(ctx, name)
		if err != nil {
			return err
		}
		if !found {
			return ErrUnknownTag
		}
		removed, err := tx.DetachTag(ctx, id, tagID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrNotTagged
		}
		return nil
	})
}

// ListTags returns every tag in alphabetical order.
func (s *Service) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.store.AllTags(ctx)
}
