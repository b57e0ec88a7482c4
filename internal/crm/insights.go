package crm

import (
	"context"
	"fmt"

	"gitlab.com/dirk.krummacker/pcrm/internal/model"
)

// UpcomingDays is how far the dashboard looks ahead.
const UpcomingDays = 7

// Suggest returns the contacts that were never contacted or not within the last days, the never
// contacted ones first and then the longest uncontacted. Zero days means the configured default.
func (s *Service) Suggest(ctx context.Context, days int) ([]model.Suggestion, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative", ErrInvalidValue)
	}
	if days == 0 {
		days = s.days
	}
	threshold := s.now().AddDate(0, 0, -days)
	return s.store.Suggestions(ctx, threshold)
}

// SuggestionDays is the threshold Suggest uses for zero days.
func (s *Service) SuggestionDays() int {
	return s.days
}

// Dashboard returns the overdue reminders, the reminders of the coming week including today, and
// the contact suggestions.
func (s *Service) Dashboard(ctx context.Context) (model.Dashboard, error) {
	var dashboard model.Dashboard
	var err error
	today := s.today()
	from := today.Format(model.DateLayout)
	to := today.AddDate(0, 0, UpcomingDays).Format(model.DateLayout)

	if dashboard.Overdue, err = s.store.RemindersBefore(ctx, from); err != nil {
		return dashboard, err
	}
	if dashboard.Upcoming, err = s.store.RemindersBetween(ctx, from, to); err != nil {
		return dashboard, err
	}
	if dashboard.Suggestions, err = s.Suggest(ctx, 0); err != nil {
		return dashboard, err
	}
	return dashboard, nil
}
