// Package crm implements the operations of the personal CRM on top of the store. Both the command
// line and the web service call into a Service; contacts are addressed by id, and names are turned
// into ids with Resolve first.
package crm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/pcrm/internal/activity"
	"gitlab.com/dirk.krummacker/pcrm/internal/calendar"
	"gitlab.com/dirk.krummacker/pcrm/internal/metrics"
	"gitlab.com/dirk.krummacker/pcrm/internal/resolver"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
)

var (
	ErrAlreadyTagged     = errors.New("contact already has this tag")
	ErrNotTagged         = errors.New("contact does not have this tag")
	ErrUnknownTag        = errors.New("tag does not exist")
	ErrSelfRelationship  = errors.New("a contact cannot be related to itself")
	ErrUnknownOccasion   = errors.New("occasion does not belong to the contact")
	ErrRelationshipUnset = errors.New("contacts are not related")

	ErrRequired         = errors.New("value is required")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidDirection = errors.New("direction must be 'given' or 'received'")
	ErrInvalidValue     = errors.New("invalid value")
)

// IsValidation reports whether err was caused by invalid input.
func IsValidation(err error) bool {
	for _, target := range []error{ErrRequired, ErrInvalidDate, ErrInvalidEmail, ErrInvalidDirection, ErrInvalidValue} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// DefaultSuggestionDays is the threshold of Suggest when none is configured.
const DefaultSuggestionDays = 30

// validate checks the API documents with the same tags gin uses for binding.
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.SetTagName("binding")
}

// check validates a document and translates the first failure into one of the validation errors.
func check(document interface{}) error {
	err := validate.Struct(document)
	if err == nil {
		return nil
	}
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) || len(failures) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	failure := failures[0]
	field := failure.Field()
	switch failure.Tag() {
	case "required", "min":
		return fmt.Errorf("%w: %s", ErrRequired, field)
	case "datetime":
		return fmt.Errorf("%w: %s %q", ErrInvalidDate, field, failure.Value())
	case "email":
		return fmt.Errorf("%w: %q", ErrInvalidEmail, failure.Value())
	case "oneof":
		return fmt.Errorf("%w: %q", ErrInvalidDirection, failure.Value())
	}
	return fmt.Errorf("%w: %s", ErrInvalidValue, field)
}

// Service bundles the store with the resolver and the activity tracker.
type Service struct {
	store    *store.Store
	resolver *resolver.Resolver
	tracker  *activity.Tracker
	calendar calendar.Scheduler
	log      *zap.Logger
	now      func() time.Time
	days     int
}

// Option configures a Service.
type Option func(*Service)

// WithCalendar enables pushing reminders and occasions to a calendar.
func WithCalendar(scheduler calendar.Scheduler) Option {
	return func(s *Service) {
		s.calendar = scheduler
	}
}

// WithClock replaces the wall clock, for the timestamps as well as for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithSuggestionDays sets the default threshold of Suggest. Values below one are ignored.
func WithSuggestionDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.days = days
		}
	}
}

// New returns a service on top of the store. Without options it uses the system clock in UTC and
// DefaultSuggestionDays.
func New(st *store.Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    st,
		resolver: resolver.New(st.DB()),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		days:     DefaultSuggestionDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tracker = activity.NewWithClock(s.now)
	return s
}

// Resolve turns a name into a contact id. See resolver.Resolver.Resolve.
func (s *Service) Resolve(ctx context.Context, name string, chooser resolver.Chooser) (int64, error) {
	id, err := s.resolver.Resolve(ctx, name, chooser)
	if err != nil {
		s.log.Debug("name not resolved", zap.String("name", name), zap.Error(err))
		return 0, err
	}
	s.log.Debug("name resolved", zap.String("name", name), zap.Int64("id", id))
	return id, nil
}

// Ping checks the database connection.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// today is the current date at midnight UTC.
func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// write runs fn in a transaction and counts the operation.
func (s *Service) write(ctx context.Context, operation string, fn func(tx *store.Tx) error) error {
	err := s.store.WithTx(ctx, fn)
	metrics.Operations.WithLabelValues(operation, metrics.Status(err)).Inc()
	if err != nil {
		s.log.Debug("operation failed", zap.String("operation", operation), zap.Error(err))
	}
	return err
}

// exists returns store.ErrNotFound unless the contact exists.
func exists(ctx context.Context, tx *store.Tx, id int64) error {
	found, err := tx.ContactExists(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return store.ErrNotFound
	}
	return nil
}
