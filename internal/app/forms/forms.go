// Package forms is the submission boundary between an add/edit form and the
// record store.
package forms

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"emprec/internal/domain/employee"
	"emprec/internal/domain/store"
)

var ErrRecordNotFound = errors.New("record not found")

// Navigator is the part of the router a form needs once it is done.
type Navigator interface {
	Navigate(location string) bool
}

type Submitter struct {
	store  *store.Store
	nav    Navigator
	now    func() time.Time
	logger *slog.Logger
	done   string
}

type Option func(*Submitter)

func WithClock(now func() time.Time) Option {
	return func(s *Submitter) { s.now = now }
}

// WithNavigator makes a successful submit navigate to location.
func WithNavigator(nav Navigator, location string) Option {
	return func(s *Submitter) {
		s.nav = nav
		s.done = location
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(s *store.Store, opts ...Option) *Submitter {
	sub := &Submitter{store: s, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(sub)
	}
	return sub
}

// Normalize trims surrounding whitespace from every field and removes inner
// whitespace from the phone number.
func Normalize(fields employee.Fields) employee.Fields {
	return employee.Fields{
		FirstName:        strings.TrimSpace(fields.FirstName),
		LastName:         strings.TrimSpace(fields.LastName),
		Email:            strings.TrimSpace(fields.Email),
		Phone:            employee.NormalizePhone(fields.Phone),
		DateOfBirth:      strings.TrimSpace(fields.DateOfBirth),
		DateOfEmployment: strings.TrimSpace(fields.DateOfEmployment),
		Department:       strings.TrimSpace(fields.Department),
		Position:         strings.TrimSpace(fields.Position),
	}
}

// Submit adds a record when editID is empty and updates editID otherwise.
// Field failures and a duplicate email come back together as a
// *employee.ValidationError; an unknown editID as ErrRecordNotFound.
func (s *Submitter) Submit(editID string, fields employee.Fields) (employee.Employee, error) {
	fields = Normalize(fields)

	result := employee.ValidateAt(fields, s.now())
	errs := result.Errors
	if errs == nil {
		errs = map[employee.Field]string{}
	}
	if _, bad := errs[employee.FieldEmail]; !bad && fields.Email != "" {
		if err := employee.CheckEmailUnique(fields.Email, editID, s.store.ListRecords()); errors.Is(err, employee.ErrDuplicateEmail) {
			errs[employee.FieldEmail] = employee.MsgEmailExists
		}
	}
	if len(errs) > 0 {
		return employee.Employee{}, &employee.ValidationError{Errors: errs}
	}

	var (
		rec employee.Employee
		ok  = true
	)
	if editID == "" {
		rec = s.store.AddRecord(fields)
		s.logger.Debug("record added", "id", rec.ID)
	} else {
		rec, ok = s.store.UpdateRecord(editID, fields.Patch())
		if !ok {
			return employee.Employee{}, ErrRecordNotFound
		}
		s.logger.Debug("record updated", "id", rec.ID)
	}
	if s.nav != nil {
		s.nav.Navigate(s.done)
	}
	return rec, nil
}

// Prefill returns the values an edit form starts from, or empty fields for
// an add form.
func Prefill(s *store.Store, editID string) (employee.Fields, error) {
	if editID == "" {
		return employee.Fields{}, nil
	}
	rec, ok := s.GetRecord(editID)
	if !ok {
		return employee.Fields{}, ErrRecordNotFound
	}
	return rec.Fields(), nil
}
