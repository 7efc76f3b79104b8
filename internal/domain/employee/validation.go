package employee

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Message keys resolve through the localization index.
const (
	MsgRequired           = "validation.required"
	MsgNameTooShort       = "validation.nameTooShort"
	MsgNameTooLong        = "validation.nameTooLong"
	MsgInvalidEmail       = "validation.invalidEmail"
	MsgInvalidPhone       = "validation.invalidPhone"
	MsgInvalidDate        = "validation.invalidDate"
	MsgBirthInFuture      = "validation.birthInFuture"
	MsgBirthTooOld        = "validation.birthTooOld"
	MsgEmploymentInFuture = "validation.employmentInFuture"
	MsgInvalidDepartment  = "validation.invalidDepartment"
	MsgInvalidPosition    = "validation.invalidPosition"
	MsgEmailExists        = "validation.emailExists"
)

const (
	NameMinLength = 2
	NameMaxLength = 50
	MaxAgeYears   = 100
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(\+90|0)?5[0-9]{9}$`)
)

// Result is the outcome of validating a candidate. Errors maps each failing
// field to a message key and is empty when Valid.
type Result struct {
	Valid  bool
	Errors map[Field]string
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	out := make(map[Field]string, len(r.Errors))
	for field, msg := range r.Errors {
		out[field] = msg
	}
	return &ValidationError{Errors: out}
}

// Fields lists the failing fields in a stable order.
func (r Result) Fields() []Field {
	out := make([]Field, 0, len(r.Errors))
	for field := range r.Errors {
		out = append(out, field)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validator accumulates field failures. The first message recorded for a
// field wins.
type Validator struct {
	errors map[Field]string
}

func NewValidator() *Validator {
	return &Validator{errors: make(map[Field]string, 4)}
}

func (v *Validator) Add(field Field, message string) {
	if v == nil || message == "" {
		return
	}
	if _, exists := v.errors[field]; exists {
		return
	}
	v.errors[field] = message
}

func (v *Validator) HasErrors() bool {
	return v != nil && len(v.errors) > 0
}

func (v *Validator) Result() Result {
	out := make(map[Field]string, len(v.errors))
	for field, msg := range v.errors {
		out[field] = msg
	}
	return Result{Valid: len(out) == 0, Errors: out}
}

func (v *Validator) Name(field Field, value string) {
	trimmed := strings.TrimSpace(norm.NFC.String(value))
	if trimmed == "" {
		v.Add(field, MsgRequired)
		return
	}
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n < NameMinLength:
		v.Add(field, MsgNameTooShort)
	case n > NameMaxLength:
		v.Add(field, MsgNameTooLong)
	}
}

func (v *Validator) Email(field Field, value string) {
	if value == "" {
		v.Add(field, MsgRequired)
		return
	}
	if !emailPattern.MatchString(value) {
		v.Add(field, MsgInvalidEmail)
	}
}

func (v *Validator) Phone(field Field, value string) {
	compact := NormalizePhone(value)
	if compact == "" {
		v.Add(field, MsgRequired)
		return
	}
	if !phonePattern.MatchString(compact) {
		v.Add(field, MsgInvalidPhone)
	}
}

// Date parses raw and rejects dates after today. ok is false when the value
// was rejected.
func (v *Validator) Date(field Field, raw string, today Date) (Date, bool) {
	if strings.TrimSpace(raw) == "" {
		v.Add(field, MsgRequired)
		return Date{}, false
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		v.Add(field, MsgInvalidDate)
		return Date{}, false
	}
	if parsed.After(today) {
		if field == FieldDateOfBirth {
			v.Add(field, MsgBirthInFuture)
		} else {
			v.Add(field, MsgEmploymentInFuture)
		}
		return parsed, false
	}
	return parsed, true
}

func (v *Validator) BirthDate(field Field, raw string, now time.Time) {
	parsed, ok := v.Date(field, raw, DateOf(now))
	if !ok {
		return
	}
	// The cutoff day itself is rejected: its midnight lies before the same
	// instant a hundred years ago.
	if !parsed.After(DateOf(now.AddDate(-MaxAgeYears, 0, 0))) {
		v.Add(field, MsgBirthTooOld)
	}
}

func (v *Validator) Department(field Field, value string) {
	if !Department(value).Valid() {
		v.Add(field, MsgInvalidDepartment)
	}
}

func (v *Validator) Position(field Field, value string) {
	if !Position(value).Valid() {
		v.Add(field, MsgInvalidPosition)
	}
}

// NormalizePhone strips every whitespace rune from a phone number.
func NormalizePhone(value string) string {
	return strings.Join(strings.Fields(value), "")
}

// Validate checks candidate against the wall clock.
func Validate(candidate Fields) Result {
	return ValidateAt(candidate, time.Now())
}

// ValidateAt checks every field of candidate independently and reports all
// failures at once. now only anchors the date rules.
func ValidateAt(candidate Fields, now time.Time) Result {
	v := NewValidator()
	v.Name(FieldFirstName, candidate.FirstName)
	v.Name(FieldLastName, candidate.LastName)
	v.Email(FieldEmail, candidate.Email)
	v.Phone(FieldPhone, candidate.Phone)
	v.BirthDate(FieldDateOfBirth, candidate.DateOfBirth, now)
	v.Date(FieldDateOfEmployment, candidate.DateOfEmployment, DateOf(now))
	v.Department(FieldDepartment, candidate.Department)
	v.Position(FieldPosition, candidate.Position)
	return v.Result()
}

// CheckEmailUnique fails with ErrDuplicateEmail when a record other than
// excludeID already uses email, compared case-insensitively.
func CheckEmailUnique(email, excludeID string, records []Employee) error {
	for _, rec := range records {
		if rec.ID == excludeID {
			continue
		}
		if EqualFold(rec.Email, email) {
			return ErrDuplicateEmail
		}
	}
	return nil
}
