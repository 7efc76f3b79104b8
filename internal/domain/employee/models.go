package employee

import "time"

type Department string

const (
	DepartmentAnalytics Department = "Analytics"
	DepartmentTech      Department = "Tech"
)

func Departments() []Department {
	return []Department{DepartmentAnalytics, DepartmentTech}
}

func (d Department) Valid() bool {
	switch d {
	case DepartmentAnalytics, DepartmentTech:
		return true
	}
	return false
}

type Position string

const (
	PositionJunior Position = "Junior"
	PositionMedior Position = "Medior"
	PositionSenior Position = "Senior"
)

func Positions() []Position {
	return []Position{PositionJunior, PositionMedior, PositionSenior}
}

func (p Position) Valid() bool {
	switch p {
	case PositionJunior, PositionMedior, PositionSenior:
		return true
	}
	return false
}

// Field names a validated attribute. Values match the JSON keys of Employee.
type Field string

const (
	FieldFirstName        Field = "firstName"
	FieldLastName         Field = "lastName"
	FieldEmail            Field = "email"
	FieldPhone            Field = "phone"
	FieldDateOfBirth      Field = "dateOfBirth"
	FieldDateOfEmployment Field = "dateOfEmployment"
	FieldDepartment       Field = "department"
	FieldPosition         Field = "position"
)

func AllFields() []Field {
	return []Field{
		FieldFirstName, FieldLastName, FieldEmail, FieldPhone,
		FieldDateOfBirth, FieldDateOfEmployment, FieldDepartment, FieldPosition,
	}
}

type Employee struct {
	ID               string     `json:"id"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	DateOfBirth      Date       `json:"dateOfBirth"`
	DateOfEmployment Date       `json:"dateOfEmployment"`
	Department       Department `json:"department"`
	Position         Position   `json:"position"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// FullName joins first and last name with a single space.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Fields returns the raw form representation of the record, used to prefill
// an edit form.
func (e Employee) Fields() Fields {
	return Fields{
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		Email:            e.Email,
		Phone:            e.Phone,
		DateOfBirth:      e.DateOfBirth.String(),
		DateOfEmployment: e.DateOfEmployment.String(),
		Department:       string(e.Department),
		Position:         string(e.Position),
	}
}

// Fields is the candidate payload collected by a form. Every value is kept
// as entered so that parse failures can be reported per field.
type Fields struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	DateOfBirth      string `json:"dateOfBirth"`
	DateOfEmployment string `json:"dateOfEmployment"`
	Department       string `json:"department"`
	Position         string `json:"position"`
}

// Value returns the raw value of field, or "" for an unknown field.
func (f Fields) Value(field Field) string {
	switch field {
	case FieldFirstName:
		return f.FirstName
	case FieldLastName:
		return f.LastName
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldDateOfBirth:
		return f.DateOfBirth
	case FieldDateOfEmployment:
		return f.DateOfEmployment
	case FieldDepartment:
		return f.Department
	case FieldPosition:
		return f.Position
	}
	return ""
}

func (f *Fields) Set(field Field, value string) {
	switch field {
	case FieldFirstName:
		f.FirstName = value
	case FieldLastName:
		f.LastName = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldDateOfBirth:
		f.DateOfBirth = value
	case FieldDateOfEmployment:
		f.DateOfEmployment = value
	case FieldDepartment:
		f.Department = value
	case FieldPosition:
		f.Position = value
	}
}

// Patch converts the payload into a full patch. Unparseable dates become the
// zero Date; callers are expected to validate first.
func (f Fields) Patch() Patch {
	birth, _ := ParseDate(f.DateOfBirth)
	employed, _ := ParseDate(f.DateOfEmployment)
	dep := Department(f.Department)
	pos := Position(f.Position)
	return Patch{
		FirstName:        &f.FirstName,
		LastName:         &f.LastName,
		Email:            &f.Email,
		Phone:            &f.Phone,
		DateOfBirth:      &birth,
		DateOfEmployment: &employed,
		Department:       &dep,
		Position:         &pos,
	}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	FirstName        *string
	LastName         *string
	Email            *string
	Phone            *string
	DateOfBirth      *Date
	DateOfEmployment *Date
	Department       *Department
	Position         *Position
}

// Apply merges the patch into e. Identity and timestamps are never touched.
func (p Patch) Apply(e *Employee) {
	if p.FirstName != nil {
		e.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		e.LastName = *p.LastName
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Phone != nil {
		e.Phone = *p.Phone
	}
	if p.DateOfBirth != nil {
		e.DateOfBirth = *p.DateOfBirth
	}
	if p.DateOfEmployment != nil {
		e.DateOfEmployment = *p.DateOfEmployment
	}
	if p.Department != nil {
		e.Department = *p.Department
	}
	if p.Position != nil {
		e.Position = *p.Position
	}
}
