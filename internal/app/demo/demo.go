// Package demo seeds an empty store with a sample roster.
package demo

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jaswdr/faker"

	"emprec/internal/domain/employee"
	"emprec/internal/domain/store"
)

// Roster is the fixed sample staff list.
func Roster() []employee.Fields {
	return []employee.Fields{
		{FirstName: "Ahmet", LastName: "Yılmaz", Email: "ahmet.yilmaz@company.com", Phone: "5551234567", DateOfBirth: "1985-03-15", DateOfEmployment: "2020-01-15", Department: "Tech", Position: "Senior"},
		{FirstName: "Mehmet", LastName: "Demir", Email: "mehmet.demir@company.com", Phone: "5552345678", DateOfBirth: "1990-07-22", DateOfEmployment: "2019-06-01", Department: "Analytics", Position: "Medior"},
		{FirstName: "Ayşe", LastName: "Kaya", Email: "ayse.kaya@company.com", Phone: "5553456789", DateOfBirth: "1992-11-08", DateOfEmployment: "2021-03-10", Department: "Tech", Position: "Junior"},
		{FirstName: "Fatma", LastName: "Özkan", Email: "fatma.ozkan@company.com", Phone: "5554567890", DateOfBirth: "1988-05-12", DateOfEmployment: "2018-09-01", Department: "Analytics", Position: "Senior"},
		{FirstName: "Ali", LastName: "Çelik", Email: "ali.celik@company.com", Phone: "5555678901", DateOfBirth: "1995-12-03", DateOfEmployment: "2022-01-20", Department: "Tech", Position: "Junior"},
		{FirstName: "Zeynep", LastName: "Arslan", Email: "zeynep.arslan@company.com", Phone: "5556789012", DateOfBirth: "1987-08-18", DateOfEmployment: "2017-11-15", Department: "Analytics", Position: "Medior"},
		{FirstName: "Mustafa", LastName: "Koç", Email: "mustafa.koc@company.com", Phone: "5557890123", DateOfBirth: "1983-01-25", DateOfEmployment: "2016-04-01", Department: "Tech", Position: "Senior"},
		{FirstName: "Elif", LastName: "Şahin", Email: "elif.sahin@company.com", Phone: "5558901234", DateOfBirth: "1991-09-14", DateOfEmployment: "2020-08-01", Department: "Analytics", Position: "Medior"},
		{FirstName: "Emre", LastName: "Yıldız", Email: "emre.yildiz@company.com", Phone: "5559012345", DateOfBirth: "1993-04-30", DateOfEmployment: "2021-10-01", Department: "Tech", Position: "Junior"},
		{FirstName: "Selin", LastName: "Aydın", Email: "selin.aydin@company.com", Phone: "5550123456", DateOfBirth: "1989-06-07", DateOfEmployment: "2019-02-01", Department: "Analytics", Position: "Senior"},
	}
}

// Generate returns n random records that pass validation at now. Emails are
// numbered so they never collide with each other or the fixed roster.
func Generate(gen faker.Faker, n int, now time.Time) []employee.Fields {
	person := gen.Person()
	departments := make([]string, 0, len(employee.Departments()))
	for _, d := range employee.Departments() {
		departments = append(departments, string(d))
	}
	positions := make([]string, 0, len(employee.Positions()))
	for _, p := range employee.Positions() {
		positions = append(positions, string(p))
	}

	out := make([]employee.Fields, 0, n)
	for i := 0; i < n; i++ {
		first := person.FirstNameMale()
		if gen.Bool() {
			first = person.FirstNameFemale()
		}
		last := person.LastName()
		birth := employee.NewDate(gen.IntBetween(now.Year()-60, now.Year()-20), time.Month(gen.IntBetween(1, 12)), gen.IntBetween(1, 28))
		hired := employee.NewDate(gen.IntBetween(now.Year()-15, now.Year()-1), time.Month(gen.IntBetween(1, 12)), gen.IntBetween(1, 28))
		out = append(out, employee.Fields{
			FirstName:        first,
			LastName:         last,
			Email:            fmt.Sprintf("%s.%s.%d@example.com", emailPart(first), emailPart(last), i+1),
			Phone:            gen.Numerify("5#########"),
			DateOfBirth:      birth.String(),
			DateOfEmployment: hired.String(),
			Department:       gen.RandomStringElement(departments),
			Position:         gen.RandomStringElement(positions),
		})
	}
	return out
}

func emailPart(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

// Seed replaces the collection with the roster plus extra generated records,
// but only when the store is empty. It reports how many records were added.
func Seed(s *store.Store, gen faker.Faker, extra int, now time.Time) int {
	if s.Len() > 0 {
		slog.Debug("demo seeding skipped, store not empty", "records", s.Len())
		return 0
	}
	return Load(s, gen, extra, now)
}

// Load resets the store and adds the roster unconditionally.
func Load(s *store.Store, gen faker.Faker, extra int, now time.Time) int {
	batch := Roster()
	if extra > 0 {
		batch = append(batch, Generate(gen, extra, now)...)
	}
	s.ResetAll()
	for _, fields := range batch {
		s.AddRecord(fields)
	}
	return len(batch)
}
