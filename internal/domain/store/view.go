package store

import "emprec/internal/domain/employee"

type ViewMode string

const (
	ViewList ViewMode = "list"
	ViewGrid ViewMode = "grid"
)

func (m ViewMode) Valid() bool {
	return m == ViewList || m == ViewGrid
}

const DefaultPageSize = 10

// PageSizes lists the allowed items-per-page values.
func PageSizes() []int {
	return []int{5, 10, 20, 50}
}

func ValidPageSize(n int) bool {
	for _, size := range PageSizes() {
		if size == n {
			return true
		}
	}
	return false
}

// Page is one slice of the filtered collection.
type Page struct {
	Records    []employee.Employee `json:"records"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"totalPages"`
}

// Empty reports whether the requested page holds no records.
func (p Page) Empty() bool {
	return len(p.Records) == 0
}

// FilterRecords keeps the records whose first name, last name, email,
// department or position contains term, ignoring case. A blank term keeps
// everything. The result is a new slice.
func FilterRecords(records []employee.Employee, term string) []employee.Employee {
	out := make([]employee.Employee, 0, len(records))
	if term == "" {
		return append(out, records...)
	}
	for _, rec := range records {
		if matches(rec, term) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec employee.Employee, term string) bool {
	for _, field := range []string{rec.FirstName, rec.LastName, rec.Email, string(rec.Department), string(rec.Position)} {
		if employee.ContainsFold(field, term) {
			return true
		}
	}
	return false
}

// Paginate slices records for a 1-based page. A page past the end yields an
// empty slice; the page number is never adjusted. The offset is only computed
// for pages that exist, so any page number is safe.
func Paginate(records []employee.Employee, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(records)
	result := Page{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
		Records:    []employee.Employee{},
	}
	if page > result.TotalPages {
		return result
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	result.Records = append(result.Records, records[start:end]...)
	return result
}

// ClampPage maps page into [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if totalPages < 1 || page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// PageWindow returns the page numbers within radius of current, bounded by
// [1, totalPages].
func PageWindow(current, totalPages, radius int) []int {
	if totalPages < 1 {
		return nil
	}
	start := current - radius
	if start < 1 {
		start = 1
	}
	end := current + radius
	if end > totalPages {
		end = totalPages
	}
	var pages []int
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
