package employee

import (
	"errors"
	"sort"
	"strings"
)

var ErrDuplicateEmail = errors.New("email already in use")

// ValidationError carries every field failure of a rejected candidate.
type ValidationError struct {
	Errors map[Field]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, string(field))
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}
