package shell

import (
	"errors"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"emprec/internal/app/forms"
	"emprec/internal/app/router"
	"emprec/internal/domain/employee"
)

// runForm collects the fields of an add or edit form and submits them.
// Rejected fields are asked again until the submit succeeds or the user
// aborts with Ctrl-C.
func (s *Shell) runForm(route router.Route) error {
	fields, err := forms.Prefill(s.store, route.RecordID)
	if err != nil {
		s.println(errorText(s.i18n.Tf("shell.notFoundId", map[string]string{"id": route.RecordID})))
		s.router.Navigate(router.PathList)
		return nil
	}
	if route.Mode == router.FormEdit {
		s.println(hintText(s.i18n.T("shell.editHint")))
	}

	ask := employee.AllFields()
	for {
		for _, field := range ask {
			value, err := s.askField(field, fields.Value(field))
			if errors.Is(err, liner.ErrPromptAborted) {
				s.println(s.i18n.T("shell.cancelled"))
				s.router.Navigate(router.PathList)
				return nil
			}
			if err != nil {
				return err
			}
			fields.Set(field, value)
		}

		_, err := s.submit.Submit(route.RecordID, fields)
		var verr *employee.ValidationError
		switch {
		case err == nil:
			key := "employeeForm.successAdd"
			if route.Mode == router.FormEdit {
				key = "employeeForm.successUpdate"
			}
			s.println(successText(s.i18n.T(key)))
			return nil
		case errors.As(err, &verr):
			ask = ask[:0]
			for _, field := range employee.AllFields() {
				msg, bad := verr.Errors[field]
				if !bad {
					continue
				}
				ask = append(ask, field)
				s.println(errorText(s.i18n.Tf("shell.fieldError", map[string]string{
					"field":   s.i18n.T("employeeForm." + string(field)),
					"message": s.i18n.T(msg),
				})))
			}
		case errors.Is(err, forms.ErrRecordNotFound):
			s.println(errorText(s.i18n.T("employeeForm.errorUpdate")))
			s.router.Navigate(router.PathList)
			return nil
		default:
			return err
		}
	}
}

// askField prompts for one field. An empty answer keeps current. Enumerated
// fields accept the option number, the value or its translation.
func (s *Shell) askField(field employee.Field, current string) (string, error) {
	label := s.i18n.T("employeeForm." + string(field))
	var options []string
	switch field {
	case employee.FieldDepartment:
		for _, d := range employee.Departments() {
			options = append(options, string(d))
		}
	case employee.FieldPosition:
		for _, p := range employee.Positions() {
			options = append(options, string(p))
		}
	case employee.FieldPhone:
		label += " (" + s.i18n.T("employeeForm.phonePlaceholder") + ")"
	case employee.FieldDateOfBirth, employee.FieldDateOfEmployment:
		label += " (YYYY-MM-DD)"
	}

	if len(options) > 0 {
		group := "departments."
		if field == employee.FieldPosition {
			group = "positions."
		}
		var listed []string
		for i, opt := range options {
			listed = append(listed, strconv.Itoa(i+1)+") "+s.i18n.T(group+opt))
		}
		label += " [" + strings.Join(listed, ", ") + "]"
	}
	if current != "" {
		label += " <" + current + ">"
	}

	answer, err := s.in.Prompt(label + ": ")
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return current, nil
	}
	if len(options) > 0 {
		return s.matchOption(field, options, answer), nil
	}
	return answer, nil
}

func (s *Shell) matchOption(field employee.Field, options []string, answer string) string {
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	group := "departments."
	if field == employee.FieldPosition {
		group = "positions."
	}
	for _, opt := range options {
		if employee.EqualFold(opt, answer) || employee.EqualFold(s.i18n.T(group+opt), answer) {
			return opt
		}
	}
	return answer
}
