package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"emprec/internal/app/router"
	"emprec/internal/domain/employee"
	"emprec/internal/domain/store"
)

// View builds the view the router mounts for route.
func (s *Shell) View(route router.Route) router.View {
	switch route.View {
	case router.ViewList:
		return &listView{shell: s}
	case router.ViewForm:
		return &formView{shell: s}
	default:
		return &notFoundView{shell: s}
	}
}

// listView redraws before the next prompt whenever the store changes while
// it is mounted.
type listView struct {
	shell       *Shell
	dirty       bool
	unsubscribe func()
}

func (v *listView) Mount(router.Route) {
	v.dirty = true
	v.unsubscribe = v.shell.store.Subscribe(func(store.Snapshot) { v.dirty = true })
	v.shell.list = v
}

func (v *listView) Unmount() {
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
	if v.shell.list == v {
		v.shell.list = nil
	}
}

type formView struct {
	shell *Shell
}

func (v *formView) Mount(route router.Route) {
	title := "employeeForm.addTitle"
	if route.Mode == router.FormEdit {
		title = "employeeForm.editTitle"
	}
	v.shell.println(titleText(v.shell.i18n.T(title)))
	v.shell.pendingForm = &route
}

func (v *formView) Unmount() {
	v.shell.pendingForm = nil
}

type notFoundView struct {
	shell *Shell
}

func (v *notFoundView) Mount(route router.Route) {
	v.shell.println(errorText(v.shell.i18n.T("notFound.title")))
	v.shell.println(v.shell.i18n.T("notFound.description"))
	v.shell.println(hintText(v.shell.i18n.Tf("shell.location", map[string]string{"path": route.Path})))
}

func (v *notFoundView) Unmount() {}

// renderList prints the current page. A page left past the end by a delete
// or a filter change is pulled back to the last page first.
func (s *Shell) renderList() {
	page := s.store.PagedView()
	if page.Empty() && page.TotalPages > 0 {
		_ = s.store.SetPage(store.ClampPage(page.Page, page.TotalPages))
		page = s.store.PagedView()
		if s.list != nil {
			s.list.dirty = false
		}
	}
	state := s.store.State()

	s.println(titleText(s.i18n.T("employeeList.title")))
	if state.SearchTerm != "" {
		s.println(hintText(s.i18n.Tf("shell.search", map[string]string{"term": state.SearchTerm})))
	}
	if page.Total == 0 {
		s.println(s.i18n.T("employeeList.noEmployees"))
		if state.SearchTerm == "" {
			s.println(hintText(s.i18n.T("employeeList.addFirstEmployee")))
		}
		return
	}

	if state.ViewMode == store.ViewGrid {
		s.renderGrid(page)
	} else {
		s.renderTable(page)
	}

	s.println(s.i18n.Tf("shell.summary", map[string]string{
		"total": strconv.Itoa(page.Total),
		"page":  strconv.Itoa(page.Page),
		"pages": strconv.Itoa(page.TotalPages),
		"size":  strconv.Itoa(page.PageSize),
	}))
	if page.TotalPages > 1 {
		s.println(s.i18n.Tf("shell.pages", map[string]string{"pages": pageWindow(page.Page, page.TotalPages)}))
	}
}

// pageWindow renders the numbers around current, with first and last pages
// and gaps marked.
func pageWindow(current, total int) string {
	window := store.PageWindow(current, total, 2)
	var parts []string
	if len(window) > 0 && window[0] > 1 {
		parts = append(parts, "1")
		if window[0] > 2 {
			parts = append(parts, "...")
		}
	}
	for _, p := range window {
		if p == current {
			parts = append(parts, "["+strconv.Itoa(p)+"]")
			continue
		}
		parts = append(parts, strconv.Itoa(p))
	}
	if n := len(window); n > 0 && window[n-1] < total {
		if window[n-1] < total-1 {
			parts = append(parts, "...")
		}
		parts = append(parts, strconv.Itoa(total))
	}
	return strings.Join(parts, " ")
}

func (s *Shell) department(d employee.Department) string {
	return s.i18n.T("departments." + string(d))
}

func (s *Shell) position(p employee.Position) string {
	return s.i18n.T("positions." + string(p))
}

func (s *Shell) renderTable(page store.Page) {
	table := tablewriter.NewWriter(s.out)
	table.SetHeader([]string{
		"#",
		s.i18n.T("employeeForm.firstName"),
		s.i18n.T("employeeForm.lastName"),
		s.i18n.T("employeeForm.dateOfEmployment"),
		s.i18n.T("employeeForm.dateOfBirth"),
		s.i18n.T("employeeForm.phone"),
		s.i18n.T("employeeForm.email"),
		s.i18n.T("employeeForm.department"),
		s.i18n.T("employeeForm.position"),
	})
	for i, rec := range page.Records {
		table.Append([]string{
			strconv.Itoa(i + 1),
			rec.FirstName,
			rec.LastName,
			rec.DateOfEmployment.String(),
			rec.DateOfBirth.String(),
			rec.Phone,
			rec.Email,
			s.department(rec.Department),
			s.position(rec.Position),
		})
	}
	table.SetAutoFormatHeaders(false)
	table.Render()
}

const gridColumns = 3

func (s *Shell) renderGrid(page store.Page) {
	table := tablewriter.NewWriter(s.out)
	table.SetAutoWrapText(false)
	table.SetRowLine(true)
	row := make([]string, 0, gridColumns)
	for i, rec := range page.Records {
		row = append(row, fmt.Sprintf("#%d %s\n%s / %s\n%s\n%s\n%s: %s",
			i+1, rec.FullName(),
			s.department(rec.Department), s.position(rec.Position),
			rec.Email,
			rec.Phone,
			s.i18n.T("employeeForm.dateOfEmployment"), rec.DateOfEmployment.String(),
		))
		if len(row) == gridColumns {
			table.Append(row)
			row = make([]string, 0, gridColumns)
		}
	}
	if len(row) > 0 {
		for len(row) < gridColumns {
			row = append(row, "")
		}
		table.Append(row)
	}
	table.Render()
}
