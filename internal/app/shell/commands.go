package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"emprec/internal/app/demo"
	"emprec/internal/app/report"
	"emprec/internal/app/router"
	"emprec/internal/domain/employee"
	"emprec/internal/domain/store"
	"emprec/internal/platform/i18n"
)

func (s *Shell) initCommands() {
	s.register("help", "help", s.help)
	s.register("list", "list", s.showList)
	s.register("search", "search [term]", s.search)
	s.register("page", "page <n|first|prev|next|last>", s.page)
	s.register("size", "size <5|10|20|50>", s.size)
	s.register("view", "view <list|grid>", s.view)
	s.register("lang", "lang <tr|en>", s.lang)
	s.register("add", "add", s.add)
	s.register("edit", "edit <row|id>", s.edit)
	s.register("delete", "delete <row|id>", s.remove)
	s.register("go", "go <path>", s.goTo)
	s.register("back", "back", s.back)
	s.register("export", "export", s.export)
	s.register("stats", "stats", s.stats)
	s.register("demo", "demo", s.loadDemo)
	s.register("reset", "reset", s.reset)
	s.register("quit", "quit", s.exit)
	s.commands["exit"] = s.commands["quit"]
}

func (s *Shell) help(string) error {
	width := 0
	for _, cmd := range s.commandsList {
		if len(cmd.usage) > width {
			width = len(cmd.usage)
		}
	}
	var b strings.Builder
	for _, cmd := range s.commandsList {
		b.WriteString(padRight(cmd.usage, width+2))
		b.WriteString(s.i18n.T("shell.commands." + cmd.name))
		b.WriteString("\n")
	}
	fmt.Fprint(s.out, b.String())
	return nil
}

func padRight(str string, length int) string {
	if len(str) >= length {
		return str
	}
	return str + strings.Repeat(" ", length-len(str))
}

func (s *Shell) showList(string) error {
	if !s.router.Navigate(router.PathList) && s.list != nil {
		s.list.dirty = true
	}
	return nil
}

func (s *Shell) search(args string) error {
	s.store.SetSearchTerm(args)
	return s.showList("")
}

func (s *Shell) page(args string) error {
	if args == "" {
		return usageError{s.commands["page"].usage}
	}
	view := s.store.PagedView()
	target := view.Page
	switch strings.ToLower(args) {
	case "first":
		target = 1
	case "prev":
		if target > 1 {
			target--
		}
	case "next":
		if target < view.TotalPages {
			target++
		}
	case "last":
		target = store.ClampPage(view.TotalPages, view.TotalPages)
	default:
		n, err := strconv.Atoi(args)
		if err != nil {
			return errors.New(s.i18n.Tf("shell.invalidNumber", map[string]string{"value": args}))
		}
		target = n
	}
	if err := s.store.SetPage(target); err != nil {
		return errors.New(s.i18n.Tf("shell.invalidNumber", map[string]string{"value": args}))
	}
	return s.showList("")
}

func (s *Shell) size(args string) error {
	n, err := strconv.Atoi(args)
	if err != nil {
		return usageError{s.commands["size"].usage}
	}
	if err := s.store.SetPageSize(n); err != nil {
		return errors.New(s.i18n.Tf("shell.invalidValue", map[string]string{"value": args}))
	}
	return s.showList("")
}

func (s *Shell) view(args string) error {
	if err := s.store.SetViewMode(store.ViewMode(strings.ToLower(args))); err != nil {
		return usageError{s.commands["view"].usage}
	}
	return s.showList("")
}

func (s *Shell) lang(args string) error {
	if err := s.store.SetLanguage(i18n.Language(strings.ToLower(args))); err != nil {
		return usageError{s.commands["lang"].usage}
	}
	s.println(successText(s.i18n.T("shell.languageChanged")))
	return nil
}

func (s *Shell) add(string) error {
	s.router.Navigate(router.PathAdd)
	return nil
}

// lookup resolves a row number of the current page or a record id.
func (s *Shell) lookup(args string) (employee.Employee, error) {
	if args == "" {
		return employee.Employee{}, errors.New(s.i18n.Tf("shell.notFoundId", map[string]string{"id": args}))
	}
	if n, err := strconv.Atoi(args); err == nil {
		records := s.store.PagedView().Records
		if n >= 1 && n <= len(records) {
			return records[n-1], nil
		}
	}
	if rec, ok := s.store.GetRecord(args); ok {
		return rec, nil
	}
	return employee.Employee{}, errors.New(s.i18n.Tf("shell.notFoundId", map[string]string{"id": args}))
}

func (s *Shell) edit(args string) error {
	if args == "" {
		return usageError{s.commands["edit"].usage}
	}
	rec, err := s.lookup(args)
	if err != nil {
		return err
	}
	s.router.Navigate(router.EditPath(rec.ID))
	return nil
}

func (s *Shell) remove(args string) error {
	if args == "" {
		return usageError{s.commands["delete"].usage}
	}
	rec, err := s.lookup(args)
	if err != nil {
		return err
	}
	ok, err := s.confirm(rec.FullName() + ": " + s.i18n.T("employeeList.confirmDelete"))
	if err != nil {
		return err
	}
	if !ok {
		s.println(s.i18n.T("shell.cancelled"))
		return nil
	}
	if _, found := s.store.DeleteRecord(rec.ID); !found {
		return errors.New(s.i18n.Tf("shell.notFoundId", map[string]string{"id": rec.ID}))
	}
	s.println(successText(s.i18n.Tf("shell.deleted", map[string]string{"name": rec.FullName()})))
	return nil
}

func (s *Shell) goTo(args string) error {
	if args == "" {
		return usageError{s.commands["go"].usage}
	}
	if !s.router.Navigate(args) {
		s.println(hintText(s.i18n.Tf("shell.location", map[string]string{"path": s.router.CurrentPath()})))
	}
	return nil
}

func (s *Shell) back(string) error {
	s.router.GoBack()
	return nil
}

func (s *Shell) export(string) error {
	state := s.store.State()
	path, err := report.WriteFile(s.exportDir, s.i18n, report.Roster{
		Records:     s.store.FilteredView(),
		SearchTerm:  state.SearchTerm,
		GeneratedAt: s.now(),
	})
	if err != nil {
		s.logger.Warn("report export failed", "dir", s.exportDir, "err", err)
		return errors.New(s.i18n.Tf("shell.exportFailed", map[string]string{"error": err.Error()}))
	}
	s.println(successText(s.i18n.Tf("shell.exported", map[string]string{"path": path})))
	return nil
}

func (s *Shell) stats(string) error {
	st := s.store.Stats()
	s.println(s.i18n.Tf("shell.stats", map[string]string{
		"mutations":     strconv.FormatUint(st.Mutations, 10),
		"notifications": strconv.FormatUint(st.Notifications, 10),
		"failures":      strconv.FormatUint(st.PersistFailures, 10),
	}))
	return nil
}

func (s *Shell) loadDemo(string) error {
	n := demo.Load(s.store, s.faker, s.demoExtra, s.now())
	s.println(successText(s.i18n.Tf("shell.seeded", map[string]string{"count": strconv.Itoa(n)})))
	return s.showList("")
}

func (s *Shell) reset(string) error {
	ok, err := s.confirm(s.i18n.T("shell.confirmReset"))
	if err != nil {
		return err
	}
	if !ok {
		s.println(s.i18n.T("shell.cancelled"))
		return nil
	}
	s.store.ResetAll()
	s.println(successText(s.i18n.T("shell.reset")))
	return s.showList("")
}

func (s *Shell) exit(string) error {
	s.quit = true
	return nil
}
