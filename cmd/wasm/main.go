//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"syscall/js"
	"time"

	"github.com/jaswdr/faker"

	"emprec/internal/app"
	"emprec/internal/app/forms"
	"emprec/internal/app/router"
	"emprec/internal/domain/employee"
	"emprec/internal/domain/store"
	"emprec/internal/platform/config"
	"emprec/internal/platform/i18n"
	"emprec/internal/platform/storage"
)

// The page drives the app through the emp* globals. Every call returns a
// JSON string; failures carry an "error" key.

var (
	a      *app.App
	rt     *router.Router
	submit *forms.Submitter
)

type routeJSON struct {
	View     router.ViewKind   `json:"view"`
	Mode     router.FormMode   `json:"mode,omitempty"`
	RecordID string            `json:"recordId,omitempty"`
	Path     string            `json:"path"`
	Params   map[string]string `json:"params,omitempty"`
}

type stateJSON struct {
	Route      routeJSON          `json:"route"`
	Language   i18n.Language      `json:"language"`
	SearchTerm string             `json:"searchTerm"`
	ViewMode   store.ViewMode     `json:"viewMode"`
	Page       store.Page         `json:"page"`
	PageWindow []int              `json:"pageWindow"`
	Selected   *employee.Employee `json:"selected,omitempty"`
}

func respond(v any) any {
	out, err := json.Marshal(v)
	if err != nil {
		return fail(err)
	}
	return string(out)
}

func fail(err error) any {
	out, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(out)
}

func argString(args []js.Value, i int) string {
	if i >= len(args) || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}

func currentState() stateJSON {
	snap := a.Store.State()
	page := a.Store.PagedView()
	route := rt.Current()
	return stateJSON{
		Route: routeJSON{
			View:     route.View,
			Mode:     route.Mode,
			RecordID: route.RecordID,
			Path:     route.Path,
			Params:   route.Params,
		},
		Language:   snap.Language,
		SearchTerm: snap.SearchTerm,
		ViewMode:   snap.ViewMode,
		Page:       page,
		PageWindow: store.PageWindow(page.Page, page.TotalPages, 2),
		Selected:   snap.Selected,
	}
}

func state(js.Value, []js.Value) any {
	return respond(currentState())
}

func navigate(_ js.Value, args []js.Value) any {
	rt.Navigate(argString(args, 0))
	return respond(currentState())
}

func goBack(js.Value, []js.Value) any {
	rt.GoBack()
	return respond(currentState())
}

func translate(_ js.Value, args []js.Value) any {
	return a.Localizer.T(argString(args, 0))
}

// submitForm takes the edited id (empty for add) and the form fields as JSON.
// Field errors come back translated under "errors".
func submitForm(_ js.Value, args []js.Value) any {
	var fields employee.Fields
	if err := json.Unmarshal([]byte(argString(args, 1)), &fields); err != nil {
		return fail(err)
	}
	rec, err := submit.Submit(argString(args, 0), fields)
	var verr *employee.ValidationError
	if errors.As(err, &verr) {
		translated := make(map[employee.Field]string, len(verr.Errors))
		for field, key := range verr.Errors {
			translated[field] = a.Localizer.T(key)
		}
		return respond(map[string]any{"errors": translated})
	}
	if err != nil {
		return fail(err)
	}
	return respond(map[string]any{"record": rec})
}

func deleteRecord(_ js.Value, args []js.Value) any {
	rec, ok := a.Store.DeleteRecord(argString(args, 0))
	if !ok {
		return fail(store.ErrRecordNotFound)
	}
	return respond(map[string]any{"record": rec})
}

func setSearch(_ js.Value, args []js.Value) any {
	a.Store.SetSearchTerm(argString(args, 0))
	return respond(currentState())
}

func setPage(_ js.Value, args []js.Value) any {
	if len(args) == 0 {
		return fail(store.ErrInvalidPage)
	}
	if err := a.Store.SetPage(args[0].Int()); err != nil {
		return fail(err)
	}
	return respond(currentState())
}

func setPageSize(_ js.Value, args []js.Value) any {
	if len(args) == 0 {
		return fail(store.ErrInvalidPageSize)
	}
	if err := a.Store.SetPageSize(args[0].Int()); err != nil {
		return fail(err)
	}
	return respond(currentState())
}

func setViewMode(_ js.Value, args []js.Value) any {
	if err := a.Store.SetViewMode(store.ViewMode(argString(args, 0))); err != nil {
		return fail(err)
	}
	return respond(currentState())
}

func setLanguage(_ js.Value, args []js.Value) any {
	if err := a.Store.SetLanguage(i18n.Language(argString(args, 0))); err != nil {
		return fail(err)
	}
	js.Global().Get("document").Get("documentElement").Set("lang", string(a.Store.Language()))
	return respond(currentState())
}

// subscribe calls the JS callback with the state JSON after every store
// change and every route change. It returns an unsubscribe function.
func subscribe(_ js.Value, args []js.Value) any {
	if len(args) == 0 || args[0].Type() != js.TypeFunction {
		return js.Undefined()
	}
	cb := args[0]
	push := func() { cb.Invoke(respond(currentState())) }
	stopStore := a.Store.Subscribe(func(store.Snapshot) { push() })
	stopRoute := rt.Subscribe(func(router.Route) { push() })
	var unsubscribe js.Func
	unsubscribe = js.FuncOf(func(js.Value, []js.Value) any {
		stopStore()
		stopRoute()
		unsubscribe.Release()
		return nil
	})
	return unsubscribe
}

func browserLocales() []string {
	var out []string
	langs := js.Global().Get("navigator").Get("languages")
	if langs.Type() != js.TypeObject {
		return out
	}
	for i := 0; i < langs.Length(); i++ {
		out = append(out, langs.Index(i).String())
	}
	return out
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := config.Load()
	cfg.Locales = append(browserLocales(), cfg.Locales...)
	cfg.StorageDriver = "localStorage"

	var backend storage.Storage
	if ls, err := storage.NewLocalStorage(); err != nil {
		logger.Error("localStorage unavailable, keeping data in memory", "err", err)
		cfg.StorageDriver = config.DriverMemory
		backend = storage.NewMemory()
	} else {
		backend = ls
	}
	a = app.NewWithStorage(cfg, backend, logger)
	a.SeedDemo(faker.New(), time.Now())

	rt = a.NewRouter(router.NewBrowserHistory(), nil)
	submit = forms.New(a.Store, forms.WithNavigator(rt, router.PathList), forms.WithLogger(logger))
	rt.Start()

	js.Global().Set("empState", js.FuncOf(state))
	js.Global().Set("empNavigate", js.FuncOf(navigate))
	js.Global().Set("empGoBack", js.FuncOf(goBack))
	js.Global().Set("empT", js.FuncOf(translate))
	js.Global().Set("empSubmit", js.FuncOf(submitForm))
	js.Global().Set("empDelete", js.FuncOf(deleteRecord))
	js.Global().Set("empSetSearch", js.FuncOf(setSearch))
	js.Global().Set("empSetPage", js.FuncOf(setPage))
	js.Global().Set("empSetPageSize", js.FuncOf(setPageSize))
	js.Global().Set("empSetViewMode", js.FuncOf(setViewMode))
	js.Global().Set("empSetLanguage", js.FuncOf(setLanguage))
	js.Global().Set("empSubscribe", js.FuncOf(subscribe))

	select {}
}
