// Package router maps locations to the active view and keeps the mounted
// view, the session history and the record store in step.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"emprec/internal/domain/store"
	"emprec/internal/platform/i18n"
)

type ViewKind string

const (
	ViewList     ViewKind = "list"
	ViewForm     ViewKind = "form"
	ViewNotFound ViewKind = "not-found"
)

type FormMode string

const (
	FormAdd  FormMode = "add"
	FormEdit FormMode = "edit"
)

const (
	PathList = "/"
	PathAdd  = "/employees/add"
)

func EditPath(id string) string {
	return "/employees/edit/" + url.PathEscape(id)
}

// Route is the resolved active view.
type Route struct {
	View     ViewKind
	Mode     FormMode
	RecordID string
	Path     string
	Params   map[string]string
	Query    url.Values
}

// View is a presentation surface the router mounts. Unmount is called on
// the previous view before the next one is mounted.
type View interface {
	Mount(Route)
	Unmount()
}

// ViewFactory builds the view for a route. A nil View mounts nothing.
type ViewFactory func(Route) View

type Router struct {
	mu      sync.Mutex
	mux     *chi.Mux
	store   *store.Store
	history History
	views   ViewFactory
	i18n    *i18n.Localizer
	logger  *slog.Logger

	current   Route
	location  string
	mounted   View
	listeners []routeListener
	nextID    uint64
	stops     []func()
}

type routeListener struct {
	id uint64
	fn func(Route)
}

type Option func(*Router)

func WithViews(views ViewFactory) Option {
	return func(r *Router) { r.views = views }
}

// WithLocalizer keeps l on the store language.
func WithLocalizer(l *i18n.Localizer) Option {
	return func(r *Router) { r.i18n = l }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(s *store.Store, history History, opts ...Option) *Router {
	if history == nil {
		history = NewMemoryHistory(PathList)
	}
	r := &Router{store: s, history: history, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.mux = r.routes()
	return r
}

func (r *Router) routes() *chi.Mux {
	mux := chi.NewRouter()
	mux.Get(PathList, func(w http.ResponseWriter, req *http.Request) {
		resolved(w, Route{View: ViewList})
	})
	mux.Get(PathAdd, func(w http.ResponseWriter, req *http.Request) {
		resolved(w, Route{View: ViewForm, Mode: FormAdd})
	})
	mux.Get("/employees/edit/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		if decoded, err := url.PathUnescape(id); err == nil {
			id = decoded
		}
		if _, ok := r.store.GetRecord(id); id == "" || !ok {
			resolved(w, Route{View: ViewNotFound})
			return
		}
		resolved(w, Route{View: ViewForm, Mode: FormEdit, RecordID: id, Params: map[string]string{"id": id}})
	})
	mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		resolved(w, Route{View: ViewNotFound})
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		resolved(w, Route{View: ViewNotFound})
	})
	return mux
}

// resolution captures what a route handler decided. It stands in for the
// response a mux would normally write.
type resolution struct {
	header http.Header
	route  Route
	ok     bool
}

func (w *resolution) Header() http.Header {
	if w.header == nil {
		w.header = http.Header{}
	}
	return w.header
}

func (w *resolution) Write(b []byte) (int, error) { return len(b), nil }
func (w *resolution) WriteHeader(int)             {}

func resolved(w http.ResponseWriter, route Route) {
	if res, ok := w.(*resolution); ok {
		res.route = route
		res.ok = true
	}
}

// Resolve maps location to a route without side effects on the store or
// the mounted view.
func (r *Router) Resolve(location string) Route {
	if location == "" {
		location = PathList
	}
	u, err := url.Parse(location)
	if err != nil || !strings.HasPrefix(u.Path, "/") {
		return Route{View: ViewNotFound, Path: location, Params: map[string]string{}, Query: url.Values{}}
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u.RequestURI(), nil)
	res := &resolution{}
	if err == nil {
		r.mux.ServeHTTP(res, req)
	}
	route := res.route
	if !res.ok {
		route = Route{View: ViewNotFound}
	}
	route.Path = u.Path
	route.Query = u.Query()
	if route.Params == nil {
		route.Params = map[string]string{}
	}
	return route
}

// Start resolves the current location, then follows history pops and the
// store language.
func (r *Router) Start() {
	r.apply(r.history.Location())
	stopHistory := r.history.Listen(func(location string) {
		r.apply(location)
	})
	stops := []func(){stopHistory}
	if r.i18n != nil {
		r.i18n.SetLanguage(r.store.Language())
		stops = append(stops, r.store.Subscribe(func(snap store.Snapshot) {
			if r.i18n.Language() != snap.Language {
				r.i18n.SetLanguage(snap.Language)
			}
		}))
	}
	r.mu.Lock()
	r.stops = stops
	r.mu.Unlock()
}

// Stop detaches from history and the store and unmounts the active view.
func (r *Router) Stop() {
	r.mu.Lock()
	stops := r.stops
	r.stops = nil
	mounted := r.mounted
	r.mounted = nil
	r.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
	if mounted != nil {
		mounted.Unmount()
	}
}

// Navigate pushes location and re-resolves. Navigating to the current
// location does nothing and reports false.
func (r *Router) Navigate(location string) bool {
	if location == "" {
		location = PathList
	}
	r.mu.Lock()
	same := location == r.location
	r.mu.Unlock()
	if same {
		return false
	}
	r.history.Push(location)
	r.apply(location)
	return true
}

// GoBack steps back through history, or navigates to the list when there is
// nothing to go back to.
func (r *Router) GoBack() {
	if !r.history.Back() {
		r.Navigate(PathList)
	}
}

func (r *Router) apply(location string) {
	route := r.Resolve(location)
	switch {
	case route.View == ViewForm && route.Mode == FormEdit:
		if err := r.store.SetSelectedRecord(route.RecordID); err != nil {
			r.logger.Warn("edit target vanished", "id", route.RecordID, "err", err)
			route = Route{View: ViewNotFound, Path: route.Path, Params: map[string]string{}, Query: route.Query}
		}
	case route.View == ViewForm && route.Mode == FormAdd:
		if _, ok := r.store.SelectedRecord(); ok {
			r.store.ClearSelectedRecord()
		}
	}

	r.mu.Lock()
	prev := r.mounted
	r.mounted = nil
	r.current = route
	r.location = location
	r.mu.Unlock()

	if prev != nil {
		prev.Unmount()
	}
	var next View
	if r.views != nil {
		next = r.views(route)
	}
	if next != nil {
		next.Mount(route)
	}

	r.mu.Lock()
	r.mounted = next
	listeners := append([]routeListener(nil), r.listeners...)
	r.mu.Unlock()

	r.logger.Debug("route resolved", "path", route.Path, "view", string(route.View))
	for _, l := range listeners {
		l.fn(route)
	}
}

// Subscribe registers fn for every route transition.
func (r *Router) Subscribe(fn func(Route)) (unsubscribe func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.listeners = append(r.listeners, routeListener{id: id, fn: fn})
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, l := range r.listeners {
			if l.id == id {
				r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Router) CurrentPath() string {
	return r.Current().Path
}

// Params returns the path parameters of the active route.
func (r *Router) Params() map[string]string {
	out := map[string]string{}
	for k, v := range r.Current().Params {
		out[k] = v
	}
	return out
}

// QueryParams returns the first value of each query parameter.
func (r *Router) QueryParams() map[string]string {
	out := map[string]string{}
	for k, v := range r.Current().Query {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
