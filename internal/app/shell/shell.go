// Package shell is the terminal presentation of the records manager. It
// mounts list, form and not-found views for the router and turns typed
// commands into store and router intents.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jaswdr/faker"
	"github.com/peterh/liner"

	"emprec/internal/app/forms"
	"emprec/internal/app/router"
	"emprec/internal/domain/store"
	"emprec/internal/platform/i18n"
)

// Prompter reads one line of input. *liner.State satisfies it.
type Prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type Config struct {
	Store     *store.Store
	Localizer *i18n.Localizer
	In        Prompter
	Out       io.Writer
	ExportDir string
	DemoExtra int
	Faker     faker.Faker
	Now       func() time.Time
	Logger    *slog.Logger
}

type command struct {
	name  string
	usage string
	run   func(args string) error
}

type Shell struct {
	store     *store.Store
	i18n      *i18n.Localizer
	in        Prompter
	out       io.Writer
	exportDir string
	demoExtra int
	faker     faker.Faker
	now       func() time.Time
	logger    *slog.Logger

	router *router.Router
	submit *forms.Submitter

	commands     map[string]*command
	commandsList []*command

	list        *listView
	pendingForm *router.Route
	quit        bool
}

var (
	errorText   = color.New(color.FgRed).SprintFunc()
	successText = color.New(color.FgGreen).SprintFunc()
	titleText   = color.New(color.Bold).SprintFunc()
	hintText    = color.New(color.FgCyan).SprintFunc()
)

func New(cfg Config) *Shell {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "exports"
	}
	s := &Shell{
		store:     cfg.Store,
		i18n:      cfg.Localizer,
		in:        cfg.In,
		out:       cfg.Out,
		exportDir: cfg.ExportDir,
		demoExtra: cfg.DemoExtra,
		faker:     cfg.Faker,
		now:       cfg.Now,
		logger:    cfg.Logger,
		commands:  make(map[string]*command),
	}
	s.initCommands()
	return s
}

// Attach binds the shell to the router that mounts its views.
func (s *Shell) Attach(r *router.Router) {
	s.router = r
	s.submit = forms.New(s.store,
		forms.WithNavigator(r, router.PathList),
		forms.WithClock(s.now),
		forms.WithLogger(s.logger),
	)
}

func (s *Shell) register(name, usage string, run func(args string) error) {
	cmd := &command{name: name, usage: usage, run: run}
	s.commandsList = append(s.commandsList, cmd)
	s.commands[name] = cmd
}

// Complete returns the command names starting with line.
func (s *Shell) Complete(line string) []string {
	var out []string
	for _, cmd := range s.commandsList {
		if strings.HasPrefix(cmd.name, strings.ToLower(line)) {
			out = append(out, cmd.name)
		}
	}
	sort.Strings(out)
	return out
}

// Run reads commands until quit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.println(titleText(s.i18n.T("shell.welcome")))
	for !s.quit {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.flush(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line, err := s.in.Prompt(s.prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.in.AppendHistory(line)
		s.Exec(line)
	}
	return nil
}

func (s *Shell) prompt() string {
	path := router.PathList
	if s.router != nil {
		path = s.router.CurrentPath()
	}
	return "employees:" + path + "> "
}

// Exec runs one command line.
func (s *Shell) Exec(line string) {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	name = strings.ToLower(name)
	cmd, ok := s.commands[name]
	if !ok {
		s.println(errorText(s.i18n.Tf("shell.unknownCommand", map[string]string{"name": name})))
		return
	}
	if err := cmd.run(strings.TrimSpace(args)); err != nil {
		s.report(err)
	}
}

// flush runs a pending form and redraws the list when it changed.
func (s *Shell) flush() error {
	if s.pendingForm != nil {
		route := *s.pendingForm
		s.pendingForm = nil
		if err := s.runForm(route); err != nil {
			return err
		}
	}
	if s.list != nil && s.list.dirty {
		s.list.dirty = false
		s.renderList()
	}
	return nil
}

// usageError is shown with the command usage line.
type usageError struct{ usage string }

func (e usageError) Error() string { return "usage: " + e.usage }

func (s *Shell) report(err error) {
	var uerr usageError
	if errors.As(err, &uerr) {
		s.println(errorText(s.i18n.Tf("shell.usage", map[string]string{"usage": uerr.usage})))
		return
	}
	s.println(errorText(err.Error()))
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

// confirm asks a yes/no question; anything but the localized yes is no.
func (s *Shell) confirm(question string) (bool, error) {
	answer, err := s.in.Prompt(question + " " + s.i18n.T("shell.confirmSuffix") + " ")
	if errors.Is(err, liner.ErrPromptAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer != "" && (answer == s.i18n.T("shell.yes") || answer == "y" || answer == "yes"), nil
}
