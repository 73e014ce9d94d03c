// Package menu runs the interactive numbered menu.
//
// HOW A TURN WORKS:
// ─────────────────
//  1. Print the status block and every visible Action.
//  2. Read a choice and find the matching Action.
//  3. Run it. Whatever error it returns is turned into one line of output
//     by console.Describe; the loop then starts the next turn.
//
// The menu never stops because an action failed. Only "0", end of input,
// or an interrupt end the loop, and all three are a normal exit.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/utils/console"
)

// HandlerFunc is the body of a menu action. It prompts through p and
// returns an error for the menu to report.
type HandlerFunc func(ctx context.Context, p *Prompter) error

// Action is one numbered menu entry.
type Action struct {
	Key   string
	Label string

	// Visible reports whether the entry is offered (and accepted) right
	// now. Nil means always.
	Visible func() bool

	Run HandlerFunc
}

func (a Action) visible() bool {
	return a.Visible == nil || a.Visible()
}

// Menu wires actions to a Printer.
type Menu struct {
	printer *console.Printer
	actions []Action
	status  func() string
	log     *slog.Logger
}

// New returns a Menu offering actions in the given order. status, when not
// nil, produces the line shown at the top of every turn.
func New(p *console.Printer, actions []Action, status func() string, log *slog.Logger) *Menu {
	if log == nil {
		log = slog.Default()
	}
	return &Menu{printer: p, actions: actions, status: status, log: log}
}

// Run shows the menu until the user exits, input ends, or ctx is
// cancelled. It returns nil in all three cases; a non-nil error means the
// input could not be read.
func (m *Menu) Run(ctx context.Context, in io.Reader) error {
	p := NewPrompter(in, m.printer)
	defer p.Close()

	m.printer.Println("Welcome to the Student Registration and Login System")
	m.printer.Println("This system supports registration, secure login, and student management.")

	for {
		m.showMenu()

		choice, err := p.Ask(ctx, fmt.Sprintf("\nEnter your choice (0-%s): ", m.lastKey()))
		if err != nil {
			return m.finish(err)
		}
		choice = strings.TrimSpace(choice)

		if choice == "0" {
			m.printer.Println("\nThank you for using the Student System. Goodbye.")
			return nil
		}

		action, ok := m.lookup(choice)
		if !ok {
			m.printer.Println("Invalid choice. Please enter a number from the menu.")
			continue
		}

		if err := m.dispatch(ctx, action, p); err != nil {
			if errors.Is(err, ErrInterrupted) || errors.Is(err, io.EOF) {
				return m.finish(err)
			}
			m.report(action, err)
		}
	}
}

// dispatch runs one action, converting a panic into an error so a single
// broken action cannot take the program down.
func (m *Menu) dispatch(ctx context.Context, a Action, p *Prompter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("menu action panicked",
				slog.String("action", a.Label),
				slog.Any("panic", r))
			err = fmt.Errorf("%v", r)
		}
	}()
	return a.Run(ctx, p)
}

func (m *Menu) report(a Action, err error) {
	msg := console.Describe(err)

	switch {
	case errors.Is(err, storage.ErrCorruptData):
		m.printer.Warn("%s", msg)
	case console.Expected(err):
		m.printer.Error("%s", msg)
		m.log.Debug("menu action rejected",
			slog.String("action", a.Label),
			slog.String("error", err.Error()))
	default:
		m.printer.Error("%s", msg)
		console.LogError(m.log, "menu action failed", err)
	}
}

func (m *Menu) finish(err error) error {
	switch {
	case errors.Is(err, ErrInterrupted):
		m.printer.Println("\n\nProgram interrupted. Exiting.")
		return nil
	case errors.Is(err, io.EOF):
		m.printer.Println("\nThank you for using the Student System. Goodbye.")
		return nil
	default:
		return fmt.Errorf("menu.Run: read input: %w", err)
	}
}

func (m *Menu) showMenu() {
	m.printer.Println()
	m.printer.Rule("=", console.RuleWidth)
	if m.status != nil {
		m.printer.Println(m.status())
	}
	m.printer.Rule("=", console.RuleWidth)

	for _, a := range m.actions {
		if a.visible() {
			m.printer.Printf("%s. %s\n", a.Key, a.Label)
		}
	}
	m.printer.Println("0. Exit")
}

func (m *Menu) lookup(choice string) (Action, bool) {
	for _, a := range m.actions {
		if a.Key == choice && a.visible() {
			return a, true
		}
	}
	return Action{}, false
}

// lastKey is the key of the last action, hidden or not, so the prompt range
// stays the same whether or not someone is logged in.
func (m *Menu) lastKey() string {
	if len(m.actions) == 0 {
		return "0"
	}
	return m.actions[len(m.actions)-1].Key
}
