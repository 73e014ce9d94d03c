// Package student contains the menu actions for the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// The menu expects actions with the signature:
//
//	func(ctx context.Context, p *menu.Prompter) error
//
// That signature has no room for the directory or the session. Each
// factory below accepts those dependencies and returns a function with the
// exact signature the menu needs:
//
//	{Key: "1", Label: "Register New Student", Run: student.Register(dir)}
//	//                                             ^^^^^^^^^^^^^^^^^^^^
//	//                         Register(dir) is called ONCE at startup.
//	//                         The returned func runs every time the
//	//                         user picks option 1.
//
// Handlers only prompt and print. Rules live in the directory service;
// an error returned here is described to the user by the menu loop.
package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aanand-mishra/student-directory/internal/cli/menu"
	"github.com/aanand-mishra/student-directory/internal/session"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
	"github.com/aanand-mishra/student-directory/internal/utils/console"
	"github.com/aanand-mishra/student-directory/internal/validation"
)

// sectionWidth is the width of the rules around each action's heading.
const sectionWidth = 40

// Directory is the part of the directory service the menu uses.
// *directory.Store satisfies it.
type Directory interface {
	Register(name, id, email, password string) (types.Student, error)
	Authenticate(id, password string) (types.Student, error)
	Get(id string) (types.Student, error)
	List() []types.Student
	Search(query string) []types.Student
	Delete(id string) (types.Student, error)
}

// Actions returns the full menu in display order. Profile and Logout are
// only offered while someone is logged in.
func Actions(dir Directory, sess *session.Session) []menu.Action {
	return []menu.Action{
		{Key: "1", Label: "Register New Student", Run: Register(dir)},
		{Key: "2", Label: "Login", Run: Login(dir, sess)},
		{Key: "3", Label: "View All Students", Run: List(dir)},
		{Key: "4", Label: "Search Student", Run: Search(dir)},
		{Key: "5", Label: "Delete Student", Run: Delete(dir, sess)},
		{Key: "6", Label: "View My Profile", Visible: sess.Authenticated, Run: Profile(dir, sess)},
		{Key: "7", Label: "Logout", Visible: sess.Authenticated, Run: Logout(dir, sess)},
	}
}

// Status returns the status line shown above the menu.
func Status(dir Directory, sess *session.Session) func() string {
	return func() string {
		id, ok := sess.Current()
		if !ok {
			return "Status: Guest (not logged in)"
		}
		return fmt.Sprintf("Status: Logged in as %s (%s)", displayName(dir, id), id)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Register handles option 1.
// Asks for name, ID, email and password, then creates the record.
//
// Success output:
//
//	Success: Student 'Ada Lovelace' registered.
//
// A failed save still registers the student for this run; the success line
// is printed and the save error returned.
// ─────────────────────────────────────────────────────────────────────────────
func Register(dir Directory) menu.HandlerFunc {
	return func(ctx context.Context, p *menu.Prompter) error {
		slog.Debug("registering a student")
		p.Heading("Student Registration", "-", sectionWidth)

		answers, err := askAll(ctx, p,
			"Enter full name: ",
			"Enter unique student ID: ",
			"Enter email address: ",
			fmt.Sprintf("Set a password (minimum %d characters): ", validation.MinPasswordLength),
		)
		if err != nil {
			return err
		}

		student, err := dir.Register(answers[0], answers[1], answers[2], answers[3])
		if err != nil && !errors.Is(err, storage.ErrPersistence) {
			return err
		}

		p.Success("Success: Student '%s' registered.", student.Name)
		return err
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Login handles option 2.
// Checks the password and starts a session for the student.
//
// Logging in as the student who is already logged in is allowed (it counts
// as another login). Logging in as someone else requires logging out
// first; that is checked before the password so a refused attempt does not
// touch the login counter.
// ─────────────────────────────────────────────────────────────────────────────
func Login(dir Directory, sess *session.Session) menu.HandlerFunc {
	return func(ctx context.Context, p *menu.Prompter) error {
		p.Heading("Student Login", "-", sectionWidth)

		answers, err := askAll(ctx, p, "Student ID: ", "Password: ")
		if err != nil {
			return err
		}
		id := validation.NormalizeID(answers[0])
		slog.Debug("logging in", slog.String("id", id))

		if id != "" {
			if err := sess.Check(id); err != nil {
				return err
			}
		}

		student, err := dir.Authenticate(id, answers[1])
		if err != nil && !errors.Is(err, storage.ErrPersistence) {
			return err
		}

		if serr := sess.SetCurrent(student.ID); serr != nil {
			return serr
		}
		p.Success("Success: Logged in as %s.", student.Name)
		return err
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// List handles option 3.
// Prints every student in registration order:
//
//	1. Name: Ada Lovelace
//	   ID: S001
//	   Email: ada@example.com
//	   Registered: 2026-10-18 09:00:00
//	   Logins: 1
//	----------------------------------------
//
// ─────────────────────────────────────────────────────────────────────────────
func List(dir Directory) menu.HandlerFunc {
	return func(_ context.Context, p *menu.Prompter) error {
		p.Heading("All Registered Students", "=", console.RuleWidth)

		students := dir.List()
		if len(students) == 0 {
			p.Println("No students registered yet.")
			return nil
		}

		for i, s := range students {
			p.Printf("%d. Name: %s\n", i+1, s.Name)
			p.Printf("   ID: %s\n", s.ID)
			p.Printf("   Email: %s\n", s.Email)
			p.Printf("   Registered: %s\n", s.RegisteredAt)
			p.Printf("   Logins: %d\n", s.LoginCount)
			p.Rule("-", sectionWidth)
		}
		return nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Search handles option 4.
// Matches the term against IDs and names, ignoring case. An empty term is
// refused here rather than listing everyone.
// ─────────────────────────────────────────────────────────────────────────────
func Search(dir Directory) menu.HandlerFunc {
	return func(ctx context.Context, p *menu.Prompter) error {
		p.Heading("Search Student", "-", sectionWidth)

		query, err := p.Ask(ctx, "Enter name or ID to search: ")
		if err != nil {
			return err
		}
		query = strings.TrimSpace(query)
		if query == "" {
			p.Warn("Search term cannot be empty.")
			return nil
		}

		matches := dir.Search(query)
		if len(matches) == 0 {
			p.Println("No matching student found.")
			return nil
		}
		for _, s := range matches {
			p.Info("Found: %s | ID: %s | Email: %s", s.Name, s.ID, s.Email)
		}
		return nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles option 5.
// Shows the student's name and asks for confirmation; only "y" or "Y"
// deletes. Deleting the logged-in student also logs them out.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(dir Directory, sess *session.Session) menu.HandlerFunc {
	return func(ctx context.Context, p *menu.Prompter) error {
		p.Heading("Delete Student", "-", sectionWidth)

		raw, err := p.Ask(ctx, "Enter Student ID to delete: ")
		if err != nil {
			return err
		}

		student, err := dir.Get(raw)
		if err != nil {
			return err
		}

		confirm, err := p.Ask(ctx, fmt.Sprintf("Are you sure you want to delete '%s' (ID: %s)? (y/N): ", student.Name, student.ID))
		if err != nil {
			return err
		}
		if strings.ToLower(strings.TrimSpace(confirm)) != "y" {
			p.Println("Operation cancelled.")
			return nil
		}

		removed, err := dir.Delete(student.ID)
		if err != nil && !errors.Is(err, storage.ErrPersistence) {
			return err
		}

		if sess.OnDeleted(removed.ID) {
			slog.Debug("deleted student was logged in", slog.String("id", removed.ID))
		}
		p.Success("Student '%s' has been deleted.", removed.Name)
		return err
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Profile handles option 6.
// Shows the logged-in student's record, with "Never" for a student who has
// no recorded login.
// ─────────────────────────────────────────────────────────────────────────────
func Profile(dir Directory, sess *session.Session) menu.HandlerFunc {
	return func(_ context.Context, p *menu.Prompter) error {
		id, ok := sess.Current()
		if !ok {
			p.Println("You must be logged in to view your profile.")
			return nil
		}

		s, err := dir.Get(id)
		if err != nil {
			// The record vanished underneath the session.
			sess.Clear()
			return err
		}

		lastLogin := "Never"
		if t, ok := s.LastLogin(); ok {
			lastLogin = t.Format(types.TimeLayout)
		}

		p.Heading("Your Profile", "-", sectionWidth)
		p.Printf("Name: %s\n", s.Name)
		p.Printf("Student ID: %s\n", s.ID)
		p.Printf("Email: %s\n", s.Email)
		p.Printf("Registered on: %s\n", s.RegisteredAt)
		p.Printf("Total logins: %d\n", s.LoginCount)
		p.Printf("Last login: %s\n", lastLogin)
		return nil
	}
}

// Logout handles option 7.
func Logout(dir Directory, sess *session.Session) menu.HandlerFunc {
	return func(_ context.Context, p *menu.Prompter) error {
		id, ok := sess.Clear()
		if !ok {
			p.Println("No user is currently logged in.")
			return nil
		}
		p.Printf("Goodbye, %s. You have been logged out.\n", displayName(dir, id))
		return nil
	}
}

func askAll(ctx context.Context, p *menu.Prompter, labels ...string) ([]string, error) {
	answers := make([]string, 0, len(labels))
	for _, label := range labels {
		answer, err := p.Ask(ctx, label)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func displayName(dir Directory, id string) string {
	s, err := dir.Get(id)
	if err != nil {
		return id
	}
	return s.Name
}
