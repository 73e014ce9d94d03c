package student_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/cli/handlers/student"
	"github.com/aanand-mishra/student-directory/internal/cli/menu"
	"github.com/aanand-mishra/student-directory/internal/directory"
	"github.com/aanand-mishra/student-directory/internal/session"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/storage/jsonfile"
	"github.com/aanand-mishra/student-directory/internal/utils/console"
	"github.com/aanand-mishra/student-directory/internal/validation"
)

var start = time.Date(2026, 10, 18, 9, 0, 0, 0, time.Local)

func openStore(t *testing.T, path string) *directory.Store {
	t.Helper()
	s, err := directory.Open(jsonfile.New(path),
		directory.WithClock(func() time.Time { return start }),
		directory.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return s
}

func newStore(t *testing.T) *directory.Store {
	t.Helper()
	return openStore(t, filepath.Join(t.TempDir(), "students.json"))
}

func seed(t *testing.T, s *directory.Store) {
	t.Helper()
	_, err := s.Register("Ada Lovelace", "S001", "ada@example.com", "secret1")
	require.NoError(t, err)
	_, err = s.Register("Alan Turing", "CS-42", "alan@example.com", "enigma99")
	require.NoError(t, err)
}

// runAction runs h once against input and returns what it printed.
func runAction(t *testing.T, h menu.HandlerFunc, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	p := menu.NewPrompter(strings.NewReader(input), console.NewPrinter(&out, false))
	t.Cleanup(p.Close)

	err := h(context.Background(), p)
	return out.String(), err
}

func TestRegister(t *testing.T) {
	store := newStore(t)

	out, err := runAction(t, student.Register(store), "  ada lovelace \n s001 \nADA@Example.com\nsecret1\n")
	require.NoError(t, err)

	assert.Equal(t, "\n"+strings.Repeat("-", 40)+"\nStudent Registration\n"+strings.Repeat("-", 40)+"\n"+
		"Enter full name: Enter unique student ID: Enter email address: "+
		"Set a password (minimum 6 characters): "+
		"Success: Student 'Ada Lovelace' registered.\n", out)

	got, err := store.Get("S001")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, 0, got.LoginCount)
}

func TestRegister_ValidationError(t *testing.T) {
	store := newStore(t)

	out, err := runAction(t, student.Register(store), "Ada\nS001\nada@example.com\nabc\n")

	require.ErrorIs(t, err, validation.ErrWeakPassword)
	assert.NotContains(t, out, "Success")
	assert.Empty(t, store.List())
}

func TestRegister_SaveFailureStillRegisters(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "missing", "students.json"))

	out, err := runAction(t, student.Register(store), "Ada\nS001\nada@example.com\nsecret1\n")

	require.ErrorIs(t, err, storage.ErrPersistence)
	assert.Contains(t, out, "Success: Student 'Ada' registered.")
	_, err = store.Get("S001")
	assert.NoError(t, err)
}

func TestRegister_EndOfInput(t *testing.T) {
	store := newStore(t)

	_, err := runAction(t, student.Register(store), "Ada\nS001\n")

	require.ErrorIs(t, err, io.EOF)
	assert.Empty(t, store.List())
}

func TestLogin(t *testing.T) {
	store := newStore(t)
	seed(t, store)
	sess := session.New()

	out, err := runAction(t, student.Login(store, sess), " s001 \nsecret1\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Student ID: Password: Success: Logged in as Ada Lovelace.\n")
	id, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, "S001", id)

	got, err := store.Get("S001")
	require.NoError(t, err)
	assert.Equal(t, 1, got.LoginCount)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"wrong password", "S001\nsecret2\n", directory.ErrBadCredentials},
		{"password is case sensitive", "S001\nSECRET1\n", directory.ErrBadCredentials},
		{"unknown id", "S999\nsecret1\n", directory.ErrNotFound},
		{"empty id", "\nsecret1\n", directory.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			seed(t, store)
			sess := session.New()

			out, err := runAction(t, student.Login(store, sess), tt.input)

			require.ErrorIs(t, err, tt.want)
			assert.NotContains(t, out, "Success")
			assert.False(t, sess.Authenticated())
		})
	}
}

func TestLogin_AnotherStudentMustLogOutFirst(t *testing.T) {
	store := newStore(t)
	seed(t, store)
	sess := session.New()
	require.NoError(t, sess.SetCurrent("S001"))

	_, err := runAction(t, student.Login(store, sess), "cs-42\nenigma99\n")
	require.ErrorIs(t, err, session.ErrAlreadyAuthenticated)

	id, _ := sess.Current()
	assert.Equal(t, "S001", id)
	alan, err := store.Get("CS-42")
	require.NoError(t, err)
	assert.Equal(t, 0, alan.LoginCount, "refused login must not count")
}

func TestLogin_SameStudentAgain(t *testing.T) {
	store := newStore(t)
	seed(t, store)
	sess := session.New()

	for range 2 {
		_, err := runAction(t, student.Login(store, sess), "S001\nsecret1\n")
		require.NoError(t, err)
	}

	ada, err := store.Get("S001")
	require.NoError(t, err)
	assert.Equal(t, 2, ada.LoginCount)
}

func TestList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out, err := runAction(t, student.List(newStore(t)), "")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(out, "All Registered Students\n"+strings.Repeat("=", 50)+"\nNo students registered yet.\n"))
	})

	t.Run("in registration order", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		out, err := runAction(t, student.List(store), "")
		require.NoError(t, err)

		rule := strings.Repeat("-", 40) + "\n"
		assert.Contains(t, out,
			"1. Name: Ada Lovelace\n"+
				"   ID: S001\n"+
				"   Email: ada@example.com\n"+
				"   Registered: 2026-10-18 09:00:00\n"+
				"   Logins: 0\n"+rule+
				"2. Name: Alan Turing\n"+
				"   ID: CS-42\n")
		assert.True(t, strings.HasSuffix(out, rule))
	})
}

func TestSearch(t *testing.T) {
	store := newStore(t)
	seed(t, store)

	tests := []struct {
		name  string
		input string
		want  []string
		not   []string
	}{
		{"by id fragment", "cs-\n", []string{"Found: Alan Turing | ID: CS-42 | Email: alan@example.com"}, []string{"Ada"}},
		{"by name ignoring case", "  LOVE \n", []string{"Found: Ada Lovelace | ID: S001 | Email: ada@example.com"}, []string{"Alan"}},
		{"several matches", "a\n", []string{"Found: Ada Lovelace", "Found: Alan Turing"}, nil},
		{"no match", "zzz\n", []string{"No matching student found."}, []string{"Found:"}},
		{"empty term", "   \n", []string{"Search term cannot be empty."}, []string{"Found:", "No matching"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runAction(t, student.Search(store), tt.input)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, n := range tt.not {
				assert.NotContains(t, out, n)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)
		sess := session.New()

		out, err := runAction(t, student.Delete(store, sess), "cs-42\nY\n")
		require.NoError(t, err)

		assert.Contains(t, out, "Enter Student ID to delete: Are you sure you want to delete 'Alan Turing' (ID: CS-42)? (y/N): ")
		assert.Contains(t, out, "Student 'Alan Turing' has been deleted.\n")
		_, err = store.Get("CS-42")
		assert.ErrorIs(t, err, directory.ErrNotFound)
	})

	t.Run("anything but y cancels", func(t *testing.T) {
		for _, answer := range []string{"", "n", "yes", "N"} {
			store := newStore(t)
			seed(t, store)

			out, err := runAction(t, student.Delete(store, session.New()), "S001\n"+answer+"\n")
			require.NoError(t, err)

			assert.Contains(t, out, "Operation cancelled.\n", "answer %q", answer)
			assert.Len(t, store.List(), 2)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)

		out, err := runAction(t, student.Delete(store, session.New()), "S404\ny\n")

		require.ErrorIs(t, err, directory.ErrNotFound)
		assert.NotContains(t, out, "Are you sure")
		assert.Len(t, store.List(), 2)
	})

	t.Run("logged-in student is logged out", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)
		sess := session.New()
		require.NoError(t, sess.SetCurrent("S001"))

		_, err := runAction(t, student.Delete(store, sess), "s001\ny\n")
		require.NoError(t, err)

		assert.False(t, sess.Authenticated())
	})

	t.Run("other student stays logged in", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)
		sess := session.New()
		require.NoError(t, sess.SetCurrent("S001"))

		_, err := runAction(t, student.Delete(store, sess), "CS-42\ny\n")
		require.NoError(t, err)

		id, ok := sess.Current()
		assert.True(t, ok)
		assert.Equal(t, "S001", id)
	})
}

func TestProfile(t *testing.T) {
	t.Run("guest", func(t *testing.T) {
		out, err := runAction(t, student.Profile(newStore(t), session.New()), "")
		require.NoError(t, err)
		assert.Equal(t, "You must be logged in to view your profile.\n", out)
	})

	t.Run("never logged in", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)
		sess := session.New()
		require.NoError(t, sess.SetCurrent("S001"))

		out, err := runAction(t, student.Profile(store, sess), "")
		require.NoError(t, err)

		assert.Contains(t, out,
			"Your Profile\n"+strings.Repeat("-", 40)+"\n"+
				"Name: Ada Lovelace\n"+
				"Student ID: S001\n"+
				"Email: ada@example.com\n"+
				"Registered on: 2026-10-18 09:00:00\n"+
				"Total logins: 0\n"+
				"Last login: Never\n")
	})

	t.Run("after login", func(t *testing.T) {
		store := newStore(t)
		seed(t, store)
		sess := session.New()
		_, err := runAction(t, student.Login(store, sess), "S001\nsecret1\n")
		require.NoError(t, err)

		out, err := runAction(t, student.Profile(store, sess), "")
		require.NoError(t, err)

		assert.Contains(t, out, "Total logins: 1\nLast login: 2026-10-18 09:00:00\n")
	})
}

func TestLogout(t *testing.T) {
	store := newStore(t)
	seed(t, store)
	sess := session.New()

	out, err := runAction(t, student.Logout(store, sess), "")
	require.NoError(t, err)
	assert.Equal(t, "No user is currently logged in.\n", out)

	require.NoError(t, sess.SetCurrent("S001"))
	out, err = runAction(t, student.Logout(store, sess), "")
	require.NoError(t, err)
	assert.Equal(t, "Goodbye, Ada Lovelace. You have been logged out.\n", out)
	assert.False(t, sess.Authenticated())
}

func TestStatus(t *testing.T) {
	store := newStore(t)
	seed(t, store)
	sess := session.New()
	status := student.Status(store, sess)

	assert.Equal(t, "Status: Guest (not logged in)", status())

	require.NoError(t, sess.SetCurrent("CS-42"))
	assert.Equal(t, "Status: Logged in as Alan Turing (CS-42)", status())
}

func TestActions(t *testing.T) {
	sess := session.New()
	actions := student.Actions(newStore(t), sess)

	keys := make([]string, 0, len(actions))
	for _, a := range actions {
		keys = append(keys, a.Key)
		require.NotNil(t, a.Run)
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7"}, keys)

	assert.False(t, actions[5].Visible())
	assert.False(t, actions[6].Visible())
	require.NoError(t, sess.SetCurrent("S001"))
	assert.True(t, actions[5].Visible())
	assert.True(t, actions[6].Visible())
}

func TestMenuSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	store := openStore(t, path)
	sess := session.New()

	input := strings.Join([]string{
		"1", "Ada Lovelace", "s001", "ada@example.com", "secret1",
		"2", "S001", "secret1",
		"6",
		"7",
		"6",
		"0",
	}, "\n") + "\n"

	var out bytes.Buffer
	m := menu.New(console.NewPrinter(&out, false), student.Actions(store, sess), student.Status(store, sess), nil)
	require.NoError(t, m.Run(context.Background(), strings.NewReader(input)))

	text := out.String()
	assert.Contains(t, text, "Success: Student 'Ada Lovelace' registered.")
	assert.Contains(t, text, "Status: Logged in as Ada Lovelace (S001)")
	assert.Contains(t, text, "Total logins: 1")
	assert.Contains(t, text, "Goodbye, Ada Lovelace. You have been logged out.")
	assert.Contains(t, text, "Invalid choice. Please enter a number from the menu.", "6 is hidden after logout")
	assert.True(t, strings.HasSuffix(text, "Thank you for using the Student System. Goodbye.\n"))

	reopened := openStore(t, path)
	ada, err := reopened.Get("S001")
	require.NoError(t, err)
	assert.Equal(t, 1, ada.LoginCount)
}
