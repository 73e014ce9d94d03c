package menu_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aanand-mishra/student-directory/internal/cli/menu"
	"github.com/aanand-mishra/student-directory/internal/utils/console"
	"github.com/aanand-mishra/student-directory/internal/validation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(t *testing.T, ctx context.Context, in io.Reader, actions []menu.Action, status func() string) string {
	t.Helper()
	var out bytes.Buffer
	m := menu.New(console.NewPrinter(&out, false), actions, status, nil)
	require.NoError(t, m.Run(ctx, in))
	return out.String()
}

func noop(context.Context, *menu.Prompter) error { return nil }

func TestRun_ExitShowsMenuAndGoodbye(t *testing.T) {
	actions := []menu.Action{
		{Key: "1", Label: "Register New Student", Run: noop},
		{Key: "2", Label: "Login", Run: noop},
	}

	out := run(t, context.Background(), strings.NewReader("0\n"), actions,
		func() string { return "Status: Guest (not logged in)" })

	assert.True(t, strings.HasPrefix(out, "Welcome to the Student Registration and Login System\n"))
	assert.Contains(t, out, "\n"+strings.Repeat("=", 50)+"\nStatus: Guest (not logged in)\n"+strings.Repeat("=", 50)+"\n")
	assert.Contains(t, out, "1. Register New Student\n2. Login\n0. Exit\n")
	assert.Contains(t, out, "\nEnter your choice (0-2): ")
	assert.True(t, strings.HasSuffix(out, "\nThank you for using the Student System. Goodbye.\n"))
}

func TestRun_EndOfInputExits(t *testing.T) {
	out := run(t, context.Background(), strings.NewReader(""), nil, nil)

	assert.Contains(t, out, "Enter your choice (0-0): ")
	assert.True(t, strings.HasSuffix(out, "Thank you for using the Student System. Goodbye.\n"))
}

func TestRun_InvalidChoice(t *testing.T) {
	out := run(t, context.Background(), strings.NewReader("9\nabc\n\n0\n"), nil, nil)

	assert.Equal(t, 3, strings.Count(out, "Invalid choice. Please enter a number from the menu.\n"))
}

func TestRun_HiddenActionsAreNotAccepted(t *testing.T) {
	called := false
	loggedIn := false
	actions := []menu.Action{
		{Key: "1", Label: "Login", Run: func(context.Context, *menu.Prompter) error {
			loggedIn = true
			return nil
		}},
		{Key: "7", Label: "Logout", Visible: func() bool { return loggedIn }, Run: func(context.Context, *menu.Prompter) error {
			called = true
			return nil
		}},
	}

	out := run(t, context.Background(), strings.NewReader("7\n1\n7\n0\n"), actions, nil)

	assert.True(t, called)
	assert.Equal(t, 1, strings.Count(out, "Invalid choice."))
	assert.Equal(t, 2, strings.Count(out, "7. Logout\n"), "listed only on the two turns after login")
	assert.Equal(t, 4, strings.Count(out, "Enter your choice (0-7): "))
}

func TestRun_ActionReceivesInput(t *testing.T) {
	var got []string
	actions := []menu.Action{{Key: "1", Label: "Echo", Run: func(ctx context.Context, p *menu.Prompter) error {
		for _, label := range []string{"First: ", "Second: "} {
			line, err := p.Ask(ctx, label)
			if err != nil {
				return err
			}
			got = append(got, line)
		}
		p.Success("done")
		return nil
	}}}

	out := run(t, context.Background(), strings.NewReader("1\n  spaced  \r\nlast\n0\n"), actions, nil)

	assert.Equal(t, []string{"  spaced  ", "last"}, got)
	assert.Contains(t, out, "First: Second: done\n")
}

func TestRun_ErrorsAreReportedAndLoopContinues(t *testing.T) {
	calls := 0
	actions := []menu.Action{{Key: "1", Label: "Fail", Run: func(context.Context, *menu.Prompter) error {
		calls++
		return validation.ErrWeakPassword
	}}}

	out := run(t, context.Background(), strings.NewReader("1\n1\n0\n"), actions, nil)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, strings.Count(out, "Error: Password must be at least 6 characters long.\n"))
	assert.Contains(t, out, "Goodbye.")
}

func TestRun_PanicIsRecovered(t *testing.T) {
	actions := []menu.Action{{Key: "1", Label: "Broken", Run: func(context.Context, *menu.Prompter) error {
		panic("boom")
	}}}

	out := run(t, context.Background(), strings.NewReader("1\n0\n"), actions, nil)

	assert.Contains(t, out, "An unexpected error occurred: boom\n")
	assert.Contains(t, out, "Goodbye.")
}

func TestRun_EndOfInputInsideAction(t *testing.T) {
	actions := []menu.Action{{Key: "1", Label: "Ask", Run: func(ctx context.Context, p *menu.Prompter) error {
		_, err := p.Ask(ctx, "Name: ")
		return err
	}}}

	out := run(t, context.Background(), strings.NewReader("1\n"), actions, nil)

	assert.True(t, strings.HasSuffix(out, "Name: \nThank you for using the Student System. Goodbye.\n"))
}

func TestRun_Interrupted(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := run(t, ctx, pr, nil, nil)

	assert.True(t, strings.HasSuffix(out, "\n\nProgram interrupted. Exiting.\n"))
	assert.NotContains(t, out, "Goodbye")
}

func TestRun_InterruptedInsideAction(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	actions := []menu.Action{{Key: "1", Label: "Wait", Run: func(ctx context.Context, p *menu.Prompter) error {
		cancel()
		_, err := p.Ask(ctx, "Password: ")
		return err
	}}}

	go func() {
		_, _ = pw.Write([]byte("1\n"))
	}()

	out := run(t, ctx, pr, actions, nil)

	assert.Contains(t, out, "Password: \n\nProgram interrupted. Exiting.\n")
}

func TestRun_ReadError(t *testing.T) {
	var out bytes.Buffer
	m := menu.New(console.NewPrinter(&out, false), nil, nil, nil)

	err := m.Run(context.Background(), iotest.ErrReader(errors.New("device gone")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "device gone")
}
