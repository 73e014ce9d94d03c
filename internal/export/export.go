// Package export writes the directory as a spreadsheet roster.
//
// The roster is for people, not for re-import: it carries what an
// administrator reads (names, emails, activity) and never a password
// digest.
package export

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/aanand-mishra/student-directory/internal/types"
)

// SheetName is the worksheet the roster is written to.
const SheetName = "Students"

// Header is the first row of the roster.
var Header = []any{"ID", "Name", "Email", "Registered", "Logins", "Last Login"}

// Roster writes students, in the given order, as an .xlsx workbook to w.
func Roster(w io.Writer, students []types.Student) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("closing roster workbook", slog.String("error", err.Error()))
		}
	}()

	// A new workbook starts with a single "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("export.Roster: rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return fmt.Errorf("export.Roster: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export.Roster: style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "F1", bold); err != nil {
		return fmt.Errorf("export.Roster: style: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "F", 22); err != nil {
		return fmt.Errorf("export.Roster: width: %w", err)
	}

	for i, s := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export.Roster: row %d: %w", i+2, err)
		}

		lastLogin := "Never"
		if t, ok := s.LastLogin(); ok {
			lastLogin = t.Format(types.TimeLayout)
		}
		row := []any{s.ID, s.Name, s.Email, s.RegisteredAt.String(), s.LoginCount, lastLogin}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("export.Roster: row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.Roster: write: %w", err)
	}
	return nil
}
