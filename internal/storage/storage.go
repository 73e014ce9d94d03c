// Package storage defines the Storage interface — a contract that any
// snapshot backend must satisfy to persist the student directory.
//
// WHY AN INTERFACE?
// ─────────────────
// The directory service should not know or care where the snapshot lives.
// By depending only on this interface:
//
//   - Switching backends = implement the interface for the new medium,
//     change one line in main.go. Zero service changes.
//
//   - Writing tests = pass a fake that satisfies the interface.
//     No file system needed for unit tests.
//
// A backend always stores the WHOLE directory: Save overwrites the previous
// snapshot, there is no append log.
package storage

import (
	"errors"

	"github.com/aanand-mishra/student-directory/internal/types"
	"github.com/aanand-mishra/student-directory/internal/validation"
)

// Error kinds returned by backends.
var (
	// ErrCorruptData means a snapshot exists but could not be read as a
	// directory. Load returns it together with an empty directory.
	ErrCorruptData = errors.New("snapshot is corrupt")

	// ErrPersistence means a snapshot could not be written.
	ErrPersistence = errors.New("snapshot could not be saved")
)

// Storage is the snapshot contract.
type Storage interface {
	// Load returns the persisted directory. A missing snapshot is an empty
	// directory and no error. An unreadable or malformed snapshot is an
	// empty directory and an error wrapping ErrCorruptData; the returned
	// directory is never a partial load.
	Load() (*types.Directory, error)

	// Save overwrites the snapshot with dir. Failures wrap ErrPersistence.
	Save(dir *types.Directory) error

	// Location describes where the snapshot lives, for logs and messages.
	Location() string
}

// CheckRecords verifies every record of a freshly decoded directory against
// the validate tags on types.Student. Backends call it before returning a
// loaded directory so a malformed record fails the whole load.
func CheckRecords(dir *types.Directory) error {
	v := validation.Validator()
	for _, s := range dir.Students() {
		if s.ID == "" {
			return errors.New("record with empty student id")
		}
		if err := v.Struct(s); err != nil {
			return err
		}
		if s.RegisteredAt.IsZero() {
			return errors.New("record without registration time")
		}
	}
	return nil
}
