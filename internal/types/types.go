// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// storage backends, the directory service, and the CLI handlers can all
// import types without depending on each other.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the on-disk format of every timestamp in a snapshot,
// e.g. "2026-10-18 14:05:09". It carries no zone: values are written and
// read in the local time zone of the running process.
const TimeLayout = "2006-01-02 15:04:05"

// Student represents one registered student.
//
// The student ID is the key of the snapshot object, not a field inside it,
// so ID is excluded from JSON (json:"-") and filled in by Directory when a
// snapshot is decoded.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — the key names of the persisted snapshot.
//
//  2. validate:"..." — rules checked by go-playground/validator when a
//     snapshot is loaded. A record breaking any of them means the file was
//     not written by this program and is treated as corrupt.
type Student struct {
	ID           string    `json:"-"`
	Name         string    `json:"name"         validate:"required"`
	Email        string    `json:"email"        validate:"required"`
	PasswordHash string    `json:"passwordHash" validate:"required"`
	RegisteredAt Timestamp `json:"registeredAt"`
	LoginCount   int       `json:"loginCount"   validate:"gte=0"`

	// LastLoginAt is nil until the first successful authentication.
	// It is encoded as JSON null in that state.
	LastLoginAt *Timestamp `json:"lastLoginAt"`
}

// LastLogin returns the time of the most recent successful authentication
// and false when the student has never logged in.
func (s Student) LastLogin() (time.Time, bool) {
	if s.LastLoginAt == nil {
		return time.Time{}, false
	}
	return s.LastLoginAt.Time, true
}

// Timestamp is a time.Time that marshals using TimeLayout.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds, the precision of TimeLayout,
// so a value survives a save/load round trip unchanged.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

// String formats the timestamp using TimeLayout.
func (t Timestamp) String() string {
	return t.Format(TimeLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.Format(TimeLayout)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The value is read in
// the local time zone.
func (t *Timestamp) UnmarshalText(text []byte) error {
	parsed, err := time.ParseInLocation(TimeLayout, string(text), time.Local)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(TimeLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	return t.UnmarshalText([]byte(raw))
}
