// Package jsonfile stores the directory as one JSON document:
//
//	{
//	    "S001": {
//	        "name": "Ada Lovelace",
//	        "email": "ada@example.com",
//	        "passwordHash": "<64 hex chars>",
//	        "registeredAt": "2026-10-18 14:05:09",
//	        "loginCount": 1,
//	        "lastLoginAt": "2026-10-18 14:07:41"
//	    }
//	}
//
// Every Save rewrites the whole file. The new content is written to a
// temporary file in the same directory and renamed over the old one, so a
// reader never observes a half-written snapshot.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
)

const indent = "    "

// File is the JSON snapshot backend.
type File struct {
	path string
}

// New returns a backend for the snapshot at path. The file is not touched
// until Load or Save is called.
func New(path string) *File {
	return &File{path: path}
}

// Location returns the snapshot path.
func (f *File) Location() string {
	return f.path
}

// Load reads and decodes the snapshot.
func (f *File) Load() (*types.Directory, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.NewDirectory(), nil
	}
	if err != nil {
		return types.NewDirectory(), f.corrupt(fmt.Errorf("jsonfile.Load: read: %w", err))
	}

	// The top level must be an object keyed by student ID. Checking the
	// first byte also rejects null, arrays, and empty files up front.
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return types.NewDirectory(), f.corrupt(errors.New("jsonfile.Load: top level is not an object"))
	}
	if !json.Valid(trimmed) {
		return types.NewDirectory(), f.corrupt(errors.New("jsonfile.Load: invalid JSON"))
	}

	dir := types.NewDirectory()
	if err := json.Unmarshal(trimmed, dir); err != nil {
		return types.NewDirectory(), f.corrupt(fmt.Errorf("jsonfile.Load: decode: %w", err))
	}
	if err := storage.CheckRecords(dir); err != nil {
		return types.NewDirectory(), f.corrupt(fmt.Errorf("jsonfile.Load: check: %w", err))
	}

	return dir, nil
}

// Save encodes dir and atomically replaces the snapshot.
func (f *File) Save(dir *types.Directory) error {
	compact, err := json.Marshal(dir)
	if err != nil {
		return f.persistence(fmt.Errorf("jsonfile.Save: encode: %w", err))
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", indent); err != nil {
		return f.persistence(fmt.Errorf("jsonfile.Save: indent: %w", err))
	}
	out.WriteByte('\n')

	if err := writeAtomic(f.path, out.Bytes()); err != nil {
		return f.persistence(err)
	}
	return nil
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile.Save: create temp: %w", err)
	}
	// Remove the temp file on any failure; after a successful rename the
	// name no longer exists and Remove is a no-op.
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("jsonfile.Save: write: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("jsonfile.Save: sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("jsonfile.Save: close: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("jsonfile.Save: rename: %w", err)
	}
	return nil
}

func (f *File) corrupt(err error) error {
	return oops.Code("SNAPSHOT_CORRUPT").
		With("path", f.path).
		Wrap(errors.Join(storage.ErrCorruptData, err))
}

func (f *File) persistence(err error) error {
	return oops.Code("SNAPSHOT_SAVE_FAILED").
		With("path", f.path).
		Wrap(errors.Join(storage.ErrPersistence, err))
}
