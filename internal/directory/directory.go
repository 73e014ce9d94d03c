// Package directory is the student directory service. It owns the
// in-memory Directory, loads it from a storage.Storage when opened, and
// writes the full snapshot back after every mutation.
//
// Every operation runs as one unit under a single mutex:
// validate → mutate in memory → persist → return. When persisting fails the
// in-memory change stands (it stays authoritative for the running process)
// and the operation returns the result together with an error wrapping
// storage.ErrPersistence so the caller can warn the user.
package directory

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/aanand-mishra/student-directory/internal/credential"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
	"github.com/aanand-mishra/student-directory/internal/validation"
)

// Error kinds returned by lookups and authentication.
var (
	ErrNotFound       = errors.New("student id not found")
	ErrBadCredentials = errors.New("incorrect password")
)

// Store is the directory service. Create one with Open.
type Store struct {
	mu      sync.Mutex
	dir     *types.Directory
	backend storage.Storage
	hasher  credential.Hasher
	now     func() time.Time
	log     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithHasher sets the hasher used for new digests and verification.
// The default is unsalted SHA-256.
func WithHasher(h credential.Hasher) Option {
	return func(s *Store) { s.hasher = h }
}

// WithClock sets the time source for registration and login timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open loads the directory from backend.
//
// A corrupt snapshot is not fatal: Open returns a usable, empty Store
// together with the error (wrapping storage.ErrCorruptData) so the caller
// can report it as a warning. Any other error leaves the Store nil.
func Open(backend storage.Storage, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hasher == nil {
		h, err := credential.New(credential.SHA256)
		if err != nil {
			return nil, err
		}
		s.hasher = h
	}

	dir, err := backend.Load()
	if dir == nil {
		dir = types.NewDirectory()
	}
	s.dir = dir

	if err != nil {
		if errors.Is(err, storage.ErrCorruptData) {
			s.log.Warn("snapshot unreadable, starting with an empty directory",
				slog.String("path", backend.Location()),
				slog.String("error", err.Error()))
			return s, err
		}
		return nil, err
	}

	s.log.Info("directory loaded",
		slog.String("path", backend.Location()),
		slog.Int("students", dir.Len()))
	return s, nil
}

// Register validates and normalises the input, then creates and persists a
// new record. Validation failures change nothing and write nothing.
func (s *Store) Register(name, id, email, password string) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := validation.Normalize(name, id, email, password)
	if err := reg.Validate(s.dir.Has); err != nil {
		return types.Student{}, err
	}

	digest, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return types.Student{}, err
	}

	student := types.Student{
		ID:           reg.ID,
		Name:         reg.Name,
		Email:        reg.Email,
		PasswordHash: digest,
		RegisteredAt: types.NewTimestamp(s.now()),
	}
	s.dir.Put(student)
	s.log.Info("student registered", slog.String("id", student.ID))

	return student, s.save()
}

// Authenticate checks password against the record for id. On success the
// login counter is incremented, the last-login time set, and the directory
// persisted.
func (s *Store) Authenticate(id, password string) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.lookup(id)
	if err != nil {
		return types.Student{}, err
	}

	ok, err := s.hasher.Verify(password, student.PasswordHash)
	if err != nil {
		return types.Student{}, oops.Code("STUDENT_AUTH_FAILED").With("id", student.ID).Wrap(err)
	}
	if !ok {
		s.log.Info("authentication failed", slog.String("id", student.ID))
		return types.Student{}, oops.Code("STUDENT_BAD_CREDENTIALS").
			With("id", student.ID).
			Wrap(ErrBadCredentials)
	}

	now := types.NewTimestamp(s.now())
	student.LoginCount++
	student.LastLoginAt = &now
	s.dir.Put(student)
	s.log.Info("student authenticated",
		slog.String("id", student.ID),
		slog.Int("login_count", student.LoginCount))

	if s.hasher.NeedsUpgrade(student.PasswordHash) {
		s.log.Debug("stored digest uses an older algorithm", slog.String("id", student.ID))
	}

	return student, s.save()
}

// Get returns the record for id.
func (s *Store) Get(id string) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id)
}

// List returns every record in directory order. An empty directory yields
// an empty, non-nil slice.
func (s *Store) List() []types.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Students()
}

// Search returns, in directory order, every record whose ID or name
// contains query, ignoring case. Surrounding whitespace in query is
// ignored. No match is an empty slice, not an error.
func (s *Store) Search(query string) []types.Student {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	matches := make([]types.Student, 0)
	for _, student := range s.dir.Students() {
		if strings.Contains(strings.ToLower(student.ID), q) ||
			strings.Contains(strings.ToLower(student.Name), q) {
			matches = append(matches, student)
		}
	}
	return matches
}

// Delete removes the record for id, persists, and returns the removed
// record so the caller can end a session that belonged to it.
func (s *Store) Delete(id string) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.lookup(id)
	if err != nil {
		return types.Student{}, err
	}

	s.dir.Delete(student.ID)
	s.log.Info("student deleted", slog.String("id", student.ID))

	return student, s.save()
}

// Len returns the number of registered students.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Len()
}

// Location describes where the snapshot is persisted.
func (s *Store) Location() string {
	return s.backend.Location()
}

func (s *Store) lookup(id string) (types.Student, error) {
	norm := validation.NormalizeID(id)
	student, ok := s.dir.Get(norm)
	if !ok {
		return types.Student{}, oops.Code("STUDENT_NOT_FOUND").
			With("id", norm).
			Wrap(ErrNotFound)
	}
	return student, nil
}

func (s *Store) save() error {
	if err := s.backend.Save(s.dir); err != nil {
		s.log.Error("failed to save directory",
			slog.String("path", s.backend.Location()),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
