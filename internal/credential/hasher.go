// Package credential turns plaintext passwords into stored digests and
// checks plaintext against them.
//
// The baseline algorithm is an unsalted SHA-256 hex digest, which keeps
// snapshots bit-compatible with existing student files. bcrypt and argon2id
// are available as stronger options; Verify recognises all three formats
// so a directory keeps working after the configured algorithm changes.
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm names accepted by New.
const (
	SHA256   = "sha256"
	Bcrypt   = "bcrypt"
	Argon2id = "argon2id"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32

	// Stored parameters above these are refused rather than computed.
	argon2MaxMemory = 1024 * 1024
	argon2MaxTime   = 64
)

// ErrInvalidDigest is returned when a stored digest is in no known format.
var ErrInvalidDigest = errors.New("invalid password digest")

// Hasher produces and checks password digests.
type Hasher interface {
	// Hash returns the digest to store for password.
	Hash(password string) (string, error)

	// Verify reports whether password matches digest. A mismatch is
	// (false, nil); an unreadable digest is an error.
	Verify(password, digest string) (bool, error)

	// NeedsUpgrade reports whether digest was produced by a different
	// algorithm than the one this Hasher hashes with.
	NeedsUpgrade(digest string) bool
}

// New returns the Hasher for algorithm. An empty name selects SHA256.
func New(algorithm string) (Hasher, error) {
	switch algorithm {
	case "", SHA256:
		return hasher{algorithm: SHA256}, nil
	case Bcrypt, Argon2id:
		return hasher{algorithm: algorithm}, nil
	default:
		return nil, oops.Code("CREDENTIAL_UNKNOWN_ALGORITHM").
			With("algorithm", algorithm).
			Errorf("unknown password hashing algorithm %q", algorithm)
	}
}

// Digest returns the lowercase hex SHA-256 of password: 64 characters,
// identical for identical input.
func Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

type hasher struct {
	algorithm string
}

func (h hasher) Hash(password string) (string, error) {
	switch h.algorithm {
	case Bcrypt:
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", oops.Code("CREDENTIAL_HASH_FAILED").With("algorithm", h.algorithm).Wrap(err)
		}
		return string(hashed), nil
	case Argon2id:
		return hashArgon2id(password)
	default:
		return Digest(password), nil
	}
}

func (h hasher) Verify(password, digest string) (bool, error) {
	switch detect(digest) {
	case Bcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, oops.Code("CREDENTIAL_INVALID_DIGEST").Wrap(errors.Join(ErrInvalidDigest, err))
		}
		return true, nil
	case Argon2id:
		return verifyArgon2id(password, digest)
	case SHA256:
		computed := Digest(password)
		return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1, nil
	default:
		return false, oops.Code("CREDENTIAL_INVALID_DIGEST").Wrap(ErrInvalidDigest)
	}
}

func (h hasher) NeedsUpgrade(digest string) bool {
	return detect(digest) != h.algorithm
}

// detect names the algorithm that produced digest, or "" if unknown.
func detect(digest string) string {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return Argon2id
	case strings.HasPrefix(digest, "$2a$"), strings.HasPrefix(digest, "$2b$"), strings.HasPrefix(digest, "$2y$"):
		return Bcrypt
	case isHexSHA256(digest):
		return SHA256
	default:
		return ""
	}
}

func isHexSHA256(digest string) bool {
	if len(digest) != hex.EncodedLen(sha256.Size) {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}

// hashArgon2id encodes in PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func hashArgon2id(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("CREDENTIAL_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(password, digest string) (bool, error) {
	invalid := func(err error) (bool, error) {
		return false, oops.Code("CREDENTIAL_INVALID_DIGEST").Wrap(errors.Join(ErrInvalidDigest, err))
	}

	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return invalid(errors.New("argon2id: wrong number of fields"))
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return invalid(err)
	}
	if version != argon2.Version {
		return invalid(fmt.Errorf("argon2id: unsupported version %d", version))
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return invalid(err)
	}
	if iterations == 0 || iterations > argon2MaxTime {
		return invalid(fmt.Errorf("argon2id: time %d out of range", iterations))
	}
	if memory == 0 || memory > argon2MaxMemory {
		return invalid(fmt.Errorf("argon2id: memory %d out of range", memory))
	}
	if threads == 0 {
		return invalid(errors.New("argon2id: parallelism must be at least 1"))
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return invalid(err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return invalid(err)
	}
	if len(expected) == 0 || len(expected) > 1<<10 {
		return invalid(fmt.Errorf("argon2id: key length %d", len(expected)))
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
