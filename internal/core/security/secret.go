package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the floor for PBKDF2-HMAC-SHA256; configuration may
	// raise it but never lower it.
	DefaultIterations = 120000
	saltBytes         = 16
	keyBytes          = 32
	tokenBytes        = 32
)

var ErrEmptySecret = errors.New("security: secret is empty")

// HashedSecret is the stored form of a credential. Salt and Hash are base64.
type HashedSecret struct {
	Hash       string
	Salt       string
	Iterations int
}

type Hasher struct {
	iterations int
}

func NewHasher(iterations int) *Hasher {
	if iterations < DefaultIterations {
		iterations = DefaultIterations
	}
	return &Hasher{iterations: iterations}
}

func (h *Hasher) Iterations() int {
	return h.iterations
}

func (h *Hasher) HashSecret(plaintext string) (HashedSecret, error) {
	if plaintext == "" {
		return HashedSecret{}, ErrEmptySecret
	}
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return HashedSecret{}, fmt.Errorf("security: read salt: %w", err)
	}
	derived := pbkdf2.Key([]byte(plaintext), salt, h.iterations, keyBytes, sha256.New)
	return HashedSecret{
		Hash:       base64.StdEncoding.EncodeToString(derived),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Iterations: h.iterations,
	}, nil
}

// VerifySecret recomputes the derivation with the stored parameters and
// compares in constant time. Stored iteration counts below the floor are
// treated as a mismatch.
func (h *Hasher) VerifySecret(plaintext string, stored HashedSecret) bool {
	if plaintext == "" || stored.Hash == "" || stored.Salt == "" || stored.Iterations < DefaultIterations {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(stored.Hash)
	if err != nil {
		return false
	}
	derived := pbkdf2.Key([]byte(plaintext), salt, stored.Iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(derived, expected) == 1
}

// GenerateToken returns a URL-safe bearer token and the hex SHA-256 digest
// that is the only form ever persisted.
func GenerateToken() (token string, tokenHash string, err error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("security: read token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	return token, HashToken(token), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateTemporaryCredential returns a random one-time secret of n bytes of
// entropy, URL-safe encoded.
func GenerateTemporaryCredential(n int) (string, error) {
	if n <= 0 {
		n = 12
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: read credential: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
