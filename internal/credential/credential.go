package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dukerupert/pizzeria/internal/store"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize   = 32
	iterations = 100000
	keySize    = 32
)

// LoadOrCreateSalt returns the salt stored at path, generating and
// persisting a new random one on first run.
func LoadOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil {
		if len(salt) != SaltSize {
			return nil, fmt.Errorf("salt file %s: got %d bytes, want %d", path, len(salt), SaltSize)
		}
		return salt, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read salt: %w", err)
	}

	salt = make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := store.WriteFileAtomic(path, salt, 0o600); err != nil {
		return nil, fmt.Errorf("write salt: %w", err)
	}
	return salt, nil
}

// Hasher derives hex digests of passwords and tokens with PBKDF2-SHA256.
type Hasher struct {
	salt []byte
}

func NewHasher(salt []byte) *Hasher {
	return &Hasher{salt: salt}
}

// Hash returns the hex-encoded digest of secret. Same input, same output.
func (h *Hasher) Hash(secret string) string {
	key := pbkdf2.Key([]byte(secret), h.salt, iterations, keySize, sha256.New)
	return hex.EncodeToString(key)
}

// Verify reports whether secret hashes to digest, in constant time.
func (h *Hasher) Verify(secret, digest string) bool {
	return Equal(h.Hash(secret), digest)
}

// Equal compares two digests in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
