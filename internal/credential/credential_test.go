package credential

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreateSaltPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "salt.key")

	first, err := LoadOrCreateSalt(path)
	if err != nil {
		t.Fatalf("create salt: %v", err)
	}
	if len(first) != SaltSize {
		t.Fatalf("salt length = %d, want %d", len(first), SaltSize)
	}

	second, err := LoadOrCreateSalt(path)
	if err != nil {
		t.Fatalf("reload salt: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("expected same salt after reload")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat salt: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("salt perm = %o, want 600", perm)
	}
}

func TestLoadOrCreateSaltWrongLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salt.key")
	if err := os.WriteFile(path, []byte("short"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrCreateSalt(path); err == nil {
		t.Fatal("expected error for truncated salt file")
	}
}

func TestHashDeterministic(t *testing.T) {
	h := NewHasher(bytes.Repeat([]byte{7}, SaltSize))

	a := h.Hash("hunter2")
	b := h.Hash("hunter2")
	if a != b {
		t.Errorf("expected same digest for same input")
	}
	if a == "hunter2" {
		t.Error("digest must not equal plaintext")
	}
	if len(a) != 2*keySize {
		t.Errorf("digest length = %d, want %d", len(a), 2*keySize)
	}
}

func TestHashDifferentSalts(t *testing.T) {
	h1 := NewHasher(bytes.Repeat([]byte{1}, SaltSize))
	h2 := NewHasher(bytes.Repeat([]byte{2}, SaltSize))
	if h1.Hash("secret") == h2.Hash("secret") {
		t.Error("expected different digests for different salts")
	}
}

func TestVerify(t *testing.T) {
	h := NewHasher(bytes.Repeat([]byte{3}, SaltSize))
	digest := h.Hash("pepperoni")

	if !h.Verify("pepperoni", digest) {
		t.Error("expected Verify = true for matching secret")
	}
	if h.Verify("margherita", digest) {
		t.Error("expected Verify = false for wrong secret")
	}
}
