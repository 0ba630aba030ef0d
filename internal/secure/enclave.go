package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when revealing a credential after Destroy.
var ErrDestroyed = errors.New("credential has been destroyed")

// Credential stores a secret token encrypted at rest in memory.
//
// The zero value and a credential built from an empty string are both empty;
// an empty credential reveals as "" so callers can fall back to whatever
// session the op CLI already has.
type Credential struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	destroyed bool
}

// NewCredential seals token into an enclave. The caller's copy of the string
// cannot be wiped; read tokens straight into NewCredential to keep the
// plaintext short-lived.
func NewCredential(token string) *Credential {
	c := &Credential{}
	if token == "" {
		return c
	}
	// NewEnclave wipes its input, so hand it a copy.
	c.enclave = memguard.NewEnclave([]byte(token))
	return c
}

// Empty reports whether the credential holds no token.
func (c *Credential) Empty() bool {
	if c == nil {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enclave == nil
}

// Reveal decrypts the token. The returned string is an unprotected copy and
// should not be retained.
func (c *Credential) Reveal() (string, error) {
	if c == nil {
		return "", nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.destroyed {
		return "", ErrDestroyed
	}
	if c.enclave == nil {
		return "", nil
	}

	locked, err := c.enclave.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()
	return string(locked.Bytes()), nil
}

// Destroy drops the enclave. It is idempotent. For a full wipe of every
// memguard allocation at exit, call memguard.Purge from main.
func (c *Credential) Destroy() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enclave = nil
	c.destroyed = true
}

// String never prints the token.
func (c *Credential) String() string {
	return "[REDACTED]"
}

// GoString never prints the token.
func (c *Credential) GoString() string {
	return "[REDACTED]"
}
