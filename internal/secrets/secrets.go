// Package secrets stores the upstream refresh token between runs.
//
// The on-disk format is a byte-wise XOR against a secret key, base64-encoded.
// This is a compatibility shim with the legacy token file and is NOT a
// security mechanism: the key repeats whenever it is shorter than the token,
// so the plaintext is recoverable by frequency analysis. Deployments that
// care should use a Store backed by a real secret manager; EnvStore is the
// minimal seam for that.
package secrets

import (
	"encoding/base64"
	"fmt"
	"os"
)

// Store reads and rotates the refresh token.
type Store interface {
	Load() (string, error)
	Save(token string) error
}

// Encode obfuscates message with key and base64-encodes the result.
func Encode(message, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("secret key is empty")
	}

	messageBytes := []byte(message)
	keyBytes := []byte(key)

	encoded := make([]byte, len(messageBytes))
	for i := range messageBytes {
		encoded[i] = messageBytes[i] ^ keyBytes[i%len(keyBytes)]
	}

	return base64.StdEncoding.EncodeToString(encoded), nil
}

// Decode reverses Encode.
func Decode(encoded, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("secret key is empty")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("invalid base64 token: %w", err)
	}

	keyBytes := []byte(key)
	decoded := make([]byte, len(raw))
	for i := range raw {
		decoded[i] = raw[i] ^ keyBytes[i%len(keyBytes)]
	}

	return string(decoded), nil
}

// XORFileStore keeps the obfuscated token in a single file.
type XORFileStore struct {
	path string
	key  string
}

// NewXORFileStore creates a file-backed store at path keyed by key.
func NewXORFileStore(path, key string) *XORFileStore {
	return &XORFileStore{path: path, key: key}
}

// Load reads and de-obfuscates the token file.
func (s *XORFileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}

	token, err := Decode(string(data), s.key)
	if err != nil {
		return "", fmt.Errorf("decode token file %s: %w", s.path, err)
	}

	return token, nil
}

// Save writes the obfuscated token back, replacing the previous one.
func (s *XORFileStore) Save(token string) error {
	encoded, err := Encode(token, s.key)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	if err := os.WriteFile(s.path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}

	return nil
}

// EnvStore serves a token injected through the environment or a secret
// manager. Rotation is managed externally, so Save is a no-op.
type EnvStore struct {
	token string
}

// NewEnvStore wraps an externally provided token.
func NewEnvStore(token string) *EnvStore {
	return &EnvStore{token: token}
}

// Load returns the injected token.
func (s *EnvStore) Load() (string, error) {
	if s.token == "" {
		return "", fmt.Errorf("no refresh token configured")
	}
	return s.token, nil
}

// Save ignores the rotated token; the external manager owns rotation.
func (s *EnvStore) Save(string) error {
	return nil
}
