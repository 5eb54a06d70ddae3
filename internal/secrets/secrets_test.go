package secrets

import (
	"path/filepath"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		message string
		key     string
	}{
		{"token longer than key", "TG-1234567890-refresh-abcdef", "k3y"},
		{"key longer than token", "short", "a-much-longer-secret-key"},
		{"same length", "abcd", "wxyz"},
		{"non-ascii token", "tóken-ñ", "clave"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.message, tt.key)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if encoded == tt.message {
				t.Error("encoded output equals plaintext")
			}

			decoded, err := Decode(encoded, tt.key)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if decoded != tt.message {
				t.Errorf("round trip = %q, want %q", decoded, tt.message)
			}
		})
	}
}

func TestDecodeWrongKey(t *testing.T) {
	encoded, err := Encode("my-refresh-token", "right-key")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(encoded, "wrong-key")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded == "my-refresh-token" {
		t.Error("wrong key produced the original plaintext")
	}
}

func TestEncodeEmptyKey(t *testing.T) {
	if _, err := Encode("token", ""); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := Decode("dG9rZW4=", ""); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestDecodeInvalidBase64(t *testing.T) {
	if _, err := Decode("%%%not-base64%%%", "key"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestXORFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meli_refresh_token")
	store := NewXORFileStore(path, "super-secret")

	if _, err := store.Load(); err == nil {
		t.Error("expected error loading a missing token file")
	}

	if err := store.Save("TG-original"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	token, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if token != "TG-original" {
		t.Errorf("Load() = %q, want TG-original", token)
	}

	// Rotation replaces the stored token.
	if err := store.Save("TG-rotated"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	token, err = store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if token != "TG-rotated" {
		t.Errorf("Load() after rotation = %q, want TG-rotated", token)
	}
}

func TestEnvStore(t *testing.T) {
	store := NewEnvStore("injected-token")

	token, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if token != "injected-token" {
		t.Errorf("Load() = %q", token)
	}

	// Save is a no-op; the injected token survives.
	if err := store.Save("rotated"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	token, _ = store.Load()
	if token != "injected-token" {
		t.Errorf("Load() after Save = %q, want injected-token", token)
	}

	empty := NewEnvStore("")
	if _, err := empty.Load(); err == nil {
		t.Error("expected error for empty env token")
	}
}
