package creds

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	creds, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if creds.AccessToken != "" {
		t.Fatalf("AccessToken = %q, want empty", creds.AccessToken)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.toml")

	if err := Save(path, Credentials{AccessToken: "tok-123"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat creds file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("creds file mode = %o, want 0600", perm)
	}

	creds, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if creds.AccessToken != "tok-123" {
		t.Fatalf("AccessToken = %q, want tok-123", creds.AccessToken)
	}
}

func TestLoad_CorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")
	if err := os.WriteFile(path, []byte("access_token = ["), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	creds, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if creds.AccessToken != "" {
		t.Fatalf("AccessToken = %q, want empty on corrupt file", creds.AccessToken)
	}
}
