package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookie.json")
	store := NewFileStore(path)

	creds := Credentials{"zsxq_access_token": "abc", "sessionid": "xyz"}
	if err := store.Save(creds); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded["zsxq_access_token"] != "abc" || loaded["sessionid"] != "xyz" {
		t.Fatalf("loaded = %v", loaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := store.Load(); err == nil {
		t.Fatal("expected error for missing cookie file")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookie.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(); err == nil {
		t.Fatal("expected error for malformed cookie file")
	}
}

func TestCookieHeaderStable(t *testing.T) {
	creds := Credentials{"b": "2", "a": "1"}
	if got := creds.CookieHeader(); got != "a=1; b=2" {
		t.Fatalf("header = %q", got)
	}
}
