// Package auth manages the session credentials the fetcher needs. The
// credentials are an opaque key/value set produced elsewhere (the QR
// login flow lives outside this binary); this package only loads, saves
// and formats them.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Credentials is the opaque cookie map for the source API session.
type Credentials map[string]string

// CookieHeader renders the credentials as a Cookie header value. Keys
// are sorted so the header is stable across runs.
func (c Credentials) CookieHeader() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, c[k]))
	}
	return strings.Join(pairs, "; ")
}

// FileStore reads and writes credentials as a JSON object on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the stored credentials. A missing or unreadable file is
// an error: without a session the fetch phase cannot proceed.
func (s *FileStore) Load() (Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read cookie file %s: %w", s.path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("decode cookie file %s: %w", s.path, err)
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("cookie file %s is empty", s.path)
	}
	return creds, nil
}

// Save persists credentials, creating the parent directory if needed.
func (s *FileStore) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}
