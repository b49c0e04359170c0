package command

import (
	"os"
	"path/filepath"

	"github.com/pixil98/go-mud-client/internal/storage"
	"github.com/pixil98/go-mud-client/internal/store"
)

type SessionConfig struct {
	Path string `json:"path,omitempty"`
}

// buildBundleStore returns the persistence layer for the auth bundle. With
// no path configured it lives under the user's config directory.
func (c *SessionConfig) buildBundleStore() *storage.BundleStore[*store.Session] {
	path := c.Path
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		path = filepath.Join(dir, "mudc", "session.json")
	}
	_ = os.MkdirAll(filepath.Dir(path), 0700)

	return storage.NewBundleStore[*store.Session](path)
}
