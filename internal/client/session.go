package client

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// sessionState is everything the client persists between sessions.
type sessionState struct {
	OwnerLoggedIn bool `json:"ownerLoggedIn"`
}

// SessionCache persists the owner login flag. Collections are never cached.
type SessionCache struct {
	fs   afero.Fs
	path string
}

func NewSessionCache(fs afero.Fs, path string) *SessionCache {
	return &SessionCache{fs: fs, path: path}
}

// Load returns the stored flag. A missing file means logged out.
func (c *SessionCache) Load() (bool, error) {
	raw, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, errors.Wrapf(err, "read session %s", c.path)
	}

	var state sessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return false, errors.Wrapf(err, "decode session %s", c.path)
	}
	return state.OwnerLoggedIn, nil
}

func (c *SessionCache) Save(ownerLoggedIn bool) error {
	raw, err := json.Marshal(sessionState{OwnerLoggedIn: ownerLoggedIn})
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create session dir %s", dir)
		}
	}
	return errors.Wrapf(afero.WriteFile(c.fs, c.path, raw, 0o600), "write session %s", c.path)
}
