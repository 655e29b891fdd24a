package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kitrader/kitrader/account"
)

// Load reads every persisted account from the registry directory. The
// directory is created if missing. A file that fails to decode or violates
// the account invariants aborts the load so the problem is not papered over.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create accounts dir: %w", err)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("read accounts dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read account %s: %w", entry.Name(), err)
		}
		var acct account.Account
		if err := json.Unmarshal(data, &acct); err != nil {
			return fmt.Errorf("decode account %s: %w", entry.Name(), err)
		}
		if err := acct.Validate(); err != nil {
			return fmt.Errorf("load account %s: %w", entry.Name(), err)
		}
		r.accounts[acct.User] = &acct
	}
	r.log.WithField("accounts", len(r.accounts)).Info("accounts loaded")
	return nil
}

// Save writes every account to its own file. Files are written to a
// temporary path and renamed into place, so an interrupted save leaves the
// previous copy intact and never touches other users' files.
func (r *Registry) Save() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create accounts dir: %w", err)
	}
	for user, acct := range r.accounts {
		if err := r.saveOne(user, acct); err != nil {
			return err
		}
	}
	r.log.WithField("accounts", len(r.accounts)).Info("accounts saved")
	return nil
}

func (r *Registry) saveOne(user string, acct *account.Account) error {
	data, err := json.MarshalIndent(acct, "", "  ")
	if err != nil {
		return fmt.Errorf("encode account %s: %w", user, err)
	}
	path := r.filePath(user)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write account %s: %w", user, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write account %s: %w", user, err)
	}
	return nil
}

func (r *Registry) removeFile(user string) {
	if err := os.Remove(r.filePath(user)); err != nil && !os.IsNotExist(err) {
		r.log.WithError(err).WithField("user", user).Warn("remove account file")
	}
}

func (r *Registry) filePath(user string) string {
	return filepath.Join(r.dir, user+".json")
}
