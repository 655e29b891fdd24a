// Package registry maps user identities to accounts and owns their
// persistence: one JSON file per user, written independently so a partial
// write of one file cannot corrupt another user's account.
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kitrader/kitrader/account"
)

// Defaults are applied when Create is called without explicit values.
type Defaults struct {
	Balance  float64
	Currency string
	MinTrade float64
	Policy   account.MergePolicy
}

var currencyRe = regexp.MustCompile(`^[A-Z]{3,}$`)

// Registry is an injected repository of accounts with an explicit lifecycle:
// Load at startup, Save at shutdown or on snapshot. It is safe for
// concurrent use; per-account mutation is serialized inside Account itself.
type Registry struct {
	mu       sync.RWMutex
	dir      string
	system   string
	defaults Defaults
	accounts map[string]*account.Account
	log      *logrus.Entry
}

// New creates a registry persisting under dir. system names the designated
// shared account a superuser may inspect and the alert router trades on.
func New(dir, system string, defaults Defaults) *Registry {
	if defaults.Policy == "" {
		defaults.Policy = account.MergeRebuys
	}
	return &Registry{
		dir:      dir,
		system:   system,
		defaults: defaults,
		accounts: make(map[string]*account.Account),
		log:      logrus.WithField("component", "registry"),
	}
}

// System returns the name of the designated shared account.
func (r *Registry) System() string { return r.system }

// Create registers a new account for user. A non-positive balance or empty
// currency falls back to the registry defaults.
func (r *Registry) Create(user string, balance float64, currency string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[user]; ok {
		return nil, &AlreadyExistsError{User: user}
	}
	if balance <= 0 {
		balance = r.defaults.Balance
	}
	if currency == "" {
		currency = r.defaults.Currency
	}
	currency = strings.ToUpper(currency)
	if !currencyRe.MatchString(currency) {
		return nil, fmt.Errorf("invalid currency %q: want a code of 3+ letters", currency)
	}

	acct := account.New(user, balance, currency, r.defaults.MinTrade)
	acct.Policy = r.defaults.Policy
	r.accounts[user] = acct
	r.log.WithFields(logrus.Fields{"user": user, "balance": balance, "currency": currency}).
		Info("account created")
	return acct, nil
}

// Delete removes the account and all its state: open positions are discarded
// without closing, history is dropped, the persisted file is removed.
func (r *Registry) Delete(user string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[user]; !ok {
		return &NotFoundError{User: user}
	}
	delete(r.accounts, user)
	r.removeFile(user)
	r.log.WithField("user", user).Info("account deleted")
	return nil
}

// Get returns the account for user, if any.
func (r *Registry) Get(user string) (*account.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.accounts[user]
	return acct, ok
}

// Exists reports whether user has an account.
func (r *Registry) Exists(user string) bool {
	_, ok := r.Get(user)
	return ok
}

// Users returns every registered user.
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.accounts))
	for user := range r.accounts {
		out = append(out, user)
	}
	return out
}

// Authorize grants requester access to target's account and history. A user
// always sees their own account; a superuser may additionally inspect the
// shared system account.
func (r *Registry) Authorize(requester, target string, superuser bool) error {
	if requester == target {
		return nil
	}
	if superuser && target == r.system {
		return nil
	}
	return &AuthorizationDeniedError{Requester: requester, Target: target}
}

// EnsureSystem returns the shared system account, creating it with defaults
// on first use. Safe for concurrent callers: whoever loses the create race
// picks up the winner's account.
func (r *Registry) EnsureSystem() (*account.Account, error) {
	if acct, ok := r.Get(r.system); ok {
		return acct, nil
	}
	acct, err := r.Create(r.system, 0, "")
	if err != nil {
		var exists *AlreadyExistsError
		if errors.As(err, &exists) {
			if acct, ok := r.Get(r.system); ok {
				return acct, nil
			}
		}
		return nil, err
	}
	return acct, nil
}
