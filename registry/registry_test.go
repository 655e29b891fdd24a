package registry

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitrader/kitrader/account"
)

var testDefaults = Defaults{
	Balance:  1000,
	Currency: "USD",
	MinTrade: 5,
	Policy:   account.MergeRebuys,
}

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(t.TempDir(), "kitrader", testDefaults)
}

func TestCreateAppliesDefaults(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	acct, err := r.Create("alice", 0, "")
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, acct.Balance, 1e-12)
	assert.Equal(t, "USD", acct.Currency)
	assert.InDelta(t, 5.0, acct.MinTrade, 1e-12)
	assert.Equal(t, account.MergeRebuys, acct.Policy)
	assert.True(t, r.Exists("alice"))
}

func TestCreateExplicitValues(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	acct, err := r.Create("bob", 250, "eur")
	require.NoError(t, err)
	assert.InDelta(t, 250.0, acct.Balance, 1e-12)
	assert.Equal(t, "EUR", acct.Currency)
}

func TestCreateRejectsDuplicate(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	_, err := r.Create("alice", 0, "")
	require.NoError(t, err)

	_, err = r.Create("alice", 500, "")
	var exists *AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "alice", exists.User)
}

func TestCreateRejectsBadCurrency(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	for _, cur := range []string{"U", "US", "us1", "$$$"} {
		_, err := r.Create("u"+cur, 100, cur)
		assert.Error(t, err, "currency %q", cur)
	}
}

func TestDeleteRemovesAccountAndFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := New(dir, "kitrader", testDefaults)
	_, err := r.Create("alice", 0, "")
	require.NoError(t, err)
	require.NoError(t, r.Save())

	path := filepath.Join(dir, "alice.json")
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, r.Delete("alice"))
	assert.False(t, r.Exists("alice"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteUnknownUser(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	var notFound *NotFoundError
	require.ErrorAs(t, r.Delete("ghost"), &notFound)
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	tests := []struct {
		name      string
		requester string
		target    string
		superuser bool
		allowed   bool
	}{
		{"own account", "alice", "alice", false, true},
		{"other user", "alice", "bob", false, false},
		{"superusers see system", "admin", "kitrader", true, true},
		{"plain user cannot see system", "alice", "kitrader", false, false},
		{"superuser still blocked from users", "admin", "bob", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Authorize(tt.requester, tt.target, tt.superuser)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			var denied *AuthorizationDeniedError
			require.ErrorAs(t, err, &denied)
			assert.Equal(t, tt.requester, denied.Requester)
		})
	}
}

func TestEnsureSystemCreatesOnce(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	first, err := r.EnsureSystem()
	require.NoError(t, err)
	assert.Equal(t, "kitrader", first.User)

	again, err := r.EnsureSystem()
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestEnsureSystemConcurrent(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	const n = 8
	accts := make([]*account.Account, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			accts[i], errs[i] = r.EnsureSystem()
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i], "caller %d", i)
		assert.Same(t, accts[0], accts[i], "caller %d", i)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := New(dir, "kitrader", testDefaults)

	alice, err := r.Create("alice", 1000, "USD")
	require.NoError(t, err)
	_, err = alice.Buy("BTC", 100, 2, 0.005, "persisted")
	require.NoError(t, err)
	_, err = r.Create("bob", 2500, "EUR")
	require.NoError(t, err)
	require.NoError(t, r.Save())

	reloaded := New(dir, "kitrader", testDefaults)
	require.NoError(t, reloaded.Load())
	assert.ElementsMatch(t, []string{"alice", "bob"}, reloaded.Users())

	got, ok := reloaded.Get("alice")
	require.True(t, ok)
	assert.InDelta(t, alice.Balance, got.Balance, 1e-9)
	assert.InDelta(t, 2.0, got.Get("BTC"), 1e-12)
	require.Len(t, got.History, 1)
	assert.Equal(t, "persisted", got.History[0].Comment)

	eur, ok := reloaded.Get("bob")
	require.True(t, ok)
	assert.Equal(t, "EUR", eur.Currency)
}

func TestLoadSkipsNonAccountFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))

	r := New(dir, "kitrader", testDefaults)
	require.NoError(t, r.Load())
	assert.Empty(t, r.Users())
}

func TestLoadAbortsOnCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	r := New(dir, "kitrader", testDefaults)
	assert.Error(t, r.Load())
}

func TestLoadRejectsInvalidAccount(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := []byte(`{"user":"eve","balance":-10,"currency":"USD"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eve.json"), data, 0o644))

	r := New(dir, "kitrader", testDefaults)
	assert.Error(t, r.Load())
}
