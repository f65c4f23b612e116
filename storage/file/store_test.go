package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasbot/pkg/logger"
	"gasbot/pkg/models"
	"gasbot/storage"
)

func newStore(t *testing.T, dir string) storage.IStorage {
	t.Helper()
	stg, err := New(dir, "chat_1", logger.New("file-test", "error"))
	require.NoError(t, err)
	return stg
}

func TestTokensRoundTripAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	stg := newStore(t, dir)
	require.NoError(t, stg.Session().SetTokens("acc-1", "ref-1"))
	require.NoError(t, stg.Close())

	// A fresh handle over the same file sees the same state.
	stg = newStore(t, dir)
	access, refresh, err := stg.Session().Tokens()
	require.NoError(t, err)
	assert.Equal(t, "acc-1", access)
	assert.Equal(t, "ref-1", refresh)
}

func TestSetAccessTokenLeavesRefreshAlone(t *testing.T) {
	stg := newStore(t, t.TempDir())
	require.NoError(t, stg.Session().SetTokens("acc-1", "ref-1"))
	require.NoError(t, stg.Session().SetAccessToken("acc-2"))

	access, refresh, err := stg.Session().Tokens()
	require.NoError(t, err)
	assert.Equal(t, "acc-2", access)
	assert.Equal(t, "ref-1", refresh)
}

func TestUserNilMeansAbsent(t *testing.T) {
	stg := newStore(t, t.TempDir())

	user, err := stg.Session().User()
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, stg.Session().SetUser(&models.User{ID: "u-1", Username: "tapiwa"}))
	user, err = stg.Session().User()
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "tapiwa", user.Username)

	require.NoError(t, stg.Session().SetUser(nil))
	user, err = stg.Session().User()
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSessionClearRemovesAuthStateOnly(t *testing.T) {
	stg := newStore(t, t.TempDir())
	require.NoError(t, stg.Session().SetTokens("a", "r"))
	require.NoError(t, stg.Session().SetUser(&models.User{ID: "u-1"}))
	require.NoError(t, stg.Session().SetSetupComplete(true))
	require.NoError(t, stg.Orders().Save([]*models.Order{{OrderID: "ord-1"}}))
	require.NoError(t, stg.Prefs().Set(storage.PrefDeliveryAddress, "7 Borrowdale Rd"))

	require.NoError(t, stg.Session().Clear())

	access, refresh, err := stg.Session().Tokens()
	require.NoError(t, err)
	assert.Empty(t, access)
	assert.Empty(t, refresh)

	user, err := stg.Session().User()
	require.NoError(t, err)
	assert.Nil(t, user)

	done, err := stg.Session().SetupComplete()
	require.NoError(t, err)
	assert.False(t, done)

	// Orders and preferences are a separate concern and survive sign-out.
	orders, err := stg.Orders().List()
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	addr, err := stg.Prefs().Get(storage.PrefDeliveryAddress)
	require.NoError(t, err)
	assert.Equal(t, "7 Borrowdale Rd", addr)
}

func TestUnshiftPrepends(t *testing.T) {
	stg := newStore(t, t.TempDir())
	require.NoError(t, stg.Orders().Unshift(&models.Order{OrderID: "ord-1"}))
	require.NoError(t, stg.Orders().Unshift(&models.Order{OrderID: "ord-2"}))

	orders, err := stg.Orders().List()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ord-2", orders[0].OrderID)
	assert.Equal(t, "ord-1", orders[1].OrderID)
}

func TestOrdersClear(t *testing.T) {
	stg := newStore(t, t.TempDir())
	require.NoError(t, stg.Orders().Save([]*models.Order{{OrderID: "ord-1"}}))
	require.NoError(t, stg.Orders().Clear())

	orders, err := stg.Orders().List()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCorruptFileStartsOver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_1.json"), []byte("{not json"), 0o600))

	stg := newStore(t, dir)
	access, refresh, err := stg.Session().Tokens()
	require.NoError(t, err, "a corrupt store must not wedge the client")
	assert.Empty(t, access)
	assert.Empty(t, refresh)

	// And it is writable again.
	require.NoError(t, stg.Session().SetTokens("a", "r"))
	access, _, err = stg.Session().Tokens()
	require.NoError(t, err)
	assert.Equal(t, "a", access)
}

func TestSeparateNamesDoNotShareState(t *testing.T) {
	dir := t.TempDir()
	log := logger.New("file-test", "error")

	a, err := New(dir, "chat_1", log)
	require.NoError(t, err)
	b, err := New(dir, "chat_2", log)
	require.NoError(t, err)

	require.NoError(t, a.Session().SetTokens("acc-a", "ref-a"))

	access, _, err := b.Session().Tokens()
	require.NoError(t, err)
	assert.Empty(t, access)
}
