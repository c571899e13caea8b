package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scoreahack/pkg/config"
)

func TestManagerStoreAndRetrieve(t *testing.T) {
	store := NewMockStore()
	m := NewManagerWithStores(store)

	require.NoError(t, m.Store(&Credential{Provider: " OpenAI ", APIKey: " sk-123456789 "}))

	cred, err := m.Retrieve("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-123456789", cred.APIKey)
	assert.False(t, cred.LastModified.IsZero())
}

func TestManagerStoreValidation(t *testing.T) {
	m := NewManagerWithStores(NewMockStore())
	assert.ErrorIs(t, m.Store(&Credential{APIKey: "k"}), ErrInvalidCredentials)
	assert.ErrorIs(t, m.Store(&Credential{Provider: "openai"}), ErrInvalidCredentials)
	assert.ErrorIs(t, m.Store(nil), ErrInvalidCredentials)
}

func TestManagerFallsBack(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	backup := NewMockStore()
	m := NewManagerWithStores(broken, backup)

	require.NoError(t, m.Store(&Credential{Provider: "claude", APIKey: "key-abcdefgh"}))
	assert.True(t, backup.Exists("claude"))

	cred, err := m.Retrieve("claude")
	require.NoError(t, err)
	assert.Equal(t, "key-abcdefgh", cred.APIKey)
}

func TestManagerAllStoresFail(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("nope")
	m := NewManagerWithStores(broken, NewEnvironmentStore())

	err := m.Store(&Credential{Provider: "openai", APIKey: "k"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, names := range providerEnv {
		for _, n := range names {
			t.Setenv(n, "")
		}
	}
}

func TestManagerListAndDelete(t *testing.T) {
	clearProviderEnv(t)
	older := NewMockStore()
	newer := NewMockStore()
	require.NoError(t, older.Store(&Credential{Provider: "openai", APIKey: "old", LastModified: time.Now().Add(-time.Hour)}))
	require.NoError(t, newer.Store(&Credential{Provider: "openai", APIKey: "new", LastModified: time.Now()}))
	require.NoError(t, newer.Store(&Credential{Provider: "gemini", APIKey: "g", LastModified: time.Now()}))
	m := NewManagerWithStores(older, newer, NewEnvironmentStore())

	creds, err := m.List()
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, "gemini", creds[0].Provider)
	assert.Equal(t, "new", creds[1].APIKey)

	require.NoError(t, m.Delete("openai"))
	assert.False(t, older.Exists("openai"))
	assert.False(t, newer.Exists("openai"))

	assert.ErrorIs(t, m.Delete("openai"), ErrCredentialsNotFound)
}

func TestResolveAPIKey(t *testing.T) {
	store := NewMockStore()
	require.NoError(t, store.Store(&Credential{Provider: "claude", APIKey: "stored"}))
	m := NewManagerWithStores(store)

	cfg := config.LLMConfig{Provider: "anthropic"}
	assert.True(t, m.ResolveAPIKey(&cfg))
	assert.Equal(t, "stored", cfg.APIKey)

	cfg = config.LLMConfig{Provider: "claude", APIKey: "explicit"}
	assert.False(t, m.ResolveAPIKey(&cfg))
	assert.Equal(t, "explicit", cfg.APIKey)

	cfg = config.LLMConfig{Provider: "gemini"}
	assert.False(t, m.ResolveAPIKey(&cfg))
	assert.Empty(t, cfg.APIKey)
}

func TestEnvironmentStore(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GOOGLE_API_KEY", "g-env")

	e := NewEnvironmentStore()
	cred, err := e.Retrieve("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cred.APIKey)
	assert.True(t, e.Exists("gemini"))
	assert.ErrorIs(t, e.Store(cred), ErrStoreUnavailable)
	assert.ErrorIs(t, e.Delete("openai"), ErrStoreUnavailable)
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(PassphraseEnv, "test-passphrase")
	path := filepath.Join(t.TempDir(), "creds", "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = store.Retrieve("openai")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, store.Store(&Credential{Provider: "openai", APIKey: "sk-secret-value"}))
	require.NoError(t, store.Store(&Credential{Provider: "gemini", APIKey: "g-secret"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-secret-value")

	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	cred, err := reopened.Retrieve("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-secret-value", cred.APIKey)

	list, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, reopened.Delete("openai"))
	require.NoError(t, reopened.Delete("gemini"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv(PassphraseEnv, "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Credential{Provider: "openai", APIKey: "k"}))

	t.Setenv(PassphraseEnv, "second")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = other.Retrieve("openai")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentialsNotFound)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "********", MaskKey("short"))
	assert.Equal(t, "sk-1...wxyz", MaskKey("sk-1234567890wxyz"))

	c := Sanitize(&Credential{Provider: "openai", APIKey: "sk-1234567890wxyz"})
	assert.Equal(t, "sk-1...wxyz", c.APIKey)
	assert.Nil(t, Sanitize(nil))
}
