package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"scoreahack/pkg/config"
)

// Credential is a model provider API key
type Credential struct {
	Provider     string    `json:"provider"`
	APIKey       string    `json:"api_key"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore persists credentials keyed by provider
type CredentialStore interface {
	Store(cred *Credential) error
	Retrieve(provider string) (*Credential, error)
	List() ([]*Credential, error)
	Delete(provider string) error
	Exists(provider string) bool
	Name() string
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Manager tries each store in order: system keychain, encrypted file,
// environment.
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a manager with every store available on this system
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if ks, err := NewKeyringStore(); err == nil {
		stores = append(stores, ks)
	}

	configDir, err := ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	fs, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, fs, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over explicit stores
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// StoreNames lists the stores in lookup order
func (m *Manager) StoreNames() []string {
	names := make([]string, len(m.stores))
	for i, s := range m.stores {
		names[i] = s.Name()
	}
	return names
}

// Store saves the key in the first store that accepts it
func (m *Manager) Store(cred *Credential) error {
	if cred == nil || strings.TrimSpace(cred.Provider) == "" {
		return fmt.Errorf("%w: provider is required", ErrInvalidCredentials)
	}
	if strings.TrimSpace(cred.APIKey) == "" {
		return fmt.Errorf("%w: API key is required", ErrInvalidCredentials)
	}
	cred.Provider = strings.ToLower(strings.TrimSpace(cred.Provider))
	cred.APIKey = strings.TrimSpace(cred.APIKey)
	cred.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(cred)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve returns the key from the first store that has one
func (m *Manager) Retrieve(provider string) (*Credential, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	for _, store := range m.stores {
		if cred, err := store.Retrieve(provider); err == nil && cred != nil {
			return cred, nil
		}
	}
	return nil, fmt.Errorf("%w for provider %s", ErrCredentialsNotFound, provider)
}

// List merges every store, keeping the newest credential per provider
func (m *Manager) List() ([]*Credential, error) {
	byProvider := make(map[string]*Credential)
	for _, store := range m.stores {
		creds, err := store.List()
		if err != nil {
			continue
		}
		for _, c := range creds {
			if existing, ok := byProvider[c.Provider]; !ok || c.LastModified.After(existing.LastModified) {
				byProvider[c.Provider] = c
			}
		}
	}

	result := make([]*Credential, 0, len(byProvider))
	for _, c := range byProvider {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Provider < result[j].Provider })
	return result, nil
}

// Delete removes the key from every store that holds it
func (m *Manager) Delete(provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		if err := store.Delete(provider); err == nil {
			deleted = true
		} else if !errors.Is(err, ErrStoreUnavailable) {
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil && !errors.Is(lastErr, ErrCredentialsNotFound) {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	return fmt.Errorf("%w for provider %s", ErrCredentialsNotFound, provider)
}

// ResolveAPIKey fills cfg.APIKey from the stores when configuration and
// environment left it empty. It reports whether a stored key was used.
func (m *Manager) ResolveAPIKey(cfg *config.LLMConfig) bool {
	if cfg.APIKey != "" {
		return false
	}
	cred, err := m.Retrieve(canonicalProvider(cfg.Provider))
	if err != nil {
		return false
	}
	cfg.APIKey = cred.APIKey
	return true
}

func canonicalProvider(p string) string {
	switch p = strings.ToLower(strings.TrimSpace(p)); p {
	case "", "openai":
		return "openai"
	case "anthropic":
		return "claude"
	case "google":
		return "gemini"
	default:
		return p
	}
}

// ConfigDir returns the per-user configuration directory, creating it
func ConfigDir() (string, error) {
	var dir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support", "scoreahack")
	case "windows":
		dir = filepath.Join(os.Getenv("APPDATA"), "scoreahack")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dir = filepath.Join(xdg, "scoreahack")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dir = filepath.Join(home, ".config", "scoreahack")
		}
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// Sanitize returns a copy with the key masked, for display
func Sanitize(cred *Credential) *Credential {
	if cred == nil {
		return nil
	}
	c := *cred
	c.APIKey = MaskKey(cred.APIKey)
	return &c
}

// MaskKey keeps the first and last four characters of long keys
func MaskKey(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
