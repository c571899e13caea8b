package auth

import (
	"os"
	"time"
)

var knownProviders = []string{"openai", "claude", "gemini"}

// providerEnv lists the variables checked per provider, in order
var providerEnv = map[string][]string{
	"openai": {"SCOREAHACK_OPENAI_API_KEY", "OPENAI_API_KEY"},
	"claude": {"SCOREAHACK_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
	"gemini": {"SCOREAHACK_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// EnvironmentStore reads provider keys from the environment. It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-backed store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Name() string { return "environment" }

func (e *EnvironmentStore) Store(*Credential) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Retrieve(provider string) (*Credential, error) {
	for _, name := range providerEnv[provider] {
		if key := os.Getenv(name); key != "" {
			return &Credential{Provider: provider, APIKey: key, LastModified: time.Time{}}, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

func (e *EnvironmentStore) List() ([]*Credential, error) {
	var creds []*Credential
	for _, p := range knownProviders {
		if c, err := e.Retrieve(p); err == nil {
			creds = append(creds, c)
		}
	}
	return creds, nil
}

func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(provider string) bool {
	_, err := e.Retrieve(provider)
	return err == nil
}
