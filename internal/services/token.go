package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// TokenCache persists the OAuth token across runs as a JSON file.
type TokenCache struct {
	Path string
}

// DefaultTokenCachePath returns ~/.spotbatch/token.json.
func DefaultTokenCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".spotbatch", "token.json")
	}
	return filepath.Join(home, ".spotbatch", "token.json")
}

// Load reads the cached token. Returns an error when no usable token exists.
func (c TokenCache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token cache: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token cache: %w", err)
	}

	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("token cache at %s is empty", c.Path)
	}

	return &token, nil
}

// Save writes the token with owner-only permissions, creating the cache
// directory if needed.
func (c TokenCache) Save(token *oauth2.Token) error {
	if dir := filepath.Dir(c.Path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token cache directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(c.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}

	return nil
}
