package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Uploader.ChunkSize != 100 {
		t.Errorf("ChunkSize = %d, want 100", config.Uploader.ChunkSize)
	}
	if config.Uploader.RateLimit != 5.0 {
		t.Errorf("RateLimit = %v, want 5.0", config.Uploader.RateLimit)
	}
	if config.Uploader.FailedLog != "logs/failed_tracks.txt" {
		t.Errorf("FailedLog = %q", config.Uploader.FailedLog)
	}
	if config.Server.Host != "127.0.0.1" || config.Server.Port != 8888 {
		t.Errorf("server = %s:%d, want 127.0.0.1:8888", config.Server.Host, config.Server.Port)
	}
	if config.Database.Path != "" {
		t.Errorf("Database.Path = %q, want empty (disabled)", config.Database.Path)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		data := `[credentials.spotify]
client_id = "id123"
client_secret = "secret456"

[uploader]
chunk_size = 50
rate_limit = 2.5
`
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "id123" {
			t.Errorf("ClientID = %q", config.Credentials.Spotify.ClientID)
		}
		if config.Uploader.ChunkSize != 50 {
			t.Errorf("ChunkSize = %d, want 50", config.Uploader.ChunkSize)
		}
		if config.Uploader.RateLimit != 2.5 {
			t.Errorf("RateLimit = %v, want 2.5", config.Uploader.RateLimit)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("not [valid"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for malformed file")
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile() error: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("created config does not load: %v", err)
	}
	if config.Uploader.ChunkSize != 100 {
		t.Errorf("ChunkSize = %d, want 100", config.Uploader.ChunkSize)
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("CreateConfigFile() should refuse to overwrite")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Run("environment overrides config", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "env_id")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "env_secret")
		t.Setenv("SPOTIFY_REDIRECT_URI", "http://localhost:9999/callback")

		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "file_id"

		if err := LoadEnv("", config); err != nil {
			t.Fatalf("LoadEnv() error: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "env_id" {
			t.Errorf("ClientID = %q, want env_id", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.RedirectURI != "http://localhost:9999/callback" {
			t.Errorf("RedirectURI = %q", config.Credentials.Spotify.RedirectURI)
		}
	})

	t.Run("dotenv file", func(t *testing.T) {
		// t.Setenv registers the restore; the dotenv loader only fills
		// variables that are genuinely unset.
		t.Setenv("SPOTIFY_CLIENT_ID", "placeholder")
		os.Unsetenv("SPOTIFY_CLIENT_ID")

		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("SPOTIFY_CLIENT_ID=dotenv_id\n"), 0644); err != nil {
			t.Fatal(err)
		}

		config := DefaultConfig()
		if err := LoadEnv(path, config); err != nil {
			t.Fatalf("LoadEnv() error: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "dotenv_id" {
			t.Errorf("ClientID = %q, want dotenv_id", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("missing dotenv file is not an error", func(t *testing.T) {
		config := DefaultConfig()
		if err := LoadEnv(filepath.Join(t.TempDir(), "absent.env"), config); err != nil {
			t.Errorf("LoadEnv() error: %v", err)
		}
	})
}

func TestSpotifyConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  SpotifyConfig
		wantErr bool
	}{
		{name: "complete", config: SpotifyConfig{ClientID: "id", ClientSecret: "secret"}},
		{name: "missing secret", config: SpotifyConfig{ClientID: "id"}, wantErr: true},
		{name: "missing id", config: SpotifyConfig{ClientSecret: "secret"}, wantErr: true},
		{name: "empty", config: SpotifyConfig{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrMissingCredentials) {
					t.Errorf("Validate() error = %v, want ErrMissingCredentials", err)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}
