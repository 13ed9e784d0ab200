package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.HTTP.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", config.HTTP.Port)
	}
	if config.HTTP.URLPrefix != "opus" {
		t.Errorf("Expected default url_prefix \"opus\", got %q", config.HTTP.URLPrefix)
	}
	if config.Query.MaxResults != 1000 {
		t.Errorf("Expected default max_results 1000, got %d", config.Query.MaxResults)
	}
	if config.Query.DefaultPageSize != 50 {
		t.Errorf("Expected default page size 50, got %d", config.Query.DefaultPageSize)
	}
	if config.Query.AllowWrite {
		t.Error("Expected writes disallowed by default")
	}
	if config.AuthEnabled() {
		t.Error("Expected auth disabled by default")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[http]
port = 9999
url_prefix = "console"

[database]
path = "/tmp/app.db"

[query]
max_results = 500
allow_write = true

[auth]
username = "admin"
password = "secret"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.HTTP.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", config.HTTP.Port)
	}
	if config.HTTP.URLPrefix != "console" {
		t.Errorf("Expected url_prefix \"console\", got %q", config.HTTP.URLPrefix)
	}
	if config.Database.Path != "/tmp/app.db" {
		t.Errorf("Expected database path /tmp/app.db, got %q", config.Database.Path)
	}
	if config.Query.MaxResults != 500 {
		t.Errorf("Expected max_results 500, got %d", config.Query.MaxResults)
	}
	if !config.Query.AllowWrite {
		t.Error("Expected allow_write true")
	}
	if !config.AuthEnabled() {
		t.Error("Expected auth enabled with both credentials set")
	}

	// Unspecified fields keep defaults
	if config.Query.DefaultPageSize != 50 {
		t.Errorf("Expected default page size 50, got %d", config.Query.DefaultPageSize)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.HTTP.Port != 8080 {
		t.Errorf("Expected default port, got %d", config.HTTP.Port)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("this is { not toml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Configuration) {},
			wantErr: false,
		},
		{
			name:    "zero port",
			mutate:  func(c *Configuration) { c.HTTP.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too large",
			mutate:  func(c *Configuration) { c.HTTP.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "empty url_prefix",
			mutate:  func(c *Configuration) { c.HTTP.URLPrefix = "" },
			wantErr: true,
		},
		{
			name:    "zero max_results",
			mutate:  func(c *Configuration) { c.Query.MaxResults = 0 },
			wantErr: true,
		},
		{
			name:    "zero default_page_size",
			mutate:  func(c *Configuration) { c.Query.DefaultPageSize = 0 },
			wantErr: true,
		},
		{
			name: "page size exceeds max_results",
			mutate: func(c *Configuration) {
				c.Query.MaxResults = 10
				c.Query.DefaultPageSize = 20
			},
			wantErr: true,
		},
		{
			name:    "bad logging format",
			mutate:  func(c *Configuration) { c.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "json logging format",
			mutate:  func(c *Configuration) { c.Logging.Format = "json" },
			wantErr: false,
		},
		{
			name: "prometheus enabled without path",
			mutate: func(c *Configuration) {
				c.Prometheus.Enabled = true
				c.Prometheus.Path = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestAuthEnabled(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		password string
		want     bool
	}{
		{"both set", "admin", "secret", true},
		{"neither set", "", "", false},
		{"only username", "admin", "", false},
		{"only password", "", "secret", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			config.Auth.Username = tt.user
			config.Auth.Password = tt.password

			if got := config.AuthEnabled(); got != tt.want {
				t.Errorf("AuthEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
