package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateClientConfig(t *testing.T) {
	// Change to temp directory for relative path tests
	t.Chdir(t.TempDir())

	tests := []struct {
		name      string
		path      string
		existing  map[string]interface{}
		mergeOnly bool
		wantErr   bool
	}{
		{
			name:    "valid path",
			path:    "config.json",
			wantErr: false,
		},
		{
			name:    "nested path",
			path:    filepath.Join("claude", "config.json"),
			wantErr: false,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
		},
		{
			name:    "non-json extension",
			path:    "config.txt",
			wantErr: true,
		},
		{
			name:    "path with ..",
			path:    filepath.Join("..", "config.json"),
			wantErr: true,
		},
		{
			name:      "merge without existing file",
			path:      "missing.json",
			mergeOnly: true,
			wantErr:   true,
		},
		{
			name: "merge with existing",
			path: "merge.json",
			existing: map[string]interface{}{
				"existing_key": "existing_value",
				"mcpServers": map[string]interface{}{
					"Other": map[string]interface{}{"command": "/bin/other"},
				},
			},
			mergeOnly: true,
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create existing config for merge test
			if tt.existing != nil {
				data, err := json.Marshal(tt.existing)
				if err != nil {
					t.Fatalf("Failed to marshal existing config: %v", err)
				}
				if err := os.WriteFile(tt.path, data, 0o644); err != nil {
					t.Fatalf("Failed to write existing config: %v", err)
				}
			}

			err := generateClientConfig(tt.path, tt.mergeOnly)
			if (err != nil) != tt.wantErr {
				t.Fatalf("generateClientConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			// Check file exists and has correct permissions
			info, err := os.Stat(tt.path)
			if err != nil {
				t.Fatalf("Failed to stat config file: %v", err)
			}
			if mode := info.Mode().Perm(); mode != 0o600 {
				t.Errorf("Config file has wrong permissions: %v, want 0600", mode)
			}

			// Check config content
			data, err := os.ReadFile(tt.path)
			if err != nil {
				t.Fatalf("Failed to read config file: %v", err)
			}

			var cfg map[string]interface{}
			if err := json.Unmarshal(data, &cfg); err != nil {
				t.Fatalf("Failed to parse config JSON: %v", err)
			}

			servers, ok := cfg["mcpServers"].(map[string]interface{})
			if !ok {
				t.Fatal("Config missing 'mcpServers' section")
			}
			entry, ok := servers[serverKey].(map[string]interface{})
			if !ok {
				t.Fatalf("Config missing %q server", serverKey)
			}
			if _, ok := entry["command"].(string); !ok {
				t.Error("Server entry missing 'command'")
			}
			env, ok := entry["env"].(map[string]interface{})
			if !ok || env["TRIPGO_API_KEY"] == nil {
				t.Error("Server entry missing TRIPGO_API_KEY placeholder")
			}

			// Check merged content for merge test
			if tt.existing != nil {
				if val, ok := cfg["existing_key"]; !ok || val != "existing_value" {
					t.Error("Merge failed to preserve existing content")
				}
				if _, ok := servers["Other"]; !ok {
					t.Error("Merge failed to preserve other servers")
				}
			}
		})
	}
}
