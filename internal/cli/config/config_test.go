package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHostParsesAPIURL(t *testing.T) {
	tests := []struct {
		name   string
		apiURL string
		want   string
	}{
		{"https url", "https://api.mealhub.example.com", "api.mealhub.example.com"},
		{"url with port", "http://localhost:8090", "localhost:8090"},
		{"url with path", "https://api.mealhub.example.com/v2", "api.mealhub.example.com"},
		{"bare host falls back to raw value", "not a url", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{APIURL: tt.apiURL}
			if got := cfg.Host(); got != tt.want {
				t.Errorf("Host() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{APIURL: "https://api.example.com", IdentityURL: "https://id.example.com"}, false},
		{"missing api url", Config{IdentityURL: "https://id.example.com"}, true},
		{"missing identity url", Config{APIURL: "https://api.example.com"}, true},
		{"empty", Config{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := &Config{
		APIURL:         "https://api.example.com",
		IdentityURL:    "https://id.example.com",
		IdentityAPIKey: "public-key",
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, cfg)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestFindConfigFileSearchesParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfgPath := filepath.Join(root, ConfigFileName)
	if err := Save(cfgPath, DefaultConfig()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	found, err := FindConfigFile()
	if err != nil {
		t.Fatalf("FindConfigFile: %v", err)
	}
	// Resolve symlinks; temp dirs may be links.
	wantReal, _ := filepath.EvalSymlinks(cfgPath)
	foundReal, _ := filepath.EvalSymlinks(found)
	if foundReal != wantReal {
		t.Errorf("found %q, want %q", found, cfgPath)
	}
}
