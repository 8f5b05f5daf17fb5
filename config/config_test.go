package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func env(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	got, err := Load("", "", env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "none.toml"), filepath.Join(dir, ".env"), env(nil)); err != nil {
		t.Errorf("Load() with missing files: %v", err)
	}
}

func TestLoadPrecedence(t *testing.T) {
	toml := write(t, "stockchat.toml", `
[server]
url = "http://from-file:5001"
chat_timeout = "30s"

[display]
style = "dark"
word_wrap = 72
currency = "EUR"

[logging]
level = "warn"
`)
	dotenv := write(t, ".env", "STOCKCHAT_SERVER_URL=http://from-dotenv:5001\nSTOCKCHAT_STYLE=light\n")

	got, err := Load(toml, dotenv, env(map[string]string{
		"STOCKCHAT_STYLE":     "notty",
		"STOCKCHAT_WORD_WRAP": "60",
	}))
	if err != nil {
		t.Fatal(err)
	}
	ApplyFlagOverrides(got, "", true)

	want := Default()
	want.Server.URL = "http://from-dotenv:5001"
	want.Server.ChatTimeout = "30s"
	want.Display = DisplayConfig{Style: "notty", WordWrap: 60, Currency: "EUR"}
	want.Logging.Level = "debug"
	want.Logging.Console = true
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	ApplyFlagOverrides(got, "https://from-flag", false)
	if got.Server.URL != "https://from-flag" {
		t.Errorf("Server.URL = %q, want the flag value", got.Server.URL)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		env  map[string]string
	}{
		{name: "bad toml", toml: "[server\nurl = 1"},
		{name: "bad word wrap", env: map[string]string{"STOCKCHAT_WORD_WRAP": "wide"}},
		{name: "bad verbose", env: map[string]string{"STOCKCHAT_VERBOSE": "maybe"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := ""
			if tc.toml != "" {
				path = write(t, "stockchat.toml", tc.toml)
			}
			if _, err := Load(path, "", env(tc.env)); err == nil {
				t.Error("Load() succeeded, want an error")
			}
		})
	}
}

func TestChatTimeout(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"90s", 90 * time.Second, false},
		{"2m", 2 * time.Minute, false},
		{"soon", 0, true},
	}
	for _, tc := range tests {
		c := Default()
		c.Server.ChatTimeout = tc.in
		got, err := c.ChatTimeout()
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ChatTimeout(%q) = %v, %v, want %v (error %v)", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no scheme", func(c *Config) { c.Server.URL = "localhost:5001" }},
		{"bad timeout", func(c *Config) { c.Server.ChatTimeout = "1 minute" }},
		{"negative wrap", func(c *Config) { c.Display.WordWrap = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.modify(c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() succeeded, want an error")
			}
		})
	}
}
