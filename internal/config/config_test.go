package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	os.Unsetenv("API_BASE_URL")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ApiBaseUrl != "https://api2.timedoctor.com" {
		t.Errorf("ApiBaseUrl = %q", cfg.ApiBaseUrl)
	}
	if cfg.HttpTimeout != 5*time.Minute {
		t.Errorf("HttpTimeout = %s", cfg.HttpTimeout)
	}
	if cfg.PageDelay != 500*time.Millisecond {
		t.Errorf("PageDelay = %s", cfg.PageDelay)
	}
	if cfg.PageLimit != 200 {
		t.Errorf("PageLimit = %d", cfg.PageLimit)
	}
}

func TestLoadEnvFile(t *testing.T) {
	for _, key := range []string{"EMAIL", "PASSWORD", "TWOFACODE", "TELEGRAM_CHAT_ID", "BOT_TOKEN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// Registered after the unsets so the values loaded from the file are cleaned up too.
	t.Cleanup(func() {
		for _, key := range []string{"EMAIL", "PASSWORD", "TWOFACODE", "TELEGRAM_CHAT_ID", "BOT_TOKEN"} {
			os.Unsetenv(key)
		}
	})

	path := filepath.Join(t.TempDir(), ".env")
	content := "EMAIL=ops@example.com\nPASSWORD=secret\nTWOFACODE=123456\nBOT_TOKEN=bot\nTELEGRAM_CHAT_ID=42\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Credentials.Login() != "ops@example.com" || cfg.Credentials.Password != "secret" || cfg.Credentials.TotpCode != "123456" {
		t.Errorf("unexpected credentials: %+v", cfg.Credentials)
	}
	if !cfg.TelegramEnabled() {
		t.Error("telegram should be enabled")
	}
}

func TestLoadRejectsBadLimits(t *testing.T) {
	t.Setenv("PAGE_LIMIT", "0")
	if _, err := Load(""); err == nil {
		t.Error("expected error for PAGE_LIMIT=0")
	}
}

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		ok    bool
	}{
		{"email and password", Credentials{Email: "a@b.c", Password: "p"}, true},
		{"username fallback", Credentials{Username: "a@b.c", Password: "p"}, true},
		{"no login", Credentials{Password: "p"}, false},
		{"no password", Credentials{Email: "a@b.c"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("got %v, want ErrMissingCredentials", err)
			}
		})
	}
}
