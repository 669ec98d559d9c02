// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	os.Setenv("REDIS_URL", "redis://localhost:6379/0")
	os.Setenv("NICKNAME", "@tester")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.Room != "pizza-night" {
		t.Errorf("expected default room, got %q", cfg.Room)
	}
	if cfg.DataPath != "pizzanight.db" {
		t.Errorf("expected default data path, got %q", cfg.DataPath)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-r", "redis://localhost:6379/0", "-nick", "@tester"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
}

func TestParseFlags_MissingRequired(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{"-nick", "@tester"}); err == nil {
		t.Error("expected error without Redis URL")
	}
	if _, err := ParseFlags([]string{"-r", "redis://localhost:6379/0"}); err == nil {
		t.Error("expected error without nickname")
	}
}

func TestParseFlags_MirrorOptional(t *testing.T) {
	os.Clearenv()

	cfg, err := ParseFlags([]string{"-r", "redis://localhost:6379/0", "-nick", "@tester"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MirrorURL != "" {
		t.Errorf("expected empty mirror URL, got %q", cfg.MirrorURL)
	}
}
