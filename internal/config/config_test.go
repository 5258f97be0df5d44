package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", cfg.PageSize)
	}
	if cfg.APIBaseURL == "" {
		t.Error("APIBaseURL should have a default")
	}
	if cfg.VaultDir == "" {
		t.Error("VaultDir should have a default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{"vault_dir": "/tmp/vault", "lookback_days": 30}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.VaultDir != "/tmp/vault" {
		t.Errorf("VaultDir = %q, want /tmp/vault", cfg.VaultDir)
	}
	if cfg.LookbackDays != 30 {
		t.Errorf("LookbackDays = %d, want 30", cfg.LookbackDays)
	}
	// Untouched keys keep defaults
	if cfg.PageSize != 100 {
		t.Errorf("PageSize = %d, want default 100", cfg.PageSize)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{nope"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestMerge_OverlayWins(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{PageSize: 25}

	merged := Merge(base, overlay)

	if merged.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", merged.PageSize)
	}
	if merged.APIBaseURL != base.APIBaseURL {
		t.Errorf("APIBaseURL = %q, want base value", merged.APIBaseURL)
	}
}
