package backups

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
db: /var/lib/backup-lens/history.db
chart_days: 90
debug: true
feeds:
  snapshots: /run/feeds/snapshots.json
  storage: /run/feeds/storage.json
  pbs: /run/feeds/pbs.json
  pmg: /run/feeds/pmg.json
  guests: /run/feeds/guests.json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DB != "/var/lib/backup-lens/history.db" {
		t.Fatalf("unexpected db: %q", cfg.DB)
	}
	if cfg.ChartDays != 90 || !cfg.Debug {
		t.Fatalf("unexpected options: %+v", cfg)
	}
	if cfg.Feeds.PBS != "/run/feeds/pbs.json" || cfg.Feeds.Guests != "/run/feeds/guests.json" {
		t.Fatalf("unexpected feeds: %+v", cfg.Feeds)
	}
	if cfg.Feeds.empty() {
		t.Fatalf("feeds should not read as empty")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("feeds: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
