package backups

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadFeeds reads the configured feed files. A missing path skips that feed;
// an unreadable or malformed file fails the run, partial feeds would silently
// hide backups.
func LoadFeeds(cfg FeedsConfig) (Feeds, error) {
	var feeds Feeds
	if err := decodeFeed(cfg.Snapshots, &feeds.Snapshots); err != nil {
		return Feeds{}, err
	}
	if err := decodeFeed(cfg.Storage, &feeds.Storage); err != nil {
		return Feeds{}, err
	}
	if err := decodeFeed(cfg.PBS, &feeds.PBS); err != nil {
		return Feeds{}, err
	}
	if err := decodeFeed(cfg.PMG, &feeds.PMG); err != nil {
		return Feeds{}, err
	}
	if err := decodeFeed(cfg.Guests, &feeds.Guests); err != nil {
		return Feeds{}, err
	}
	return feeds, nil
}

func decodeFeed(path string, v any) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read feed: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode feed %s: %w", path, err)
	}
	return nil
}
