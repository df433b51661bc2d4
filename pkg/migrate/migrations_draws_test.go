package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDrawsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_draws.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no draws migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS draws",
		"UNIQUE (date, slot)",
		"CHECK (digit_1 BETWEEN '0' AND '9')",
		"published BOOLEAN NOT NULL DEFAULT FALSE",
		"DROP TABLE IF EXISTS draws",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSubscriptionsMigrationDefaultsAllSlotsOn(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_notification_subscriptions.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no subscriptions migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	for _, column := range []string{"slot_10_00", "slot_12_00", "slot_14_00", "slot_17_00", "slot_19_00"} {
		if !strings.Contains(content, column+" BOOLEAN NOT NULL DEFAULT TRUE") {
			t.Errorf("settings column %s must default to true", column)
		}
	}

	if !strings.Contains(content, "endpoint TEXT NOT NULL UNIQUE") {
		t.Errorf("endpoint must be unique")
	}
}
