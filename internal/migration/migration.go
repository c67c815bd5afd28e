// Package migration imports the legacy collected_user_emails.json file
// produced by the old file-based tracker. It runs once at startup when
// the file is present, is idempotent per user id, and commits
// all-or-nothing: any record failure rolls the whole import back.
package migration

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/salonibalkondekar/analytics/internal/database"
)

type legacyPrompt struct {
	Type      string `json:"type"`
	Prompt    string `json:"prompt"`
	Timestamp string `json:"timestamp"`
}

type legacyUser struct {
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	CreatedAt    string         `json:"created_at"`
	LastActivity string         `json:"last_activity"`
	ModelCount   int            `json:"model_count"`
	Prompts      []legacyPrompt `json:"prompts"`
}

// ImportLegacyUsers migrates the JSON file at path into the users and
// cad_events tables. Users already present are skipped. On success the
// source file is renamed to <path>.migrated so the import never runs
// twice.
func ImportLegacyUsers(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read legacy file: %w", err)
	}

	var data map[string]legacyUser
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse legacy file: %w", err)
	}

	log.Printf("Migrating %d legacy users from %s", len(data), path)

	tx, err := database.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	migrated := 0
	for userID, u := range data {
		var count int
		err := tx.QueryRow("SELECT COUNT(*) FROM users WHERE id = ?", userID).Scan(&count)
		if err != nil {
			return fmt.Errorf("legacy user %s: %w", userID, err)
		}
		if count > 0 {
			continue // already migrated
		}

		_, err = tx.Exec(`
			INSERT INTO users (id, email, name, created_at, last_activity, model_count)
			VALUES (?, ?, ?, ?, ?, ?)
		`, userID,
			defaultString(u.Email, "unknown@example.com"),
			defaultString(u.Name, "Unknown"),
			parseLegacyTime(u.CreatedAt),
			parseLegacyTime(u.LastActivity),
			u.ModelCount)
		if err != nil {
			return fmt.Errorf("legacy user %s: %w", userID, err)
		}

		for _, p := range u.Prompts {
			_, err = tx.Exec(`
				INSERT INTO cad_events (timestamp, user_id, session_id, event_type, prompt, success, ip_address)
				VALUES (?, ?, ?, ?, ?, 1, 'migrated')
			`, parseLegacyTime(p.Timestamp), userID,
				"migrated_"+userID,
				defaultString(p.Type, "generate"),
				p.Prompt)
			if err != nil {
				return fmt.Errorf("legacy user %s prompt: %w", userID, err)
			}
		}

		migrated++
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("Migration complete: %d users imported, %d skipped", migrated, len(data)-migrated)

	if err := os.Rename(path, path+".migrated"); err != nil {
		return fmt.Errorf("failed to rename migrated file: %w", err)
	}

	return nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// parseLegacyTime accepts the ISO timestamps the old tracker wrote,
// with or without zone, falling back to now.
func parseLegacyTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
