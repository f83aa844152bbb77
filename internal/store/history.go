package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/clide-ide/agentlink/internal/domain"
)

// HistoryEntry is one persisted conversation item for a profile.
type HistoryEntry struct {
	ID        string
	ProfileID string
	Entry     domain.PanelEntry
	CreatedAt string
}

// AppendEntry persists one panel entry under the given profile and returns
// its generated id.
func (db *DB) AppendEntry(profileID string, entry domain.PanelEntry) (string, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("serializing entry: %w", err)
	}

	id := uuid.NewString()
	_, err = db.sql.Exec(
		"INSERT INTO history_entries (id, profile_id, kind, payload) VALUES (?, ?, ?, ?)",
		id, profileID, string(entry.Kind), string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("inserting history entry: %w", err)
	}
	return id, nil
}

// RecentEntries returns up to limit entries for a profile, oldest first.
func (db *DB) RecentEntries(profileID string, limit int) ([]HistoryEntry, error) {
	rows, err := db.sql.Query(`
		SELECT id, profile_id, payload, created_at FROM (
			SELECT id, profile_id, payload, created_at, rowid
			FROM history_entries
			WHERE profile_id = ?
			ORDER BY rowid DESC
			LIMIT ?
		) ORDER BY rowid ASC
	`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var payload string
		if err := rows.Scan(&e.ID, &e.ProfileID, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Entry); err != nil {
			return nil, fmt.Errorf("decoding history entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history rows: %w", err)
	}
	return entries, nil
}

// ClearHistory deletes all entries for a profile and reports how many rows
// were removed.
func (db *DB) ClearHistory(profileID string) (int64, error) {
	res, err := db.sql.Exec("DELETE FROM history_entries WHERE profile_id = ?", profileID)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleared rows: %w", err)
	}
	return n, nil
}
