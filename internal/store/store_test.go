package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clide-ide/agentlink/internal/domain"
	"github.com/clide-ide/agentlink/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", logging.New(os.Stderr, "silent"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	db, err := Open(path, logging.New(os.Stderr, "silent"))
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestHistoryRoundTrip(t *testing.T) {
	db := testDB(t)

	id, err := db.AppendEntry("p1", domain.UserPromptEntry("fix this loop"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	resp := domain.TextResponse("Model suggestion", "use range")
	_, err = db.AppendEntry("p1", domain.ResponseEntry(resp))
	require.NoError(t, err)

	entries, err := db.RecentEntries("p1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, domain.EntryUserPrompt, entries[0].Entry.Kind)
	assert.Equal(t, "fix this loop", entries[0].Entry.Prompt)
	assert.Equal(t, domain.EntryResponse, entries[1].Entry.Kind)
	assert.Equal(t, "use range", entries[1].Entry.Response.Detail)
}

func TestHistoryScopedByProfile(t *testing.T) {
	db := testDB(t)

	_, err := db.AppendEntry("p1", domain.UserPromptEntry("one"))
	require.NoError(t, err)
	_, err = db.AppendEntry("p2", domain.UserPromptEntry("two"))
	require.NoError(t, err)

	entries, err := db.RecentEntries("p1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "one", entries[0].Entry.Prompt)
}

func TestHistoryLimitKeepsNewest(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 5; i++ {
		_, err := db.AppendEntry("p1", domain.UserPromptEntry(fmt.Sprintf("prompt %d", i)))
		require.NoError(t, err)
	}

	entries, err := db.RecentEntries("p1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "prompt 3", entries[0].Entry.Prompt)
	assert.Equal(t, "prompt 4", entries[1].Entry.Prompt)
}

func TestClearHistory(t *testing.T) {
	db := testDB(t)

	_, err := db.AppendEntry("p1", domain.UserPromptEntry("one"))
	require.NoError(t, err)
	_, err = db.AppendEntry("p1", domain.UserPromptEntry("two"))
	require.NoError(t, err)

	n, err := db.ClearHistory("p1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	entries, err := db.RecentEntries("p1", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	log := logging.New(os.Stderr, "silent")

	db, err := Open(path, log)
	require.NoError(t, err)
	_, err = db.AppendEntry("p1", domain.UserPromptEntry("kept"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path, log)
	require.NoError(t, err)
	defer db.Close()

	entries, err := db.RecentEntries("p1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Entry.Prompt)
}
