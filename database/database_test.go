package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/poll-creator/config"
	"github.com/mbolis/poll-creator/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := Open(config.Config{DBUrl: path})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(config.Config{DBUrl: path})
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM submission").Scan(&n))
	assert.Zero(t, n)
}

func TestSubmissions(t *testing.T) {
	db := openTestDB(t)
	store := NewSubmissions(db)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	subs := []*model.Submission{
		{WorkspaceID: "ws1", PollID: "p1", Title: "first", Status: model.SubmissionCreated, Time: base},
		{WorkspaceID: "ws1", Title: "second", Status: model.SubmissionFailed, Error: "boom", Time: base.Add(time.Minute)},
		{WorkspaceID: "ws2", PollID: "p3", Title: "third", Status: model.SubmissionCreated, Time: base.Add(2 * time.Minute)},
	}
	for _, s := range subs {
		require.NoError(t, store.RecordSubmission(ctx, s))
		assert.NotZero(t, s.ID)
	}

	all, err := store.List(ctx, SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Title)
	assert.Equal(t, "first", all[2].Title)
	assert.True(t, base.Equal(all[2].Time))

	ws1, err := store.List(ctx, SubmissionFilter{WorkspaceID: "ws1"})
	require.NoError(t, err)
	assert.Len(t, ws1, 2)

	failed, err := store.List(ctx, SubmissionFilter{WorkspaceID: "ws1", Status: model.SubmissionFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "boom", failed[0].Error)
	assert.Empty(t, failed[0].PollID)

	limited, err := store.List(ctx, SubmissionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestAddUser(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, AddUser(ctx, db, "admin", "correct horse"))
	assert.ErrorIs(t, AddUser(ctx, db, "admin", "another one"), ErrUserExists)
	assert.Error(t, AddUser(ctx, db, " ", "correct horse"))
	assert.Error(t, AddUser(ctx, db, "bob", "short"))

	var hash []byte
	require.NoError(t, db.QueryRow("SELECT password_hash FROM user WHERE username = ?", "admin").Scan(&hash))
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("correct horse")))
}
