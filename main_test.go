package main

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/mattn/go-sqlite3"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, `{
		"title": "Ownership",
		"questionnaire": {"questions": [{"id": "owner", "label": "Who owns it?", "type": "text"}]}
	}`, "validate", "-")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, true, report["valid"])
	assert.EqualValues(t, 1, report["details"].(map[string]any)["question_count"])

	out, err = run(t, `{"questionnaire": {"questions": []}}`, "validate")
	require.Error(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, false, report["valid"])
	assert.NotEmpty(t, report["errors"])

	_, err = run(t, "", "validate", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestUserAddCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.sqlite")

	_, err := run(t, "correct horse\n", "--db-url", path, "user", "add", "admin")
	require.NoError(t, err)
	_, err = run(t, "", "--db-url", path, "user", "add", "admin", "--password", "another one")
	assert.Error(t, err)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	var hash []byte
	require.NoError(t, db.QueryRow("SELECT password_hash FROM user WHERE username = ?", "admin").Scan(&hash))
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("correct horse")))
}

func TestServeNeedsTokenSecret(t *testing.T) {
	_, err := run(t, "", "serve")
	assert.EqualError(t, err, "missing parameter --token-secret")
}
