package postgres

import (
	"bytes"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMigrateDirection(t *testing.T) {
	d, err := ParseMigrateDirection("UP")
	require.NoError(t, err)
	assert.Equal(t, MigrateUp, d)

	d, err = ParseMigrateDirection("down")
	require.NoError(t, err)
	assert.Equal(t, MigrateDown, d)

	_, err = ParseMigrateDirection("sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migrate direction")
}

func TestMigrationSource_EmbedsOrderedVersions(t *testing.T) {
	src, err := migrationSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	next, err := src.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)

	up, _, err := src.ReadUp(2)
	require.NoError(t, err)
	body, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS transfers")
	assert.Contains(t, string(body), "append-only")

	up, _, err = src.ReadUp(1)
	require.NoError(t, err)
	body, err = io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CHECK (balance >= 0)")
	assert.Contains(t, string(body), "NUMERIC(20, 2)")

	down, _, err := src.ReadDown(1)
	require.NoError(t, err)
	body, err = io.ReadAll(down)
	require.NoError(t, err)
	assert.Contains(t, string(body), "DROP TABLE IF EXISTS accounts")
}

func TestMigrateLogger(t *testing.T) {
	var buf bytes.Buffer
	l := migrateLogger{log: zerolog.New(&buf).Level(zerolog.DebugLevel)}

	assert.True(t, l.Verbose())
	l.Printf("Finished 1/u create_accounts (read %s)\n", "2ms")
	assert.Contains(t, buf.String(), "Finished 1/u create_accounts (read 2ms)")

	quiet := migrateLogger{log: zerolog.New(io.Discard).Level(zerolog.InfoLevel)}
	assert.False(t, quiet.Verbose())
}
