package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRoutes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRoutes(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Greater(t, len(lines), 2)
	assert.Contains(t, lines[0], "METHOD")
	assert.Contains(t, buf.String(), "/api/orders/{id}/cancel")
	assert.Contains(t, buf.String(), "admin.sellers.approve")
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"serve", "route:list", "schedule:list", "migrate", "migrate:rollback",
		"migrate:status", "seed", "queue:work", "queue:retry",
	}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
