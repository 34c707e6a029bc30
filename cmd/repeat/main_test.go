package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/librepeat/event"
)

func TestRunJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-date", "2025-10-01", "-type", "daily", "-end", "2025-10-05", "-title", "standup", "-start", "09:00", "-finish", "09:15"}, &stdout, &stderr)
	require.NoError(t, err)

	var got []event.Event
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got, 5)
	assert.Equal(t, "2025-10-05", got[4].Date)
	assert.Equal(t, "standup", got[0].Title)
	assert.Equal(t, event.RepeatDaily, got[0].Repeat.Type)
	assert.True(t, got[0].Repeat.ID.IsPresent())
}

func TestRunICS(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-date", "2024-01-31", "-type", "monthly", "-end", "2024-06-30", "-format", "ics"}, &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"), "Jan, Mar and May only")
}

func TestRunConfigHorizon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("horizon: \"2026-03-31\"\n"), 0o600))

	var stdout, stderr bytes.Buffer
	err := run([]string{"-config", path, "-date", "2026-01-15", "-type", "monthly"}, &stdout, &stderr)
	require.NoError(t, err)

	var got []event.Event
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Len(t, got, 3)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing date", args: []string{"-type", "daily"}, want: "-date is required"},
		{name: "bad type", args: []string{"-date", "2025-10-01", "-type", "hourly"}, want: "unknown repeat type"},
		{name: "end before start", args: []string{"-date", "2025-10-15", "-type", "daily", "-end", "2025-10-10"}, want: "end date must be on or after the start date"},
		{name: "bad end", args: []string{"-date", "2025-10-15", "-type", "daily", "-end", "soon"}, want: "not a valid date format"},
		{name: "bad format", args: []string{"-date", "2025-10-15", "-format", "xml"}, want: "unknown format"},
		{name: "missing config", args: []string{"-date", "2025-10-15", "-config", "/nonexistent/engine.yaml"}, want: "engine.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-h"}, &stdout, &stderr)
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, stderr.String(), "-interval")
}
