package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/data"
)

const boardLog = `{
  "rawDataHeader": {"boardId": "F412FA67030C", "firmwareVersion": "2.0.0"},
  "rawDataBody": {
    "dataColumns": [
      {"name": "Temperature"}, {"name": "Pressure"}, {"name": "Relative Humidity"},
      {"name": "Resistance Gassensor"}, {"name": "Label Tag"}, {"name": "Error Code"}
    ],
    "dataBlock": [
      [24.5, 1013.2, 41.0, 120345.5, 0, 0],
      [24.6, 1013.1, 41.2, 15998.2, 2, 0],
      [24.7, 1013.3, null, 119876.0, 1, 0]
    ]
  }
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		level, format string
		wantErr       bool
	}{
		{level: "debug", format: "console"},
		{level: "warn", format: "json"},
		{level: "loud", format: "console", wantErr: true},
		{level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			viper.Set("logging.level", tt.level)
			viper.Set("logging.format", tt.format)
			defer viper.Set("logging.level", "info")
			defer viper.Set("logging.format", "console")

			err := setupLogging(io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConvertThenLabel(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "board.bmerawdata")
	table := filepath.Join(dir, "air.csv")
	labeled := filepath.Join(dir, "labeled.csv")
	require.NoError(t, os.WriteFile(raw, []byte(boardLog), 0o644))

	out, err := execute(t, "convert", "-i", raw, "-o", table)
	require.NoError(t, err)
	assert.Contains(t, out, "3 rows x 6 columns")

	converted, err := data.ReadTableFile(table, data.Separator)
	require.NoError(t, err)
	tags, err := converted.Column("Label Tag")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "1"}, tags)

	out, err = execute(t, "label", "-i", table, "-o", labeled)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"fumee", "1"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"normal", "air", "2"}, strings.Fields(lines[1]))

	back, err := data.ReadTableFile(labeled, data.Separator)
	require.NoError(t, err)
	assert.Equal(t, "label", back.Header[len(back.Header)-1])
}

func TestConvert_MissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "air.csv")

	_, err := execute(t, "convert", "-i", filepath.Join(dir, "none.bmerawdata"), "-o", out)
	assert.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "airsense dev\n", out)
}
