package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/asset-librarian/internal/library"
	"github.com/stacklok/asset-librarian/internal/storage"
)

func newOutputCmd(t *testing.T, format string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	addOutputFlag(cmd)
	if format != "" {
		require.NoError(t, cmd.Flags().Set("output", format))
	}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		format   string
		expected string
		wantErr  bool
	}{
		{name: "non-terminal defaults to json", format: "", expected: formatJSON},
		{name: "explicit table", format: "table", expected: formatTable},
		{name: "explicit json", format: "json", expected: formatJSON},
		{name: "unknown format", format: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, _ := newOutputCmd(t, tt.format)
			got, err := outputFormat(cmd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPrintOutput(t *testing.T) {
	t.Parallel()

	out := &storage.Output{
		Name: "windows",
		Libraries: []storage.LibraryOutput{
			{
				Name:       "Weapons",
				BinaryFile: "Weapons.bin",
				Assets: []library.Ref{
					{Type: library.RefTypeSoundBank, GUID: uuid.New(), ID: 7, Name: "Weapons"},
				},
			},
		},
		Remaining: []library.Ref{{Type: library.RefTypeSoundBank, ID: 1, Name: "Init"}},
	}

	cmd, buf := newOutputCmd(t, "table")
	require.NoError(t, printOutput(cmd, out))
	assert.Contains(t, buf.String(), "Weapons.bin")
	assert.Contains(t, buf.String(), "(remaining)")

	cmd, buf = newOutputCmd(t, "json")
	require.NoError(t, printOutput(cmd, out))
	var decoded storage.Output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "windows", decoded.Name)
	assert.Len(t, decoded.Remaining, 1)
}

func TestPrintRefs(t *testing.T) {
	t.Parallel()

	refs := []library.Ref{
		{Type: library.RefTypeSoundBank, ID: 2, Name: "Music"},
		{Type: library.RefTypeMedia, ID: 10, Name: "Theme.wav", SoundBankID: 2},
	}

	cmd, buf := newOutputCmd(t, "table")
	require.NoError(t, printRefs(cmd, refs, refs))
	assert.Contains(t, buf.String(), "Theme.wav")
	assert.Contains(t, buf.String(), library.RefTypeMedia.String())
}
