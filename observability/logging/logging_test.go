package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestFieldMasksSensitiveKeys(t *testing.T) {
	require.Equal(t, RedactedValue, Field("Authorization", "Bearer abc").Value.String())
	require.Equal(t, "alice", Field("account", "alice").Value.String())
	require.Equal(t, "", Field("token", "").Value.String())
}

func TestMaskDSN(t *testing.T) {
	require.Equal(t, "postgres://[REDACTED]@db:5432/gallery", MaskDSN("postgres://user:secret@db:5432/gallery"))
	require.Equal(t, "file:journal.db", MaskDSN("file:journal.db"))
	require.Equal(t, RedactedValue, MaskDSN("host=db user=x password=y"))
}
