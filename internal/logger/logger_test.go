package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("production logs JSON at info", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, false)

		log.Debug().Msg("hidden")
		require.Zero(t, buf.Len())

		notAfter := time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC)
		Certificate(log.Info(), "example.com", "abc123", notAfter).Msg("issued")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "issued", entry["message"])
		require.Equal(t, "example.com", entry["common_name"])
		require.Equal(t, "abc123", entry["serial_number"])
		require.Contains(t, entry, "time")
	})

	t.Run("dev logs debug to the console writer", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, true)

		log.Debug().Str("domain", "example.com").Msg("visible")
		require.Contains(t, buf.String(), "visible")
		require.Contains(t, buf.String(), "example.com")
	})
}
