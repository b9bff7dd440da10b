package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger(t *testing.T) {
	t.Run("json info", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := GetLogger(buf, "info", LogFormatJsonValue)
		require.NoError(t, err)

		l.Debug().Msg("hidden")
		l.Info().Str("table", "order").Msg("copied")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "copied", record["message"])
		assert.Equal(t, "order", record["table"])
		assert.NotContains(t, record, "pid")
	})

	t.Run("debug adds pid", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := GetLogger(buf, "debug", LogFormatJsonValue)
		require.NoError(t, err)
		l.Debug().Msg("visible")
		assert.Contains(t, buf.String(), `"pid"`)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := GetLogger(&bytes.Buffer{}, "trace-all", LogFormatTextValue)
		require.ErrorIs(t, err, errUnknownLogLevel)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := GetLogger(&bytes.Buffer{}, "info", "xml")
		require.ErrorIs(t, err, errUnknownLogFormat)
	})
}
