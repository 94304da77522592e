package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupWithOptionsWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithOptions("tipledgerd", "test", Options{Level: "debug", Output: &buf})
	logger.Debug("vault initialised", slog.String("owner", "tip1abc"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "DEBUG", line["severity"])
	require.Equal(t, "vault initialised", line["message"])
	require.Equal(t, "tipledgerd", line["service"])
	require.Equal(t, "test", line["env"])
	require.Contains(t, line, "timestamp")
}

func TestSetupWithOptionsFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithOptions("tipledgerd", "", Options{Level: "warn", Output: &buf})
	logger.Info("dropped")
	require.Zero(t, buf.Len())
	logger.Warn("kept")
	require.NotZero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestMaskField(t *testing.T) {
	require.Equal(t, RedactedValue, MaskField("webhook_token", "secret").Value.String())
	require.Equal(t, "send_tip", MaskField("op", "send_tip").Value.String())
	require.Equal(t, "", MaskField("token", "").Value.String())
}

func TestMaskURL(t *testing.T) {
	require.Equal(t, "https://hooks.example.com/"+RedactedValue, MaskURL("https://hooks.example.com/T000/B000/XXXX?sig=1"))
	require.Equal(t, RedactedValue, MaskURL("not a url"))
	require.Equal(t, "", MaskURL(""))
}
