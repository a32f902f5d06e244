package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Format: "json", Output: &buf})

	log.WithField("videoId", 4).Info("video uploaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "video uploaded", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.EqualValues(t, 4, entry["videoId"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Format: "text", Output: &buf})

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.Contains(t, out, "shown")
}

func TestUnknownLevel(t *testing.T) {
	log := New(Options{Level: "loud", Output: &bytes.Buffer{}})
	assert.Equal(t, logrus.InfoLevel, log.Logger.GetLevel())
}
