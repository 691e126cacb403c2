package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "production", "debug")

	l.WithField("task_id", "abc").Info("task created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "task created", entry["msg"])
	assert.Equal(t, "abc", entry["task_id"])
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestNew_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "development", "warn")

	l.Info("hidden")
	l.WithField("k", "v").Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "k=v")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := NewWithOutput(&bytes.Buffer{}, "test", "verbose")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}
