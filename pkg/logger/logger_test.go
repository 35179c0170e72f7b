package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	l := New()

	require.NoError(t, l.Configure("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, l.entry.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.entry.Formatter)

	require.NoError(t, l.Configure("WARN", ""))
	assert.Equal(t, logrus.WarnLevel, l.entry.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.entry.Formatter)

	assert.Error(t, l.Configure("loud", "text"))
	assert.Error(t, l.Configure("info", "xml"))
}

func TestWithFieldsJSON(t *testing.T) {
	l := New()
	require.NoError(t, l.Configure("info", "json"))

	var buf bytes.Buffer
	l.entry.SetOutput(&buf)

	l.WithFields(map[string]interface{}{"request_id": "abc"}).Info("handled")
	l.Debug("hidden %d", 1)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc", line["request_id"])
	assert.Equal(t, "handled", line["msg"])
}
