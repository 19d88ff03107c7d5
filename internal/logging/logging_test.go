package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	SetupTo(&buf, "debug", "json")
	t.Cleanup(func() { Setup("info", "text") })

	log.WithField("recap_id", "r1").Debug("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "r1", entry["recap_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestSetupTo_BadLevel(t *testing.T) {
	var buf bytes.Buffer
	SetupTo(&buf, "chatty", "text")
	t.Cleanup(func() { Setup("info", "text") })

	assert.Equal(t, log.InfoLevel, log.GetLevel())
	log.Debug("hidden")
	assert.Empty(t, buf.String())
}
