package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer, level Level) Logger {
	return NewLogger(&Config{
		Level:       level,
		ServiceName: "test",
		JSONFormat:  true,
		Output:      buf,
	})
}

func TestJSONOutputIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf, LevelDebug)

	log.Info("meeting created",
		F("meeting_id", "abc-123"),
		F("size", 42),
		Err(errors.New("boom")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "meeting created", entry["message"])
	assert.Equal(t, "abc-123", entry["meeting_id"])
	assert.Equal(t, float64(42), entry["size"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "test", entry["service_name"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf, LevelWarn)

	log.Debug("hidden")
	log.Info("hidden")
	assert.Zero(t, buf.Len(), "debug/info should be filtered at warn level")

	log.Warn("visible")
	assert.NotZero(t, buf.Len())
}

func TestWithAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf, LevelDebug).With(F("component", "repository"))

	log.Info("query ok")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "repository", entry["component"])
}

func TestWithContextExtractsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf, LevelDebug)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	log.WithContext(ctx).Info("handled")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
}

func TestNopLoggerDiscards(t *testing.T) {
	log := NewNopLogger()
	// Must not panic, and chaining returns the same nop behavior.
	log.With(F("a", 1)).WithContext(context.Background()).Error("ignored", Err(errors.New("x")))
}
