package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewZapAdapter(zap.New(core)), logs
}

func TestZapWrapper_Levels(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)

	log.Debug("hidden", nil)
	log.Info("info", map[string]interface{}{"k": 1})
	log.Warn("warn", nil)
	log.Error("error", nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, "info", entries[0].Message)
	assert.Equal(t, int64(1), entries[0].ContextMap()["k"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestZapWrapper_WithFieldsAndError(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)

	child := log.WithFields(map[string]interface{}{"taskType": "evaluate-content"}).
		WithError(errors.New("boom")).
		With(map[string]interface{}{"jobKey": int64(42)})
	child.Info("done", nil)

	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "evaluate-content", ctx["taskType"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, int64(42), ctx["jobKey"])
}

func TestMapToZapFields_SortedAndErrors(t *testing.T) {
	fields := mapToZapFields(map[string]interface{}{
		"b":     2,
		"a":     1,
		"cause": errors.New("bad"),
	})
	require.Len(t, fields, 3)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "b", fields[1].Key)
	assert.Equal(t, "cause", fields[2].Key)
	assert.Equal(t, zapcore.ErrorType, fields[2].Type)

	assert.Nil(t, mapToZapFields(nil))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("anything"))
}

func TestConstructors(t *testing.T) {
	assert.NotNil(t, New("info", "json"))
	assert.NotNil(t, NewStructured("debug", "console"))
	assert.NotNil(t, NewService("info", "json", "content-policy-workers"))
	NewNoOpLogger().Info("nothing", nil)
	NewTestLogger(t).Info("test output", map[string]interface{}{"ok": true})
}
