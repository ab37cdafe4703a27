package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerRouting(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger(&out, &errOut, false)

	l.Debug("hidden")
	l.Info("frame accepted", Fields{"frequency": 440, "degree": 0})
	l.Warn("queue full")
	l.Error(errors.New("boom"), "evaluation failed")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[INFO] frame accepted degree=0 frequency=440")
	assert.Contains(t, errOut.String(), "[WARN] queue full")
	assert.Contains(t, errOut.String(), "[ERROR] evaluation failed: boom")

	l.SetLevel(DebugLevel)
	l.Debug("visible")
	assert.Contains(t, out.String(), "[DEBUG] visible")
}

func TestDefaultLoggerFieldsAndContext(t *testing.T) {
	var out bytes.Buffer
	l := NewWriterLogger(&out, &out, false).WithFields(Fields{"component": "runner"})

	ctx := ContextWithFields(context.Background(), Fields{"session": 7})
	l.WithContext(ctx).Info("started")
	assert.Contains(t, out.String(), "started component=runner session=7")

	ctx = ContextWithFields(ctx, Fields{"session": 8, "frame": 1})
	assert.Equal(t, Fields{"session": 8, "frame": 1}, FieldsFromContext(ctx))
}

func TestFatalExits(t *testing.T) {
	var out bytes.Buffer
	l := NewWriterLogger(&out, &out, true)
	code := 0
	l.exit = func(c int) { code = c }

	l.Fatal(errors.New("bad config"), "cannot start")
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), ColorBold+ColorRed+"[FATAL] cannot start: bad config")
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]Level{"debug": DebugLevel, "INFO": InfoLevel, "warning": WarnLevel, "error": ErrorLevel} {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestGlobalLogger(t *testing.T) {
	prev := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(prev) })

	SetGlobalLogger(nil)
	assert.IsType(t, &NoOpLogger{}, GetGlobalLogger())
	assert.Same(t, GetGlobalLogger(), OrGlobal(nil))

	custom := &NoOpLogger{}
	assert.Same(t, custom, OrGlobal(custom))
}
