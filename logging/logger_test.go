package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFormatter(t *testing.T) {
	f := NewTextFormatter()
	entry := &LogEntry{
		Time:     time.Now(),
		Level:    LogLevelInfo,
		Category: "Test",
		Message:  "Hello",
		Fields:   []Field{F("key", "val"), F("n", 3)},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)

	str := string(out)
	assert.Contains(t, str, "INFO")
	assert.Contains(t, str, "[Test]")
	assert.Contains(t, str, "Hello")
	assert.Contains(t, str, "{key=val, n=3}")
	assert.True(t, strings.HasSuffix(str, "\n"))
}

func TestJsonFormatter(t *testing.T) {
	f := NewJsonFormatter()
	entry := &LogEntry{
		Time:     time.Now(),
		Level:    LogLevelWarn,
		Category: "Test",
		Message:  "Hello",
		Fields:   []Field{F("key", "val"), F("error", errors.New("boom"))},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, json.Unmarshal(out, &data))
	assert.Equal(t, "WARN", data["level"])
	assert.Equal(t, "Test", data["category"])
	assert.Equal(t, "Hello", data["msg"])

	fields, ok := data["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "val", fields["key"])
	assert.Equal(t, "boom", fields["error"])
}

func TestAsyncWriter(t *testing.T) {
	writer := &syncWriter{}
	asyncWriter := NewAsyncWriter(writer, NewJsonFormatter(), 2)

	entry := &LogEntry{
		Time:    time.Now(),
		Level:   LogLevelInfo,
		Message: "Async",
	}
	for range 5 {
		asyncWriter.WriteLog(entry)
	}
	require.NoError(t, asyncWriter.Close())
	require.NoError(t, asyncWriter.Close())

	lines := strings.Split(strings.TrimSpace(writer.String()), "\n")
	assert.Len(t, lines, 5)

	assert.ErrorIs(t, asyncWriter.WriteLog(entry), ErrWriterClosed)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAsyncWriterReportsErrors(t *testing.T) {
	w := NewAsyncWriter(failingWriter{}, NewTextFormatter(), 1)
	var mu sync.Mutex
	var got []error
	w.SetErrorHandler(func(err error) {
		mu.Lock()
		got = append(got, err)
		mu.Unlock()
	})

	require.NoError(t, w.WriteLog(&LogEntry{Time: time.Now(), Level: LogLevelError, Message: "x"}))
	require.NoError(t, w.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.EqualError(t, got[0], "disk full")
}

func TestTextFormatterQuotesValues(t *testing.T) {
	f := &TextFormatter{}
	out, err := f.Format(&LogEntry{
		Level:   LogLevelWarn,
		Message: "circular dependency detected",
		Fields: []Field{
			F("node", "A"),
			F("chain", "A -> B -> A"),
			F("error", errors.New("boom")),
			F("empty", ""),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "WARN circular dependency detected {node=A, chain=\"A -> B -> A\", error=boom, empty=\"\"}\n", string(out))

	colored, err := (&TextFormatter{ColorOutput: true}).Format(&LogEntry{Level: LogLevelInfo, Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, "\033[32mINFO\033[0m m\n", string(colored))
}

func TestFactoryLevelAndFields(t *testing.T) {
	writer := &syncWriter{}
	factory, err := NewLoggingBuilder().
		SetMinimumLevel(LogLevelDebug).
		AddProvider(NewWriterProvider(writer, &TextFormatter{})).
		Build()
	require.NoError(t, err)

	log := factory.CreateLogger("app").WithFields(F("req", 7))
	log.Trace("hidden")
	log.Debug("shown", F("step", 1))
	log.WithCategory("inject").Warn("careful")

	out := writer.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "DEBUG [app] shown {req=7, step=1}")
	assert.Contains(t, out, "WARN [inject] careful {req=7}")

	factory.SetMinimumLevel(LogLevelNone)
	log.Error("muted")
	assert.NotContains(t, writer.String(), "muted")
}

func TestWithFieldsDoesNotAlias(t *testing.T) {
	writer := &syncWriter{}
	factory, err := NewLoggingBuilder().AddProvider(NewWriterProvider(writer, &TextFormatter{})).Build()
	require.NoError(t, err)

	base := factory.CreateLogger("x").WithFields(F("a", 1))
	left := base.WithFields(F("b", 2))
	right := base.WithFields(F("c", 3))
	left.Info("left")
	right.Info("right")

	out := writer.String()
	assert.Contains(t, out, "left {a=1, b=2}")
	assert.Contains(t, out, "right {a=1, c=3}")
}

func TestNewFactoryFromOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	factory, err := NewFactory(Options{Level: "debug", Format: "json", Output: path, Async: true})
	require.NoError(t, err)

	factory.CreateLogger("cfg").Debug("written", F("k", "v"))
	require.NoError(t, factory.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "cfg", entry["category"])
}

func TestNewFactoryRejectsBadOptions(t *testing.T) {
	_, err := NewFactory(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = NewFactory(Options{Format: "xml"})
	assert.Error(t, err)

	_, err = NewFactory(Options{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"trace":   LogLevelTrace,
		"DEBUG":   LogLevelDebug,
		"":        LogLevelInfo,
		"warning": LogLevelWarn,
		"Error":   LogLevelError,
		"off":     LogLevelNone,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNop(t *testing.T) {
	log := Nop().WithCategory("x").WithFields(F("a", 1))
	assert.NotPanics(t, func() {
		log.Info("ignored")
		log.Log(LogLevelError, "ignored")
	})
}

type syncWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func BenchmarkAsyncLogging(b *testing.B) {
	asyncWriter := NewAsyncWriter(io.Discard, NewTextFormatter(), 10000)
	defer asyncWriter.Close()

	entry := &LogEntry{
		Time:    time.Now(),
		Level:   LogLevelInfo,
		Message: "Benchmark",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		asyncWriter.WriteLog(entry)
	}
}
