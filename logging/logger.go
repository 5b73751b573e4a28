package logging

import (
	"errors"
	"os"
	"sync"
)

// Field 日志字段
type Field struct {
	Key   string
	Value any
}

// F 创建日志字段
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger 结构化分级日志接口
type Logger interface {
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	Log(level LogLevel, msg string, fields ...Field)
	WithFields(fields ...Field) Logger
	WithCategory(category string) Logger
}

// LoggerFactory 按类别创建 Logger，并负责关闭底层输出
type LoggerFactory interface {
	CreateLogger(category string) Logger
	SetMinimumLevel(level LogLevel)
	Close() error
}

// LoggerProvider 日志提供者：把一条日志写到某个输出
type LoggerProvider interface {
	Write(entry *LogEntry)
	Close() error
}

type loggerFactory struct {
	mu        sync.RWMutex
	providers []LoggerProvider
	level     LogLevel
}

func (f *loggerFactory) CreateLogger(category string) Logger {
	return &logger{factory: f, category: category}
}

func (f *loggerFactory) SetMinimumLevel(level LogLevel) {
	f.mu.Lock()
	f.level = level
	f.mu.Unlock()
}

func (f *loggerFactory) enabled(level LogLevel) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return level >= f.level && f.level != LogLevelNone
}

func (f *loggerFactory) dispatch(entry *LogEntry) {
	f.mu.RLock()
	providers := f.providers
	f.mu.RUnlock()
	for _, p := range providers {
		p.Write(entry)
	}
}

func (f *loggerFactory) Close() error {
	f.mu.Lock()
	providers := f.providers
	f.providers = nil
	f.mu.Unlock()

	var errs []error
	for _, p := range providers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// logger 将日志分发到工厂的所有提供者。级别在工厂上统一控制。
type logger struct {
	factory  *loggerFactory
	category string
	fields   []Field
}

func (l *logger) Trace(msg string, fields ...Field) { l.Log(LogLevelTrace, msg, fields...) }
func (l *logger) Debug(msg string, fields ...Field) { l.Log(LogLevelDebug, msg, fields...) }
func (l *logger) Info(msg string, fields ...Field)  { l.Log(LogLevelInfo, msg, fields...) }
func (l *logger) Warn(msg string, fields ...Field)  { l.Log(LogLevelWarn, msg, fields...) }
func (l *logger) Error(msg string, fields ...Field) { l.Log(LogLevelError, msg, fields...) }

func (l *logger) Fatal(msg string, fields ...Field) {
	l.Log(LogLevelFatal, msg, fields...)
	_ = l.factory.Close()
	os.Exit(1)
}

func (l *logger) Log(level LogLevel, msg string, fields ...Field) {
	if !l.factory.enabled(level) {
		return
	}

	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	l.factory.dispatch(newEntry(level, l.category, msg, all))
}

func (l *logger) WithFields(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &logger{factory: l.factory, category: l.category, fields: merged}
}

func (l *logger) WithCategory(category string) Logger {
	return &logger{factory: l.factory, category: category, fields: l.fields}
}

// Nop 返回丢弃所有日志的 Logger
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Trace(string, ...Field)         {}
func (nopLogger) Debug(string, ...Field)         {}
func (nopLogger) Info(string, ...Field)          {}
func (nopLogger) Warn(string, ...Field)          {}
func (nopLogger) Error(string, ...Field)         {}
func (nopLogger) Fatal(string, ...Field)         { os.Exit(1) }
func (nopLogger) Log(LogLevel, string, ...Field) {}
func (n nopLogger) WithFields(...Field) Logger   { return n }
func (n nopLogger) WithCategory(string) Logger   { return n }
