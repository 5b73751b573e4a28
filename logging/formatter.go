package logging

import (
	"time"
)

// Formatter 日志格式化接口
type Formatter interface {
	// Format 格式化日志条目，返回的切片归调用方所有
	Format(entry *LogEntry) ([]byte, error)
}

// LogEntry 日志条目
type LogEntry struct {
	Time     time.Time
	Level    LogLevel
	Category string
	Message  string
	Fields   []Field
}

func newEntry(level LogLevel, category, msg string, fields []Field) *LogEntry {
	return &LogEntry{
		Time:     time.Now(),
		Level:    level,
		Category: category,
		Message:  msg,
		Fields:   fields,
	}
}
