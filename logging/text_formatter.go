package logging

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// 超过该容量的缓冲区不放回池中
const maxPooledBuffer = 64 << 10

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

var levelColors = [...]string{
	LogLevelTrace: "\033[90m",
	LogLevelDebug: "\033[36m",
	LogLevelInfo:  "\033[32m",
	LogLevelWarn:  "\033[33m",
	LogLevelError: "\033[31m",
	LogLevelFatal: "\033[35m",
}

const colorReset = "\033[0m"

// TextFormatter 文本格式化器
type TextFormatter struct {
	IncludeTimestamp bool
	TimestampFormat  string
	ColorOutput      bool
}

// NewTextFormatter 创建文本格式化器
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		IncludeTimestamp: true,
		TimestampFormat:  "2006-01-02 15:04:05",
	}
}

// Format 格式化为一行：时间 级别 [类别] 消息 {k=v, ...}。
// 含空白或分隔符的字符串值加引号。
func (f *TextFormatter) Format(entry *LogEntry) ([]byte, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		if buf.Cap() <= maxPooledBuffer {
			bufPool.Put(buf)
		}
	}()

	if f.IncludeTimestamp {
		buf.WriteString(entry.Time.Format(f.TimestampFormat))
		buf.WriteByte(' ')
	}
	f.writeLevel(buf, entry.Level)
	if entry.Category != "" {
		fmt.Fprintf(buf, " [%s]", entry.Category)
	}
	buf.WriteByte(' ')
	buf.WriteString(entry.Message)

	for i, field := range entry.Fields {
		if i == 0 {
			buf.WriteString(" {")
		} else {
			buf.WriteString(", ")
		}
		buf.WriteString(field.Key)
		buf.WriteByte('=')
		writeValue(buf, field.Value)
	}
	if len(entry.Fields) > 0 {
		buf.WriteByte('}')
	}
	buf.WriteByte('\n')

	return bytes.Clone(buf.Bytes()), nil
}

func (f *TextFormatter) writeLevel(buf *bytes.Buffer, level LogLevel) {
	name := level.String()
	if !f.ColorOutput || int(level) < 0 || int(level) >= len(levelColors) {
		buf.WriteString(name)
		return
	}
	buf.WriteString(levelColors[level])
	buf.WriteString(name)
	buf.WriteString(colorReset)
}

func writeValue(buf *bytes.Buffer, v any) {
	var s string
	switch val := v.(type) {
	case error:
		s = val.Error()
	case string:
		s = val
	case fmt.Stringer:
		s = val.String()
	default:
		fmt.Fprintf(buf, "%v", v)
		return
	}
	if s == "" || strings.ContainsAny(s, " \t\n,{}=\"") {
		s = strconv.Quote(s)
	}
	buf.WriteString(s)
}
