package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// LoggingBuilder 日志构建器
type LoggingBuilder struct {
	mu           sync.Mutex
	providers    []LoggerProvider
	minimumLevel LogLevel
	err          error
}

// NewLoggingBuilder 创建日志构建器，默认级别 Info
func NewLoggingBuilder() *LoggingBuilder {
	return &LoggingBuilder{minimumLevel: LogLevelInfo}
}

// SetMinimumLevel 设置最小日志级别
func (b *LoggingBuilder) SetMinimumLevel(level LogLevel) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minimumLevel = level
	return b
}

// AddProvider 添加日志提供者
func (b *LoggingBuilder) AddProvider(provider LoggerProvider) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.providers = append(b.providers, provider)
	return b
}

// AddConsole 添加控制台日志
func (b *LoggingBuilder) AddConsole(options ...ConsoleLoggerOptions) *LoggingBuilder {
	opts := ConsoleLoggerOptions{
		IncludeTimestamp: true,
		TimestampFormat:  "2006-01-02 15:04:05",
		ColorOutput:      true,
		Output:           os.Stdout,
	}
	if len(options) > 0 {
		opts = options[0]
	}
	return b.AddProvider(NewConsoleLoggerProvider(opts))
}

// AddFile 添加文件日志；打开失败的错误由 Build 返回
func (b *LoggingBuilder) AddFile(path string, options ...FileLoggerOptions) *LoggingBuilder {
	opts := FileLoggerOptions{Path: path}
	if len(options) > 0 {
		opts = options[0]
		opts.Path = path
	}

	p, err := NewFileLoggerProvider(opts)
	if err != nil {
		b.mu.Lock()
		b.err = err
		b.mu.Unlock()
		return b
	}
	return b.AddProvider(p)
}

// Build 构建日志工厂
func (b *LoggingBuilder) Build() (LoggerFactory, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	factory := &loggerFactory{
		providers: append([]LoggerProvider(nil), b.providers...),
		level:     b.minimumLevel,
	}
	if b.err != nil {
		_ = factory.Close()
		return nil, b.err
	}
	return factory, nil
}

// Options 可从配置绑定的日志选项
type Options struct {
	Level      string `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"`
	Output     string `json:"output" yaml:"output"`
	Async      bool   `json:"async" yaml:"async"`
	BufferSize int    `json:"bufferSize" yaml:"bufferSize"`
}

// NewFactory 按选项创建日志工厂。
// Format 为 text（默认）或 json；Output 为 stdout（默认）、stderr 或文件路径。
func NewFactory(opts Options) (LoggerFactory, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var formatter Formatter
	switch strings.ToLower(opts.Format) {
	case "", "text":
		formatter = NewTextFormatter()
	case "json":
		formatter = NewJsonFormatter()
	default:
		return nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}

	b := NewLoggingBuilder().SetMinimumLevel(level)
	switch opts.Output {
	case "", "stdout", "stderr":
		out := os.Stdout
		if opts.Output == "stderr" {
			out = os.Stderr
		}
		if opts.Async {
			b.AddProvider(NewAsyncWriterProvider(out, formatter, opts.BufferSize))
		} else {
			b.AddProvider(NewWriterProvider(out, formatter))
		}
	default:
		b.AddFile(opts.Output, FileLoggerOptions{
			Formatter:  formatter,
			Async:      opts.Async,
			BufferSize: opts.BufferSize,
		})
	}
	return b.Build()
}

// NewLogger 创建一个默认的控制台 Logger
func NewLogger() Logger {
	factory, _ := NewLoggingBuilder().AddConsole().Build()
	return factory.CreateLogger("default")
}
