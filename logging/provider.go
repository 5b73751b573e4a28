package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// WriterProvider 将日志格式化后写入 io.Writer，可选异步写入
type WriterProvider struct {
	mu        sync.Mutex
	out       io.Writer
	formatter Formatter
	async     *AsyncWriter
	closer    io.Closer
}

// NewWriterProvider 创建同步写入的提供者
func NewWriterProvider(out io.Writer, formatter Formatter) *WriterProvider {
	if formatter == nil {
		formatter = NewTextFormatter()
	}
	return &WriterProvider{out: out, formatter: formatter}
}

// NewAsyncWriterProvider 创建经由 AsyncWriter 写入的提供者
func NewAsyncWriterProvider(out io.Writer, formatter Formatter, bufferSize int) *WriterProvider {
	p := NewWriterProvider(out, formatter)
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	p.async = NewAsyncWriter(out, p.formatter, bufferSize)
	return p
}

// Write 写入一条日志
func (p *WriterProvider) Write(entry *LogEntry) {
	if p.async != nil {
		if err := p.async.WriteLog(entry); err != nil {
			fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		}
		return
	}

	data, err := p.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = p.out.Write(data)
}

// Close 刷新异步队列并关闭自己打开的输出
func (p *WriterProvider) Close() error {
	if p.async != nil {
		_ = p.async.Close()
	}
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// ConsoleLoggerOptions 控制台日志选项
type ConsoleLoggerOptions struct {
	IncludeTimestamp bool
	TimestampFormat  string
	ColorOutput      bool
	Output           io.Writer
}

// NewConsoleLoggerProvider 创建控制台提供者（文本格式）
func NewConsoleLoggerProvider(options ConsoleLoggerOptions) *WriterProvider {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	return NewWriterProvider(options.Output, &TextFormatter{
		IncludeTimestamp: options.IncludeTimestamp,
		TimestampFormat:  options.TimestampFormat,
		ColorOutput:      options.ColorOutput,
	})
}

// FileLoggerOptions 文件日志选项
type FileLoggerOptions struct {
	Path       string
	Formatter  Formatter
	Async      bool
	BufferSize int
}

// NewFileLoggerProvider 以追加方式打开日志文件
func NewFileLoggerProvider(options FileLoggerOptions) (*WriterProvider, error) {
	file, err := os.OpenFile(options.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}

	formatter := options.Formatter
	if formatter == nil {
		formatter = NewTextFormatter()
	}

	var p *WriterProvider
	if options.Async {
		p = NewAsyncWriterProvider(file, formatter, options.BufferSize)
	} else {
		p = NewWriterProvider(file, formatter)
	}
	p.closer = file
	return p, nil
}
