package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrWriterClosed 向已关闭的 AsyncWriter 写入
var ErrWriterClosed = errors.New("logging: async writer closed")

// AsyncWriter 异步日志写入器：格式化与写入在后台 goroutine 中完成
type AsyncWriter struct {
	writer    io.Writer
	formatter Formatter
	entries   chan *LogEntry
	done      chan struct{}

	mu     sync.RWMutex
	closed bool

	hmu        sync.Mutex
	errHandler func(error)
}

// NewAsyncWriter 创建新的异步写入器
func NewAsyncWriter(writer io.Writer, formatter Formatter, bufferSize int) *AsyncWriter {
	w := &AsyncWriter{
		writer:    writer,
		formatter: formatter,
		entries:   make(chan *LogEntry, bufferSize),
		done:      make(chan struct{}),
	}
	go w.process()
	return w
}

// WriteLog 写入日志条目。队列满时阻塞，不丢日志；关闭后返回 ErrWriterClosed。
func (w *AsyncWriter) WriteLog(entry *LogEntry) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWriterClosed
	}
	w.entries <- entry
	return nil
}

// Close 关闭写入器并等待队列中的日志全部写出，可重复调用
func (w *AsyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.entries)
	}
	w.mu.Unlock()
	<-w.done
	return nil
}

// SetErrorHandler 设置格式化或写入失败时的处理函数，默认打印到 stderr
func (w *AsyncWriter) SetErrorHandler(handler func(error)) {
	w.hmu.Lock()
	defer w.hmu.Unlock()
	w.errHandler = handler
}

func (w *AsyncWriter) process() {
	defer close(w.done)

	for entry := range w.entries {
		data, err := w.formatter.Format(entry)
		if err == nil {
			_, err = w.writer.Write(data)
		}
		if err != nil {
			w.report(err)
		}
	}
}

func (w *AsyncWriter) report(err error) {
	w.hmu.Lock()
	handler := w.errHandler
	w.hmu.Unlock()
	if handler != nil {
		handler(err)
		return
	}
	fmt.Fprintf(os.Stderr, "logging: async write: %v\n", err)
}
