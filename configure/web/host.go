package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/inject/logging"
)

// Host Web 主机
type Host struct {
	port   int
	engine *gin.Engine
	server *http.Server
	logger logging.Logger

	mu       sync.Mutex
	listener net.Listener
}

func newHost(logger logging.Logger, port int, engine *gin.Engine) *Host {
	return &Host{
		port:   port,
		engine: engine,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Engine 获取 Gin 引擎
func (h *Host) Engine() *gin.Engine {
	return h.engine
}

// Addr 返回监听地址，未启动时返回配置地址
func (h *Host) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener != nil {
		return h.listener.Addr().String()
	}
	return h.server.Addr
}

// Start 启动 Web 主机并阻塞，直到服务出错或 ctx 取消
func (h *Host) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		h.logger.Error("Web host listen failed", logging.F("error", err))
		return err
	}
	h.mu.Lock()
	h.listener = ln
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	h.logger.Info("Web host started", logging.F("address", ln.Addr().String()))

	select {
	case err := <-errCh:
		if err != nil {
			h.logger.Error("Web host error", logging.F("error", err))
		}
		return err
	case <-ctx.Done():
		// Stop 负责关闭
		return nil
	}
}

// Stop 停止 Web 主机
func (h *Host) Stop(ctx context.Context) error {
	h.logger.Info("Stopping web host")

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error("Failed to shutdown web host gracefully", logging.F("error", err))
		return err
	}

	h.logger.Info("Web host stopped")
	return nil
}
