package web_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/inject/configure/web"
	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/injector"
	"github.com/gocrud/inject/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SimpleController 普通控制器
type SimpleController struct{}

func (c *SimpleController) RegisterRoutes(router gin.IRouter) {
	router.GET("/simple", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "simple")
	})
}

// DepService 依赖服务
type DepService struct {
	Value string
}

// ControllerWithDep 带依赖的控制器
type ControllerWithDep struct {
	Svc *DepService
}

func NewControllerWithDep(svc *DepService) *ControllerWithDep {
	return &ControllerWithDep{Svc: svc}
}

func (c *ControllerWithDep) RegisterRoutes(router gin.IRouter) {
	router.GET("/dep", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, c.Svc.Value)
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	h.ServeHTTP(w, req)
	return w
}

func TestHostMapsControllers(t *testing.T) {
	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())
	dep := graph.Service[*DepService](b, "DepService",
		graph.Closure(func() *DepService { return &DepService{Value: "injected-value"} }))
	withDep := graph.Service[*ControllerWithDep](b, "ControllerWithDep",
		graph.Factory("NewControllerWithDep", NewControllerWithDep), graph.Args(dep))
	simple := graph.Service[*SimpleController](b, "SimpleController", graph.Default())

	host, err := web.Declare(b, logger, func(wb *web.Builder) {
		wb.SetMode(gin.TestMode).
			UsePort(0).
			AddControllers(withDep, simple).
			Get("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	})
	require.NoError(t, err)

	g, err := b.Build()
	require.NoError(t, err)
	inj := injector.New(g)

	engine := injector.MustInject(inj, host).Engine()

	w := get(t, engine, "/simple")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "simple", w.Body.String())

	w = get(t, engine, "/dep")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "injected-value", w.Body.String())

	w = get(t, engine, "/ping")
	assert.Equal(t, "pong", w.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, engine, "/missing").Code)
}

func TestNonControllerRejectedAtBuild(t *testing.T) {
	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())
	notController := graph.Const(b, "Port", 8080)

	_, err := web.Declare(b, logger, func(wb *web.Builder) {
		wb.AddControllers(notController)
	})
	require.NoError(t, err)

	_, err = b.Build()
	require.Error(t, err)
	var argErr *graph.ArgTypeError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "Port", argErr.Arg)
}

func TestDeclareValidation(t *testing.T) {
	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())
	_, err := web.Declare(b, logger, func(wb *web.Builder) {
		wb.UsePort(70000).SetMode("turbo")
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid web port")
	assert.ErrorContains(t, err, "invalid gin mode")
}

func TestHostStartStop(t *testing.T) {
	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())
	key, err := web.Declare(b, logger, func(wb *web.Builder) {
		wb.SetMode(gin.TestMode).UsePort(0).
			Get("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	})
	require.NoError(t, err)
	g, err := b.Build()
	require.NoError(t, err)
	host := injector.MustInject(injector.New(g), key)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- host.Start(ctx) }()

	var body string
	require.Eventually(t, func() bool {
		_, port, err := net.SplitHostPort(host.Addr())
		if err != nil || port == "0" {
			return false
		}
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		body = string(data)
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "ok", body)

	cancel()
	require.NoError(t, <-done)
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	assert.NoError(t, host.Stop(stopCtx))
}
