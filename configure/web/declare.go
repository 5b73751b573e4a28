// Package web 把基于 Gin 的 Web 主机声明为依赖图节点 "web"。
// 主机节点依赖日志与全部控制器节点，控制器类型在图构建时校验。
package web

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/logging"
)

// HostNode 主机节点名称
const HostNode = "web"

var (
	loggerType     = reflect.TypeOf((*logging.Logger)(nil)).Elem()
	controllerType = reflect.TypeOf((*Controller)(nil)).Elem()
	hostType       = reflect.TypeOf((*Host)(nil))
)

// Declare 声明主机节点
func Declare(b *graph.Builder, logger graph.Key[logging.Logger], configure func(*Builder)) (graph.Key[*Host], error) {
	wb := newBuilder()
	if configure != nil {
		configure(wb)
	}
	if len(wb.errors) > 0 {
		return graph.Key[*Host]{}, fmt.Errorf("web configuration errors: %w", errors.Join(wb.errors...))
	}

	args := append([]graph.Ref{logger}, wb.controllers...)
	key := graph.Service[*Host](b, HostNode,
		graph.Factory("NewHost", hostConstructor(wb).Interface()),
		graph.Args(args...))
	return key, nil
}

// hostConstructor 生成 func(logging.Logger, Controller, ...) *Host
func hostConstructor(wb *Builder) reflect.Value {
	params := []reflect.Type{loggerType}
	for range wb.controllers {
		params = append(params, controllerType)
	}
	fnType := reflect.FuncOf(params, []reflect.Type{hostType}, false)

	port, mode, setup := wb.port, wb.mode, wb.setup
	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		var logger logging.Logger = logging.Nop()
		if l, ok := args[0].Interface().(logging.Logger); ok && l != nil {
			logger = l.WithCategory("web")
		}

		gin.SetMode(mode)
		engine := gin.New()
		// 默认中间件：恢复 panic
		engine.Use(gin.Recovery())
		for _, fn := range setup {
			fn(engine)
		}

		for _, a := range args[1:] {
			c, ok := a.Interface().(Controller)
			if !ok || c == nil {
				continue
			}
			c.RegisterRoutes(engine)
			logger.Debug("controller mapped", logging.F("controller", fmt.Sprintf("%T", c)))
		}

		host := newHost(logger, port, engine)
		logger.Info("Web host configured", logging.F("port", port))
		return []reflect.Value{reflect.ValueOf(host)}
	})
}
