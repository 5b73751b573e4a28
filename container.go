package inject

import (
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/injector"
	"github.com/gocrud/inject/logging"
)

// Container 构建完成的容器
type Container struct {
	injector      *injector.Injector
	configuration config.Configuration
	logger        logging.Logger
	factory       logging.LoggerFactory
}

// Injector 返回底层 Injector
func (c *Container) Injector() *injector.Injector { return c.injector }

// Graph 返回节点图
func (c *Container) Graph() *graph.Graph { return c.injector.Graph() }

// Configuration 返回配置
func (c *Container) Configuration() config.Configuration { return c.configuration }

// Logger 返回容器日志
func (c *Container) Logger() logging.Logger { return c.logger }

// Close 关闭日志工厂。节点值不做处置。
func (c *Container) Close() error {
	return c.factory.Close()
}

// Inject 注入 key 对应的值
func Inject[T any](c *Container, key graph.Key[T]) (T, error) {
	return injector.Inject(c.injector, key)
}

// Get 按名称注入，值类型必须与声明一致
func Get[T any](c *Container, name string) (T, error) {
	key, err := graph.Lookup[T](c.Graph(), name)
	if err != nil {
		var zero T
		return zero, err
	}
	return injector.Inject(c.injector, key)
}

// MustGet 同 Get，出错时 panic
func MustGet[T any](c *Container, name string) T {
	v, err := Get[T](c, name)
	if err != nil {
		panic(err)
	}
	return v
}
