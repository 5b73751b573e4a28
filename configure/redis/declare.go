// Package redis 把 Redis 客户端声明为依赖图节点。
//
// 工厂节点名为 "redis"，每个客户端一个节点，名为 "redis.<name>"：
//
//	nodes, err := redis.Declare(b, loggerKey, func(rb *redis.Builder) {
//		rb.AddClient("cache", func(o *redis.ClientOptions) { o.Addr = "cache:6379" })
//	})
//	cache, _ := nodes.Client("cache")
//	graph.Service[*Repo](b, "Repo", graph.Closure(NewRepo), graph.Args(cache))
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/logging"
	goredis "github.com/redis/go-redis/v9"
)

// FactoryNode 工厂节点名称
const FactoryNode = "redis"

// Builder Redis 客户端配置构建器
type Builder struct {
	configs []ClientOptions
	names   map[string]struct{}
	errs    []error
}

func newBuilder() *Builder {
	return &Builder{names: make(map[string]struct{})}
}

// AddClient 添加一个 Redis 客户端配置
func (b *Builder) AddClient(name string, configure func(*ClientOptions)) *Builder {
	if _, exists := b.names[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("redis client '%s' already configured", name))
		return b
	}

	opts := NewDefaultOptions(name)
	if configure != nil {
		configure(opts)
	}
	opts.Name = name
	if err := opts.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("invalid redis configuration for '%s': %w", name, err))
		return b
	}

	b.names[name] = struct{}{}
	b.configs = append(b.configs, *opts)
	return b
}

// Nodes 声明得到的节点
type Nodes struct {
	Factory graph.Key[*ClientFactory]
	clients map[string]graph.Key[*goredis.Client]
}

// Client 返回指定客户端的节点
func (n *Nodes) Client(name string) (graph.Key[*goredis.Client], bool) {
	k, ok := n.clients[name]
	return k, ok
}

// Declare 声明工厂节点与每个客户端节点。配置错误会在声明任何节点之前返回。
func Declare(b *graph.Builder, logger graph.Key[logging.Logger], configure func(*Builder)) (*Nodes, error) {
	rb := newBuilder()
	if configure != nil {
		configure(rb)
	}
	if len(rb.errs) > 0 {
		return nil, fmt.Errorf("redis configuration: %w", errors.Join(rb.errs...))
	}

	configs := rb.configs
	nodes := &Nodes{clients: make(map[string]graph.Key[*goredis.Client], len(configs))}
	nodes.Factory = graph.Service[*ClientFactory](b, FactoryNode,
		graph.Factory("NewClientFactory", func(l logging.Logger) *ClientFactory {
			return NewClientFactory(l.WithCategory("redis"), configs)
		}),
		graph.Args(logger))

	for _, opts := range configs {
		name := opts.Name
		nodes.clients[name] = graph.Service[*goredis.Client](b, FactoryNode+"."+name,
			graph.Closure(func(f *ClientFactory) (*goredis.Client, error) {
				return f.Get(context.Background(), name)
			}),
			graph.Args(nodes.Factory))
	}

	return nodes, nil
}
