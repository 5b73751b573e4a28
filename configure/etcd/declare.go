// Package etcd 把 etcd 客户端声明为依赖图节点，
// 工厂节点名为 "etcd"，客户端节点名为 "etcd.<name>"。
package etcd

import (
	"errors"
	"fmt"

	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/logging"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// FactoryNode 工厂节点名称
const FactoryNode = "etcd"

// Builder Etcd 客户端配置构建器
type Builder struct {
	configs []EtcdClientOptions
	names   map[string]struct{}
	errors  []error
}

// AddClient 添加一个 etcd 客户端配置
func (b *Builder) AddClient(name string, configure func(*EtcdClientOptions)) *Builder {
	// 检查名称冲突
	if _, exists := b.names[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("etcd client '%s' already configured", name))
		return b
	}

	opts := NewDefaultOptions(name)
	if configure != nil {
		configure(opts)
	}
	opts.Name = name

	if err := opts.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Errorf("invalid etcd configuration for '%s': %w", name, err))
		return b
	}

	b.names[name] = struct{}{}
	b.configs = append(b.configs, *opts)
	return b
}

// Nodes 声明得到的节点
type Nodes struct {
	Factory graph.Key[*EtcdClientFactory]
	clients map[string]graph.Key[*clientv3.Client]
}

// Client 返回客户端节点
func (n *Nodes) Client(name string) (graph.Key[*clientv3.Client], bool) {
	k, ok := n.clients[name]
	return k, ok
}

// Declare 声明工厂与客户端节点
func Declare(b *graph.Builder, logger graph.Key[logging.Logger], configure func(*Builder)) (*Nodes, error) {
	eb := &Builder{names: make(map[string]struct{})}
	if configure != nil {
		configure(eb)
	}
	if len(eb.errors) > 0 {
		return nil, fmt.Errorf("etcd configuration errors: %w", errors.Join(eb.errors...))
	}

	configs := eb.configs
	nodes := &Nodes{clients: make(map[string]graph.Key[*clientv3.Client], len(configs))}
	nodes.Factory = graph.Service[*EtcdClientFactory](b, FactoryNode,
		graph.Factory("NewEtcdClientFactory", func(l logging.Logger) *EtcdClientFactory {
			return NewEtcdClientFactory(l.WithCategory("etcd"), configs)
		}),
		graph.Args(logger))

	for _, opts := range configs {
		name := opts.Name
		nodes.clients[name] = graph.Service[*clientv3.Client](b, FactoryNode+"."+name,
			graph.Closure(func(f *EtcdClientFactory) (*clientv3.Client, error) {
				return f.Get(name)
			}),
			graph.Args(nodes.Factory))
	}
	return nodes, nil
}
