// Package mongodb 把 MongoDB 客户端声明为依赖图节点。
//
// 工厂节点名为 "mongodb"，客户端节点名为 "mongodb.<name>"，
// 配置了 Database 时还有 "mongodb.<name>.db"。
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/logging"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// FactoryNode 工厂节点名称
const FactoryNode = "mongodb"

// Builder MongoDB 配置构建器
type Builder struct {
	configs []MongoOptions
	names   map[string]struct{}
	errors  []error
}

// Add 添加 MongoDB 客户端配置
func (b *Builder) Add(name string, uri string, configure func(*MongoOptions)) *Builder {
	if _, exists := b.names[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("mongo client '%s' already configured", name))
		return b
	}

	opts := NewDefaultOptions(name, uri)
	if configure != nil {
		configure(opts)
	}
	opts.Name = name

	if err := opts.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Errorf("invalid mongo configuration for '%s': %w", name, err))
		return b
	}

	b.names[name] = struct{}{}
	b.configs = append(b.configs, *opts)
	return b
}

// Nodes 声明得到的节点
type Nodes struct {
	Factory   graph.Key[*MongoFactory]
	clients   map[string]graph.Key[*mongo.Client]
	databases map[string]graph.Key[*mongo.Database]
}

// Client 返回客户端节点
func (n *Nodes) Client(name string) (graph.Key[*mongo.Client], bool) {
	k, ok := n.clients[name]
	return k, ok
}

// Database 返回数据库节点，仅在配置了 Database 时存在
func (n *Nodes) Database(name string) (graph.Key[*mongo.Database], bool) {
	k, ok := n.databases[name]
	return k, ok
}

// Declare 声明工厂、客户端与数据库节点
func Declare(b *graph.Builder, logger graph.Key[logging.Logger], configure func(*Builder)) (*Nodes, error) {
	mb := &Builder{names: make(map[string]struct{})}
	if configure != nil {
		configure(mb)
	}
	if len(mb.errors) > 0 {
		return nil, fmt.Errorf("mongo configuration errors: %w", errors.Join(mb.errors...))
	}

	configs := mb.configs
	nodes := &Nodes{
		clients:   make(map[string]graph.Key[*mongo.Client]),
		databases: make(map[string]graph.Key[*mongo.Database]),
	}
	nodes.Factory = graph.Service[*MongoFactory](b, FactoryNode,
		graph.Factory("NewMongoFactory", func(l logging.Logger) *MongoFactory {
			return NewMongoFactory(l.WithCategory("mongodb"), configs)
		}),
		graph.Args(logger))

	for _, opts := range configs {
		name := opts.Name
		nodes.clients[name] = graph.Service[*mongo.Client](b, FactoryNode+"."+name,
			graph.Closure(func(f *MongoFactory) (*mongo.Client, error) {
				return f.Get(context.Background(), name)
			}),
			graph.Args(nodes.Factory))

		if opts.Database == "" {
			continue
		}
		nodes.databases[name] = graph.Service[*mongo.Database](b, FactoryNode+"."+name+".db",
			graph.Closure(func(f *MongoFactory) (*mongo.Database, error) {
				return f.Database(context.Background(), name)
			}),
			graph.Args(nodes.Factory))
	}

	return nodes, nil
}
