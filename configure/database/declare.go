// Package database 把 gorm 数据库实例声明为依赖图节点，
// 工厂节点名为 "database"，实例节点名为 "database.<name>"。
package database

import (
	"errors"
	"fmt"

	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/logging"
	"gorm.io/gorm"
)

// FactoryNode 工厂节点名称
const FactoryNode = "database"

// Builder 数据库配置构建器
type Builder struct {
	configs []DatabaseOptions
	names   map[string]struct{}
	errors  []error
}

// Add 添加数据库配置
func (b *Builder) Add(name string, dialector gorm.Dialector, configure func(*DatabaseOptions)) *Builder {
	if _, exists := b.names[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("database '%s' already configured", name))
		return b
	}

	opts := NewDefaultOptions(name, dialector)
	if configure != nil {
		configure(opts)
	}
	opts.Name = name

	if err := opts.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Errorf("invalid database configuration for '%s': %w", name, err))
		return b
	}

	b.names[name] = struct{}{}
	b.configs = append(b.configs, *opts)
	return b
}

// Fail 记录一个配置错误，Declare 时返回
func (b *Builder) Fail(err error) *Builder {
	b.errors = append(b.errors, err)
	return b
}

// Nodes 声明得到的节点
type Nodes struct {
	Factory graph.Key[*DatabaseFactory]
	dbs     map[string]graph.Key[*gorm.DB]
}

// DB 返回数据库实例节点
func (n *Nodes) DB(name string) (graph.Key[*gorm.DB], bool) {
	k, ok := n.dbs[name]
	return k, ok
}

// Declare 声明工厂与实例节点
func Declare(b *graph.Builder, logger graph.Key[logging.Logger], configure func(*Builder)) (*Nodes, error) {
	db := &Builder{names: make(map[string]struct{})}
	if configure != nil {
		configure(db)
	}
	if len(db.errors) > 0 {
		return nil, fmt.Errorf("database configuration errors: %w", errors.Join(db.errors...))
	}

	configs := db.configs
	nodes := &Nodes{dbs: make(map[string]graph.Key[*gorm.DB], len(configs))}
	nodes.Factory = graph.Service[*DatabaseFactory](b, FactoryNode,
		graph.Factory("NewDatabaseFactory", func(l logging.Logger) *DatabaseFactory {
			return NewDatabaseFactory(l.WithCategory("database"), configs)
		}),
		graph.Args(logger))

	for _, opts := range configs {
		name := opts.Name
		nodes.dbs[name] = graph.Service[*gorm.DB](b, FactoryNode+"."+name,
			graph.Closure(func(f *DatabaseFactory) (*gorm.DB, error) {
				return f.Get(name)
			}),
			graph.Args(nodes.Factory))
	}
	return nodes, nil
}
