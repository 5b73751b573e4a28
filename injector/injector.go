// Package injector 解析依赖图中的节点。
//
// 每个 Injector 为图中每个节点持有一个 slot，可被任意多个 goroutine 共享。
// 节点的构造按节点串行，不相关的节点可完全并行解析；依赖环总是以
// *CircularDependencyError 失败，而不是挂起。
package injector

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/logging"
)

var errWouldDeadlock = errors.New("injector: wait would deadlock")

// Injector 依赖注入器
type Injector struct {
	graph *graph.Graph
	slots []slot

	// waits 保护所有解析链的 blocked 字段；加锁顺序为 waits -> slot.mu
	waits sync.Mutex

	logger logging.Logger
}

// New 为图 g 创建注入器，所有 slot 初始为 Empty。
func New(g *graph.Graph, opts ...Option) *Injector {
	inj := &Injector{
		graph:  g,
		slots:  make([]slot, g.Len()),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(inj)
	}
	return inj
}

// Graph 返回注入器所解析的图
func (inj *Injector) Graph() *graph.Graph {
	return inj.graph
}

// Resolve 按节点标识解析，返回未类型化的值。
func (inj *Injector) Resolve(id graph.NodeID) (any, error) {
	if _, ok := inj.graph.Node(id); !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownNode, id)
	}
	return inj.resolve(newChain(), id)
}

// ResolveName 按节点名称解析
func (inj *Injector) ResolveName(name string) (any, error) {
	n, ok := inj.graph.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, name)
	}
	return inj.resolve(newChain(), n.ID())
}

// Warmup 按依赖顺序预先解析所有缓存节点（常量与单例服务）。
// 图中有环时返回 *graph.CycleError，不做任何构造。
func (inj *Injector) Warmup() error {
	order, err := inj.graph.Order()
	if err != nil {
		return err
	}

	for _, id := range order {
		n, _ := inj.graph.Node(id)
		if !n.Caching() {
			continue
		}
		if _, err := inj.resolve(newChain(), id); err != nil {
			return err
		}
	}

	inj.logger.Debug("warmup finished", logging.F("nodes", len(order)))
	return nil
}

// State 返回节点 slot 的当前状态
func (inj *Injector) State(id graph.NodeID) SlotState {
	if _, ok := inj.graph.Node(id); !ok {
		return SlotEmpty
	}
	s := &inj.slots[id]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cached 报告节点是否已有缓存值
func (inj *Injector) Cached(id graph.NodeID) bool {
	return inj.State(id) == SlotCached
}
