package graph

import "fmt"

// Graph 不可变的依赖图。只能由 Builder.Build 生成，之后只读，可在多个 goroutine 间共享。
type Graph struct {
	nodes []*Node
	index map[string]NodeID
	owner *scope
}

// Len 返回节点数量
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node 按标识返回节点
func (g *Graph) Node(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil, false
	}
	return g.nodes[id], true
}

// Lookup 按名称返回节点
func (g *Graph) Lookup(name string) (*Node, bool) {
	id, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// Nodes 按声明顺序返回全部节点
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Lookup 为按名称声明的节点（例如来自 manifest）恢复类型化的 Key。
func Lookup[T any](g *Graph, name string) (Key[T], error) {
	n, ok := g.Lookup(name)
	if !ok {
		return Key[T]{id: -1}, fmt.Errorf("graph: node %q is not declared", name)
	}
	want := TypeOf[T]()
	if n.typ != want {
		return Key[T]{id: -1}, fmt.Errorf("graph: node %q has type %v, requested %v", name, n.typ, want)
	}
	return Key[T]{id: n.id, name: n.name, owner: g.owner}, nil
}
