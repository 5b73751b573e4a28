package injector

import "github.com/gocrud/inject/graph"

// chain 一次顶层解析调用的解析链：当前正在构造的节点栈。
// stack 只由发起调用的 goroutine 访问；blocked/blockedDone 由 Injector.waits 保护，
// 用于跨 goroutine 的等待图检测。
type chain struct {
	stack []graph.NodeID

	blocked     *slot
	blockedDone chan struct{}
}

func newChain() *chain {
	return &chain{stack: make([]graph.NodeID, 0, 8)}
}

func (c *chain) push(id graph.NodeID) {
	c.stack = append(c.stack, id)
}

func (c *chain) pop() {
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *chain) contains(id graph.NodeID) bool {
	for _, v := range c.stack {
		if v == id {
			return true
		}
	}
	return false
}

// path 返回解析链上的节点名称，按进入顺序排列
func (c *chain) path(g *graph.Graph) []string {
	names := make([]string, 0, len(c.stack))
	for _, id := range c.stack {
		n, _ := g.Node(id)
		names = append(names, n.Name())
	}
	return names
}
