package graph

// Order 返回依赖优先的拓扑顺序（参数节点排在使用它的节点之前）。
// 图中存在环时返回 *CycleError，Path 从环的入口开始并以闭合环的节点结尾。
func (g *Graph) Order() ([]NodeID, error) {
	const (
		unvisited = iota
		visiting
		visited
	)

	state := make([]uint8, len(g.nodes))
	stack := make([]NodeID, 0, len(g.nodes))
	order := make([]NodeID, 0, len(g.nodes))

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		switch state[id] {
		case visited:
			return nil
		case visiting:
			return g.cycleError(stack, id)
		}

		state[id] = visiting
		stack = append(stack, id)

		for _, dep := range g.nodes[id].args {
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = visited
		order = append(order, id)
		return nil
	}

	// 按声明顺序遍历，保证结果确定
	for id := range g.nodes {
		if err := visit(NodeID(id)); err != nil {
			return nil, err
		}
	}

	return order, nil
}

func (g *Graph) cycleError(stack []NodeID, closing NodeID) *CycleError {
	start := 0
	for i, id := range stack {
		if id == closing {
			start = i
			break
		}
	}

	path := make([]string, 0, len(stack)-start+1)
	for _, id := range stack[start:] {
		path = append(path, g.nodes[id].name)
	}
	path = append(path, g.nodes[closing].name)
	return &CycleError{Path: path}
}
