package graph

import "reflect"

// NodeID 节点的静态标识，即声明顺序下的下标。
type NodeID int

// Node 依赖图中的一个节点。Build 之后不可变。
type Node struct {
	id        NodeID
	name      string
	kind      Kind
	typ       reflect.Type
	singleton bool
	ctor      Constructor
	args      []NodeID

	invoke invoker
	clone  func(any) (any, error)
}

// ID 返回节点标识
func (n *Node) ID() NodeID { return n.id }

// Name 返回声明时的名称
func (n *Node) Name() string { return n.name }

// Kind 返回节点类别
func (n *Node) Kind() Kind { return n.kind }

// Type 返回节点产出值的类型
func (n *Node) Type() reflect.Type { return n.typ }

// Singleton 返回声明的单例标记
func (n *Node) Singleton() bool { return n.singleton }

// Constructor 返回构造策略
func (n *Node) Constructor() Constructor { return n.ctor }

// Args 返回按位置排列的参数节点（副本）
func (n *Node) Args() []NodeID {
	out := make([]NodeID, len(n.args))
	copy(out, n.args)
	return out
}

// NumArgs 返回参数个数
func (n *Node) NumArgs() int { return len(n.args) }

// Arg 返回第 i 个参数节点
func (n *Node) Arg(i int) NodeID { return n.args[i] }

// Caching 报告构造出的值是否在注入器生命周期内保留。
// 常量总是缓存，服务仅在声明为单例时缓存。
func (n *Node) Caching() bool {
	return n.kind == KindConst || n.singleton
}

// Construct 以按位置排列的参数调用节点的构造策略。
// 构造函数返回的 error 与 panic 都以 error 返回。
func (n *Node) Construct(args []any) (any, error) {
	return n.invoke(args)
}

// Clone 返回 v 交给调用方的副本。
// 类型声明了 Clone() T 时调用它；切片和映射做浅拷贝；其余类型及 nil 值原样返回。
// Clone 方法发生的 panic 以 *PanicError 返回。
func (n *Node) Clone(v any) (any, error) {
	if n.clone == nil {
		return v, nil
	}
	return n.clone(v)
}

func (n *Node) String() string {
	return n.kind.String() + " " + n.name + " (" + n.typ.String() + ")"
}
