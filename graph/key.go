package graph

import "reflect"

// scope 标识铸造 Key 的 Builder，防止 Key 被用在别的图上。
type scope struct {
	_ byte
}

// Ref 参数引用：Key[T] 或 Name(...)
type Ref interface {
	target() (name string, owner *scope)
}

type nameRef string

func (r nameRef) target() (string, *scope) { return string(r), nil }

// Name 按名称引用节点，允许引用尚未声明的节点（前向引用）。
func Name(name string) Ref {
	return nameRef(name)
}

// Key 值类型为 T 的节点的静态类型句柄。
type Key[T any] struct {
	id    NodeID
	name  string
	owner *scope
}

// ID 返回节点标识
func (k Key[T]) ID() NodeID { return k.id }

// Name 返回节点名称
func (k Key[T]) Name() string { return k.name }

// Valid 报告 Key 是否由某个 Builder 铸造
func (k Key[T]) Valid() bool { return k.owner != nil && k.id >= 0 }

// In 报告 Key 是否由构建出 g 的 Builder 铸造
func (k Key[T]) In(g *Graph) bool {
	return g != nil && k.owner != nil && k.owner == g.owner
}

func (k Key[T]) target() (string, *scope) { return k.name, k.owner }

func (k Key[T]) String() string {
	return k.name + " (" + TypeOf[T]().String() + ")"
}

// TypeOf 获取类型 T 的 reflect.Type
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
