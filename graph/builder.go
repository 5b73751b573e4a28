package graph

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Spec 未类型化的节点声明，供 manifest 等前端使用。
type Spec struct {
	Name      string
	Kind      Kind
	Type      reflect.Type
	Singleton bool
	Ctor      Constructor
	Args      []Ref
}

// Option 配置服务节点声明
type Option func(*Spec)

// Args 设置按位置传给构造函数的参数节点，顺序必须与形参一致。
func Args(refs ...Ref) Option {
	return func(s *Spec) {
		s.Args = append(s.Args, refs...)
	}
}

// Singleton 设置服务是否缓存（默认 true）
func Singleton(on bool) Option {
	return func(s *Spec) {
		s.Singleton = on
	}
}

// Transient 每次注入都重新构造
func Transient() Option {
	return Singleton(false)
}

// Builder 收集节点声明并在 Build 时生成不可变的 Graph。
// 声明阶段的错误会被累积，由 Build 一并返回。
type Builder struct {
	mu    sync.Mutex
	owner *scope
	specs []Spec
	index map[string]NodeID
	errs  []error
	graph *Graph
}

// NewBuilder 创建空的图构建器
func NewBuilder() *Builder {
	return &Builder{
		owner: &scope{},
		index: make(map[string]NodeID),
	}
}

// Declare 声明一个节点并返回其标识。声明无效时返回 -1，错误在 Build 时报告。
func (b *Builder) Declare(spec Spec) NodeID {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.graph != nil {
		b.errs = append(b.errs, fmt.Errorf("%w: cannot declare %q", ErrSealed, spec.Name))
		return -1
	}
	if spec.Name == "" {
		b.errs = append(b.errs, &DeclarationError{Reason: "node name is required"})
		return -1
	}
	if _, exists := b.index[spec.Name]; exists {
		b.errs = append(b.errs, &DeclarationError{Node: spec.Name, Reason: "already declared"})
		return -1
	}
	if spec.Type == nil {
		b.errs = append(b.errs, &DeclarationError{Node: spec.Name, Reason: "value type is required"})
		return -1
	}

	switch spec.Kind {
	case KindConst:
		if spec.Ctor.kind != CtorExpr {
			b.errs = append(b.errs, &DeclarationError{Node: spec.Name, Reason: "const nodes require an expression constructor"})
			return -1
		}
		if len(spec.Args) > 0 {
			b.errs = append(b.errs, &DeclarationError{Node: spec.Name, Reason: "const nodes take no arguments"})
			return -1
		}
	case KindService:
		if spec.Ctor.kind == CtorExpr {
			b.errs = append(b.errs, &DeclarationError{Node: spec.Name, Reason: "expression constructors are reserved for const nodes"})
			return -1
		}
	default:
		b.errs = append(b.errs, &DeclarationError{Node: spec.Name, Reason: fmt.Sprintf("unknown node kind %d", spec.Kind)})
		return -1
	}

	id := NodeID(len(b.specs))
	spec.Args = append([]Ref(nil), spec.Args...)
	b.specs = append(b.specs, spec)
	b.index[spec.Name] = id
	return id
}

// Const 声明常量节点，值在首次注入时交出并缓存。
func Const[T any](b *Builder, name string, value T) Key[T] {
	return ConstExpr(b, name, func() (T, error) { return value, nil })
}

// ConstExpr 声明常量节点，expr 只求值一次。
func ConstExpr[T any](b *Builder, name string, expr func() (T, error)) Key[T] {
	var fn any
	if expr != nil {
		fn = expr
	}
	id := b.Declare(Spec{
		Name:      name,
		Kind:      KindConst,
		Type:      TypeOf[T](),
		Singleton: true,
		Ctor:      Expr(fn),
	})
	return Key[T]{id: id, name: name, owner: b.owner}
}

// Service 声明服务节点，默认单例。
//
//	counter := graph.Service[*Counter](b, "Counter", graph.Factory("NewCounter", NewCounter))
//	adder := graph.Service[*Adder](b, "Adder", graph.Closure(NewAdder), graph.Args(counter, base))
func Service[T any](b *Builder, name string, ctor Constructor, opts ...Option) Key[T] {
	spec := Spec{
		Name:      name,
		Kind:      KindService,
		Type:      TypeOf[T](),
		Singleton: true,
		Ctor:      ctor,
	}
	for _, opt := range opts {
		opt(&spec)
	}
	id := b.Declare(spec)
	return Key[T]{id: id, name: name, owner: b.owner}
}

// Build 校验全部声明并生成不可变的 Graph。
// 校验项：悬空参数引用、构造函数参数个数、参数与返回值类型。
// 环不在此处报错，见 Graph.Order。重复调用返回同一个 Graph。
func (b *Builder) Build() (*Graph, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.graph != nil {
		return b.graph, nil
	}

	errs := append([]error(nil), b.errs...)

	nodes := make([]*Node, len(b.specs))
	for i, s := range b.specs {
		nodes[i] = &Node{
			id:        NodeID(i),
			name:      s.Name,
			kind:      s.Kind,
			typ:       s.Type,
			singleton: s.Singleton || s.Kind == KindConst,
			ctor:      s.Ctor,
		}
	}

	for i, s := range b.specs {
		n := nodes[i]
		argNodes := make([]*Node, 0, len(s.Args))
		resolved := true
		for _, ref := range s.Args {
			name, owner := ref.target()
			if owner != nil && owner != b.owner {
				errs = append(errs, &DeclarationError{Node: s.Name, Reason: fmt.Sprintf("argument %q belongs to another builder", name)})
				resolved = false
				continue
			}
			id, ok := b.index[name]
			if !ok {
				errs = append(errs, &UnknownArgError{Node: s.Name, Arg: name})
				resolved = false
				continue
			}
			argNodes = append(argNodes, nodes[id])
			n.args = append(n.args, id)
		}
		if !resolved {
			continue
		}

		inv, err := s.Ctor.compile(n, argNodes)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		n.invoke = inv
		n.clone = cloner(n.typ)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	index := make(map[string]NodeID, len(b.index))
	for k, v := range b.index {
		index[k] = v
	}
	b.graph = &Graph{nodes: nodes, index: index, owner: b.owner}
	return b.graph, nil
}
