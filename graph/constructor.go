package graph

import (
	"fmt"
	"reflect"
)

// Constructor 节点的构造策略（带标签的变体）。
// 在 Build 时编译为每个节点专属的调用器，解析期间不再做任何按名查找。
type Constructor struct {
	kind CtorKind
	name string
	fn   any
}

// Default 使用类型的默认构造
func Default() Constructor {
	return Constructor{kind: CtorDefault}
}

// Factory 命名工厂函数。fn 的签名为 func(args...) T 或 func(args...) (T, error)，
// name 仅用于诊断信息。
func Factory(name string, fn any) Constructor {
	return Constructor{kind: CtorFactory, name: name, fn: fn}
}

// Closure 用户提供的函数值，签名要求与 Factory 相同
func Closure(fn any) Constructor {
	return Constructor{kind: CtorClosure, fn: fn}
}

// Expr 常量表达式：func() T 或 func() (T, error)
func Expr(fn any) Constructor {
	return Constructor{kind: CtorExpr, fn: fn}
}

// Kind 返回构造策略类别
func (c Constructor) Kind() CtorKind {
	return c.kind
}

// Name 返回工厂名称；非工厂策略返回策略类别名
func (c Constructor) Name() string {
	if c.kind == CtorFactory && c.name != "" {
		return c.name
	}
	return c.kind.String()
}

// invoker 编译后的调用器
type invoker func(args []any) (any, error)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// compile 校验构造策略与节点类型、参数节点是否匹配，并生成调用器。
func (c Constructor) compile(n *Node, args []*Node) (invoker, error) {
	if c.kind == CtorDefault {
		if len(args) != 0 {
			return nil, &ArityError{Node: n.name, Params: 0, Args: len(args)}
		}
		return defaultInvoker(n.typ), nil
	}

	if c.fn == nil {
		return nil, &DeclarationError{Node: n.name, Reason: fmt.Sprintf("%s constructor is nil", c.kind)}
	}

	fnVal := reflect.ValueOf(c.fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return nil, &DeclarationError{Node: n.name, Reason: fmt.Sprintf("%s constructor must be a function, got %v", c.kind, fnType)}
	}
	if fnVal.IsNil() {
		return nil, &DeclarationError{Node: n.name, Reason: fmt.Sprintf("%s constructor is nil", c.kind)}
	}
	if fnType.IsVariadic() {
		return nil, &DeclarationError{Node: n.name, Reason: "variadic constructors are not supported"}
	}

	// 返回值: T 或 (T, error)
	switch {
	case fnType.NumOut() == 1:
	case fnType.NumOut() == 2 && fnType.Out(1) == errorType:
	default:
		return nil, &DeclarationError{Node: n.name, Reason: "constructor must return (T) or (T, error)"}
	}
	if !fnType.Out(0).AssignableTo(n.typ) {
		return nil, &ResultTypeError{Node: n.name, Result: fnType.Out(0), Want: n.typ}
	}

	if fnType.NumIn() != len(args) {
		return nil, &ArityError{Node: n.name, Params: fnType.NumIn(), Args: len(args)}
	}

	params := make([]reflect.Type, fnType.NumIn())
	for i := range params {
		params[i] = fnType.In(i)
		if !args[i].typ.AssignableTo(params[i]) {
			return nil, &ArgTypeError{
				Node:      n.name,
				Index:     i,
				Arg:       args[i].name,
				ArgType:   args[i].typ,
				ParamType: params[i],
			}
		}
	}

	return funcInvoker(fnVal, params, fnType.NumOut() == 2), nil
}

func defaultInvoker(typ reflect.Type) invoker {
	if typ.Kind() == reflect.Pointer {
		elem := typ.Elem()
		return func([]any) (any, error) {
			return reflect.New(elem).Interface(), nil
		}
	}
	return func([]any) (any, error) {
		return reflect.Zero(typ).Interface(), nil
	}
}

func funcInvoker(fn reflect.Value, params []reflect.Type, fallible bool) invoker {
	return func(args []any) (out any, err error) {
		defer func() {
			if r := recover(); r != nil {
				out, err = nil, &PanicError{Value: r}
			}
		}()

		in := make([]reflect.Value, len(params))
		for i, arg := range args {
			if arg == nil {
				// nil 接口或 nil 指针参数
				in[i] = reflect.Zero(params[i])
				continue
			}
			in[i] = reflect.ValueOf(arg)
		}

		results := fn.Call(in)
		if fallible && !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		return results[0].Interface(), nil
	}
}

// cloner 返回类型 T 的读时复制函数，不需要复制时返回 nil。
// 声明了 Clone() T 方法的类型调用该方法；未声明的切片和映射做浅拷贝，元素本身仍共享。
func cloner(typ reflect.Type) func(any) (any, error) {
	m, ok := typ.MethodByName("Clone")
	if !ok {
		switch typ.Kind() {
		case reflect.Slice:
			return guardClone(copySlice)
		case reflect.Map:
			return guardClone(copyMap)
		}
		return nil
	}

	if typ.Kind() == reflect.Interface {
		if m.Type.NumIn() != 0 || m.Type.NumOut() != 1 || m.Type.Out(0) != typ {
			return nil
		}
		return guardClone(func(rv reflect.Value) any {
			return rv.MethodByName("Clone").Call(nil)[0].Interface()
		})
	}

	// 具体类型的方法签名包含接收者
	if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 || m.Type.Out(0) != typ {
		return nil
	}
	return guardClone(func(rv reflect.Value) any {
		return m.Func.Call([]reflect.Value{rv})[0].Interface()
	})
}

// guardClone 跳过 nil 值，并把复制过程中的 panic 转为 PanicError。
func guardClone(fn func(reflect.Value) any) func(any) (any, error) {
	return func(v any) (out any, err error) {
		if isNil(v) {
			return v, nil
		}
		defer func() {
			if r := recover(); r != nil {
				out, err = nil, &PanicError{Value: r}
			}
		}()
		return fn(reflect.ValueOf(v)), nil
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func copySlice(rv reflect.Value) any {
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out.Interface()
}

func copyMap(rv reflect.Value) any {
	out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out.SetMapIndex(iter.Key(), iter.Value())
	}
	return out.Interface()
}
