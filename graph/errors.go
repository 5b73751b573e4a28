package graph

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrSealed Builder 已经 Build 之后再声明节点时记录该错误
var ErrSealed = errors.New("graph: builder already built")

// DeclarationError 描述单个节点声明本身的问题（名称、类型、构造策略）。
type DeclarationError struct {
	Node   string
	Reason string
}

func (e *DeclarationError) Error() string {
	if e.Node == "" {
		return "graph: invalid declaration: " + e.Reason
	}
	return fmt.Sprintf("graph: node %q: %s", e.Node, e.Reason)
}

// UnknownArgError 参数引用了图中不存在的节点
type UnknownArgError struct {
	Node string
	Arg  string
}

func (e *UnknownArgError) Error() string {
	return fmt.Sprintf("graph: node %q: argument %q is not declared", e.Node, e.Arg)
}

// ArityError 构造函数参数个数与声明的 args 不一致
type ArityError struct {
	Node   string
	Params int
	Args   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("graph: node %q: constructor takes %d argument(s), %d declared", e.Node, e.Params, e.Args)
}

// ArgTypeError 参数节点的值类型无法赋给构造函数对应位置的形参
type ArgTypeError struct {
	Node      string
	Index     int
	Arg       string
	ArgType   reflect.Type
	ParamType reflect.Type
}

func (e *ArgTypeError) Error() string {
	return fmt.Sprintf("graph: node %q: argument %d (%q) has type %v, constructor expects %v",
		e.Node, e.Index, e.Arg, e.ArgType, e.ParamType)
}

// ResultTypeError 构造函数返回值无法赋给节点声明的值类型
type ResultTypeError struct {
	Node   string
	Result reflect.Type
	Want   reflect.Type
}

func (e *ResultTypeError) Error() string {
	return fmt.Sprintf("graph: node %q: constructor returns %v, node type is %v", e.Node, e.Result, e.Want)
}

// CycleError 依赖图中存在环。Path 以闭合环的节点结尾。
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "graph: dependency cycle: " + strings.Join(e.Path, " -> ")
}

// PanicError 包装构造函数（或 Clone 方法）panic 时恢复出的值
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("constructor panicked: %v", e.Value)
}

// Unwrap 当 panic 的值本身是 error 时返回它
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
