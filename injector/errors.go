package injector

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrForeignKey 使用了由其他 Builder 铸造的 Key
	ErrForeignKey = errors.New("injector: key does not belong to this injector's graph")
	// ErrUnknownNode 节点标识或名称不在图中
	ErrUnknownNode = errors.New("injector: unknown node")
)

// CircularDependencyError 解析时遇到了依赖环。
// Node 是闭合环的节点，Chain 是检测到环时的解析链。
type CircularDependencyError struct {
	Node  string
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("injector: circular dependency on %q", e.Node)
	}
	return fmt.Sprintf("injector: circular dependency on %q (chain: %s -> %s)",
		e.Node, strings.Join(e.Chain, " -> "), e.Node)
}

// ConstructionError 节点的构造函数返回了错误或发生 panic
type ConstructionError struct {
	Node  string
	Chain []string
	Cause error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("injector: constructing %q (chain: %s): %v", e.Node, strings.Join(e.Chain, " -> "), e.Cause)
}

func (e *ConstructionError) Unwrap() error {
	return e.Cause
}

// IsCircular 报告 err 是否由依赖环引起
func IsCircular(err error) bool {
	var target *CircularDependencyError
	return errors.As(err, &target)
}

// IsConstruction 报告 err 是否由构造失败引起
func IsConstruction(err error) bool {
	var target *ConstructionError
	return errors.As(err, &target)
}
