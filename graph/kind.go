package graph

// Kind 节点类别
type Kind uint8

const (
	// KindConst 常量节点。表达式在首次注入时求值一次，此后始终缓存。
	KindConst Kind = iota
	// KindService 服务节点。由构造策略创建，缓存与否取决于 Singleton。
	KindService
)

// String 返回节点类别的字符串表示
func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

// CtorKind 构造策略类别
type CtorKind uint8

const (
	// CtorDefault 使用类型的默认构造（指针类型分配零值结构体，其余类型取零值）
	CtorDefault CtorKind = iota
	// CtorFactory 命名工厂函数，按位置接收已解析的参数
	CtorFactory
	// CtorClosure 用户提供的函数值，按位置接收已解析的参数
	CtorClosure
	// CtorExpr 常量表达式，仅用于常量节点，不接收参数
	CtorExpr
)

// String 返回构造策略的字符串表示
func (k CtorKind) String() string {
	switch k {
	case CtorDefault:
		return "default"
	case CtorFactory:
		return "factory"
	case CtorClosure:
		return "closure"
	case CtorExpr:
		return "expr"
	default:
		return "unknown"
	}
}
