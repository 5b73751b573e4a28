package injector

import "sync"

// SlotState 节点在某个 Injector 中的解析状态
type SlotState uint8

const (
	// SlotEmpty 从未构造，或非缓存节点已交出上一次的结果
	SlotEmpty SlotState = iota
	// SlotInProgress 构造进行中
	SlotInProgress
	// SlotCached 值已构造并被保留
	SlotCached
)

// String 返回状态的字符串表示
func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotInProgress:
		return "in-progress"
	case SlotCached:
		return "cached"
	default:
		return "unknown"
	}
}

// slot 每个节点一个，状态只在持有 mu 时读写。
// 状态迁移：Empty -> InProgress -> {Cached | Empty}。
type slot struct {
	mu    sync.Mutex
	state SlotState
	value any

	// 仅在 InProgress 时有效
	owner *chain
	done  chan struct{}
}

// begin 将 Empty 的 slot 标记为由 ch 构造中
func (s *slot) begin(ch *chain) {
	s.state = SlotInProgress
	s.owner = ch
	s.done = make(chan struct{})
}

// commit 结束一次构造并唤醒所有等待者。
// 成功且需要缓存时进入 Cached，否则回到 Empty 以便重新构造。
func (s *slot) commit(value any, keep bool) {
	if keep {
		s.state = SlotCached
		s.value = value
	} else {
		s.state = SlotEmpty
		s.value = nil
	}
	s.owner = nil
	close(s.done)
	s.done = nil
}
