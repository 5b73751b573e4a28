package config

import (
	"sync/atomic"
)

// ValueStore 以原子指针保存配置快照，读取无锁
type ValueStore struct {
	value atomic.Pointer[map[string]any]
}

// NewValueStore 创建空的 ValueStore
func NewValueStore() *ValueStore {
	s := &ValueStore{}
	s.Store(make(map[string]any))
	return s
}

// Load 返回当前快照，调用方不得修改
func (s *ValueStore) Load() map[string]any {
	p := s.value.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Store 原子替换快照
func (s *ValueStore) Store(data map[string]any) {
	s.value.Store(&data)
}
