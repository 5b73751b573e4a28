package config

import (
	"strings"
	"sync"
)

// PathCache 缓存配置路径的分段结果
type PathCache struct {
	cache sync.Map // string -> []string
}

// GetPathSegments 将 "a:b.c" 拆为 ["a" "b" "c"]，结果会被缓存，调用方不得修改
func (c *PathCache) GetPathSegments(path string) []string {
	if v, ok := c.cache.Load(path); ok {
		return v.([]string)
	}

	parts := strings.FieldsFunc(path, func(r rune) bool { return r == ':' || r == '.' })
	c.cache.Store(path, parts)
	return parts
}

var globalPathCache = &PathCache{}
