package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileFormat 配置文件格式
type FileFormat string

const (
	FormatJSON FileFormat = "json"
	FormatYAML FileFormat = "yaml"
)

// FileSource 文件配置源。Optional 为 true 时文件不存在视为空配置。
type FileSource struct {
	Path     string
	Format   FileFormat
	Optional bool
}

func (s *FileSource) Name() string {
	return fmt.Sprintf("%sFile(%s)", strings.ToUpper(string(s.Format)), s.Path)
}

func (s *FileSource) Load() (map[string]any, error) {
	data, err := readOptional(s.Path, s.Optional)
	if data == nil || err != nil {
		return map[string]any{}, err
	}

	var result map[string]any
	switch s.Format {
	case FormatJSON:
		err = json.Unmarshal(data, &result)
	case FormatYAML:
		err = yaml.Unmarshal(data, &result)
	default:
		return nil, fmt.Errorf("unsupported config format %q", s.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Format, err)
	}
	if result == nil {
		result = map[string]any{}
	}
	return result, nil
}

func readOptional(path string, optional bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// EnvironmentVariableSource 环境变量配置源。
// 去掉前缀后转为小写，"_" 视为层级分隔符：APP_SERVER_PORT -> server:port。
type EnvironmentVariableSource struct {
	Prefix string
}

func (s *EnvironmentVariableSource) Name() string {
	return fmt.Sprintf("EnvironmentVariables(%s)", s.Prefix)
}

func (s *EnvironmentVariableSource) Load() (map[string]any, error) {
	result := make(map[string]any)

	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if s.Prefix != "" {
			if !strings.HasPrefix(key, s.Prefix) {
				continue
			}
			key = strings.TrimPrefix(key, s.Prefix)
		}
		key = strings.Trim(strings.ToLower(key), "_")
		if key == "" {
			continue
		}
		setNestedValue(result, strings.ReplaceAll(key, "_", ":"), parseScalar(value))
	}

	return result, nil
}

// InMemorySource 内存配置源
type InMemorySource struct {
	Data map[string]any
}

func (s *InMemorySource) Name() string {
	return "InMemory"
}

func (s *InMemorySource) Load() (map[string]any, error) {
	result := make(map[string]any)
	mergeMaps(result, s.Data)
	return result, nil
}

// setNestedValue 按 ":" 路径写入值，中间层不存在时创建
func setNestedValue(data map[string]any, path string, value any) {
	parts := strings.Split(path, ":")
	current := data

	for _, part := range parts[:len(parts)-1] {
		if _, exists := current[part]; !exists {
			current[part] = make(map[string]any)
		}
		m, ok := current[part].(map[string]any)
		if !ok {
			return
		}
		current = m
	}

	current[parts[len(parts)-1]] = value
}

// parseScalar 把字符串尽量转换为整数、浮点数或布尔值
func parseScalar(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
