package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlFile 顶层只允许 consts 与 services 两节
type yamlFile struct {
	Consts   yaml.Node `yaml:"consts"`
	Services yaml.Node `yaml:"services"`
}

type yamlConst struct {
	Type  string    `yaml:"type"`
	Value yaml.Node `yaml:"value"`
}

type yamlService struct {
	Type      string   `yaml:"type"`
	Ctor      string   `yaml:"ctor"`
	Args      []string `yaml:"args"`
	Singleton *bool    `yaml:"singleton"`
}

// ParseYAML 解析 YAML 描述：
//
//	consts:
//	  TEST: {type: int, value: 10}
//	services:
//	  Test1: {type: "*Counter", ctor: NewCounter}
//	  Test2: {type: "*Adder", args: [Test1, TEST]}
//	  Orphan: {type: Orphan, ctor: default}
//	  Short: "*Thing"
func ParseYAML(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc yamlFile
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("manifest: parse YAML: %w", err)
	}

	m := &Manifest{}
	err := eachEntry(&doc.Consts, "consts", func(name string, node *yaml.Node) error {
		var c yamlConst
		if err := node.Decode(&c); err != nil {
			return err
		}
		if c.Value.Kind == 0 {
			return errors.New("value is required")
		}
		value := c.Value
		m.Consts = append(m.Consts, Const{Name: name, Type: c.Type, decode: value.Decode})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachEntry(&doc.Services, "services", func(name string, node *yaml.Node) error {
		if node.Kind == yaml.ScalarNode {
			m.Services = append(m.Services, Service{Name: name, Type: node.Value})
			return nil
		}
		var s yamlService
		if err := node.Decode(&s); err != nil {
			return err
		}
		m.Services = append(m.Services, Service{
			Name:      name,
			Type:      s.Type,
			Ctor:      s.Ctor,
			Args:      s.Args,
			Singleton: s.Singleton,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// eachEntry 按文件顺序遍历映射节点
func eachEntry(section *yaml.Node, label string, fn func(name string, node *yaml.Node) error) error {
	if section.Kind == 0 {
		return nil
	}
	if section.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: line %d: %s must be a mapping", section.Line, label)
	}
	for i := 0; i+1 < len(section.Content); i += 2 {
		key, value := section.Content[i], section.Content[i+1]
		if err := fn(key.Value, value); err != nil {
			return fmt.Errorf("manifest: line %d: %s %q: %w", key.Line, label, key.Value, err)
		}
	}
	return nil
}
