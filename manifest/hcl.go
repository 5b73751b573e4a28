package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

type hclFile struct {
	Consts   []*hclConst   `hcl:"const,block"`
	Services []*hclService `hcl:"service,block"`
}

type hclConst struct {
	Name  string    `hcl:"name,label"`
	Type  string    `hcl:"type"`
	Value cty.Value `hcl:"value"`
}

type hclService struct {
	Name      string   `hcl:"name,label"`
	Type      string   `hcl:"type"`
	Ctor      *string  `hcl:"ctor,optional"`
	Args      []string `hcl:"args,optional"`
	Singleton *bool    `hcl:"singleton,optional"`
}

// ParseHCL 解析 HCL 描述：
//
//	const "TEST" {
//	  type  = "int"
//	  value = 10
//	}
//
//	service "Test2" {
//	  type = "*Adder"
//	  args = ["Test1", "TEST"]
//	}
func ParseHCL(src []byte, filename string) (*Manifest, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("manifest: parse HCL %s: %w", filename, diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("manifest: decode HCL %s: %w", filename, diags)
	}

	m := &Manifest{}
	for _, c := range parsed.Consts {
		value := c.Value
		m.Consts = append(m.Consts, Const{
			Name:   c.Name,
			Type:   c.Type,
			decode: func(target any) error { return fromCty(value, target) },
		})
	}
	for _, s := range parsed.Services {
		svc := Service{Name: s.Name, Type: s.Type, Args: s.Args, Singleton: s.Singleton}
		if s.Ctor != nil {
			svc.Ctor = *s.Ctor
		}
		m.Services = append(m.Services, svc)
	}

	if err := validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// fromCty 先按 gocty 的规则转换；元组、对象等 gocty 无法直接映射的值经 JSON 中转，
// 这样结构体可以沿用 json tag。
func fromCty(v cty.Value, target any) error {
	if v.IsNull() {
		return nil
	}
	if err := gocty.FromCtyValue(v, target); err == nil {
		return nil
	}

	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
