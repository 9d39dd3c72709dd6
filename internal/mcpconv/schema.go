package mcpconv

import "encoding/json"

// ParamKind is the internal parameter representation's type tag.
type ParamKind string

const (
	KindString  ParamKind = "string"
	KindNumber  ParamKind = "number"
	KindInteger ParamKind = "integer"
	KindBoolean ParamKind = "boolean"
	KindArray   ParamKind = "array"
	KindObject  ParamKind = "object"
	KindEnum    ParamKind = "enum"
	KindUnion   ParamKind = "union"
	KindUnknown ParamKind = "unknown"
)

// Param is the internal AST node a translated JSON Schema property
// becomes.
type Param struct {
	Kind       ParamKind
	Desc       string
	Required   bool
	Items      *Param           // set when Kind == array
	Properties map[string]*Param // set when Kind == object
	Enum       []any            // set when Kind == enum
	Union      []*Param         // set when Kind == union
}

// rawSchema mirrors the subset of JSON Schema the converter understands.
type rawSchema struct {
	Type        any              `json:"type"`
	Description string           `json:"description"`
	Properties  map[string]rawSchema `json:"properties"`
	Required    []string         `json:"required"`
	Items       *rawSchema       `json:"items"`
	Enum        []any            `json:"enum"`
	OneOf       []rawSchema      `json:"oneOf"`
	AnyOf       []rawSchema      `json:"anyOf"`
}

// forbiddenKeys guards against prototype-pollution-style property names
// when recursing into object.properties.
var forbiddenKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// TranslateSchema parses an MCP tool's JSON Schema input definition into
// the internal Param AST. Unknown JSON Schema types degrade to
// KindUnknown and are reported as warnings rather than errors.
func TranslateSchema(schemaJSON json.RawMessage) (map[string]*Param, []string, error) {
	var root rawSchema
	if err := json.Unmarshal(schemaJSON, &root); err != nil {
		return nil, nil, err
	}

	requiredSet := make(map[string]bool, len(root.Required))
	for _, r := range root.Required {
		requiredSet[r] = true
	}

	var warnings []string
	out := make(map[string]*Param, len(root.Properties))
	for name, prop := range root.Properties {
		if forbiddenKeys[name] {
			warnings = append(warnings, "skipped forbidden property name: "+name)
			continue
		}
		p, w := translateOne(prop, requiredSet[name])
		warnings = append(warnings, w...)
		out[name] = p
	}
	return out, warnings, nil
}

func translateOne(s rawSchema, required bool) (*Param, []string) {
	var warnings []string

	if len(s.Enum) > 0 {
		return &Param{Kind: KindEnum, Desc: s.Description, Required: required, Enum: s.Enum}, warnings
	}

	arms := s.OneOf
	if len(arms) == 0 {
		arms = s.AnyOf
	}
	if len(arms) > 0 {
		allLiteral := true
		var enumVals []any
		var union []*Param
		for _, arm := range arms {
			child, w := translateOne(arm, false)
			warnings = append(warnings, w...)
			union = append(union, child)
			if child.Kind == KindEnum && len(child.Enum) == 1 {
				enumVals = append(enumVals, child.Enum[0])
			} else {
				allLiteral = false
			}
		}
		if allLiteral {
			return &Param{Kind: KindEnum, Desc: s.Description, Required: required, Enum: enumVals}, warnings
		}
		return &Param{Kind: KindUnion, Desc: s.Description, Required: required, Union: union}, warnings
	}

	typeName, _ := s.Type.(string)
	switch typeName {
	case "string":
		return &Param{Kind: KindString, Desc: s.Description, Required: required}, warnings
	case "number":
		return &Param{Kind: KindNumber, Desc: s.Description, Required: required}, warnings
	case "integer":
		return &Param{Kind: KindInteger, Desc: s.Description, Required: required}, warnings
	case "boolean":
		return &Param{Kind: KindBoolean, Desc: s.Description, Required: required}, warnings
	case "array":
		var items *Param
		if s.Items != nil {
			child, w := translateOne(*s.Items, false)
			warnings = append(warnings, w...)
			items = child
		} else {
			items = &Param{Kind: KindUnknown}
			warnings = append(warnings, "array missing items schema")
		}
		return &Param{Kind: KindArray, Desc: s.Description, Required: required, Items: items}, warnings
	case "object":
		requiredSet := make(map[string]bool, len(s.Required))
		for _, r := range s.Required {
			requiredSet[r] = true
		}
		props := make(map[string]*Param, len(s.Properties))
		for name, child := range s.Properties {
			if forbiddenKeys[name] {
				warnings = append(warnings, "skipped forbidden property name: "+name)
				continue
			}
			cp, w := translateOne(child, requiredSet[name])
			warnings = append(warnings, w...)
			props[name] = cp
		}
		return &Param{Kind: KindObject, Desc: s.Description, Required: required, Properties: props}, warnings
	default:
		warnings = append(warnings, "unknown JSON Schema type: "+typeName)
		return &Param{Kind: KindUnknown, Desc: s.Description, Required: required}, warnings
	}
}
