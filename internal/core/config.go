package core

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ConfigValue is the serialized form of a Field.
type ConfigValue struct {
	Type               FieldType       `json:"type" yaml:"type" jsonschema:"enum=string,enum=text,enum=json,enum=integration,enum=multiple"`
	Value              string          `json:"value" yaml:"value"`
	Configurable       *bool           `json:"configurable,omitempty" yaml:"configurable,omitempty"`
	Temp               map[string]bool `json:"temp,omitempty" yaml:"temp,omitempty"`
	MultipleChoiceList []string        `json:"multiple_choice_list,omitempty" yaml:"multiple_choice_list,omitempty"`
}

// Field converts the serialized value into its typed form. A stored temp map
// is ignored: the selection is always rebuilt from Value.
func (cv ConfigValue) Field() (Field, error) {
	kind := cv.Type
	if kind == "" {
		kind = FieldTypeString
	}
	if !kind.IsValid() {
		return nil, ErrValidation("INVALID_FIELD_TYPE", fmt.Sprintf("unknown field type %q", cv.Type))
	}

	configurable := cv.Configurable == nil || *cv.Configurable
	if kind == FieldTypeMultiple {
		f := NewMultiChoiceField(cv.Value, cv.MultipleChoiceList)
		f.SetConfigurable(configurable)
		return f, nil
	}
	return &TextField{Kind: kind, Text: cv.Value, Configurable: configurable}, nil
}

func boolRef(b bool) *bool {
	return &b
}

// HookConfig maps field names to fields. Key order carries no meaning.
type HookConfig map[string]Field

// ConfigFromWire builds a typed config from its serialized form.
func ConfigFromWire(m map[string]ConfigValue) (HookConfig, error) {
	cfg := make(HookConfig, len(m))
	for name, cv := range m {
		f, err := cv.Field()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		cfg[name] = f
	}
	return cfg, nil
}

// Wire returns the serialized form of the config.
func (c HookConfig) Wire() map[string]ConfigValue {
	out := make(map[string]ConfigValue, len(c))
	for name, f := range c {
		out[name] = f.wire()
	}
	return out
}

// Clone returns a deep copy sharing nothing with c.
func (c HookConfig) Clone() HookConfig {
	if c == nil {
		return nil
	}
	out := make(HookConfig, len(c))
	for name, f := range c {
		out[name] = f.Clone()
	}
	return out
}

// Keys returns the field names sorted alphabetically.
func (c HookConfig) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values flattens the config into name -> value.
func (c HookConfig) Values() map[string]string {
	out := make(map[string]string, len(c))
	for name, f := range c {
		out[name] = f.Value()
	}
	return out
}

// JSONSchemaAlias describes the config by its wire form in generated
// JSON Schemas.
func (HookConfig) JSONSchemaAlias() any {
	return map[string]ConfigValue{}
}

// MarshalJSON implements json.Marshaler.
func (c HookConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *HookConfig) UnmarshalJSON(data []byte) error {
	var m map[string]ConfigValue
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	cfg, err := ConfigFromWire(m)
	if err != nil {
		return err
	}
	*c = cfg
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c HookConfig) MarshalYAML() (interface{}, error) {
	return c.Wire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *HookConfig) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]ConfigValue
	if err := node.Decode(&m); err != nil {
		return err
	}
	cfg, err := ConfigFromWire(m)
	if err != nil {
		return err
	}
	*c = cfg
	return nil
}
