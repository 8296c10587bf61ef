package core

import (
	"strings"
)

// FieldType is the declared type of a hook configuration field.
type FieldType string

const (
	FieldTypeString      FieldType = "string"
	FieldTypeText        FieldType = "text"
	FieldTypeJSON        FieldType = "json"
	FieldTypeIntegration FieldType = "integration"
	FieldTypeMultiple    FieldType = "multiple"
)

// IntegrationFieldKey is the config key holding the selected integration name.
const IntegrationFieldKey = "integration"

// MultiChoiceSeparator joins selected choices in a multiple field value.
const MultiChoiceSeparator = ";"

// IsValid reports whether the type belongs to the known set.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeString, FieldTypeText, FieldTypeJSON, FieldTypeIntegration, FieldTypeMultiple:
		return true
	}
	return false
}

// Field is a single configuration entry. Implementations are *TextField and
// *MultiChoiceField; callers switch on the concrete type.
type Field interface {
	Type() FieldType
	Value() string
	IsConfigurable() bool
	Clone() Field
	wire() ConfigValue
}

// TextField holds any scalar field: string, text, json or integration.
type TextField struct {
	Kind         FieldType
	Text         string
	Configurable bool
}

// NewTextField creates a scalar field. An empty kind defaults to string.
func NewTextField(kind FieldType, text string) *TextField {
	if kind == "" {
		kind = FieldTypeString
	}
	return &TextField{Kind: kind, Text: text, Configurable: true}
}

func (f *TextField) Type() FieldType      { return f.Kind }
func (f *TextField) Value() string        { return f.Text }
func (f *TextField) IsConfigurable() bool { return f.Configurable }

// Clone returns a copy of the field.
func (f *TextField) Clone() Field {
	c := *f
	return &c
}

func (f *TextField) wire() ConfigValue {
	return ConfigValue{Type: f.Kind, Value: f.Text, Configurable: boolRef(f.Configurable)}
}

// MultiChoiceField is a checkbox set whose value is the ';'-joined list of
// selected choices. It can only be built through NewMultiChoiceField, so the
// selection map always exists and always agrees with Value.
type MultiChoiceField struct {
	value        string
	selected     map[string]bool
	order        []string
	options      []string
	configurable bool
}

// NewMultiChoiceField splits value into the selection set and attaches the
// allowed options. Empty segments are ignored, so "" selects nothing.
func NewMultiChoiceField(value string, options []string) *MultiChoiceField {
	f := &MultiChoiceField{
		selected:     make(map[string]bool),
		options:      append([]string(nil), options...),
		configurable: true,
	}
	for _, choice := range strings.Split(value, MultiChoiceSeparator) {
		if choice == "" {
			continue
		}
		f.set(choice, true)
	}
	f.derive()
	return f
}

func (f *MultiChoiceField) Type() FieldType      { return FieldTypeMultiple }
func (f *MultiChoiceField) Value() string        { return f.value }
func (f *MultiChoiceField) IsConfigurable() bool { return f.configurable }

// SetConfigurable marks whether users may edit the field.
func (f *MultiChoiceField) SetConfigurable(v bool) {
	f.configurable = v
}

// Options returns the allowed choices declared by the hook model.
func (f *MultiChoiceField) Options() []string {
	return append([]string(nil), f.options...)
}

// Selected reports whether choice is currently checked.
func (f *MultiChoiceField) Selected(choice string) bool {
	return f.selected[choice]
}

// Temp returns the selection map. Choices absent from the map are unselected.
func (f *MultiChoiceField) Temp() map[string]bool {
	out := make(map[string]bool, len(f.selected))
	for k, v := range f.selected {
		out[k] = v
	}
	return out
}

// TempKeys returns the selection keys in enumeration order.
func (f *MultiChoiceField) TempKeys() []string {
	return append([]string(nil), f.order...)
}

// Toggle sets a choice and re-derives the value. Callers reject empty
// choices and choices containing MultiChoiceSeparator.
func (f *MultiChoiceField) Toggle(choice string, on bool) {
	f.set(choice, on)
	f.derive()
}

func (f *MultiChoiceField) set(choice string, on bool) {
	if _, ok := f.selected[choice]; !ok {
		f.order = append(f.order, choice)
	}
	f.selected[choice] = on
}

// derive rebuilds value from the selection in enumeration order.
func (f *MultiChoiceField) derive() {
	picked := make([]string, 0, len(f.order))
	for _, choice := range f.order {
		if f.selected[choice] {
			picked = append(picked, choice)
		}
	}
	f.value = strings.Join(picked, MultiChoiceSeparator)
}

// Clone returns a deep copy of the field.
func (f *MultiChoiceField) Clone() Field {
	c := &MultiChoiceField{
		value:        f.value,
		selected:     make(map[string]bool, len(f.selected)),
		order:        append([]string(nil), f.order...),
		options:      append([]string(nil), f.options...),
		configurable: f.configurable,
	}
	for k, v := range f.selected {
		c.selected[k] = v
	}
	return c
}

func (f *MultiChoiceField) wire() ConfigValue {
	cv := ConfigValue{
		Type:               FieldTypeMultiple,
		Value:              f.value,
		Configurable:       boolRef(f.configurable),
		MultipleChoiceList: append([]string(nil), f.options...),
	}
	if len(f.selected) > 0 {
		cv.Temp = f.Temp()
	}
	return cv
}
