package validation

import (
	"reflect"
	"strings"
	"time"
)

// Rule describes one field of a payload. The same validate tags that drive
// Validate produce it, so clients can build form constraints from it.
type Rule struct {
	Field       string   `json:"field"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Constraints []string `json:"constraints,omitempty"`
	Items       *Rule    `json:"items,omitempty"`
	Fields      []Rule   `json:"fields,omitempty"`
}

var timeType = reflect.TypeOf(time.Time{})

// Describe lists the rules for the struct (or pointer to struct) v.
// Fields tagged validate:"-" are server-assigned and left out.
func Describe(v any) []Rule {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return describeStruct(t)
}

func describeStruct(t reflect.Type) []Rule {
	rules := make([]Rule, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("validate")
		if tag == "-" {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			rules = append(rules, describeStruct(f.Type)...)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := jsonName(f)
		if name == "" {
			continue
		}

		own, elem := splitDive(tag)
		rule := describeType(f.Type, own)
		rule.Field = name
		if rule.Items != nil {
			applyTag(rule.Items, elem)
		}
		rules = append(rules, rule)
	}
	return rules
}

func describeType(t reflect.Type, tag string) Rule {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var rule Rule
	switch {
	case t == timeType:
		rule.Type = "datetime"
	case t.Kind() == reflect.String:
		rule.Type = "string"
	case t.Kind() == reflect.Bool:
		rule.Type = "boolean"
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Float64:
		rule.Type = "number"
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		rule.Type = "array"
		items := describeType(t.Elem(), "")
		rule.Items = &items
	case t.Kind() == reflect.Struct:
		rule.Type = "object"
		rule.Fields = describeStruct(t)
	default:
		rule.Type = t.Kind().String()
	}

	applyTag(&rule, tag)
	return rule
}

func applyTag(rule *Rule, tag string) {
	for _, part := range strings.Split(tag, ",") {
		switch part {
		case "", "omitempty":
		case "required":
			rule.Required = true
		default:
			rule.Constraints = append(rule.Constraints, part)
		}
	}
}

// splitDive separates the rules for a collection from the rules for its
// elements.
func splitDive(tag string) (own, elem string) {
	parts := strings.Split(tag, ",")
	for i, p := range parts {
		if p == "dive" {
			return strings.Join(parts[:i], ","), strings.Join(parts[i+1:], ",")
		}
	}
	return tag, ""
}
