package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// FromDecodeError converts a JSON type mismatch into field errors. body is
// the document that failed to decode; it is searched for the offending value
// so the reported path carries array indexes, e.g. "skills[0].percentage".
func FromDecodeError(body []byte, err error) (Errors, bool) {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Type == nil {
		return nil, false
	}

	want := plainPath(typeErr.Field)
	if want == "" {
		return nil, false
	}

	field := want
	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if dec.Decode(&doc) == nil {
		if path, ok := locate(doc, "", "", want, typeErr.Type); ok {
			field = path
		}
	}

	kind := article(describeType(typeErr.Type, "").Type)
	return Errors{{
		Field:   field,
		Message: fmt.Sprintf("%s must be %s", field, kind),
		Code:    "type",
	}}, true
}

// plainPath drops the Go names of embedded structs from a decoder field path.
func plainPath(field string) string {
	segments := strings.Split(field, ".")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" || unicode.IsUpper([]rune(seg)[0]) {
			continue
		}
		kept = append(kept, seg)
	}
	return strings.Join(kept, ".")
}

// locate walks doc for the first value at the index-free path want that does
// not decode into typ, and returns its indexed path.
func locate(v any, path, plain, want string, typ reflect.Type) (string, bool) {
	if plain == want {
		if arr, ok := v.([]any); ok && typ.Kind() != reflect.Slice && typ.Kind() != reflect.Array {
			for i, elem := range arr {
				if rejects(elem, typ) {
					return fmt.Sprintf("%s[%d]", path, i), true
				}
			}
		}
		return path, rejects(v, typ)
	}

	switch node := v.(type) {
	case map[string]any:
		for key, child := range node {
			if p, ok := locate(child, join(path, key), join(plain, key), want, typ); ok {
				return p, true
			}
		}
	case []any:
		for i, child := range node {
			if p, ok := locate(child, fmt.Sprintf("%s[%d]", path, i), plain, want, typ); ok {
				return p, true
			}
		}
	}
	return "", false
}

func rejects(v any, typ reflect.Type) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, reflect.New(typ).Interface()) != nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func article(kind string) string {
	switch kind {
	case "array", "object":
		return "an " + kind
	default:
		return "a " + kind
	}
}
