package adapter

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// field looks key up on obj, trying mapping access first and then a struct
// field whose json tag or name matches. Pointers are followed and nil values
// (nil pointers, nil slices, nil maps) come back as a plain nil.
func field(obj any, key string) any {
	if obj == nil {
		return nil
	}
	if m, ok := obj.(map[string]any); ok {
		return normalize(reflect.ValueOf(m[key]))
	}

	v := deref(reflect.ValueOf(obj))
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		return normalize(v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key())))
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			if matchesKey(sf, key) {
				return normalize(v.Field(i))
			}
		}
	}
	return nil
}

// matchesKey reports whether a struct field answers to key, either through its
// json tag or through its Go name with underscores ignored ("tool_calls" ~ ToolCalls).
func matchesKey(sf reflect.StructField, key string) bool {
	if tag, ok := sf.Tag.Lookup("json"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name == key {
			return true
		}
	}
	return strings.EqualFold(sf.Name, strings.ReplaceAll(key, "_", ""))
}

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func normalize(v reflect.Value) any {
	v = deref(v)
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}

// asString returns v as text when it is a string or a named string type.
func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// asSlice returns the elements of any slice or array value.
func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil
	}
	// raw JSON bytes are text, not a sequence
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// asMap returns v as a mapping when it is a map keyed by strings.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// rawJSON returns the bytes of v when it is JSON-carrying text.
func rawJSON(v any) ([]byte, bool) {
	switch b := v.(type) {
	case json.RawMessage:
		return b, true
	case []byte:
		return b, true
	}
	if s, ok := asString(v); ok {
		return []byte(s), true
	}
	return nil, false
}

// contentText flattens message content to text. Plain strings are returned
// as-is; a list of content parts is reduced to its concatenated text parts.
func contentText(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := asString(v); ok {
		return s
	}
	if parts := asSlice(v); parts != nil {
		var b strings.Builder
		for _, p := range parts {
			if s, ok := asString(p); ok {
				b.WriteString(s)
				continue
			}
			if s, ok := asString(field(p, "text")); ok {
				b.WriteString(s)
			}
		}
		return b.String()
	}
	return textOf(v)
}

// textOf renders an arbitrary value as text, JSON-encoding composite values.
func textOf(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := asString(v); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
