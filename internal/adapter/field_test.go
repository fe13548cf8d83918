package adapter

import (
	"encoding/json"
	"testing"
)

type namedRole string

type customMessage struct {
	Role      namedRole
	Content   *string `json:"content"`
	ToolCalls []ToolCall
	hidden    string
}

func TestField(t *testing.T) {
	content := "hello"

	tests := []struct {
		name string
		obj  any
		key  string
		want any
	}{
		{"map hit", map[string]any{"role": "user"}, "role", "user"},
		{"map miss", map[string]any{"role": "user"}, "content", nil},
		{"map nil value", map[string]any{"content": nil}, "content", nil},
		{"string map", map[string]string{"role": "tool"}, "role", "tool"},
		{"struct by json tag", Message{Role: "user"}, "role", "user"},
		{"struct pointer", &Message{Content: &content}, "content", "hello"},
		{"nil pointer field", Message{}, "content", nil},
		{"nil slice field", Message{}, "tool_calls", nil},
		{"struct by field name", customMessage{Role: "assistant"}, "role", namedRole("assistant")},
		{"underscore key matches camel field", customMessage{ToolCalls: []ToolCall{}}, "tool_calls", []ToolCall{}},
		{"unexported field ignored", customMessage{hidden: "x"}, "hidden", nil},
		{"nil object", nil, "role", nil},
		{"nil struct pointer", (*Message)(nil), "role", nil},
		{"scalar object", 42, "role", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := field(tt.obj, tt.key)
			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(tt.want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("field(%v, %q) = %#v, want %#v", tt.obj, tt.key, got, tt.want)
			}
		})
	}
}

func TestAsString(t *testing.T) {
	if s, ok := asString(namedRole("system")); !ok || s != "system" {
		t.Errorf("asString(namedRole) = %q, %v", s, ok)
	}
	if _, ok := asString(nil); ok {
		t.Error("asString(nil) should not be ok")
	}
	if _, ok := asString(3); ok {
		t.Error("asString(3) should not be ok")
	}
}

func TestAsSlice(t *testing.T) {
	if got := asSlice([]ToolCall{{ID: "a"}, {ID: "b"}}); len(got) != 2 {
		t.Errorf("len(asSlice(typed)) = %d, want 2", len(got))
	}
	if got := asSlice(json.RawMessage(`[1]`)); got != nil {
		t.Errorf("asSlice(raw JSON) = %v, want nil", got)
	}
	if got := asSlice("abc"); got != nil {
		t.Errorf("asSlice(string) = %v, want nil", got)
	}
}

func TestDecodeArguments(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		wantKey string
		wantErr bool
	}{
		{"json text", `{"a":1}`, "a", false},
		{"raw message", json.RawMessage(`{"b":2}`), "b", false},
		{"mapping", map[string]any{"c": 3}, "c", false},
		{"string mapping", map[string]string{"d": "4"}, "d", false},
		{"struct", struct {
			E int `json:"e"`
		}{5}, "e", false},
		{"malformed text", `{"a":`, "", true},
		{"array text", `[1,2]`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := decodeArguments(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeArguments() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if _, ok := args[tt.wantKey]; !ok {
				t.Errorf("args = %v, want key %q", args, tt.wantKey)
			}
		})
	}

	args, err := decodeArguments(nil)
	if err != nil || args != nil {
		t.Errorf("decodeArguments(nil) = %v, %v; want nil, nil", args, err)
	}
}

func TestRoundTripArguments(t *testing.T) {
	in := map[string]any{"q": "golang", "limit": float64(5), "nested": map[string]any{"x": true}}
	out, err := decodeArguments(encodeArguments(in))
	if err != nil {
		t.Fatalf("decodeArguments() error = %v", err)
	}
	if encodeArguments(out) != encodeArguments(in) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
}
