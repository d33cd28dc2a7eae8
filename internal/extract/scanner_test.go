package extract

import "testing"

func TestFirstObject(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{
			name:  "bare object",
			text:  `{"a": 1}`,
			want:  `{"a": 1}`,
			found: true,
		},
		{
			name:  "object surrounded by prose",
			text:  `result below:\n{"a": 1} done`,
			want:  `{"a": 1}`,
			found: true,
		},
		{
			name:  "nested objects close at outer level",
			text:  `{"a": {"b": {"c": 3}}, "d": [{"e": 4}]} trailing`,
			want:  `{"a": {"b": {"c": 3}}, "d": [{"e": 4}]}`,
			found: true,
		},
		{
			name:  "brace inside string not counted",
			text:  `{"title": "a { b"}`,
			want:  `{"title": "a { b"}`,
			found: true,
		},
		{
			name:  "closing brace inside string not counted",
			text:  `{"title": "a } b", "x": 1}`,
			want:  `{"title": "a } b", "x": 1}`,
			found: true,
		},
		{
			name:  "escaped quote keeps string open",
			text:  `{"title": "say \" {", "x": 1}`,
			want:  `{"title": "say \" {", "x": 1}`,
			found: true,
		},
		{
			name:  "concatenated objects returns first",
			text:  `{"a": 1}{"b": 2}`,
			want:  `{"a": 1}`,
			found: true,
		},
		{
			name:  "no braces",
			text:  "nothing here",
			found: false,
		},
		{
			name:  "unterminated object",
			text:  `{"a": 1`,
			found: false,
		},
		{
			name:  "unterminated string swallows closing brace",
			text:  `{"a": "unclosed}`,
			found: false,
		},
		{
			name:  "stray closing brace before object",
			text:  `} {"a": 1}`,
			want:  `{"a": 1}`,
			found: true,
		},
		{
			name:  "empty input",
			text:  "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := FirstObject(tt.text)
			if found != tt.found {
				t.Fatalf("FirstObject(%q) found = %v, want %v", tt.text, found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("FirstObject(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestScanObjectFromOffset(t *testing.T) {
	text := `{"a": 1} middle {"b": 2}`

	start, end, ok := scanObject(text, 0)
	if !ok || text[start:end] != `{"a": 1}` {
		t.Fatalf("first scan = %q, ok=%v", text[start:end], ok)
	}

	start, end, ok = scanObject(text, end)
	if !ok || text[start:end] != `{"b": 2}` {
		t.Fatalf("second scan = %q, ok=%v", text[start:end], ok)
	}

	if _, _, ok = scanObject(text, end); ok {
		t.Error("expected no third object")
	}
}
