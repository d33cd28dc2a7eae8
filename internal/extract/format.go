package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Format serializes a parsed value to a stable, two-space indented JSON text.
// Key insertion order is preserved and non-ASCII content is written as-is
// (no \u escaping), matching what lands in the on-disk result files and what
// the HTML renderer reads back. Formatting an already-formatted value again
// yields byte-identical output.
func Format(v any) (string, error) {
	var b strings.Builder
	if err := writeValue(&b, v, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

const indentUnit = "  "

func writeValue(b *strings.Builder, v any, depth int) error {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case json.Number:
		b.WriteString(t.String())
	case string:
		writeString(b, t)
	case float64:
		b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case int:
		b.WriteString(strconv.Itoa(t))
	case []any:
		return writeArray(b, t, depth)
	case *Object:
		return writeObject(b, t, depth)
	default:
		return fmt.Errorf("cannot format value of type %T", v)
	}
	return nil
}

func writeArray(b *strings.Builder, arr []any, depth int) error {
	if len(arr) == 0 {
		b.WriteString("[]")
		return nil
	}

	b.WriteString("[\n")
	inner := strings.Repeat(indentUnit, depth+1)
	for i, v := range arr {
		b.WriteString(inner)
		if err := writeValue(b, v, depth+1); err != nil {
			return err
		}
		if i < len(arr)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteByte(']')
	return nil
}

func writeObject(b *strings.Builder, obj *Object, depth int) error {
	if obj.Len() == 0 {
		b.WriteString("{}")
		return nil
	}

	b.WriteString("{\n")
	inner := strings.Repeat(indentUnit, depth+1)
	keys := obj.Keys()
	for i, key := range keys {
		b.WriteString(inner)
		writeString(b, key)
		b.WriteString(": ")
		v, _ := obj.Get(key)
		if err := writeValue(b, v, depth+1); err != nil {
			return err
		}
		if i < len(keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteByte('}')
	return nil
}

// writeString writes a JSON string literal. Only the characters JSON
// requires escaping for are escaped; everything else, including non-ASCII
// runes, passes through unchanged.
func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}
