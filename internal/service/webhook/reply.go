package webhook

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
)

// replyFields are probed in order; the first truthy one wins.
var replyFields = []string{"output", "text", "response"}

// ExtractReply pulls the reply text out of a webhook response body.
//
// Probing order: output, text, response, a bare JSON string, then the whole
// payload pretty-printed. Bodies that are not JSON at all are returned as
// trimmed raw text.
func ExtractReply(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if !json.Valid(trimmed) {
		return string(trimmed)
	}

	if trimmed[0] == '{' {
		fields := topLevelFields(trimmed)
		for _, name := range replyFields {
			if f, ok := fields[name]; ok {
				if value, ok := truthy(f.value, f.dataType); ok {
					return value
				}
			}
		}
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}

	pretty, err := prettyPrint(trimmed)
	if err != nil {
		return string(trimmed)
	}
	return pretty
}

type field struct {
	value    []byte
	dataType jsonparser.ValueType
}

// topLevelFields indexes the object's own keys. A repeated key keeps its last
// value, the way a browser's JSON.parse does.
func topLevelFields(data []byte) map[string]field {
	fields := make(map[string]field)
	_ = jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		fields[string(key)] = field{value: value, dataType: dataType}
		return nil
	})
	return fields
}

// truthy returns the field value when it is truthy: non-empty strings,
// non-zero numbers, true, objects and arrays. Non-string values come back as
// their JSON text.
func truthy(value []byte, dataType jsonparser.ValueType) (string, bool) {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil || s == "" {
			return "", false
		}
		return s, true
	case jsonparser.Number:
		f, err := strconv.ParseFloat(string(value), 64)
		if (err != nil && !math.IsInf(f, 0)) || f == 0 {
			return "", false
		}
		return formatNumber(f), true
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil || !b {
			return "", false
		}
		return "true", true
	case jsonparser.Object, jsonparser.Array:
		return strings.TrimSpace(string(value)), true
	default:
		return "", false
	}
}

// prettyPrint renders a JSON document with two-space indentation the way
// JSON.stringify(value, null, 2) does: key order kept, repeated keys collapsed
// onto their first position with the last value, strings and numbers
// re-encoded in canonical form.
func prettyPrint(data []byte) (string, error) {
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := writeValue(&b, value, dataType, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeValue(b *strings.Builder, value []byte, dataType jsonparser.ValueType, depth int) error {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return err
		}
		writeString(b, s)
	case jsonparser.Number:
		// out-of-range values come back as ±Inf and print as null
		f, _ := strconv.ParseFloat(string(value), 64)
		b.WriteString(formatNumber(f))
	case jsonparser.Boolean, jsonparser.Null:
		b.Write(value)
	case jsonparser.Array:
		return writeArray(b, value, depth)
	case jsonparser.Object:
		return writeObject(b, value, depth)
	default:
		b.WriteString("null")
	}
	return nil
}

func writeArray(b *strings.Builder, value []byte, depth int) error {
	var items []field
	var itemErr error
	_, err := jsonparser.ArrayEach(value, func(v []byte, dataType jsonparser.ValueType, _ int, err error) {
		if err != nil && itemErr == nil {
			itemErr = err
		}
		items = append(items, field{value: v, dataType: dataType})
	})
	if err != nil {
		return err
	}
	if itemErr != nil {
		return itemErr
	}
	if len(items) == 0 {
		b.WriteString("[]")
		return nil
	}

	b.WriteString("[\n")
	for i, item := range items {
		indent(b, depth+1)
		if err := writeValue(b, item.value, item.dataType, depth+1); err != nil {
			return err
		}
		if i < len(items)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	indent(b, depth)
	b.WriteByte(']')
	return nil
}

func writeObject(b *strings.Builder, value []byte, depth int) error {
	var keys []string
	entries := make(map[string]field)
	err := jsonparser.ObjectEach(value, func(key, v []byte, dataType jsonparser.ValueType, _ int) error {
		name := string(key)
		if _, seen := entries[name]; !seen {
			keys = append(keys, name)
		}
		entries[name] = field{value: v, dataType: dataType}
		return nil
	})
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		b.WriteString("{}")
		return nil
	}

	b.WriteString("{\n")
	for i, key := range keys {
		indent(b, depth+1)
		writeString(b, key)
		b.WriteString(": ")
		entry := entries[key]
		if err := writeValue(b, entry.value, entry.dataType, depth+1); err != nil {
			return err
		}
		if i < len(keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	indent(b, depth)
	b.WriteByte('}')
	return nil
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

// writeString quotes s escaping only what JSON.stringify escapes: quotes,
// backslashes and control characters.
func writeString(b *strings.Builder, s string) {
	const hex = "0123456789abcdef"
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xf])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

// formatNumber prints f the way a browser's Number#toString does. Values that
// overflow a float64 print as null, like Infinity under JSON.stringify.
func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 0) || math.IsNaN(f):
		return "null"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
