// Package document defines the schemaless record shape shared by the provider
// client, the store backends and the API handlers.
//
// Provider payloads are kept whole so passthrough fields survive the round
// trip into storage. The pipeline only reads a handful of fields (natural
// keys, country and season references, kick-off times) and does so through
// the typed accessors below.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Document is a single stored record: a league, team, match or standing.
type Document map[string]any

// Decode parses a JSON object. Integral numbers are kept as int64 so natural
// keys compare and serialize as integers in every backend.
func Decode(data []byte) (Document, error) {
	var raw map[string]any
	if err := unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode document: not an object")
	}
	return Document(normalize(raw).(map[string]any)), nil
}

// DecodeList parses a JSON array of objects. A JSON null decodes to an empty
// list.
func DecodeList(data []byte) ([]Document, error) {
	var raw []map[string]any
	if err := unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode document list: %w", err)
	}
	docs := make([]Document, 0, len(raw))
	for _, item := range raw {
		if item == nil {
			continue
		}
		docs = append(docs, Document(normalize(item).(map[string]any)))
	}
	return docs, nil
}

func unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// normalize replaces json.Number values with int64 (when integral) or float64.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, inner := range t {
			t[k] = normalize(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalize(inner)
		}
		return t
	default:
		return v
	}
}

// Int returns the integer value stored under key.
func (d Document) Int(key string) (int64, bool) {
	return ToInt(d[key])
}

// String returns the string value stored under key.
func (d Document) String(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// List returns the embedded objects stored under key. Elements that are not
// objects are skipped. The returned documents share storage with d.
func (d Document) List(key string) []Document {
	switch items := d[key].(type) {
	case []any:
		out := make([]Document, 0, len(items))
		for _, item := range items {
			switch m := item.(type) {
			case map[string]any:
				out = append(out, Document(m))
			case Document:
				out = append(out, m)
			}
		}
		return out
	case []Document:
		return items
	case []map[string]any:
		out := make([]Document, 0, len(items))
		for _, m := range items {
			out = append(out, Document(m))
		}
		return out
	default:
		return nil
	}
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneValue(map[string]any(d)).(map[string]any))
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case Document:
		return Document(cloneValue(map[string]any(t)).(map[string]any))
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = cloneValue(inner)
		}
		return out
	case []Document:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = cloneValue(map[string]any(inner))
		}
		return out
	default:
		return v
	}
}

// ToInt normalizes an integer from the shapes it takes across JSON decoders
// and store drivers. Non-integral floats are rejected.
func ToInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// Truthy reports whether a provider flag is set. The provider encodes flags
// as 0/1 integers; booleans and "1"/"true" strings are accepted as well.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(t)
		return err == nil && b
	default:
		n, ok := ToInt(v)
		return ok && n == 1
	}
}

// Equal compares two field values, treating numbers of different Go types as
// equal when they hold the same integer.
func Equal(a, b any) bool {
	if ai, ok := ToInt(a); ok {
		if _, isString := a.(string); !isString {
			bi, ok := ToInt(b)
			_, bIsString := b.(string)
			return ok && !bIsString && ai == bi
		}
	}
	if af, ok := a.(float64); ok {
		bf, ok := b.(float64)
		return ok && af == bf
	}
	switch at := a.(type) {
	case string:
		bt, ok := b.(string)
		return ok && at == bt
	case bool:
		bt, ok := b.(bool)
		return ok && at == bt
	case nil:
		return b == nil
	}
	return false
}
