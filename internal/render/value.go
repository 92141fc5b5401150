// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render emits statute records in the deterministic serialized
// form: fixed key order, block layout for chapters, compact single-line
// articles, literal Unicode. Identical records yield identical bytes.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Value is a decoded JSON value. Concrete types are *Obj, *Arr, string,
// json.Number, bool, and nil. Numbers stay json.Number so they render
// back byte-identically.
type Value any

// Obj is a JSON object that preserves key encounter order.
type Obj struct {
	keys []string
	vals map[string]Value
}

// NewObj returns an empty ordered object.
func NewObj() *Obj {
	return &Obj{vals: make(map[string]Value)}
}

// Get returns the value stored under key.
func (o *Obj) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Obj) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// Set stores value under key. A new key is appended to the order; an
// existing key keeps its position.
func (o *Obj) Set(key string, value Value) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = value
}

// Keys returns the keys in encounter order. The slice is shared; do not
// modify it.
func (o *Obj) Keys() []string {
	return o.keys
}

// Arr is a JSON array.
type Arr struct {
	Items []Value
}

// Decode parses data into a Value, preserving object key order and
// number spellings.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObj(dec)
		case '[':
			return decodeArr(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return t, nil
	}
}

func decodeObj(dec *json.Decoder) (*Obj, error) {
	obj := NewObj()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not a string", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArr(dec *json.Decoder) (*Arr, error) {
	arr := &Arr{Items: []Value{}}
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// encodeScalar encodes a non-container value as JSON without escaping
// HTML characters or non-ASCII runes.
func encodeScalar(v Value) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		// Scalars from Decode or fromDocument cannot fail to encode.
		return "null"
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// encodeCompact writes v on a single line with comma-space item
// separators and colon-space key separators.
func encodeCompact(b *bytes.Buffer, v Value) {
	switch t := v.(type) {
	case *Obj:
		b.WriteByte('{')
		for i, k := range t.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(encodeScalar(k))
			b.WriteString(": ")
			item, _ := t.Get(k)
			encodeCompact(b, item)
		}
		b.WriteByte('}')
	case *Arr:
		b.WriteByte('[')
		for i, item := range t.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			encodeCompact(b, item)
		}
		b.WriteByte(']')
	default:
		b.WriteString(encodeScalar(t))
	}
}
