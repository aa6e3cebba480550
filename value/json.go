package value

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeJSON reads one JSON document from r into a Value, preserving
// object key order and last-wins duplicate-key semantics (spec.md §3).
// It is built on encoding/json.Decoder's token stream rather than
// Unmarshal into map[string]interface{}, which would lose key order —
// the same requirement mcvoid-json's hand-written parser meets by
// building an ordered []pair directly; the stdlib tokenizer already
// walks the document in source order, so duplicating a full JSON grammar
// here (lexer, string-escape handling, number grammar) would just
// re-implement what Decoder already does correctly.
func DecodeJSON(r io.Reader) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("value: unexpected delimiter %q", t)
		}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("value: invalid number %q: %w", t, err)
		}
		return NewNumber(f), nil
	case string:
		return NewString(t), nil
	case bool:
		return NewBool(t), nil
	case nil:
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("value: unexpected token %T", tok)
	}
}

func decodeObject(dec *json.Decoder) (*Value, error) {
	b := NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("value: object key is not a string: %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		b.Set(key, val)
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return nil, err
	}
	return b.Build(), nil
}

func decodeArray(dec *json.Decoder) (*Value, error) {
	var elems []*Value
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		elems = append(elems, val)
	}
	if _, err := dec.Token(); err != nil { // consume closing ']'
		return nil, err
	}
	return NewArray(elems), nil
}

// EncodeJSON writes v to w as JSON, preserving object key order.
// encoding/json.Marshal cannot be used directly for Object (it would
// need a map, which sorts keys), so this walks the Value tree and emits
// tokens itself using encoding/json.Marshal only for leaf scalar
// encoding (string escaping, float formatting), the same split mcvoid-json's
// String() method makes between structural recursion and leaf formatting.
func EncodeJSON(w io.Writer, v *Value) error {
	b, err := appendJSON(nil, v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func appendJSON(buf []byte, v *Value) ([]byte, error) {
	switch v.Kind() {
	case Null:
		return append(buf, "null"...), nil
	case Bool:
		if v.Bool() {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case Number:
		b, err := json.Marshal(v.Number())
		if err != nil {
			return nil, err
		}
		return append(buf, b...), nil
	case String:
		b, err := json.Marshal(v.Str())
		if err != nil {
			return nil, err
		}
		return append(buf, b...), nil
	case Array:
		buf = append(buf, '[')
		for i, elem := range v.Elements() {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			buf, err = appendJSON(buf, elem)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case Object:
		buf = append(buf, '{')
		for i, m := range v.Members() {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(m.Key)
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			buf, err = appendJSON(buf, m.Val)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	default:
		return nil, fmt.Errorf("value: cannot encode kind %s", v.Kind())
	}
}
