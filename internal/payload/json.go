package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrTrailingData = errors.New("trailing data after value")

// Parse decodes a JSON document into a Value.
func Parse(data []byte) (Value, error) {
	var v Value
	err := v.UnmarshalJSON(data)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	err := v.encode(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	decoded, err := decodeValue(dec)
	if err != nil {
		return err
	}

	_, err = dec.Token()
	if !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}

	*v = decoded
	return nil
}

// String returns the compact JSON text of v.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid payload: %v>", err)
	}
	return string(data)
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if !isNumberLiteral(v.text) {
			return fmt.Errorf("%w: %q", ErrInvalidNumber, v.text)
		}
		buf.WriteString(v.text)
	case KindString:
		return encodeString(buf, v.text)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			err := item.encode(buf)
			if err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			err := encodeString(buf, m.Key)
			if err != nil {
				return err
			}
			buf.WriteByte(':')
			err = m.Value.encode(buf)
			if err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown payload kind: %s", v.kind)
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Value{kind: KindNumber, text: string(t)}, nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			return decodeList(dec)
		case '{':
			return decodeObject(dec)
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func decodeList(dec *json.Decoder) (Value, error) {
	out := Value{kind: KindList, items: []Value{}}
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		out.items = append(out.items, item)
	}

	// Closing bracket.
	_, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return out, nil
}

func decodeObject(dec *json.Decoder) (Value, error) {
	out := EmptyObject()
	positions := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("unexpected object key %v", tok)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}

		if i, seen := positions[key]; seen {
			out.members[i].Value = val
			continue
		}
		positions[key] = len(out.members)
		out.members = append(out.members, Member{Key: key, Value: val})
	}

	// Closing brace.
	_, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return out, nil
}

// isNumberLiteral reports whether s is a JSON number literal.
func isNumberLiteral(s string) bool {
	if s == "" {
		return false
	}
	if s[0] != '-' && (s[0] < '0' || s[0] > '9') {
		return false
	}
	return json.Valid([]byte(s))
}
