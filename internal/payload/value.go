// Package payload implements a schema-less structured value: the JSON data
// model (null, bool, number, string, list, object) with object members kept
// in insertion order.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

var ErrInvalidNumber = errors.New("invalid number")

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is a node of a structured value tree. The zero Value is null.
//
// Values are treated as immutable: every method that changes a value
// returns a modified copy and leaves the receiver untouched.
type Value struct {
	kind    Kind
	boolean bool
	// text holds the literal of a number or the contents of a string.
	text    string
	items   []Value
	members []Member
}

func Null() Value {
	return Value{}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

func Int(i int64) Value {
	return Value{kind: KindNumber, text: strconv.FormatInt(i, 10)}
}

// Float returns a number value. f must be finite, otherwise the
// value cannot be encoded.
func Float(f float64) Value {
	return Value{kind: KindNumber, text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Number returns a number value keeping the literal as is.
// It returns ErrInvalidNumber if n is not a JSON number literal.
func Number(n json.Number) (Value, error) {
	if !isNumberLiteral(string(n)) {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidNumber, string(n))
	}
	return Value{kind: KindNumber, text: string(n)}, nil
}

func String(s string) Value {
	return Value{kind: KindString, text: s}
}

func List(items ...Value) Value {
	v := Value{kind: KindList, items: make([]Value, len(items))}
	copy(v.items, items)
	return v
}

// Object builds an object from members. A repeated key keeps the
// position of its first occurrence and the value of its last.
func Object(members ...Member) Value {
	v := EmptyObject()
	for _, m := range members {
		v = v.With(m.Key, m.Value)
	}
	return v
}

func EmptyObject() Value {
	return Value{kind: KindObject, members: []Member{}}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

func (v Value) AsNumber() (json.Number, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return json.Number(v.text), true
}

func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := json.Number(v.text).Float64()
	return f, err == nil
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// Len returns the number of list items or object members.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Index returns the i-th list item, or null if v is not a list or
// i is out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindList || i < 0 || i >= len(v.items) {
		return Null()
	}
	return v.items[i]
}

func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	items := make([]Value, len(v.items))
	copy(items, v.items)
	return items
}

func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Null(), false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Null(), false
}

func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	members := make([]Member, len(v.members))
	copy(members, v.members)
	return members
}

// With returns a copy of the object v with key set to val. An existing
// key keeps its position, a new key is appended. If v is not an object
// it is treated as an empty one.
func (v Value) With(key string, val Value) Value {
	var members []Member
	if v.kind == KindObject {
		members = v.members
	}

	out := Value{kind: KindObject, members: make([]Member, 0, len(members)+1)}
	replaced := false
	for _, m := range members {
		if m.Key == key {
			m.Value = val
			replaced = true
		}
		out.members = append(out.members, m)
	}
	if !replaced {
		out.members = append(out.members, Member{Key: key, Value: val})
	}
	return out
}

// Without returns a copy of the object v with key removed.
func (v Value) Without(key string) Value {
	if v.kind != KindObject {
		return v
	}
	out := Value{kind: KindObject, members: make([]Member, 0, len(v.members))}
	for _, m := range v.members {
		if m.Key != key {
			out.members = append(out.members, m)
		}
	}
	return out
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	out := v
	switch v.kind {
	case KindList:
		out.items = make([]Value, len(v.items))
		for i, item := range v.items {
			out.items[i] = item.Clone()
		}
	case KindObject:
		out.members = make([]Member, len(v.members))
		for i, m := range v.members {
			out.members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	return out
}

// Any converts v to the generic Go representation used by encoding/json
// with UseNumber: nil, bool, json.Number, string, []any, map[string]any.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindNumber:
		return json.Number(v.text)
	case KindString:
		return v.text
	case KindList:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Any()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.Any()
		}
		return out
	default:
		return nil
	}
}

// FromAny converts a Go value to a Value. Maps are converted with
// their keys in sorted order. Types other than the generic JSON ones
// go through encoding/json.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t.Clone(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t)
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float64:
		return Float(t), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: KindList, items: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := Value{kind: KindObject, members: make([]Member, 0, len(t))}
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return Value{}, err
			}
			out.members = append(out.members, Member{Key: k, Value: v})
		}
		return out, nil
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return Value{}, fmt.Errorf("failed to marshal %T: %w", x, err)
		}
		return Parse(data)
	}
}

// Equal reports whether a and b are the same structured value. Object
// member order is ignored and numbers compare by numeric value.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindString:
		return a.text == b.text
	case KindNumber:
		if a.text == b.text {
			return true
		}
		x, okX := parseDecimal(a.text)
		y, okY := parseDecimal(b.text)
		return okX && okY && x.equal(y)
	case KindList:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.members) != len(b.members) {
			return false
		}
		for _, m := range a.members {
			other, ok := b.Get(m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Equal is a method form of Equal, which also lets go-cmp compare
// values without looking at unexported fields.
func (v Value) Equal(other Value) bool {
	return Equal(v, other)
}

// Scale reports how many digits a number needs before and after the
// decimal point, so 1.5e3 is (4, 0) and 0.025 is (0, 3). ok is false
// when v is not a number.
func (v Value) Scale() (whole, fraction *big.Int, ok bool) {
	if v.kind != KindNumber {
		return nil, nil, false
	}
	d, ok := parseDecimal(v.text)
	if !ok {
		return nil, nil, false
	}

	whole = new(big.Int)
	fraction = new(big.Int)
	if d.digits == "" {
		return whole, fraction, true
	}
	whole.Add(d.exponent, big.NewInt(int64(len(d.digits))))
	if whole.Sign() < 0 {
		whole.SetInt64(0)
	}
	if d.exponent.Sign() < 0 {
		fraction.Neg(d.exponent)
	}
	return whole, fraction, true
}

// decimal is a number literal reduced to its significant digits and a base
// ten exponent: 1.50e1, 15 and 150e-1 all become {digits: "15", exponent: 0}.
// Zero has no digits.
type decimal struct {
	negative bool
	digits   string
	exponent *big.Int
}

func parseDecimal(text string) (decimal, bool) {
	var d decimal
	if rest, ok := strings.CutPrefix(text, "-"); ok {
		d.negative = true
		text = rest
	}

	d.exponent = new(big.Int)
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		if _, ok := d.exponent.SetString(text[i+1:], 10); !ok {
			return decimal{}, false
		}
		text = text[:i]
	}

	whole, fraction, _ := strings.Cut(text, ".")
	digits := strings.TrimLeft(whole+fraction, "0")
	d.exponent.Sub(d.exponent, big.NewInt(int64(len(fraction))))

	trimmed := strings.TrimRight(digits, "0")
	d.exponent.Add(d.exponent, big.NewInt(int64(len(digits)-len(trimmed))))
	d.digits = trimmed

	if d.digits == "" {
		return decimal{exponent: new(big.Int)}, true
	}
	return d, true
}

func (d decimal) equal(other decimal) bool {
	return d.negative == other.negative &&
		d.digits == other.digits &&
		d.exponent.Cmp(other.exponent) == 0
}
