package propertylist

import (
	"math"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInteger
	KindReal
	KindBool
	KindArray
	KindDict
	KindData
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	case KindData:
		return "data"
	case KindDate:
		return "date"
	}

	return "invalid"
}

// Value is a single property-list value. The zero Value is invalid
// and cannot be encoded.
type Value struct {
	kind Kind
	raw  any
}

// Dict is the key/value variant of a property list.
type Dict map[string]Value

// Array is the ordered variant of a property list.
type Array []Value

func String(s string) Value {
	return Value{kind: KindString, raw: s}
}

func Integer(i int64) Value {
	return Value{kind: KindInteger, raw: i}
}

// Unsigned holds integers above math.MaxInt64, which the binary
// encoding can carry.
func Unsigned(u uint64) Value {
	return Value{kind: KindInteger, raw: u}
}

func Real(f float64) Value {
	return Value{kind: KindReal, raw: f}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, raw: b}
}

func NewArray(vs ...Value) Value {
	return Value{kind: KindArray, raw: Array(vs)}
}

func NewDict(d Dict) Value {
	if d == nil {
		d = Dict{}
	}

	return Value{kind: KindDict, raw: d}
}

func Data(b []byte) Value {
	return Value{kind: KindData, raw: b}
}

func Date(t time.Time) Value {
	return Value{kind: KindDate, raw: t}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

func (v Value) AsString() (string, error) {
	if s, ok := v.raw.(string); ok && v.kind == KindString {
		return s, nil
	}

	return "", &TypeError{Want: KindString, Got: v.kind}
}

// AsInt fails on integers that do not fit in an int64.
func (v Value) AsInt() (int64, error) {
	if v.kind == KindInteger {
		switch i := v.raw.(type) {
		case int64:
			return i, nil
		case uint64:
			if i <= math.MaxInt64 {
				return int64(i), nil
			}
		}
	}

	return 0, &TypeError{Want: KindInteger, Got: v.kind}
}

func (v Value) AsUint() (uint64, error) {
	if v.kind == KindInteger {
		switch i := v.raw.(type) {
		case uint64:
			return i, nil
		case int64:
			if i >= 0 {
				return uint64(i), nil
			}
		}
	}

	return 0, &TypeError{Want: KindInteger, Got: v.kind}
}

func (v Value) AsReal() (float64, error) {
	if f, ok := v.raw.(float64); ok && v.kind == KindReal {
		return f, nil
	}

	return 0, &TypeError{Want: KindReal, Got: v.kind}
}

func (v Value) AsBool() (bool, error) {
	if b, ok := v.raw.(bool); ok && v.kind == KindBool {
		return b, nil
	}

	return false, &TypeError{Want: KindBool, Got: v.kind}
}

func (v Value) AsArray() (Array, error) {
	if a, ok := v.raw.(Array); ok && v.kind == KindArray {
		return a, nil
	}

	return nil, &TypeError{Want: KindArray, Got: v.kind}
}

func (v Value) AsDict() (Dict, error) {
	if d, ok := v.raw.(Dict); ok && v.kind == KindDict {
		return d, nil
	}

	return nil, &TypeError{Want: KindDict, Got: v.kind}
}

func (v Value) AsData() ([]byte, error) {
	if b, ok := v.raw.([]byte); ok && v.kind == KindData {
		return b, nil
	}

	return nil, &TypeError{Want: KindData, Got: v.kind}
}

func (v Value) AsDate() (time.Time, error) {
	if t, ok := v.raw.(time.Time); ok && v.kind == KindDate {
		return t, nil
	}

	return time.Time{}, &TypeError{Want: KindDate, Got: v.kind}
}

// Lookup returns the value at key and whether it was present.
func (d Dict) Lookup(key string) (Value, bool) {
	v, ok := d[key]
	return v, ok
}

// String returns the string at key. It fails with a *MissingFieldError
// when key is absent and a *TypeError when it holds another kind.
func (d Dict) String(key string) (string, error) {
	v, ok := d[key]
	if !ok {
		return "", &MissingFieldError{Key: key}
	}

	s, err := v.AsString()
	if err != nil {
		return "", &FieldError{Key: key, Err: err}
	}

	return s, nil
}

// Dict returns the dictionary at key, see String.
func (d Dict) Dict(key string) (Dict, error) {
	v, ok := d[key]
	if !ok {
		return nil, &MissingFieldError{Key: key}
	}

	sub, err := v.AsDict()
	if err != nil {
		return nil, &FieldError{Key: key, Err: err}
	}

	return sub, nil
}

// Array returns the array at key, see String.
func (d Dict) Array(key string) (Array, error) {
	v, ok := d[key]
	if !ok {
		return nil, &MissingFieldError{Key: key}
	}

	a, err := v.AsArray()
	if err != nil {
		return nil, &FieldError{Key: key, Err: err}
	}

	return a, nil
}
