// Package propertylist holds property lists as tagged values and reads
// and writes them in the binary and XML encodings.
package propertylist

import (
	"bytes"
	"fmt"
	"time"

	"howett.net/plist"
)

// Format is a property-list wire encoding.
type Format int

const (
	FormatXML    Format = plist.XMLFormat
	FormatBinary Format = plist.BinaryFormat
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatBinary:
		return "binary"
	}

	return "invalid"
}

// ParseFormat accepts the names returned by Format.String.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "xml", "":
		return FormatXML, nil
	case "binary", "bplist":
		return FormatBinary, nil
	}

	return 0, fmt.Errorf("unknown property list format %q", s)
}

var (
	binaryMagic = []byte("bplist00")
	utf8BOM     = []byte("\xef\xbb\xbf")
	xmlMagics   = [][]byte{
		[]byte("<?xml"),
		[]byte("<!DOCTYPE"),
		[]byte("<plist"),
	}
)

// Sniff reports the encoding of b from its header, or 0 when
// the header is not one this package reads.
func Sniff(b []byte) Format {
	if bytes.HasPrefix(b, binaryMagic) {
		return FormatBinary
	}

	b = bytes.TrimLeft(bytes.TrimPrefix(b, utf8BOM), " \t\r\n")
	for _, magic := range xmlMagics {
		if bytes.HasPrefix(b, magic) {
			return FormatXML
		}
	}

	return 0
}

// Decode parses a binary or XML property list. Unrecognized headers,
// truncated structures and malformed object tables all fail with
// ErrInvalidPropertyList.
func Decode(b []byte) (v Value, format Format, err error) {
	format = Sniff(b)
	if format == 0 {
		return Value{}, 0, fmt.Errorf("%w: unrecognized header", ErrInvalidPropertyList)
	}

	defer func() {
		if r := recover(); r != nil {
			v, format, err = Value{}, 0, fmt.Errorf("%w: %v", ErrInvalidPropertyList, r)
		}
	}()

	var raw any
	decoded, err := plist.Unmarshal(b, &raw)
	if err != nil {
		return Value{}, 0, fmt.Errorf("%w: %w", ErrInvalidPropertyList, err)
	}

	if Format(decoded) != format {
		return Value{}, 0, fmt.Errorf("%w: decoded as %d", ErrInvalidPropertyList, decoded)
	}

	v, err = fromNative(raw)
	if err != nil {
		return Value{}, 0, err
	}

	return v, format, nil
}

func fromNative(raw any) (Value, error) {
	switch r := raw.(type) {
	case string:
		return String(r), nil
	case int64:
		return Integer(r), nil
	case uint64:
		return Unsigned(r), nil
	case plist.UID:
		return Unsigned(uint64(r)), nil
	case float64:
		return Real(r), nil
	case float32:
		return Real(float64(r)), nil
	case bool:
		return Bool(r), nil
	case []byte:
		return Data(r), nil
	case time.Time:
		return Date(r), nil
	case []any:
		a := make(Array, len(r))
		for i, elem := range r {
			v, err := fromNative(elem)
			if err != nil {
				return Value{}, err
			}
			a[i] = v
		}

		return NewArray(a...), nil
	case map[string]any:
		d := make(Dict, len(r))
		for key, elem := range r {
			v, err := fromNative(elem)
			if err != nil {
				return Value{}, &FieldError{Key: key, Err: err}
			}
			d[key] = v
		}

		return NewDict(d), nil
	}

	return Value{}, fmt.Errorf("%w: unsupported value %T", ErrInvalidPropertyList, raw)
}
