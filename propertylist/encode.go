package propertylist

import (
	"fmt"

	"howett.net/plist"
)

// Encode serializes v. It fails with ErrSerialization when the tree holds
// a value that cannot be represented, such as a zero Value.
func Encode(v Value, format Format) ([]byte, error) {
	raw, err := toNative(v)
	if err != nil {
		return nil, err
	}

	var b []byte
	switch format {
	case FormatXML:
		b, err = plist.MarshalIndent(raw, int(format), "\t")
	case FormatBinary:
		b, err = plist.Marshal(raw, int(format))
	default:
		return nil, fmt.Errorf("%w: unsupported format %s", ErrSerialization, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	return b, nil
}

func toNative(v Value) (any, error) {
	switch v.kind {
	case KindString, KindInteger, KindReal, KindBool, KindData, KindDate:
		return v.raw, nil
	case KindArray:
		a, _ := v.raw.(Array)
		raw := make([]any, len(a))
		for i, elem := range a {
			r, err := toNative(elem)
			if err != nil {
				return nil, err
			}
			raw[i] = r
		}

		return raw, nil
	case KindDict:
		d, _ := v.raw.(Dict)
		raw := make(map[string]any, len(d))
		for key, elem := range d {
			r, err := toNative(elem)
			if err != nil {
				return nil, &FieldError{Key: key, Err: err}
			}
			raw[key] = r
		}

		return raw, nil
	}

	return nil, fmt.Errorf("%w: cannot encode %s value", ErrSerialization, v.kind)
}
