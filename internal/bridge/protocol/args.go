package protocol

import (
	"encoding/json"
	"reflect"
)

// Args holds the positional arguments of a request, still encoded.
type Args []json.RawMessage

// Len returns the number of arguments supplied by the caller.
func (a Args) Len() int {
	return len(a)
}

// Decode unmarshals argument i into dst, which must be a non-nil pointer.
//
// Decoding is fail-soft: a missing, null or mistyped argument leaves dst at
// its zero value and Decode returns false.
func (a Args) Decode(i int, dst any) bool {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	target := rv.Elem()
	target.Set(reflect.Zero(target.Type()))

	if i < 0 || i >= len(a) || IsNull(a[i]) {
		return false
	}

	tmp := reflect.New(target.Type())
	if err := Unmarshal(a[i], tmp.Interface()); err != nil {
		return false
	}
	target.Set(tmp.Elem())
	return true
}
