/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package snapshot

import (
	"bytes"
	"math"
	"reflect"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/go-openapi/strfmt"
)

// Equal reports whether two property values are the same for diffing purposes.
//
//   - nil, nil pointers, nil slices and nil maps are equal to each other; pointers
//     compare by pointee
//   - numbers compare by value regardless of width or signedness, so an int64 key
//     equals the float64 a storage round trip produces
//   - time.Time, strfmt.DateTime and strfmt.Date compare as instants; a string is
//     parsed as a date-time when the other side is a time
//   - strings and bools compare by underlying kind, so a named type equals the
//     plain value a storage round trip produces
//   - []byte compares bytes; slices, arrays and maps compare element-wise with these rules
//   - a struct equals a map when the struct's document encoding decodes to that map
//   - anything else falls back to reflect.DeepEqual
//
// Nested structs are compared as whole values; the diff never descends into them.
func Equal(a, b any) bool {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if ta, ok := asTime(a); ok {
		tb, ok := asTimeOrString(b)
		return ok && ta.Equal(tb)
	}
	if tb, ok := asTime(b); ok {
		ta, ok := asTimeOrString(a)
		return ok && ta.Equal(tb)
	}

	if ba, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ba, bb)
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if isNumber(va.Kind()) && isNumber(vb.Kind()) {
		return numbersEqual(va, vb)
	}

	ka, kb := va.Kind(), vb.Kind()
	switch {
	case ka == reflect.String && kb == reflect.String:
		return va.String() == vb.String()
	case ka == reflect.Bool && kb == reflect.Bool:
		return va.Bool() == vb.Bool()
	case ka == reflect.Struct && kb == reflect.Map:
		return structEqualsMap(a, b)
	case ka == reflect.Map && kb == reflect.Struct:
		return structEqualsMap(b, a)
	case isList(ka) && isList(kb):
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !Equal(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true
	case ka == reflect.Map && kb == reflect.Map:
		return mapsEqual(va, vb)
	}
	return reflect.DeepEqual(a, b)
}

// structEqualsMap compares a struct with the map a document store decodes it into.
func structEqualsMap(s, m any) bool {
	av, err := attributevalue.Marshal(s)
	if err != nil {
		return false
	}
	var decoded any
	if err := attributevalue.Unmarshal(av, &decoded); err != nil {
		return false
	}
	if _, ok := decoded.(map[string]any); !ok {
		return false
	}
	return Equal(decoded, m)
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.IsNil() {
		return nil
	}
	return rv.Interface()
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case strfmt.DateTime:
		return time.Time(t), true
	case strfmt.Date:
		return time.Time(t), true
	}
	return time.Time{}, false
}

func asTimeOrString(v any) (time.Time, bool) {
	if t, ok := asTime(v); ok {
		return t, true
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	dt, err := strfmt.ParseDateTime(s)
	if err != nil {
		return time.Time{}, false
	}
	return time.Time(dt), true
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isList(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array
}

func numbersEqual(a, b reflect.Value) bool {
	ka, kb := a.Kind(), b.Kind()
	switch {
	case isInt(ka) && isInt(kb):
		return a.Int() == b.Int()
	case isUint(ka) && isUint(kb):
		return a.Uint() == b.Uint()
	case isInt(ka) && isUint(kb):
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	case isUint(ka) && isInt(kb):
		return b.Int() >= 0 && a.Uint() == uint64(b.Int())
	}
	fa, fb := toFloat(a), toFloat(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return false
	}
	return fa == fb
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v.Kind()):
		return float64(v.Int())
	case isUint(v.Kind()):
		return float64(v.Uint())
	}
	return v.Float()
}

func mapsEqual(a, b reflect.Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	keyType := b.Type().Key()
	iter := a.MapRange()
	for iter.Next() {
		k := iter.Key()
		if !k.Type().AssignableTo(keyType) {
			if !k.Type().ConvertibleTo(keyType) {
				return false
			}
			k = k.Convert(keyType)
		}
		other := b.MapIndex(k)
		if !other.IsValid() || !Equal(iter.Value().Interface(), other.Interface()) {
			return false
		}
	}
	return true
}
