package query

import (
	"cmp"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/asaidimu/go-docstore/core"
)

// Type ranks used to order values of different kinds against each other.
const (
	rankNull = iota
	rankBool
	rankNumber
	rankTime
	rankString
	rankArray
	rankMap
	rankOther
)

// Equal reports whether two field values are equal. Numbers compare by value
// across Go numeric types, slices element-wise and string-keyed maps key-wise.
// Everything else falls back to reflect.DeepEqual. A nil map or slice is
// null, so it never equals an empty one.
func Equal(a, b any) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}

	if core.IsNumber(a) || core.IsNumber(b) {
		return numbersEqual(a, b)
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if isList(ra) && isList(rb) {
		if ra.Len() != rb.Len() {
			return false
		}
		for i := 0; i < ra.Len(); i++ {
			if !Equal(ra.Index(i).Interface(), rb.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	if isStringMap(ra) && isStringMap(rb) {
		if ra.Len() != rb.Len() {
			return false
		}
		keyType := rb.Type().Key()
		iter := ra.MapRange()
		for iter.Next() {
			other := rb.MapIndex(iter.Key().Convert(keyType))
			if !other.IsValid() || !Equal(iter.Value().Interface(), other.Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

// Compare returns -1, 0 or 1 ordering a before, equal to, or after b. It is a
// total order: values of different kinds are ordered by kind rank first.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case rankNull:
		return 0
	case rankBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case rankNumber:
		return compareNumbers(a, b)
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	case rankString:
		return strings.Compare(a.(string), b.(string))
	case rankArray:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		n := min(va.Len(), vb.Len())
		for i := 0; i < n; i++ {
			if c := Compare(va.Index(i).Interface(), vb.Index(i).Interface()); c != 0 {
				return c
			}
		}
		return cmp.Compare(va.Len(), vb.Len())
	case rankMap:
		return compareMaps(reflect.ValueOf(a), reflect.ValueOf(b))
	default:
		return 0
	}
}

func rank(v any) int {
	if isNil(v) {
		return rankNull
	}
	switch v.(type) {
	case bool:
		return rankBool
	case time.Time:
		return rankTime
	case string:
		return rankString
	}
	if core.IsNumber(v) {
		return rankNumber
	}
	rv := reflect.ValueOf(v)
	if isList(rv) {
		return rankArray
	}
	if isStringMap(rv) {
		return rankMap
	}
	return rankOther
}

func numbersEqual(a, b any) bool {
	if ai, ok := core.ToInt64(a); ok {
		if bi, ok := core.ToInt64(b); ok {
			return ai == bi
		}
	}
	af, okA := core.ToFloat64(a)
	bf, okB := core.ToFloat64(b)
	return okA && okB && af == bf
}

func compareNumbers(a, b any) int {
	if ai, ok := core.ToInt64(a); ok {
		if bi, ok := core.ToInt64(b); ok {
			return cmp.Compare(ai, bi)
		}
	}
	af, _ := core.ToFloat64(a)
	bf, _ := core.ToFloat64(b)
	return cmp.Compare(af, bf)
}

// compareMaps orders maps by their sorted keys, then by the values under
// those keys.
func compareMaps(a, b reflect.Value) int {
	ka, kb := sortedKeys(a), sortedKeys(b)
	n := min(len(ka), len(kb))
	for i := 0; i < n; i++ {
		if c := strings.Compare(ka[i], kb[i]); c != 0 {
			return c
		}
		va := a.MapIndex(reflect.ValueOf(ka[i]).Convert(a.Type().Key())).Interface()
		vb := b.MapIndex(reflect.ValueOf(kb[i]).Convert(b.Type().Key())).Interface()
		if c := Compare(va, vb); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(ka), len(kb))
}

func sortedKeys(m reflect.Value) []string {
	keys := make([]string, 0, m.Len())
	for _, k := range m.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isList(v reflect.Value) bool {
	k := v.Kind()
	return (k == reflect.Slice || k == reflect.Array) && v.Type().Elem().Kind() != reflect.Uint8
}

func isStringMap(v reflect.Value) bool {
	return v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String
}
