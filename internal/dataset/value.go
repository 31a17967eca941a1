package dataset

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindTime
	KindMixed
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "mixed"
	}
}

// Numeric reports whether the kind supports mean/median.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

var ErrNotDate = errors.New("value is not a date")

// IsNull reports whether v is a missing value. NaN floats count as missing.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	}
	return false
}

// KindOfValue classifies a single non-null value.
func KindOfValue(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case int64:
		return KindInt
	case float64:
		if IsNull(v) {
			return KindNull
		}
		return KindFloat
	case string:
		return KindString
	case bool:
		return KindBool
	case time.Time:
		return KindTime
	default:
		return KindMixed
	}
}

// KindOf folds the kinds of all non-null values. Int and Float together
// stay numeric and report Float.
func KindOf(values []any) Kind {
	k := KindNull
	for _, v := range values {
		vk := KindOfValue(v)
		switch {
		case vk == KindNull || vk == k:
		case k == KindNull:
			k = vk
		case k.Numeric() && vk.Numeric():
			k = KindFloat
		default:
			return KindMixed
		}
	}
	return k
}

// Normalize converts loosely typed values (from config decoders or JSON)
// into the dataset's value set.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, int64, float64, string, bool, time.Time:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return float64(x)
		}
		return int64(x)
	case float32:
		return float64(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// Format renders a non-null value as text: integers in decimal, floats in
// shortest round-trip form, bools as true/false, times as RFC 3339.
// Nulls render as "".
func Format(v any) string {
	if IsNull(v) {
		return ""
	}
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// ToFloat converts numeric values; ok is false for anything else.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	}
	return 0, false
}

// Compare orders two non-null values. Values of different kinds order by
// kind; numbers compare numerically across int and float.
func Compare(a, b any) int {
	ka, kb := KindOfValue(a), KindOfValue(b)
	if ka.Numeric() && kb.Numeric() {
		fa, _ := ToFloat(a)
		fb, _ := ToFloat(b)
		return cmp.Compare(fa, fb)
	}
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case time.Time:
		return x.Compare(b.(time.Time))
	}
	return strings.Compare(Format(a), Format(b))
}

// Date layouts accepted by ParseTime, tried in order. Ambiguous
// day/month forms read month first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"20060102",
}

// ParseTime coerces a value to a time. Strings are trimmed and matched
// against dateLayouts in UTC; time values pass through.
func ParseTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrNotDate, x)
	}
	return time.Time{}, fmt.Errorf("%w: %v (%T)", ErrNotDate, v, v)
}
