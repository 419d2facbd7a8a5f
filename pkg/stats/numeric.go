package stats

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToFloat coerces a metric value to float64. It accepts Go numeric types,
// booleans as 1 or 0, json.Number and strings holding a number. NaN is
// treated as absent.
func ToFloat(v any) (float64, bool) {
	var f float64

	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case int32:
		f = float64(val)
	case int16:
		f = float64(val)
	case int8:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint64:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint16:
		f = float64(val)
	case uint8:
		f = float64(val)
	case bool:
		if val {
			f = 1
		}
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}

		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}

		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) {
		return 0, false
	}

	return f, true
}

// Float returns a pointer to v, for fixed Column bounds.
func Float(v float64) *float64 {
	return &v
}
