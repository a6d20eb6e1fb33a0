package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToInt64 coerces an identifier value to int64.
// Supports the integer types, float64 (as produced by encoding/json),
// json.Number and decimal strings. Anything else, including a blank or
// non-numeric string, is an error.
func ToInt64(v interface{}) (int64, error) {
	switch i := v.(type) {
	case int64:
		return i, nil
	case int:
		return int64(i), nil
	case int32:
		return int64(i), nil
	case uint32:
		return int64(i), nil
	case float64:
		if i != float64(int64(i)) {
			return 0, fmt.Errorf("identifier %v is not an integer", i)
		}
		return int64(i), nil
	case json.Number:
		return parseDecimal(string(i))
	case string:
		return parseDecimal(i)
	case nil:
		return 0, fmt.Errorf("identifier is empty")
	default:
		return 0, fmt.Errorf("unsupported identifier type %T", v)
	}
}

func parseDecimal(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("identifier %q is not numeric", s)
	}
	return n, nil
}
