package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToString converts various types to string.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts various types to bool.
// It handles bool, numeric types (1=true), and strings ("1", "true").
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int:
		return v == 1
	case int64:
		return v == 1
	case float64:
		return v == 1
	case string:
		return v == "1" || strings.ToLower(v) == "true"
	case []byte:
		s := string(v)
		return s == "1" || strings.ToLower(s) == "true"
	default:
		return false
	}
}

// AttrValue converts a decoded scalar into an attribute value. Booleans
// follow HTML semantics: true yields a present empty attribute, false and
// nil yield no attribute.
func AttrValue(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false
	case bool:
		return "", v
	default:
		return ToString(v), true
	}
}
