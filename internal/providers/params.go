package providers

import (
	"fmt"
	"math"
)

// String returns a required non-empty string parameter.
func String(params map[string]interface{}, key string) (string, error) {
	v, ok := params[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s parameter required", key)
	}
	return v, nil
}

// OptionalString returns a string parameter or "" when absent.
func OptionalString(params map[string]interface{}, key string) string {
	v, _ := params[key].(string)
	return v
}

// Int returns a required integer parameter. JSON numbers arrive as float64.
func Int(params map[string]interface{}, key string) (int, error) {
	switch v := params[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case nil:
		return 0, fmt.Errorf("%s parameter required", key)
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

// OptionalInt returns an integer parameter or def when absent.
func OptionalInt(params map[string]interface{}, key string, def int) (int, error) {
	if _, ok := params[key]; !ok {
		return def, nil
	}
	return Int(params, key)
}

// OptionalBool returns a boolean parameter or false when absent.
func OptionalBool(params map[string]interface{}, key string) bool {
	v, _ := params[key].(bool)
	return v
}
