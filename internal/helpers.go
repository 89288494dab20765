package internal

import "strconv"

// Scalar is the set of types path and query values can be converted to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// Param returns the path parameter name converted to T, or the zero value
// if it is missing or does not parse.
func Param[T Scalar](rc *RequestContext, name string) T {
	v, _ := convertParam[T](rc.Param(name))
	return v
}

// Query returns the query parameter name converted to T, or the zero value
// if it is missing or does not parse.
func Query[T Scalar](rc *RequestContext, name string) T {
	v, _ := convertParam[T](rc.Query(name))
	return v
}

// QueryDefault is Query with a fallback for missing or unparseable values.
func QueryDefault[T Scalar](rc *RequestContext, name string, defaultValue T) T {
	raw := rc.Query(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// convertParam converts a raw string to the target type T.
func convertParam[T Scalar](raw string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	}
	return zero, false
}
