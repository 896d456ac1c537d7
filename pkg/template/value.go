package template

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cast"
)

// literal renders a field value as the text placed inside a SQL literal.
func literal(v reflect.Value) (string, error) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", ErrNilValue
		}
		v = v.Elem()
	}

	if v.Type() == timeType {
		return v.Interface().(time.Time).Format(time.RFC3339Nano), nil
	}

	s, err := cast.ToStringE(v.Interface())
	if err == nil {
		return s, nil
	}
	// Named types such as `type Status string` are converted through their kind.
	if b, ok := underlying(v); ok {
		return cast.ToStringE(b)
	}
	return "", fmt.Errorf("converting %s: %w", v.Type(), err)
}

func underlying(v reflect.Value) (any, bool) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), true
	case reflect.Bool:
		return v.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return nil, false
	}
}
