package exits

import "reflect"

// Shape is the tagged classification of a raw exit output.
type Shape int

const (
	// ShapeUnset is a nil output.
	ShapeUnset Shape = iota
	// ShapeNativeError is a value implementing error.
	ShapeNativeError
	// ShapeWrappedCause is a non-error value carrying an error-shaped cause.
	ShapeWrappedCause
	// ShapeStringMessage is a plain string.
	ShapeStringMessage
	// ShapeOther is anything else.
	ShapeOther
)

func (s Shape) String() string {
	switch s {
	case ShapeUnset:
		return "unset"
	case ShapeNativeError:
		return "error"
	case ShapeWrappedCause:
		return "cause"
	case ShapeStringMessage:
		return "string"
	default:
		return "other"
	}
}

// Classification is the result of Classify.
type Classification struct {
	Shape Shape
	// Err is the error for ShapeNativeError and the unwrapped cause for ShapeWrappedCause.
	Err error
	// Message is set for ShapeStringMessage.
	Message string
}

// causer matches foreign wrapping conventions such as github.com/pkg/errors.
type causer interface {
	Cause() error
}

// Classify inspects a raw exit output once.
// A nil pointer or interface wrapped in a non-nil value counts as unset.
func Classify(out any) Classification {
	if isNil(out) {
		return Classification{Shape: ShapeUnset}
	}
	switch v := out.(type) {
	case error:
		return Classification{Shape: ShapeNativeError, Err: v}
	case causer:
		if cause := v.Cause(); !isNil(cause) {
			return Classification{Shape: ShapeWrappedCause, Err: cause}
		}
	case map[string]any:
		if cause, ok := v["cause"].(error); ok && !isNil(cause) {
			return Classification{Shape: ShapeWrappedCause, Err: cause}
		}
	case string:
		return Classification{Shape: ShapeStringMessage, Message: v}
	}
	return Classification{Shape: ShapeOther}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
