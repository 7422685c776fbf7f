package privacy

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/MrEthical07/goShield/mask"
)

const (
	// Redacted replaces the whole value of a sensitive field.
	Redacted = "[REDACTED]"
	// Circular replaces a value already being walked higher up the same path.
	Circular = "[Circular]"
)

var sensitiveFields = []string{
	"password", "pwd", "secret", "token", "apikey", "api_key", "private_key",
	"credit_card", "cvv", "ssn", "social_security", "authorization", "cookie",
}

// IsSensitiveField reports whether name contains a sensitive marker, ignoring case.
func IsSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, f := range sensitiveFields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

var (
	errorType = reflect.TypeFor[error]()
	timeType  = reflect.TypeFor[time.Time]()
)

// SanitizeForLog returns a redacted deep copy of v built from plain maps, slices and
// scalars. Strings are passed through mask.SanitizeText. Values under a sensitive key
// become Redacted. Reference cycles terminate with Circular.
func SanitizeForLog(v any) any {
	w := walker{active: make(map[visit]bool)}
	return w.walk(reflect.ValueOf(v))
}

type visit struct {
	ptr uintptr
	typ reflect.Type
}

type walker struct {
	active map[visit]bool
}

func (w *walker) walk(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
	}

	if v.Type() == timeType {
		return v.Interface()
	}
	if v.Type().Implements(errorType) && v.CanInterface() {
		return mask.SanitizeText(v.Interface().(error).Error())
	}

	switch v.Kind() {
	case reflect.String:
		return mask.SanitizeText(v.String())
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return v.Interface()
	case reflect.Interface:
		return w.walk(v.Elem())
	case reflect.Pointer:
		return w.guard(v, func() any { return w.walk(v.Elem()) })
	case reflect.Map:
		return w.guard(v, func() any { return w.walkMap(v) })
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return mask.SanitizeText(string(v.Bytes()))
		}
		return w.guard(v, func() any { return w.walkList(v) })
	case reflect.Array:
		return w.walkList(v)
	case reflect.Struct:
		return w.walkStruct(v)
	default:
		return "[" + v.Type().String() + "]"
	}
}

// guard marks v as in progress for the duration of fn. Seeing it again on the same path
// means a cycle; shared references on sibling paths are walked normally.
func (w *walker) guard(v reflect.Value, fn func() any) any {
	key := visit{ptr: v.Pointer(), typ: v.Type()}
	if w.active[key] {
		return Circular
	}
	w.active[key] = true
	defer delete(w.active, key)
	return fn()
}

func (w *walker) walkMap(v reflect.Value) any {
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		name := mapKey(iter.Key())
		if IsSensitiveField(name) {
			out[name] = Redacted
			continue
		}
		out[name] = w.walk(iter.Value())
	}
	return out
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return k.String()
}

func (w *walker) walkList(v reflect.Value) any {
	out := make([]any, v.Len())
	for i := range out {
		out[i] = w.walk(v.Index(i))
	}
	return out
}

func (w *walker) walkStruct(v reflect.Value) any {
	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		if IsSensitiveField(name) || IsSensitiveField(field.Name) {
			out[name] = Redacted
			continue
		}
		out[name] = w.walk(v.Field(i))
	}
	return out
}
