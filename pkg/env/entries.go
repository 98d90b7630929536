// Package env turns parsed config structs back into KEY=value lines.
package env

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const mask = "********"

var durationType = reflect.TypeOf(time.Duration(0))

// Entry is one set variable of a config struct.
type Entry struct {
	Key   string
	Value string
	// Secret is true for keys that name a credential.
	Secret bool
}

func (e Entry) String() string {
	return e.Key + "=" + e.Value
}

// Masked hides the value of a secret entry.
func (e Entry) Masked() Entry {
	if e.Secret && e.Value != "" {
		e.Value = mask
	}
	return e
}

// Entries lists the env-tagged fields of the struct c points to, in field
// order. Zero values are left out.
func Entries(c any) ([]Entry, error) {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, errors.New("env: want a non-nil pointer to a struct")
	}
	v = v.Elem()
	t := v.Type()

	var out []Entry
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		// "KEY,required,notEmpty"
		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		if key == "" {
			continue
		}

		val := v.Field(i)
		if val.IsZero() {
			continue
		}
		out = append(out, Entry{
			Key:    key,
			Value:  formatValue(val, field.Tag.Get("envSeparator")),
			Secret: isSecret(key),
		})
	}
	return out, nil
}

func isSecret(key string) bool {
	for _, word := range []string{"KEY", "TOKEN", "SECRET", "PASSWORD"} {
		if strings.Contains(key, word) {
			return true
		}
	}
	return false
}

func formatValue(v reflect.Value, sep string) string {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}
	switch v.Kind() {
	case reflect.Slice:
		if sep == "" {
			sep = ","
		}
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i), sep)
		}
		return strings.Join(parts, sep)
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
